package extractor

import (
	"path/filepath"
	"testing"
)

func TestLabelMapRoundTrip(t *testing.T) {
	labels := LabelMap{
		0: "B-Dataset",
		1: "B-Methodology",
		2: "I-Dataset",
		3: "O",
	}

	path := filepath.Join(t.TempDir(), "labels.json")
	if err := labels.SaveLabelMap(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadLabelMap(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != len(labels) {
		t.Fatalf("expected %d labels, got %d", len(labels), len(loaded))
	}
	for id, tag := range labels {
		if loaded[id] != tag {
			t.Fatalf("label %d: expected %q, got %q", id, tag, loaded[id])
		}
	}
}

func TestLabelMap_Tag(t *testing.T) {
	labels := LabelMap{0: "B-Dataset"}
	if got := labels.Tag(0); got != "B-Dataset" {
		t.Fatalf("expected B-Dataset, got %q", got)
	}
	if got := labels.Tag(99); got != "O" {
		t.Fatalf("expected outside tag for unknown id, got %q", got)
	}
}

func TestLoadLabelMap_Missing(t *testing.T) {
	if _, err := LoadLabelMap(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
