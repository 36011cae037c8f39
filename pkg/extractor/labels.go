package extractor

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// LabelMap maps integer label ids to IOB tag strings. It mirrors the
// labels.json artifact written by the NER training pipeline.
type LabelMap map[int]string

// LoadLabelMap reads a label map artifact from path. The file is a JSON
// object of string-encoded integer ids to tag strings.
func LoadLabelMap(path string) (LabelMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var byString map[string]string
	if err := json.Unmarshal(raw, &byString); err != nil {
		return nil, fmt.Errorf("failed to parse label map: %w", err)
	}

	labels := make(LabelMap, len(byString))
	for id, tag := range byString {
		n, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("invalid label id %q: %w", id, err)
		}
		labels[n] = tag
	}
	return labels, nil
}

// SaveLabelMap writes the label map artifact to path.
func (l LabelMap) SaveLabelMap(path string) error {
	byString := make(map[string]string, len(l))
	for id, tag := range l {
		byString[strconv.Itoa(id)] = tag
	}

	raw, err := json.MarshalIndent(byString, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// Tag resolves a label id to its IOB tag, defaulting to the outside tag for
// unknown ids.
func (l LabelMap) Tag(id int) string {
	if tag, ok := l[id]; ok {
		return tag
	}
	return "O"
}
