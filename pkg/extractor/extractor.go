package extractor

import (
	"context"
	"strings"
)

// EntityType classifies an extracted research-paper entity.
type EntityType string

const (
	TypeMethodology EntityType = "Methodology"
	TypeDataset     EntityType = "Dataset"
	TypeKeyFinding  EntityType = "Key_Finding"
	TypeToolLibrary EntityType = "Tool_Library"
)

// ValidEntityType reports whether t is one of the tracked entity types.
func ValidEntityType(t EntityType) bool {
	switch t {
	case TypeMethodology, TypeDataset, TypeKeyFinding, TypeToolLibrary:
		return true
	default:
		return false
	}
}

// TokenEntity is one row of token-classification output. Entity is an IOB tag
// combined with a type suffix, e.g. "B-Methodology" or "I-Dataset".
type TokenEntity struct {
	Word   string `json:"word"`
	Entity string `json:"entity"`
}

// Mention is a normalized, de-duplicated entity mention.
type Mention struct {
	Key         string
	DisplayName string
	Type        EntityType
}

// Client defines the entity-extractor collaborator. Implementations run NER
// over the text and return raw token-classification rows.
type Client interface {
	Extract(ctx context.Context, text string) ([]TokenEntity, error)
}

// TagType extracts the entity type from an IOB tag ("B-Methodology" ->
// "Methodology"). The plain outside tag "O" yields an empty type.
func TagType(tag string) EntityType {
	if tag == "" || tag == "O" {
		return ""
	}
	if idx := strings.LastIndex(tag, "-"); idx != -1 {
		return EntityType(tag[idx+1:])
	}
	return EntityType(tag)
}

// Mentions converts raw extraction rows into normalized mentions, discarding
// rows with untracked types and keys that normalize to two characters or
// fewer. Duplicate keys collapse onto the first occurrence, preserving
// first-seen order.
func Mentions(rows []TokenEntity) []Mention {
	seen := make(map[string]struct{}, len(rows))
	mentions := make([]Mention, 0, len(rows))

	for _, row := range rows {
		entityType := TagType(row.Entity)
		if !ValidEntityType(entityType) {
			continue
		}

		key := NormalizeKey(row.Word)
		if len(key) <= 2 {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		mentions = append(mentions, Mention{
			Key:         key,
			DisplayName: strings.TrimSpace(row.Word),
			Type:        entityType,
		})
	}

	return mentions
}

// Keys returns the mention keys in order.
func Keys(mentions []Mention) []string {
	keys := make([]string, len(mentions))
	for i, m := range mentions {
		keys[i] = m.Key
	}
	return keys
}
