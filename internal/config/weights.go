package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceWeight is one entry of the ranking weight table.
type SourceWeight struct {
	Key    string
	Weight float64
}

// SourceWeights is the ranking weight table in declared order.
//
// Ranking matches a source label against the table by substring, scanning in
// the order the keys appear in the YAML file; the first match wins. A plain
// map would make that lookup order random between runs, so the table decodes
// into an ordered slice instead.
type SourceWeights []SourceWeight

// UnmarshalYAML decodes a YAML mapping while preserving key order.
func (w *SourceWeights) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("source_weights: expected a mapping, got %v", value.Tag)
	}

	weights := make(SourceWeights, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode, valNode := value.Content[i], value.Content[i+1]

		var weight float64
		if err := valNode.Decode(&weight); err != nil {
			return fmt.Errorf("source_weights[%s]: %w", keyNode.Value, err)
		}
		weights = append(weights, SourceWeight{
			Key:    strings.ToLower(strings.TrimSpace(keyNode.Value)),
			Weight: weight,
		})
	}

	*w = weights
	return nil
}

// Get returns the weight for an exact key and whether it was present.
func (w SourceWeights) Get(key string) (float64, bool) {
	for _, sw := range w {
		if sw.Key == key {
			return sw.Weight, true
		}
	}
	return 0, false
}
