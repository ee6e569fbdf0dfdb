package annotators

import (
	"context"
	"strings"

	"github.com/fustilio/glost/pkg/doctree"
	"github.com/fustilio/glost/pkg/errors"
	"github.com/fustilio/glost/pkg/extension"
	"github.com/fustilio/glost/pkg/provider"
)

// FrequencyID is the id of the frequency extension.
const FrequencyID = "frequency"

// Frequency builds the extension that annotates words with corpus
// frequency data under extras.frequency. Provider entries carry "rank"
// (int) and "per_million" (float); either may be absent.
func Frequency(freq provider.Provider) *extension.Extension {
	return &extension.Extension{
		ID:   FrequencyID,
		Name: "Word Frequency",
		Provides: &extension.Contract{
			Extras: []string{"frequency"},
		},
		Enhance: func(ctx context.Context, word *doctree.Node) (map[string]any, error) {
			data, found, err := freq.GetData(ctx, strings.ToLower(word.Text))
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeNetwork, err,
					"frequency lookup for %q failed", word.Text)
			}
			if !found {
				return nil, nil
			}
			entry := make(map[string]any, 2)
			if rank, ok := data["rank"]; ok {
				entry["rank"] = rank
			}
			if pm, ok := data["per_million"]; ok {
				entry["per_million"] = pm
			}
			if len(entry) == 0 {
				return nil, nil
			}
			return map[string]any{"frequency": entry}, nil
		},
	}
}
