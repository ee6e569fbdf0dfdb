package annotators

import (
	"context"
	"strings"

	"github.com/fustilio/glost/pkg/doctree"
	"github.com/fustilio/glost/pkg/errors"
	"github.com/fustilio/glost/pkg/extension"
	"github.com/fustilio/glost/pkg/provider"
)

// TranscriptionID is the id of the transcription extension. Dependents
// reference it in their Dependencies list.
const TranscriptionID = "transcription"

// Transcription builds the extension that looks up each word's IPA
// transcription in the given provider and records it both in the word's
// transcriptions map (scheme "ipa") and under extras.transcription.
//
// Words the provider does not know are left untouched; an absent
// dictionary entry is not a failure.
func Transcription(dict provider.Provider) *extension.Extension {
	return &extension.Extension{
		ID:   TranscriptionID,
		Name: "IPA Transcription",
		Provides: &extension.Contract{
			Extras:   []string{"transcription"},
			Metadata: []string{"ipa"},
		},
		Enhance: func(ctx context.Context, word *doctree.Node) (map[string]any, error) {
			data, found, err := dict.GetData(ctx, strings.ToLower(word.Text))
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeNetwork, err,
					"transcription lookup for %q failed", word.Text)
			}
			if !found {
				return nil, nil
			}
			ipa, _ := data["ipa"].(string)
			if ipa == "" {
				return nil, nil
			}
			word.SetTranscription(doctree.Transcription{
				Scheme: "ipa",
				Value:  ipa,
				Source: dict.Name(),
			})
			return map[string]any{
				"transcription": map[string]any{
					"ipa":    ipa,
					"scheme": "ipa",
				},
			}, nil
		},
	}
}
