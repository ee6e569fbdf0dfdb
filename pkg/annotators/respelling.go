package annotators

import (
	"context"

	"github.com/fustilio/glost/pkg/doctree"
	"github.com/fustilio/glost/pkg/errors"
	"github.com/fustilio/glost/pkg/extension"
)

// RespellingID is the id of the respelling extension.
const RespellingID = "respelling"

// Respelling builds the extension that derives an English pronunciation
// respelling ("huh-LOH") from a word's IPA transcription and writes it
// under extras.respelling.
//
// The extension requires extras.transcription but deliberately declares
// no dependency on the transcription extension's id: the transcription
// may equally come from the input document itself. When a word has
// neither, the enhancer raises a missing-dependency failure.
func Respelling() *extension.Extension {
	return &extension.Extension{
		ID:   RespellingID,
		Name: "Pronunciation Respelling",
		Requires: &extension.Contract{
			Extras: []string{"transcription"},
		},
		Provides: &extension.Contract{
			Extras: []string{"respelling"},
		},
		Enhance: func(ctx context.Context, word *doctree.Node) (map[string]any, error) {
			ipa := transcriptionOf(word)
			if ipa == "" {
				return nil, errors.MissingDependency("extras.transcription")
			}
			return map[string]any{
				"respelling": map[string]any{
					"text":   RespellIPA(ipa),
					"scheme": "en-respell",
				},
			}, nil
		},
	}
}

// transcriptionOf reads a word's IPA rendering from extras.transcription
// first, falling back to the transcriptions map for documents that
// arrive pre-transcribed.
func transcriptionOf(word *doctree.Node) string {
	if t, ok := word.Extra("transcription").(map[string]any); ok {
		if ipa, ok := t["ipa"].(string); ok && ipa != "" {
			return ipa
		}
	}
	if t, ok := word.Transcription("ipa"); ok {
		return t.Value
	}
	return ""
}
