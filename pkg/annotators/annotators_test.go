package annotators

import (
	"context"
	"testing"

	"github.com/fustilio/glost/pkg/doctree"
	"github.com/fustilio/glost/pkg/errors"
	"github.com/fustilio/glost/pkg/extension"
	"github.com/fustilio/glost/pkg/pipeline"
	"github.com/fustilio/glost/pkg/provider"
)

func helloDoc() *doctree.Node {
	return doctree.NewRoot(
		doctree.NewParagraph(
			doctree.NewSentence(
				doctree.NewWord("Hello"),
				doctree.NewPunctuation(","),
				doctree.NewWhitespace(" "),
				doctree.NewWord("world"),
			),
		),
	)
}

func testDict() provider.Provider {
	return provider.NewStaticDict("test-dict", map[string]map[string]any{
		"hello": {"ipa": "/həˈloʊ/"},
		"world": {"ipa": "/wɜːld/"},
	})
}

func firstWord(tree *doctree.Node) *doctree.Node {
	return doctree.Words(tree)[0].Node
}

// =============================================================================
// Transcription + Respelling scenarios
// =============================================================================

func TestTranscriptionThenRespelling(t *testing.T) {
	reg := extension.NewRegistry()
	reg.MustRegister(Transcription(testDict()))
	reg.MustRegister(Respelling())
	runner := pipeline.NewRunner(reg, nil)

	tree, report, err := runner.Execute(context.Background(), helloDoc(), pipeline.Options{})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(report.Applied) != 2 {
		t.Fatalf("Applied = %v", report.Applied)
	}

	hello := firstWord(tree)
	tr := hello.Extra("transcription").(map[string]any)
	if tr["ipa"] != "/həˈloʊ/" {
		t.Errorf("transcription.ipa = %v", tr["ipa"])
	}
	if rec, ok := hello.Transcription("ipa"); !ok || rec.Value != "/həˈloʊ/" || rec.Source != "test-dict" {
		t.Errorf("transcriptions map = %+v ok=%v", rec, ok)
	}
	rs := hello.Extra("respelling").(map[string]any)
	if rs["text"] != "huh-LOH" {
		t.Errorf("respelling.text = %v, want huh-LOH", rs["text"])
	}
	if rs["scheme"] != "en-respell" {
		t.Errorf("respelling.scheme = %v", rs["scheme"])
	}

	world := doctree.Words(tree)[1].Node
	if rs := world.Extra("respelling").(map[string]any); rs["text"] != "wurld" {
		t.Errorf("world respelling = %v", rs["text"])
	}
}

func TestTranscriptionSkipsUnknownWords(t *testing.T) {
	dict := provider.NewStaticDict("tiny", map[string]map[string]any{
		"hello": {"ipa": "/həˈloʊ/"},
	})
	reg := extension.NewRegistry()
	reg.MustRegister(Transcription(dict))
	runner := pipeline.NewRunner(reg, nil)

	tree, report, err := runner.Execute(context.Background(), helloDoc(), pipeline.Options{})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if !report.WasApplied(TranscriptionID) {
		t.Error("absent entries must not fail the extension")
	}
	world := doctree.Words(tree)[1].Node
	if world.Extra("transcription") != nil {
		t.Error("unknown word should have no transcription")
	}
	if _, ok := world.Transcription("ipa"); ok {
		t.Error("unknown word should have no transcriptions entry")
	}
}

func TestExplicitDependencyFlipsRegistrationOrder(t *testing.T) {
	// Respelling registered first but declaring a dependency; resolution
	// must still run transcription before it.
	resp := Respelling()
	resp.Dependencies = []string{TranscriptionID}

	reg := extension.NewRegistry()
	reg.MustRegister(resp)
	reg.MustRegister(Transcription(testDict()))
	runner := pipeline.NewRunner(reg, nil)

	doc := doctree.NewRoot(doctree.NewParagraph(doctree.NewSentence(doctree.NewWord("hello"))))
	tree, report, err := runner.Execute(context.Background(), doc, pipeline.Options{})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if report.Applied[0] != TranscriptionID || report.Applied[1] != RespellingID {
		t.Errorf("Applied = %v", report.Applied)
	}
	if firstWord(tree).Extra("respelling") == nil {
		t.Error("respelling missing despite satisfied dependency")
	}
}

func TestRespellingAloneStrict(t *testing.T) {
	reg := extension.NewRegistry()
	reg.MustRegister(Respelling())
	runner := pipeline.NewRunner(reg, nil)

	doc := helloDoc()
	tree, report, err := runner.Execute(context.Background(), doc,
		pipeline.Options{Policy: pipeline.PolicyStrict})
	if !errors.IsMissingDependency(err) {
		t.Fatalf("expected missing dependency error, got %v", err)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("Errors = %v, want exactly one", report.Errors)
	}
	if report.Errors[0].ID != RespellingID || report.Errors[0].NodePath != "/0/0/0" {
		t.Errorf("failure = %+v", report.Errors[0])
	}
	if firstWord(tree).Extra("respelling") != nil {
		t.Error("failed extension must not leave annotations")
	}
}

func TestRespellingAloneLenient(t *testing.T) {
	reg := extension.NewRegistry()
	reg.MustRegister(Respelling())
	runner := pipeline.NewRunner(reg, nil)

	tree, report, err := runner.Execute(context.Background(), helloDoc(), pipeline.Options{})
	if err != nil {
		t.Fatalf("lenient run should complete: %v", err)
	}
	if !report.WasSkipped(RespellingID) || len(report.Errors) != 1 {
		t.Errorf("skip/error not recorded: %+v", report)
	}
	for _, w := range doctree.Words(tree) {
		if len(w.Node.Extras) != 0 {
			t.Error("tree should be unchanged when the only extension fails")
		}
	}
}

func TestRespellingFromPreTranscribedDocument(t *testing.T) {
	// A document that arrives with a transcriptions map but no extras
	// should still respell: the requires contract is about data, not
	// about which extension produced it.
	word := doctree.NewWord("hello")
	word.SetTranscription(doctree.Transcription{Scheme: "ipa", Value: "/həˈloʊ/"})
	doc := doctree.NewRoot(doctree.NewParagraph(doctree.NewSentence(word)))

	reg := extension.NewRegistry()
	reg.MustRegister(Respelling())
	runner := pipeline.NewRunner(reg, nil)

	tree, _, err := runner.Execute(context.Background(), doc, pipeline.Options{})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	rs, ok := firstWord(tree).Extra("respelling").(map[string]any)
	if !ok || rs["text"] != "huh-LOH" {
		t.Errorf("respelling = %v", firstWord(tree).Extra("respelling"))
	}
}

// =============================================================================
// Frequency
// =============================================================================

func TestFrequency(t *testing.T) {
	freq := provider.NewStaticDict("freq", map[string]map[string]any{
		"world": {"rank": 412, "per_million": 310.5},
	})
	reg := extension.NewRegistry()
	reg.MustRegister(Frequency(freq))
	runner := pipeline.NewRunner(reg, nil)

	tree, _, err := runner.Execute(context.Background(), helloDoc(), pipeline.Options{})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	words := doctree.Words(tree)
	if words[0].Node.Extra("frequency") != nil {
		t.Error("word without an entry should stay unannotated")
	}
	entry := words[1].Node.Extra("frequency").(map[string]any)
	if entry["rank"] != 412 || entry["per_million"] != 310.5 {
		t.Errorf("frequency entry = %v", entry)
	}
}

// =============================================================================
// Normalize
// =============================================================================

func TestNormalize(t *testing.T) {
	doc := doctree.NewRoot(
		doctree.NewParagraph(
			doctree.NewSentence(
				doctree.NewWord("a"),
				doctree.NewWhitespace(" "),
				doctree.NewWhitespace(" "),
				doctree.NewText(""),
				doctree.NewWord("b"),
			),
		),
	)

	reg := extension.NewRegistry()
	reg.MustRegister(Normalize())
	runner := pipeline.NewRunner(reg, nil)

	tree, _, err := runner.Execute(context.Background(), doc, pipeline.Options{})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	sentence := tree.Children[0].Children[0]
	if len(sentence.Children) != 3 {
		t.Fatalf("sentence has %d children after normalize, want 3", len(sentence.Children))
	}
	kinds := []doctree.Kind{doctree.KindWord, doctree.KindWhitespace, doctree.KindWord}
	for i, k := range kinds {
		if sentence.Children[i].Kind != k {
			t.Errorf("child %d kind = %s, want %s", i, sentence.Children[i].Kind, k)
		}
	}
}

// =============================================================================
// Stats
// =============================================================================

func TestStats(t *testing.T) {
	doc := doctree.NewRoot(
		doctree.NewParagraph(
			doctree.NewSentence(doctree.NewWord("a"), doctree.NewWord("b")),
			doctree.NewSentence(doctree.NewWord("c")),
		),
	)

	reg := extension.NewRegistry()
	reg.MustRegister(Stats())
	runner := pipeline.NewRunner(reg, nil)

	tree, _, err := runner.Execute(context.Background(), doc, pipeline.Options{})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	rootStats := tree.Extra("stats").(map[string]any)
	if rootStats["words"] != 3 || rootStats["sentences"] != 2 || rootStats["paragraphs"] != 1 {
		t.Errorf("root stats = %v", rootStats)
	}
	para := tree.Children[0]
	paraStats := para.Extra("stats").(map[string]any)
	if paraStats["words"] != 3 || paraStats["sentences"] != 2 {
		t.Errorf("paragraph stats = %v", paraStats)
	}
	sentStats := para.Children[0].Extra("stats").(map[string]any)
	if sentStats["words"] != 2 {
		t.Errorf("sentence stats = %v", sentStats)
	}
}

// =============================================================================
// Default registry
// =============================================================================

func TestDefaultRegistry(t *testing.T) {
	reg := Default(testDict(), provider.NewStaticDict("freq", nil))
	want := []string{NormalizeID, TranscriptionID, RespellingID, FrequencyID, StatsID}
	got := reg.IDs()
	if len(got) != len(want) {
		t.Fatalf("IDs = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("id %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDefaultRegistryNilProviders(t *testing.T) {
	reg := Default(nil, nil)
	if reg.Has(TranscriptionID) || reg.Has(FrequencyID) {
		t.Error("provider-backed extensions registered without providers")
	}
	if !reg.Has(NormalizeID) || !reg.Has(StatsID) {
		t.Error("provider-free extensions missing")
	}
}
