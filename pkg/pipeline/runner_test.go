package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/fustilio/glost/pkg/doctree"
	"github.com/fustilio/glost/pkg/errors"
	"github.com/fustilio/glost/pkg/extension"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func testDoc() *doctree.Node {
	return doctree.NewRoot(
		doctree.NewParagraph(
			doctree.NewSentence(
				doctree.NewWord("hello"),
				doctree.NewWhitespace(" "),
				doctree.NewWord("world"),
			),
		),
	)
}

// enhancer builds an extension whose enhancer writes {id: {seen: true}}
// on every word.
func enhancer(id string, deps ...string) *extension.Extension {
	return &extension.Extension{
		ID:           id,
		Dependencies: deps,
		Provides:     &extension.Contract{Extras: []string{id}},
		Enhance: func(ctx context.Context, word *doctree.Node) (map[string]any, error) {
			return map[string]any{id: map[string]any{"seen": true}}, nil
		},
	}
}

// failing builds an extension whose enhancer always fails.
func failing(id string, deps ...string) *extension.Extension {
	e := enhancer(id, deps...)
	e.Enhance = func(ctx context.Context, word *doctree.Node) (map[string]any, error) {
		return nil, errors.New(errors.ErrCodeExtensionFailed, "%s broke", id)
	}
	return e
}

func newTestRegistry(t *testing.T, exts ...*extension.Extension) *extension.Registry {
	t.Helper()
	r := extension.NewRegistry()
	for _, e := range exts {
		if err := r.Register(e); err != nil {
			t.Fatalf("Register(%s): %v", e.ID, err)
		}
	}
	return r
}

func TestExecuteAppliesInOrder(t *testing.T) {
	reg := newTestRegistry(t, enhancer("b", "a"), enhancer("a"))
	runner := NewRunner(reg, quietLogger())

	tree, report, err := runner.Execute(context.Background(), testDoc(), Options{})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(report.Applied) != 2 || report.Applied[0] != "a" || report.Applied[1] != "b" {
		t.Errorf("Applied = %v", report.Applied)
	}
	if report.RunID == "" {
		t.Error("report missing run id")
	}
	for _, w := range doctree.Words(tree) {
		if w.Node.Extra("a") == nil || w.Node.Extra("b") == nil {
			t.Errorf("word %q missing annotations: %v", w.Node.Text, w.Node.Extras)
		}
	}
}

func TestExecuteNilTree(t *testing.T) {
	runner := NewRunner(newTestRegistry(t, enhancer("a")), quietLogger())
	_, report, err := runner.Execute(context.Background(), nil, Options{})
	if errors.GetCode(err) != errors.ErrCodeInvalidDocument {
		t.Errorf("nil tree: got %v", err)
	}
	if report == nil {
		t.Error("report must be non-nil even on failure")
	}
}

func TestExecuteResolutionFailureAbortsBeforeMutation(t *testing.T) {
	reg := newTestRegistry(t, enhancer("a", "b"), enhancer("b", "a"))
	runner := NewRunner(reg, quietLogger())

	doc := testDoc()
	tree, report, err := runner.Execute(context.Background(), doc, Options{})
	if errors.GetCode(err) != errors.ErrCodeCycle {
		t.Fatalf("expected cycle error, got %v", err)
	}
	if tree != doc {
		t.Error("input tree should be returned untouched")
	}
	for _, w := range doctree.Words(tree) {
		if len(w.Node.Extras) != 0 {
			t.Error("tree mutated despite resolution failure")
		}
	}
	if len(report.Applied) != 0 || len(report.Errors) != 1 {
		t.Errorf("report = applied %v errors %v", report.Applied, report.Errors)
	}
}

func TestExecuteStrictShortCircuit(t *testing.T) {
	var ran atomic.Int32
	after := enhancer("after")
	inner := after.Enhance
	after.Enhance = func(ctx context.Context, w *doctree.Node) (map[string]any, error) {
		ran.Add(1)
		return inner(ctx, w)
	}
	reg := newTestRegistry(t, enhancer("ok"), failing("bad"), after)
	runner := NewRunner(reg, quietLogger())

	_, report, err := runner.Execute(context.Background(), testDoc(), Options{Policy: PolicyStrict})
	if errors.GetCode(err) != errors.ErrCodeExtensionFailed {
		t.Fatalf("expected failure error, got %v", err)
	}
	if !report.WasApplied("ok") {
		t.Error("extension before the failure should be applied")
	}
	if len(report.Errors) != 1 || report.Errors[0].ID != "bad" {
		t.Errorf("Errors = %v, want exactly the failing extension", report.Errors)
	}
	if ran.Load() != 0 {
		t.Error("extension after the failure must not execute under strict")
	}
}

func TestExecuteLenientContinues(t *testing.T) {
	reg := newTestRegistry(t, failing("bad"), enhancer("ok"))
	runner := NewRunner(reg, quietLogger())

	tree, report, err := runner.Execute(context.Background(), testDoc(), Options{Policy: PolicyLenient})
	if err != nil {
		t.Fatalf("lenient run should not return an error: %v", err)
	}
	if !report.WasApplied("ok") {
		t.Error("independent extension should still run")
	}
	if !report.WasSkipped("bad") || len(report.Errors) != 1 {
		t.Errorf("failure not recorded: skipped %v errors %v", report.Skipped, report.Errors)
	}
	for _, w := range doctree.Words(tree) {
		if w.Node.Extra("ok") == nil {
			t.Error("surviving extension's annotations missing")
		}
	}
}

func TestExecuteLenientCascade(t *testing.T) {
	var ran atomic.Int32
	dep := enhancer("dependent", "bad")
	dep.Enhance = func(ctx context.Context, w *doctree.Node) (map[string]any, error) {
		ran.Add(1)
		return nil, nil
	}
	reg := newTestRegistry(t, failing("bad"), dep, enhancer("unrelated"))
	runner := NewRunner(reg, quietLogger())

	_, report, err := runner.Execute(context.Background(), testDoc(), Options{})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if ran.Load() != 0 {
		t.Error("dependent of a failed extension must not execute")
	}
	if !report.WasSkipped("dependent") {
		t.Error("cascade skip not recorded")
	}
	if !report.WasApplied("unrelated") {
		t.Error("unrelated extension should still run")
	}
	// Exactly one error: the cascade is a skip, not a failure.
	if len(report.Errors) != 1 {
		t.Errorf("Errors = %v", report.Errors)
	}
}

func TestExecutePanicRecovery(t *testing.T) {
	e := enhancer("panicky")
	e.Enhance = func(ctx context.Context, w *doctree.Node) (map[string]any, error) {
		panic("boom")
	}
	reg := newTestRegistry(t, e, enhancer("ok"))
	runner := NewRunner(reg, quietLogger())

	_, report, err := runner.Execute(context.Background(), testDoc(), Options{})
	if err != nil {
		t.Fatalf("lenient run should absorb the panic: %v", err)
	}
	if len(report.Errors) != 1 || report.Errors[0].ID != "panicky" {
		t.Fatalf("Errors = %v", report.Errors)
	}
	if !report.WasApplied("ok") {
		t.Error("pipeline should continue after a recovered panic")
	}
}

func TestExecuteTransformPanicStrict(t *testing.T) {
	e := &extension.Extension{
		ID: "panicky-transform",
		Transform: func(ctx context.Context, tree *doctree.Node) (*doctree.Node, error) {
			panic("boom")
		},
	}
	reg := newTestRegistry(t, e)
	runner := NewRunner(reg, quietLogger())

	_, _, err := runner.Execute(context.Background(), testDoc(), Options{Policy: PolicyStrict})
	if errors.GetCode(err) != errors.ErrCodeExtensionFailed {
		t.Errorf("transform panic: got %v", err)
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reg := newTestRegistry(t, enhancer("a"))
	runner := NewRunner(reg, quietLogger())
	_, _, err := runner.Execute(ctx, testDoc(), Options{})
	if errors.GetCode(err) != errors.ErrCodeTimeout {
		t.Errorf("cancelled ctx: got %v", err)
	}
}

func TestExecuteConflictWarnings(t *testing.T) {
	a := enhancer("a")
	b := enhancer("b")
	b.Provides = &extension.Contract{Extras: []string{"a"}} // same field as a
	reg := newTestRegistry(t, a, b)
	runner := NewRunner(reg, quietLogger())

	_, report, err := runner.Execute(context.Background(), testDoc(), Options{})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("Warnings = %v", report.Warnings)
	}
	if report.Warnings[0].Severity != extension.SeverityWarning {
		t.Errorf("warning severity = %s", report.Warnings[0].Severity)
	}
	// Warnings are advisory: both extensions still run.
	if len(report.Applied) != 2 {
		t.Errorf("Applied = %v", report.Applied)
	}
}

func TestExecuteTiming(t *testing.T) {
	reg := newTestRegistry(t, enhancer("a"))
	runner := NewRunner(reg, quietLogger())

	_, report, err := runner.Execute(context.Background(), testDoc(), Options{Timing: true})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if _, ok := report.Timings["a"]; !ok {
		t.Error("timing not recorded")
	}

	_, report, err = runner.Execute(context.Background(), testDoc(), Options{})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if report.Timings != nil {
		t.Error("timings recorded without Options.Timing")
	}
}

func TestExecuteEnhanceFirstErrorDeterministic(t *testing.T) {
	// Both words fail, workers run concurrently; the reported node must
	// always be the first word in traversal order.
	e := &extension.Extension{
		ID: "flaky",
		Enhance: func(ctx context.Context, w *doctree.Node) (map[string]any, error) {
			return nil, errors.New(errors.ErrCodeExtensionFailed, "no data for %q", w.Text)
		},
	}
	reg := newTestRegistry(t, e)
	runner := NewRunner(reg, quietLogger())

	for i := 0; i < 10; i++ {
		_, report, err := runner.Execute(context.Background(), testDoc(),
			Options{Policy: PolicyStrict, EnhanceWorkers: 8})
		if err == nil {
			t.Fatal("expected failure")
		}
		if report.Errors[0].NodePath != "/0/0/0" {
			t.Fatalf("iteration %d: reported node %s, want /0/0/0", i, report.Errors[0].NodePath)
		}
	}
}

func TestExecutePartialEnhanceMergesSuccesses(t *testing.T) {
	// One word fails, the other succeeds; under lenient the successful
	// partial is still merged.
	e := &extension.Extension{
		ID:       "partial",
		Provides: &extension.Contract{Extras: []string{"partial"}},
		Enhance: func(ctx context.Context, w *doctree.Node) (map[string]any, error) {
			if w.Text == "hello" {
				return nil, errors.New(errors.ErrCodeNotFound, "no entry for %q", w.Text)
			}
			return map[string]any{"partial": map[string]any{"ok": true}}, nil
		},
	}
	reg := newTestRegistry(t, e)
	runner := NewRunner(reg, quietLogger())

	tree, report, err := runner.Execute(context.Background(), testDoc(), Options{})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	words := doctree.Words(tree)
	if words[0].Node.Extra("partial") != nil {
		t.Error("failed word should have no annotation")
	}
	if words[1].Node.Extra("partial") == nil {
		t.Error("successful word's partial should be merged")
	}
	if len(report.Errors) != 1 || report.Errors[0].NodePath != "/0/0/0" {
		t.Errorf("Errors = %v", report.Errors)
	}
}

func TestExecuteVisitorFailureNamesNode(t *testing.T) {
	e := &extension.Extension{
		ID: "sentence-check",
		Visitors: map[doctree.Kind]extension.VisitFunc{
			doctree.KindSentence: func(ctx context.Context, n *doctree.Node) error {
				return fmt.Errorf("sentence rejected")
			},
		},
	}
	reg := newTestRegistry(t, e)
	runner := NewRunner(reg, quietLogger())

	_, report, err := runner.Execute(context.Background(), testDoc(), Options{Policy: PolicyStrict})
	if err == nil {
		t.Fatal("expected failure")
	}
	if report.Errors[0].NodePath != "/0/0" {
		t.Errorf("NodePath = %s, want /0/0", report.Errors[0].NodePath)
	}
}

func TestExecuteTransformReplacesTree(t *testing.T) {
	e := &extension.Extension{
		ID: "replacer",
		Transform: func(ctx context.Context, tree *doctree.Node) (*doctree.Node, error) {
			return doctree.NewRoot(doctree.NewParagraph(doctree.NewSentence(doctree.NewWord("new")))), nil
		},
	}
	reg := newTestRegistry(t, e)
	runner := NewRunner(reg, quietLogger())

	tree, _, err := runner.Execute(context.Background(), testDoc(), Options{})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	words := doctree.Words(tree)
	if len(words) != 1 || words[0].Node.Text != "new" {
		t.Errorf("transform replacement not used: %v", words)
	}
}

func TestExecuteUsesRunnerLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	runner := NewRunner(newTestRegistry(t, enhancer("a")), logger)

	_, _, err := runner.Execute(context.Background(), testDoc(), Options{})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	out := buf.String()
	if out == "" {
		t.Fatal("runner logger received no output")
	}
	if !strings.Contains(out, "run complete") {
		t.Errorf("run summary not logged:\n%s", out)
	}
}

func TestExecuteOptionsLoggerOverridesRunner(t *testing.T) {
	var runnerBuf, optsBuf bytes.Buffer
	runner := NewRunner(newTestRegistry(t, enhancer("a")),
		log.NewWithOptions(&runnerBuf, log.Options{Level: log.DebugLevel}))

	opts := Options{Logger: log.NewWithOptions(&optsBuf, log.Options{Level: log.DebugLevel})}
	if _, _, err := runner.Execute(context.Background(), testDoc(), opts); err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if runnerBuf.Len() != 0 {
		t.Errorf("runner logger used despite per-run override:\n%s", runnerBuf.String())
	}
	if optsBuf.Len() == 0 {
		t.Error("per-run logger received no output")
	}
}
