package pipeline

import (
	"testing"

	"github.com/fustilio/glost/pkg/errors"
)

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults error: %v", err)
	}
	if opts.Policy != PolicyLenient {
		t.Errorf("default policy = %s, want lenient", opts.Policy)
	}
	if opts.EnhanceWorkers != DefaultEnhanceWorkers {
		t.Errorf("default workers = %d, want %d", opts.EnhanceWorkers, DefaultEnhanceWorkers)
	}
	if opts.Logger != nil {
		t.Error("defaults should leave Logger nil so the Runner's logger applies")
	}
	if opts.IsStrict() {
		t.Error("lenient options report strict")
	}
}

func TestOptionsIdempotent(t *testing.T) {
	opts := Options{EnhanceWorkers: 3}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("first validate: %v", err)
	}
	opts.EnhanceWorkers = 0 // would be re-defaulted if validation re-ran
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second validate: %v", err)
	}
	if opts.EnhanceWorkers != 0 {
		t.Error("second ValidateAndSetDefaults re-applied defaults")
	}
}

func TestOptionsInvalidPolicy(t *testing.T) {
	opts := Options{Policy: "permissive"}
	err := opts.ValidateAndSetDefaults()
	if errors.GetCode(err) != errors.ErrCodeInvalidPolicy {
		t.Errorf("invalid policy: got %v", err)
	}
}

func TestValidatePolicy(t *testing.T) {
	if err := ValidatePolicy(PolicyStrict); err != nil {
		t.Errorf("strict should be valid: %v", err)
	}
	if err := ValidatePolicy(PolicyLenient); err != nil {
		t.Errorf("lenient should be valid: %v", err)
	}
	if err := ValidatePolicy(""); err == nil {
		t.Error("empty policy should be invalid")
	}
}

func TestReportQueries(t *testing.T) {
	r := &Report{
		Applied: []string{"a"},
		Skipped: []Skip{{ID: "b", Reason: "dependency a failed"}},
		Errors:  []Failure{{ID: "a", Message: "boom"}},
	}
	if !r.WasApplied("a") || r.WasApplied("b") {
		t.Error("WasApplied wrong")
	}
	if !r.WasSkipped("b") || r.WasSkipped("a") {
		t.Error("WasSkipped wrong")
	}
	if !r.Failed() {
		t.Error("Failed should be true")
	}
	if (&Report{}).Failed() {
		t.Error("empty report should not be failed")
	}
}
