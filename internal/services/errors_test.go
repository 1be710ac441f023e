package services_test

import (
	"errors"
	"strings"
	"testing"

	"coverkeep/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "gather", "download", "fetch failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"gather", "download", "fetch failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	validationErr := services.Wrap(services.ErrValidation, "promote", "metadata", "author required", nil)
	if got := services.Classify(validationErr); got != services.OutcomeSkipped {
		t.Fatalf("expected skipped for validation error, got %s", got)
	}

	missing := services.Wrap(services.ErrNotFound, "shelve", "find image", "no catalog image", nil)
	if got := services.Classify(missing); got != services.OutcomeSkipped {
		t.Fatalf("expected skipped for missing input, got %s", got)
	}

	transientErr := services.Wrap(services.ErrTransient, "promote", "move", "rename failed", errors.New("io"))
	if got := services.Classify(transientErr); got != services.OutcomeFailed {
		t.Fatalf("expected failed for transient error, got %s", got)
	}

	if got := services.Classify(nil); got != services.OutcomeFailed {
		t.Fatalf("expected failed for nil error, got %s", got)
	}
}
