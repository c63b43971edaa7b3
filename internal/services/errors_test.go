package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	inner := errors.New("exit status 1")
	err := Wrap(ErrExternalTool, "conversion", "invoke engine", "omr failed", inner)
	if !errors.Is(err, ErrExternalTool) {
		t.Error("wrapped error should match its marker")
	}
	if !errors.Is(err, inner) {
		t.Error("wrapped error should preserve the cause chain")
	}
	for _, fragment := range []string{"conversion", "invoke engine", "omr failed"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error message missing %q: %v", fragment, err)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := Wrap(nil, "render", "", "", nil)
	if !errors.Is(err, ErrExternalTool) {
		t.Error("nil marker should default to ErrExternalTool")
	}
}

func TestDegradable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{Wrap(ErrUnavailable, "conversion", "", "binary missing", nil), true},
		{Wrap(ErrTimeout, "render", "", "", nil), true},
		{Wrap(ErrExternalTool, "render", "", "", errors.New("exit status 2")), true},
		{Wrap(ErrWorkspace, "ingest", "", "", nil), false},
		{Wrap(ErrValidation, "ingest", "", "", nil), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := Degradable(tc.err); got != tc.want {
			t.Errorf("Degradable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
