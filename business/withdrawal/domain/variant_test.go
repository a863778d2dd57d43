package domain

import (
	"errors"
	"testing"
)

func TestParseVariant(t *testing.T) {
	for _, v := range All() {
		got, err := ParseVariant(v.String())
		if err != nil {
			t.Errorf("ParseVariant(%q): %v", v, err)
		}
		if got != v {
			t.Errorf("ParseVariant(%q) = %q", v, got)
		}
	}
}

func TestParseVariant_Unknown(t *testing.T) {
	for _, id := range []string{"", "Direct", "teleport"} {
		if _, err := ParseVariant(id); !errors.Is(err, ErrUnknownVariant) {
			t.Errorf("ParseVariant(%q): err = %v, want ErrUnknownVariant", id, err)
		}
	}
}
