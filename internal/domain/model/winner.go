package model

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Winner tags a bout outcome relative to its corners.
type Winner string

// Winner tags. WinnerUnknown serializes as null.
const (
	WinnerUnknown Winner = ""
	WinnerRed     Winner = "red"
	WinnerBlue    Winner = "blue"
	WinnerDraw    Winner = "draw"
	WinnerNC      Winner = "nc"
)

// Valid reports whether w is one of the known tags.
func (w Winner) Valid() bool {
	switch w {
	case WinnerUnknown, WinnerRed, WinnerBlue, WinnerDraw, WinnerNC:
		return true
	}
	return false
}

// Won reports whether the given corner won.
func (w Winner) Won(c Corner) bool {
	return (w == WinnerRed && c == CornerRed) || (w == WinnerBlue && c == CornerBlue)
}

// Decisive reports whether one corner won.
func (w Winner) Decisive() bool { return w == WinnerRed || w == WinnerBlue }

// MarshalJSON writes null for an unknown winner.
func (w Winner) MarshalJSON() ([]byte, error) {
	if w == WinnerUnknown {
		return []byte("null"), nil
	}
	return json.Marshal(string(w))
}

// UnmarshalJSON accepts null or a known tag.
func (w *Winner) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*w = WinnerUnknown
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v := Winner(s)
	if !v.Valid() {
		return fmt.Errorf("unknown winner tag %q", s)
	}
	*w = v
	return nil
}
