package render

import "errors"

var (
	// ErrRender wraps failures reported by the PDF layout engine.
	ErrRender = errors.New("render failed")
	// ErrUnknownStyle is returned by StyleByName for an unrecognised preset.
	ErrUnknownStyle = errors.New("unknown style")
	// ErrFontMissing is returned by LoadFonts when a required face is absent.
	ErrFontMissing = errors.New("font file missing")
)
