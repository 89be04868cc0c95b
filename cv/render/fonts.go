package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"unicode"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// Face file names expected in a font directory.
const (
	fileSansRegular    = "NotoSans-Regular.ttf"
	fileSansBold       = "NotoSans-Bold.ttf"
	fileSansItalic     = "NotoSans-Italic.ttf"
	fileSansBoldItalic = "NotoSans-BoldItalic.ttf"
	fileMonoBold       = "NotoSansMono-Bold.ttf"
)

// DefaultFontDir is where Noto is installed on most Linux distributions.
const DefaultFontDir = "/usr/share/fonts/noto"

// FontSet holds the raw TrueType faces registered with every document. A nil
// *FontSet makes the renderer use the PDF core fonts.
type FontSet struct {
	Dir        string
	Regular    []byte
	Bold       []byte
	Italic     []byte
	BoldItalic []byte
	MonoBold   []byte

	parseOnce sync.Once
	parsed    []*sfnt.Font
}

// LoadFonts reads the Noto faces from dir. It is meant to run once at process
// start; the returned set is read-only and shared by all renderers.
func LoadFonts(dir string) (*FontSet, error) {
	if dir == "" {
		dir = DefaultFontDir
	}
	fs := &FontSet{Dir: dir}
	targets := []struct {
		name string
		dst  *[]byte
	}{
		{fileSansRegular, &fs.Regular},
		{fileSansBold, &fs.Bold},
		{fileSansItalic, &fs.Italic},
		{fileSansBoldItalic, &fs.BoldItalic},
		{fileMonoBold, &fs.MonoBold},
	}
	for _, t := range targets {
		b, err := os.ReadFile(filepath.Join(dir, t.name))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrFontMissing, filepath.Join(dir, t.name))
			}
			return nil, fmt.Errorf("read font %s: %w", t.name, err)
		}
		*t.dst = b
	}
	return fs, nil
}

// GoFonts returns the Go font family compiled into the binary. It covers
// Latin, Greek and Cyrillic and needs nothing on disk.
func GoFonts() *FontSet {
	return &FontSet{
		Regular:    goregular.TTF,
		Bold:       gobold.TTF,
		Italic:     goitalic.TTF,
		BoldItalic: gobolditalic.TTF,
		MonoBold:   gomonobold.TTF,
	}
}

// ResolveFonts picks the faces a long-running process should render with.
// An explicit dir must load. Otherwise Noto is used when installed at
// DefaultFontDir, and the embedded Go fonts when it is not.
func ResolveFonts(dir string) (*FontSet, error) {
	if dir != "" {
		return LoadFonts(dir)
	}
	fs, err := LoadFonts(DefaultFontDir)
	if err == nil {
		return fs, nil
	}
	if errors.Is(err, ErrFontMissing) {
		return GoFonts(), nil
	}
	return nil, err
}

// Source names where the faces came from, for logs.
func (fs *FontSet) Source() string {
	switch {
	case fs == nil:
		return "core"
	case fs.Dir == "":
		return "embedded"
	default:
		return fs.Dir
	}
}

// fontBinding maps the logical families onto what a document can draw with.
type fontBinding struct {
	sans      string
	mono      string
	translate func(string) string
}

func (b fontBinding) family(logical string) string {
	if logical == FamilyMono {
		return b.mono
	}
	return b.sans
}

// register installs fs into pdf and returns the binding to use. With no font
// set the core fonts are used and text is translated to cp1252.
func (fs *FontSet) register(pdf *fpdf.Fpdf) fontBinding {
	if fs == nil {
		return fontBinding{
			sans:      "Helvetica",
			mono:      "Courier",
			translate: pdf.UnicodeTranslatorFromDescriptor(""),
		}
	}
	// fpdf's TrueType parser appends into slices of the buffer it is given,
	// so every document gets its own copy.
	pdf.AddUTF8FontFromBytes("NotoSans", "", bytes.Clone(fs.Regular))
	pdf.AddUTF8FontFromBytes("NotoSans", "B", bytes.Clone(fs.Bold))
	pdf.AddUTF8FontFromBytes("NotoSans", "I", bytes.Clone(fs.Italic))
	pdf.AddUTF8FontFromBytes("NotoSans", "BI", bytes.Clone(fs.BoldItalic))
	// Only the bold mono face ships; the regular slot reuses it.
	pdf.AddUTF8FontFromBytes("NotoMono", "", bytes.Clone(fs.MonoBold))
	pdf.AddUTF8FontFromBytes("NotoMono", "B", bytes.Clone(fs.MonoBold))
	return fontBinding{
		sans:      "NotoSans",
		mono:      "NotoMono",
		translate: func(s string) string { return s },
	}
}

// coverage returns a predicate reporting whether r can be drawn in every
// face text may be set in.
func (fs *FontSet) coverage() func(rune) bool {
	if fs == nil {
		translate := fpdf.New("P", "mm", "A4", "").UnicodeTranslatorFromDescriptor("")
		return func(r rune) bool {
			return r < 0x80 || translate(string(r)) != "."
		}
	}
	fs.parseOnce.Do(func() {
		for _, face := range [][]byte{fs.Regular, fs.Bold, fs.MonoBold} {
			f, err := sfnt.Parse(face)
			if err != nil {
				continue
			}
			fs.parsed = append(fs.parsed, f)
		}
	})
	var buf sfnt.Buffer
	return func(r rune) bool {
		for _, f := range fs.parsed {
			if idx, err := f.GlyphIndex(&buf, r); err != nil || idx == 0 {
				return false
			}
		}
		return true
	}
}

// missingRunes lists, in order, the distinct runes of text that covered
// rejects. Control characters and spaces are never reported.
func missingRunes(text string, covered func(rune) bool) []rune {
	var missing []rune
	for _, r := range text {
		if r < 0x20 || unicode.IsSpace(r) || slices.Contains(missing, r) {
			continue
		}
		if !covered(r) {
			missing = append(missing, r)
		}
	}
	slices.Sort(missing)
	return missing
}
