package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Color is an RGB triple.
type Color struct {
	R, G, B int
}

// Hex parses "#RRGGBB" (the leading '#' is optional).
func Hex(s string) (Color, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(raw) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}

func mustHex(s string) Color {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Palette holds the document colors.
type Palette struct {
	Dark    Color // name and section titles
	Text    Color // headings inside sections
	Muted   Color // body copy, dates
	Line    Color // section rules
	Contact Color
}

// Font family identifiers understood by the canvas. They resolve to the
// loaded Noto faces or to the PDF core fonts.
const (
	FamilySans = "sans"
	FamilyMono = "mono"
)

// Style is the full styling configuration for a rendered CV. All lengths are
// millimetres; font sizes and leadings are points.
type Style struct {
	Name string

	PageSize     string
	MarginLeft   float64
	MarginRight  float64
	MarginTop    float64
	MarginBottom float64

	Colors Palette

	HeadingFamily string
	BodyFamily    string

	NameSize        float64
	NameLeading     float64
	ContactSize     float64
	ContactLeading  float64
	SectionSize     float64
	BodySize        float64
	BodyLeading     float64
	TitleSize       float64
	TitleLeading    float64
	ProjectNameSize float64
	EducationSize   float64

	// HeaderCharSpace is the extra gap in points between section title glyphs.
	HeaderCharSpace   float64
	HeaderSpaceBefore float64
	RuleGapBefore     float64
	RuleGapAfter      float64
	RuleThickness     float64 // points

	NameGap         float64
	RoleGap         float64
	EntryGap        float64
	DateColumnWidth float64

	// CreationDate pins the PDF info dictionary date. Zero means "now".
	CreationDate time.Time
	Compress     bool
}

// ModernStyle is the navy palette with monospace section titles.
func ModernStyle() Style {
	return Style{
		Name:     "modern",
		PageSize: "A4",

		MarginLeft:   22,
		MarginRight:  22,
		MarginTop:    18,
		MarginBottom: 18,

		Colors: Palette{
			Dark:    mustHex("#1B2A4A"),
			Text:    mustHex("#2D2D2D"),
			Muted:   mustHex("#4A4A4A"),
			Line:    mustHex("#CCCCCC"),
			Contact: mustHex("#555555"),
		},

		HeadingFamily: FamilyMono,
		BodyFamily:    FamilySans,

		NameSize:        26,
		NameLeading:     30,
		ContactSize:     9,
		ContactLeading:  14,
		SectionSize:     9.5,
		BodySize:        9.5,
		BodyLeading:     13.5,
		TitleSize:       10.5,
		TitleLeading:    14,
		ProjectNameSize: 10,
		EducationSize:   10,

		HeaderCharSpace:   3.5,
		HeaderSpaceBefore: 5.5,
		RuleGapBefore:     1.5,
		RuleGapAfter:      3,
		RuleThickness:     0.5,

		NameGap:         2,
		RoleGap:         2.5,
		EntryGap:        2,
		DateColumnWidth: 22,

		Compress: true,
	}
}

// ClassicStyle is the charcoal palette with sans-serif section titles.
func ClassicStyle() Style {
	s := ModernStyle()
	s.Name = "classic"
	s.Colors = Palette{
		Dark:    mustHex("#222222"),
		Text:    mustHex("#222222"),
		Muted:   mustHex("#444444"),
		Line:    mustHex("#999999"),
		Contact: mustHex("#444444"),
	}
	s.HeadingFamily = FamilySans
	s.NameSize = 24
	s.NameLeading = 28
	s.SectionSize = 10
	s.HeaderCharSpace = 5
	s.RuleThickness = 0.75
	return s
}

// StyleByName resolves a preset. An empty name selects ModernStyle.
func StyleByName(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "modern":
		return ModernStyle(), nil
	case "classic":
		return ClassicStyle(), nil
	default:
		return Style{}, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}
}

// StyleNames lists the available presets.
func StyleNames() []string {
	return []string{"modern", "classic"}
}

// textStyle is the paragraph-level formatting of one kind of block.
type textStyle struct {
	family  string
	bold    bool
	size    float64
	leading float64
	color   Color
	align   string // fpdf alignment: L, R, J
}

// textStyles derives the per-block paragraph styles from s.
func (s Style) textStyles() map[string]textStyle {
	p := s.Colors
	return map[string]textStyle{
		"name":     {family: FamilyMono, bold: true, size: s.NameSize, leading: s.NameLeading, color: p.Dark, align: "L"},
		"contact":  {family: s.BodyFamily, size: s.ContactSize, leading: s.ContactLeading, color: p.Contact, align: "L"},
		"section":  {family: s.HeadingFamily, bold: true, size: s.SectionSize, leading: s.SectionSize + 3.5, color: p.Dark, align: "L"},
		"summary":  {family: s.BodyFamily, size: s.BodySize, leading: s.BodyLeading, color: p.Text, align: "J"},
		"body":     {family: s.BodyFamily, size: s.BodySize, leading: s.BodyLeading, color: p.Muted, align: "L"},
		"expTitle": {family: s.BodyFamily, bold: true, size: s.TitleSize, leading: s.TitleLeading, color: p.Text, align: "L"},
		"expDate":  {family: s.BodyFamily, size: s.BodySize, leading: s.TitleLeading, color: p.Muted, align: "R"},
		"bullet":   {family: s.BodyFamily, size: s.BodySize, leading: s.BodyLeading, color: p.Muted, align: "L"},
		"projName": {family: s.BodyFamily, bold: true, size: s.ProjectNameSize, leading: s.TitleLeading, color: p.Text, align: "L"},
		"projDesc": {family: s.BodyFamily, size: s.BodySize, leading: s.BodyLeading - 0.5, color: p.Muted, align: "L"},
		"eduMain":  {family: s.BodyFamily, size: s.EducationSize, leading: s.TitleLeading, color: p.Text, align: "L"},
		"eduDate":  {family: s.BodyFamily, size: s.EducationSize, leading: s.TitleLeading, color: p.Muted, align: "R"},
	}
}
