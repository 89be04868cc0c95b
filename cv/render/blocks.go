package render

import (
	"strings"

	"github.com/go-pdf/fpdf"
)

// block is one vertical element of the laid-out story. Section builders emit
// a flat list of blocks; drawing is a single pass over that list.
type block interface {
	draw(c *canvas)
}

type paragraph struct {
	style  string
	markup string
}

type spacer struct {
	height float64 // mm
}

type rule struct {
	gapBefore, gapAfter float64 // mm
}

// row is a two-column line: wrapped markup on the left and a right-aligned
// column of Style.DateColumnWidth on the right.
type row struct {
	leftStyle, rightStyle string
	left, right           string
}

// spacedText is upper-cased text drawn glyph by glyph with extra tracking.
type spacedText struct {
	style     string
	text      string
	charSpace float64 // points
}

type pageBreak struct{}

// canvas wraps an fpdf document with the style and font binding of a single
// Render call.
type canvas struct {
	pdf    *fpdf.Fpdf
	fonts  fontBinding
	style  Style
	styles map[string]textStyle

	left   float64
	width  float64
	bottom float64 // y limit before a page break
}

func newCanvas(pdf *fpdf.Fpdf, fonts fontBinding, style Style) *canvas {
	pageW, pageH := pdf.GetPageSize()
	return &canvas{
		pdf:    pdf,
		fonts:  fonts,
		style:  style,
		styles: style.textStyles(),
		left:   style.MarginLeft,
		width:  pageW - style.MarginLeft - style.MarginRight,
		bottom: pageH - style.MarginBottom,
	}
}

func (c *canvas) use(ts textStyle, forceBold bool) {
	weight := ""
	if ts.bold || forceBold {
		weight = "B"
	}
	c.pdf.SetFont(c.fonts.family(ts.family), weight, ts.size)
	c.pdf.SetTextColor(ts.color.R, ts.color.G, ts.color.B)
}

func (c *canvas) lineHeight(ts textStyle) float64 {
	return c.pdf.PointConvert(ts.leading)
}

// ensure starts a new page when fewer than h millimetres remain.
func (c *canvas) ensure(h float64) {
	if c.pdf.GetY()+h > c.bottom {
		c.pdf.AddPage()
	}
}

// text lays out markup inside the column [x, x+w) starting at the current y.
func (c *canvas) text(x, w float64, styleName, markup string) {
	ts := c.styles[styleName]
	runs := parseMarkup(markup)
	if len(runs) == 0 {
		return
	}
	lh := c.lineHeight(ts)
	c.ensure(lh)

	if len(runs) == 1 && ts.align != "L" {
		c.use(ts, runs[0].bold)
		c.pdf.SetX(x)
		c.pdf.MultiCell(w, lh, c.fonts.translate(runs[0].text), "", ts.align, false)
		return
	}

	// Write wraps against the page margins, so narrow them to the column.
	lm, _, rm, _ := c.pdf.GetMargins()
	pageW, _ := c.pdf.GetPageSize()
	c.pdf.SetLeftMargin(x)
	c.pdf.SetRightMargin(pageW - x - w)
	c.pdf.SetX(x)
	for _, r := range runs {
		c.use(ts, r.bold)
		c.pdf.Write(lh, c.fonts.translate(r.text))
	}
	c.pdf.Ln(lh)
	c.pdf.SetLeftMargin(lm)
	c.pdf.SetRightMargin(rm)
}

func (p paragraph) draw(c *canvas) {
	c.pdf.SetX(c.left)
	c.text(c.left, c.width, p.style, p.markup)
}

func (s spacer) draw(c *canvas) {
	y := c.pdf.GetY() + s.height
	if y > c.bottom {
		c.pdf.AddPage()
		return
	}
	c.pdf.SetY(y)
}

func (r rule) draw(c *canvas) {
	thickness := c.pdf.PointConvert(c.style.RuleThickness)
	c.ensure(r.gapBefore + thickness + r.gapAfter)
	y := c.pdf.GetY() + r.gapBefore
	line := c.style.Colors.Line
	c.pdf.SetDrawColor(line.R, line.G, line.B)
	c.pdf.SetLineWidth(thickness)
	c.pdf.Line(c.left, y, c.left+c.width, y)
	c.pdf.SetY(y + thickness + r.gapAfter)
}

func (r row) draw(c *canvas) {
	ls, rs := c.styles[r.leftStyle], c.styles[r.rightStyle]
	c.ensure(max(c.lineHeight(ls), c.lineHeight(rs)))

	dateW := c.style.DateColumnWidth
	leftW := c.width - dateW
	page, top := c.pdf.PageNo(), c.pdf.GetY()

	end := top
	if r.right != "" {
		c.pdf.SetXY(c.left+leftW, top)
		c.text(c.left+leftW, dateW, r.rightStyle, r.right)
		end = c.pdf.GetY()
	}
	c.pdf.SetXY(c.left, top)
	c.text(c.left, leftW, r.leftStyle, r.left)
	if c.pdf.PageNo() == page && c.pdf.GetY() < end {
		c.pdf.SetY(end)
	}
}

func (s spacedText) draw(c *canvas) {
	ts := c.styles[s.style]
	height := c.pdf.PointConvert(ts.size + 2)
	c.ensure(height)
	c.use(ts, false)

	x, y := c.left, c.pdf.GetY()
	baseline := y + c.pdf.PointConvert(ts.size)
	gap := c.pdf.PointConvert(s.charSpace)
	for _, ch := range strings.ToUpper(s.text) {
		glyph := c.fonts.translate(string(ch))
		c.pdf.Text(x, baseline, glyph)
		x += c.pdf.GetStringWidth(glyph) + gap
	}
	c.pdf.SetY(y + height)
}

func (pageBreak) draw(c *canvas) {
	c.pdf.AddPage()
}
