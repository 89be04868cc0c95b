// Package render lays out a CV document as a paginated PDF.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"cv-backend/cv/model"
)

const creator = "cv-backend"

// Renderer turns documents into PDF bytes. It holds only immutable state and
// is safe for concurrent use.
type Renderer struct {
	style Style
	fonts *FontSet
	now   func() time.Time
}

// New returns a renderer for style. fonts may be nil to use core fonts.
func New(style Style, fonts *FontSet) *Renderer {
	return &Renderer{style: style, fonts: fonts, now: time.Now}
}

// Style reports the styling configuration in use.
func (r *Renderer) Style() Style { return r.style }

// Fonts reports the faces in use; nil means the core fonts.
func (r *Renderer) Fonts() *FontSet { return r.fonts }

// WithStyle returns a renderer sharing r's fonts with a different style.
func (r *Renderer) WithStyle(style Style) *Renderer {
	cp := *r
	cp.style = style
	return &cp
}

// Render validates doc and lays it out. No bytes are produced for a document
// missing a required field.
func (r *Renderer) Render(doc model.Document) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	doc.Normalize()

	s := r.style
	pdf := fpdf.New("P", "mm", s.PageSize, "")
	pdf.SetMargins(s.MarginLeft, s.MarginTop, s.MarginRight)
	pdf.SetAutoPageBreak(true, s.MarginBottom)
	pdf.SetCellMargin(0)
	pdf.SetCompression(s.Compress)
	pdf.SetCatalogSort(true)

	created := s.CreationDate
	if created.IsZero() {
		created = r.now()
	}
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetTitle("CV - "+doc.Contact.Name, true)
	pdf.SetAuthor(doc.Contact.Name, true)
	pdf.SetCreator(creator, false)

	fonts := r.fonts.register(pdf)
	pdf.AddPage()

	c := newCanvas(pdf, fonts, s)
	for _, bl := range layout(doc, s) {
		bl.draw(c)
		if pdf.Err() {
			break
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// Missing lists the distinct characters of doc that the renderer's fonts have
// no glyph for. Such characters still render, as '.' with the core fonts or as
// an empty box with TrueType faces.
func (r *Renderer) Missing(doc model.Document) []rune {
	doc.Normalize()
	var b strings.Builder
	for _, bl := range layout(doc, r.style) {
		switch v := bl.(type) {
		case paragraph:
			b.WriteString(plainText(parseMarkup(v.markup)))
		case row:
			b.WriteString(plainText(parseMarkup(v.left)))
			b.WriteString(plainText(parseMarkup(v.right)))
		case spacedText:
			b.WriteString(strings.ToUpper(v.text))
		}
	}
	return missingRunes(b.String(), r.fonts.coverage())
}
