// Package extract inspects rendered PDFs: page counts and metadata via pdfcpu,
// and the plain text an applicant tracking system would see via ledongthuc/pdf.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrNotPDF is returned for payloads without a PDF header.
var ErrNotPDF = errors.New("not a pdf")

func init() {
	// keep pdfcpu from writing a config dir under $HOME
	api.DisableConfigDir()
}

// Info is what Inspect reports about a PDF.
type Info struct {
	Pages  int
	Title  string
	Author string
}

// Inspect parses and validates data with pdfcpu.
func Inspect(data []byte) (Info, error) {
	if !isPDF(data) {
		return Info{}, ErrNotPDF
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return Info{}, fmt.Errorf("pdfcpu read: %w", err)
	}
	return Info{
		Pages:  ctx.PageCount,
		Title:  ctx.XRefTable.Title,
		Author: ctx.XRefTable.Author,
	}, nil
}

// PageCount returns the number of pages in data.
func PageCount(data []byte) (int, error) {
	info, err := Inspect(data)
	if err != nil {
		return 0, err
	}
	return info.Pages, nil
}

// PDFText returns the plain text of every page in reading order.
func PDFText(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !isPDF(data) {
		return "", ErrNotPDF
	}
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func isPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}
