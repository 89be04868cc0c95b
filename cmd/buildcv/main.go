// Command buildcv renders a cv.json file to PDF.
//
//	buildcv cv.json [--output out.pdf] [--style modern|classic] [--fonts dir]
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"cv-backend/cv/model"
	"cv-backend/cv/render"
	"cv-backend/internal/extract"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, time.Now))
}

func run(args []string, stdout, stderr io.Writer, now func() time.Time) int {
	flags := pflag.NewFlagSet("buildcv", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	output := flags.StringP("output", "o", "", "output PDF path (default: timestamped file next to the input)")
	styleName := flags.String("style", "modern", "style preset: modern or classic")
	fontDir := flags.String("fonts", "", "directory holding Noto TrueType fonts; installed Noto or the embedded Go fonts when empty")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: buildcv <cv.json> [--output path] [--style name] [--fonts dir]")
		return 2
	}
	input := flags.Arg(0)

	f, err := os.Open(input)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(stderr, "Error: %s not found\n", input)
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	doc, err := model.Decode(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s: %v\n", input, err)
		return 1
	}

	style, err := render.StyleByName(*styleName)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v (available: %v)\n", err, render.StyleNames())
		return 1
	}
	fonts, err := render.ResolveFonts(*fontDir)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	renderer := render.New(style, fonts)
	pdf, err := renderer.Render(doc)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if missing := renderer.Missing(doc); len(missing) > 0 {
		fmt.Fprintf(stderr, "Warning: no glyph for %q in %s fonts\n", string(missing), fonts.Source())
	}

	path := *output
	if path == "" {
		path = defaultOutput(input, now())
	}
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	pages, err := extract.PageCount(pdf)
	if err != nil {
		fmt.Fprintf(stdout, "CV saved to: %s\n", path)
		return 0
	}
	fmt.Fprintf(stdout, "CV saved to: %s (%d pages)\n", path, pages)
	return 0
}

func defaultOutput(input string, t time.Time) string {
	return filepath.Join(filepath.Dir(input), t.Format("2006_01_02_15_04")+"_cv.pdf")
}
