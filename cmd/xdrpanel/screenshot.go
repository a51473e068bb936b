package main

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// textLines is anything that can describe the display as plain text.
type textLines interface {
	Lines() []string
}

// pngSnapshotter draws the panel text into a PNG using the 7x13 bitmap font.
type pngSnapshotter struct {
	view textLines
}

func newPNGSnapshotter(view textLines) *pngSnapshotter {
	return &pngSnapshotter{view: view}
}

const (
	snapshotMargin     = 8
	snapshotLineHeight = 16
)

func (s *pngSnapshotter) Capture(path string) error {
	img := renderTextImage(s.view.Lines())

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create screenshot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create screenshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode screenshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close screenshot: %w", err)
	}
	return nil
}

func renderTextImage(lines []string) *image.RGBA {
	face := basicfont.Face7x13

	width := 0
	for _, l := range lines {
		if w := font.MeasureString(face, l).Ceil(); w > width {
			width = w
		}
	}
	width += 2 * snapshotMargin
	height := len(lines)*snapshotLineHeight + 2*snapshotMargin

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colornames.Black), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(colornames.Lightgreen),
		Face: face,
	}
	for i, l := range lines {
		d.Dot = fixed.P(snapshotMargin, snapshotMargin+(i+1)*snapshotLineHeight-3)
		d.DrawString(l)
	}
	return img
}
