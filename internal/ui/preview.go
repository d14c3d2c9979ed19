package ui

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	"golang.org/x/term"
)

const (
	previewDefaultCols = 64
	previewMaxCols     = 80
)

// Preview renders a degraded low-resolution view of the image inline,
// packing two pixel rows into each text row with the upper-half-block
// glyph and 24-bit colors. Strictly best-effort: any failure is swallowed
// and the exit status is unaffected.
func (u *UI) Preview(data []byte) {
	if !u.tty {
		return
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Debug("preview decode failed", "error", err)
		return
	}

	cols := previewDefaultCols
	if f, ok := u.out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			cols = w
		}
	}
	if cols > previewMaxCols {
		cols = previewMaxCols
	}
	if cols < 2 {
		return
	}

	bounds := img.Bounds()
	dx, dy := bounds.Dx(), bounds.Dy()
	if dx == 0 || dy == 0 {
		return
	}

	// Pixels per character cell. A terminal cell is about twice as tall
	// as it is wide, and each text row holds two sampled pixel rows.
	step := (dx + cols - 1) / cols
	if step < 1 {
		step = 1
	}

	var buf bytes.Buffer
	for y := bounds.Min.Y; y+step < bounds.Max.Y; y += 2 * step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			tr, tg, tb := rgb8(img, x, y)
			br, bg, bb := rgb8(img, x, y+step)
			fmt.Fprintf(&buf, "\033[38;2;%d;%d;%dm\033[48;2;%d;%d;%dm▀", tr, tg, tb, br, bg, bb)
		}
		buf.WriteString(colorReset + "\n")
	}
	if _, err := u.out.Write(buf.Bytes()); err != nil {
		slog.Debug("preview write failed", "error", err)
	}
}

func rgb8(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}
