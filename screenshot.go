package stardust

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// DefaultScreenshotDir is where Game writes captures when
// RunConfig.ScreenshotDir is empty.
const DefaultScreenshotDir = "screenshots"

// Screenshot queues a capture of the next rendered frame. The PNG is
// written to RunConfig.ScreenshotDir as <timestamp>_<label>.png once Draw
// finishes. Safe to call from Update or Draw.
func (g *Game) Screenshot(label string) {
	g.shots = append(g.shots, label)
}

// flushScreenshots writes every queued capture of screen.
func (g *Game) flushScreenshots(screen *ebiten.Image) {
	if len(g.shots) == 0 {
		return
	}
	defer func() { g.shots = g.shots[:0] }()

	dir := g.config.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logf("screenshot: mkdir %s: %v", dir, err)
		return
	}

	b := screen.Bounds()
	pixels := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pixels)
	img := unpremultiply(pixels, b.Dx(), b.Dy())

	stamp := time.Now().Format("20060102_150405")
	for _, label := range g.shots {
		path := filepath.Join(dir, stamp+"_"+fileLabel(label)+".png")
		if err := writePNG(path, img); err != nil {
			logf("screenshot: %v", err)
			continue
		}
		logf("screenshot saved to %s", path)
	}
}

// unpremultiply converts ebiten's premultiplied pixels to straight alpha.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, pixels)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := int(img.Pix[i+3])
		if a == 0 || a == 255 {
			continue
		}
		for c := 0; c < 3; c++ {
			img.Pix[i+c] = uint8(min(int(img.Pix[i+c])*255/a, 255))
		}
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// fileLabel keeps letters, digits, '-' and '.', replacing everything else
// with '_'. An empty label becomes "frame".
func fileLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "frame"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
