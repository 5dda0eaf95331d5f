package engine

import (
	"context"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

const defaultTileSize = 192

// Software is a pure-Go engine that realizes the native-scale pass with
// Catmull-Rom resampling. It stands in when no accelerated backend is
// built in and carries the package's tests.
type Software struct {
	scale int
}

// NewSoftware returns a software engine with the given native scale.
func NewSoftware(nativeScale int) (*Software, error) {
	if nativeScale < 1 {
		return nil, fmt.Errorf("native scale must be >= 1, got %d", nativeScale)
	}
	return &Software{scale: nativeScale}, nil
}

func (s *Software) Scale() int { return s.scale }

// Upscale renders the output in horizontal bands of roughly TileSize rows,
// reporting progress and honoring cancellation between bands.
func (s *Software) Upscale(ctx context.Context, img image.Image, opts Options, onProgress ProgressFunc) (image.Image, error) {
	src := img.Bounds()
	dstRect := image.Rect(0, 0, src.Dx()*s.scale, src.Dy()*s.scale)
	dst := image.NewNRGBA(dstRect)

	tile := opts.TileSize
	if tile <= 0 {
		tile = defaultTileSize
	}
	kernel := xdraw.Interpolator(xdraw.CatmullRom)
	if opts.SkipAlpha {
		// Interpolated alpha is cheaper and avoids ringing on hard masks.
		kernel = xdraw.ApproxBiLinear
	}

	bands := (dstRect.Dy() + tile - 1) / tile
	for i := 0; i < bands; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		y0 := dstRect.Min.Y + i*tile
		y1 := y0 + tile
		if y1 > dstRect.Max.Y {
			y1 = dstRect.Max.Y
		}
		band := dst.SubImage(image.Rect(dstRect.Min.X, y0, dstRect.Max.X, y1)).(*image.NRGBA)
		// The full src->dst mapping is passed each time; the scaler only
		// renders pixels inside the band's bounds, so bands stay seam-free.
		kernel.Scale(band, dstRect, img, src, xdraw.Src, nil)
		if onProgress != nil {
			if err := onProgress(float64(i+1) / float64(bands)); err != nil {
				return nil, err
			}
		}
	}
	return dst, nil
}

// SoftwareFactory opens a software engine per model. The model file itself
// is not interpreted; only its catalog scale matters.
type SoftwareFactory struct{}

func (SoftwareFactory) Open(modelPath string, nativeScale int) (Engine, error) {
	return NewSoftware(nativeScale)
}

// Providers reports the CPU provider only; an accelerated backend prepends
// its own entries.
func (SoftwareFactory) Providers() []string { return []string{"CPUExecutionProvider"} }

// Resize scales img to exactly (w, h) with Catmull-Rom resampling. The job
// runner uses it for the final explicit resize step of a pass plan.
func Resize(img image.Image, w, h int) image.Image {
	if w < 1 || h < 1 {
		return img
	}
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
