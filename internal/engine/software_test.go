package engine

import (
	"context"
	"image"
	"image/color"
	"testing"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 11), B: 128, A: 255})
		}
	}
	return img
}

func TestSoftwareUpscaleDimensions(t *testing.T) {
	eng, err := NewSoftware(4)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := eng.Upscale(context.Background(), testImage(10, 6), Options{TileSize: 8}, nil)
	if err != nil {
		t.Fatalf("upscale: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 40 || b.Dy() != 24 {
		t.Fatalf("unexpected bounds: %v", b)
	}
}

func TestSoftwareProgressMonotonic(t *testing.T) {
	eng, _ := NewSoftware(2)
	var fractions []float64
	_, err := eng.Upscale(context.Background(), testImage(16, 16), Options{TileSize: 8}, func(f float64) error {
		fractions = append(fractions, f)
		return nil
	})
	if err != nil {
		t.Fatalf("upscale: %v", err)
	}
	if len(fractions) == 0 {
		t.Fatalf("expected progress callbacks")
	}
	prev := 0.0
	for _, f := range fractions {
		if f < prev || f > 1.0 {
			t.Fatalf("non-monotonic or out-of-range fractions: %v", fractions)
		}
		prev = f
	}
	if fractions[len(fractions)-1] != 1.0 {
		t.Fatalf("final fraction=%v, want 1.0", fractions[len(fractions)-1])
	}
}

func TestSoftwareCanceled(t *testing.T) {
	eng, _ := NewSoftware(2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := eng.Upscale(ctx, testImage(8, 8), Options{}, nil); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestSoftwareRejectsBadScale(t *testing.T) {
	if _, err := NewSoftware(0); err == nil {
		t.Fatalf("expected error for scale 0")
	}
}

func TestResize(t *testing.T) {
	out := Resize(testImage(10, 10), 5, 7)
	if b := out.Bounds(); b.Dx() != 5 || b.Dy() != 7 {
		t.Fatalf("unexpected bounds: %v", b)
	}
	// No-op when already at target size.
	src := testImage(4, 4)
	if got := Resize(src, 4, 4); got != image.Image(src) {
		t.Fatalf("expected same image back")
	}
}
