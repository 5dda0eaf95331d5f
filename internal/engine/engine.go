// Package engine defines the inference boundary of the service. The job
// runner drives an Engine through the pass plan; concrete implementations
// own tiling, memory and device placement.
package engine

import (
	"context"
	"image"
)

// ProgressFunc receives within-pass progress as a fraction in [0,1].
// Implementations call it after each tile. Returning an error aborts the pass.
type ProgressFunc func(fraction float64) error

// Options captures per-job knobs passed to the engine.
type Options struct {
	// TileSize bounds the working-set of one inference step. Values <= 0
	// select the implementation default.
	TileSize int
	// SkipAlpha upsamples the alpha channel by interpolation instead of
	// running it through the model.
	SkipAlpha bool
	// GPUID selects the device for implementations that support one; -1
	// forces CPU execution.
	GPUID int
}

// Engine performs one native-scale upscale pass on an image.
// Implementations must return promptly when the context is canceled.
type Engine interface {
	// Upscale returns a new image whose dimensions are the input's
	// multiplied by Scale(). onProgress may be nil.
	Upscale(ctx context.Context, img image.Image, opts Options, onProgress ProgressFunc) (image.Image, error)
	// Scale reports the engine's fixed native upscale factor.
	Scale() int
}

// Factory builds an Engine for a model file. The job runner resolves the
// model from the catalog and asks the factory for a matching engine.
type Factory interface {
	Open(modelPath string, nativeScale int) (Engine, error)
	// Providers lists the backend's available execution providers, most
	// preferred first. Served verbatim by the health endpoint.
	Providers() []string
}
