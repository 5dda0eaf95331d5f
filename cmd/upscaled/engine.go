package main

import (
	"upscaled/internal/engine"
)

// engineFactory selects the inference backend compiled into this binary.
// Only the software engine is built in; an ONNX/CUDA backend would return
// its own factory here behind a build tag.
func engineFactory() engine.Factory {
	return engine.SoftwareFactory{}
}
