package types

// ModelInfo describes a discoverable super-resolution model on disk.
type ModelInfo struct {
	// Model name, unique within an algorithm family.
	// example: x4-ultrasharp
	Name string `json:"name" example:"x4-ultrasharp"`
	// Absolute path to the model file on disk.
	// example: /data/models/esrgan/x4/x4-ultrasharp.onnx
	Path string `json:"path" example:"/data/models/esrgan/x4/x4-ultrasharp.onnx"`
	// Fixed native upscale factor the model produces per pass.
	// example: 4
	Scale int `json:"scale" example:"4"`
	// Algorithm family the model belongs to.
	// example: esrgan
	Algo string `json:"algo" example:"esrgan"`
}
