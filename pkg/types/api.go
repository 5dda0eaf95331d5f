package types

// RunResponse is returned by POST /run_process on success.
type RunResponse struct {
	// Always "success" on the 201 path.
	// example: success
	Status string `json:"status" example:"success"`
	// Job identifier, used with GET /tasks/{id}.
	// example: 3f1c9a2e-8a6b-4a1d-9f2a-1b2c3d4e5f60
	ID string `json:"id" example:"3f1c9a2e-8a6b-4a1d-9f2a-1b2c3d4e5f60"`
	// Public URL of the produced image.
	// example: http://localhost:9000/static/3f1c9a2e/output.png
	OutputURL string `json:"outputUrl" example:"http://localhost:9000/static/3f1c9a2e/output.png"`
	// Name of the model that ran.
	// example: x4-ultrasharp
	ModelName string `json:"modelName" example:"x4-ultrasharp"`
	// Requested scale factor.
	// example: 4
	Scale int `json:"scale" example:"4"`
	// Algorithm family of the model that ran.
	// example: esrgan
	Algo string `json:"algo" example:"esrgan"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Process-wide job status: idle, processing, finished or error.
	// example: processing
	Status string `json:"status" example:"processing"`
	// Fraction of the current pass completed, null before the first sample.
	// example: 0.42
	LastProgress *float64 `json:"last_progress"`
	// Unix seconds (fractional) of the last progress sample, null before the first.
	// example: 1700000000.5
	LastProgressSetTime *float64 `json:"last_progress_set_time"`
}

// TaskRecord is the durable per-job metadata record stored as meta.json.
type TaskRecord struct {
	// Job status at the time of the last write: processing, finished or error.
	// example: finished
	Status string `json:"status" example:"finished"`
	// Job identifier.
	ID string `json:"id"`
	// Model name the job ran with.
	Model string `json:"model"`
	// Algorithm family the job ran with.
	Algo string `json:"algo"`
	// Requested scale factor.
	Scale int `json:"scale"`
	// Original filename of the uploaded image.
	Input string `json:"input"`
	// Public URL of the produced image, present only when finished.
	OutputURL string `json:"outputUrl,omitempty"`
	// Sanitized failure summary, present only when status is error.
	Error string `json:"error,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// example: OK
	Status     string     `json:"status" example:"OK"`
	GPUSupport GPUSupport `json:"gpu_support"`
}

// GPUSupport reports the inference backend's execution capabilities.
type GPUSupport struct {
	// Available execution providers, most preferred first.
	Providers []string `json:"providers"`
	// example: true
	CUDAAvailable bool `json:"cuda_available" example:"true"`
	// example: false
	TensorRTAvailable bool `json:"tensorrt_available" example:"false"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid model parameter format, expected 'algo:model'
	Error string `json:"error" example:"invalid model parameter format, expected 'algo:model'"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
