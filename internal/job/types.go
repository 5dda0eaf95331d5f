package job

import (
	"time"

	"upscaled/pkg/types"
)

// Status is the process-wide job lifecycle state.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusFinished   Status = "finished"
	StatusError      Status = "error"
)

// Request carries the validated parameters of one upscale submission.
// The HTTP layer performs all format/extension validation before building one.
type Request struct {
	Algo      string
	Model     string
	Scale     int
	SkipAlpha bool
	// Optional explicit resize override: "<width>x..." or "<num>/<den>".
	ResizeTo string
	// Original filename of the upload, kept for the metadata record.
	InputName string
	// Raw uploaded image bytes.
	Image []byte
}

// Result is returned to the caller once a job finishes.
type Result struct {
	ID        string
	OutputURL string
	Model     types.ModelInfo
}

// jobRecord tracks one job through execution.
type jobRecord struct {
	id        string
	model     types.ModelInfo
	req       Request
	createdAt time.Time
}
