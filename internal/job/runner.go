package job

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"strings"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp"

	"upscaled/internal/engine"
	"upscaled/internal/registry"
	"upscaled/internal/taskstore"
	"upscaled/pkg/types"
)

// Defaults applied when corresponding RunnerConfig fields are unset.
const (
	defaultTileSize   = 192
	defaultJobTimeout = 30 * time.Minute
)

// RunnerConfig encapsulates all tunables for Runner construction.
type RunnerConfig struct {
	Registry   []types.ModelInfo
	Factory    engine.Factory
	Store      *taskstore.Store
	BaseURL    string
	TileSize   int
	GPUID      int
	JobTimeout time.Duration
	Logger     zerolog.Logger
}

// Runner owns the process-wide job status and drives execution: it admits
// at most one job at a time, composes the pass plan, feeds the engine's
// progress samples through a per-job Tracker and keeps the metadata record
// in step with the job lifecycle.
type Runner struct {
	mu             sync.RWMutex
	status         Status
	lastProgress   *float64
	lastProgressAt *float64

	registry   []types.ModelInfo
	factory    engine.Factory
	store      *taskstore.Store
	baseURL    string
	tileSize   int
	gpuID      int
	jobTimeout time.Duration
	log        zerolog.Logger
}

// NewRunner constructs a Runner from RunnerConfig.
func NewRunner(cfg RunnerConfig) *Runner {
	r := &Runner{
		status:     StatusIdle,
		registry:   cfg.Registry,
		factory:    cfg.Factory,
		store:      cfg.Store,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		gpuID:      cfg.GPUID,
		log:        cfg.Logger,
		tileSize:   cfg.TileSize,
		jobTimeout: cfg.JobTimeout,
	}
	if r.tileSize <= 0 {
		r.tileSize = defaultTileSize
	}
	if r.jobTimeout <= 0 {
		r.jobTimeout = defaultJobTimeout
	}
	return r
}

// Models returns the catalog grouped by algorithm family.
func (r *Runner) Models(filter string) map[string][]string {
	return registry.GroupByAlgo(r.registry, filter)
}

// Ready reports whether the runner can accept a job: the model catalog
// was scanned and the metadata store opened. Both are wired at startup,
// so an unready runner means construction was short-circuited.
func (r *Runner) Ready() bool {
	return r.store != nil && r.factory != nil
}

// Health reports the configured backend's execution capabilities.
func (r *Runner) Health() types.HealthResponse {
	providers := r.factory.Providers()
	var cuda, trt bool
	for _, p := range providers {
		switch p {
		case "CUDAExecutionProvider":
			cuda = true
		case "TensorrtExecutionProvider":
			trt = true
		}
	}
	return types.HealthResponse{
		Status: "OK",
		GPUSupport: types.GPUSupport{
			Providers:         providers,
			CUDAAvailable:     cuda,
			TensorRTAvailable: trt,
		},
	}
}

// Task returns the stored record for a job id.
func (r *Runner) Task(id string) (types.TaskRecord, error) {
	return r.store.Get(id)
}

// Status returns a read-only snapshot; it never blocks on an in-flight job.
func (r *Runner) Status() types.StatusResponse {
	r.mu.RLock()
	defer r.mu.RUnlock()
	resp := types.StatusResponse{Status: string(r.status)}
	if r.lastProgress != nil {
		v := *r.lastProgress
		resp.LastProgress = &v
	}
	if r.lastProgressAt != nil {
		v := *r.lastProgressAt
		resp.LastProgressSetTime = &v
	}
	return resp
}

// Submit validates the request against the catalog, claims the single-flight
// slot and executes the job synchronously. The slot reopens on the terminal
// transition, so a subsequent Submit may run regardless of how this one ended.
func (r *Runner) Submit(ctx context.Context, req Request) (Result, error) {
	model, ok := registry.Find(r.registry, req.Algo, req.Model)
	if !ok {
		return Result{}, ErrModelNotFound(req.Algo, req.Model)
	}
	if req.Scale < 1 {
		return Result{}, ErrValidation("scale must be >= 1")
	}
	if req.ResizeTo != "" {
		// Surface malformed overrides before any state mutation.
		if _, _, err := parseResizeTo(req.ResizeTo, 1, 1); err != nil {
			return Result{}, err
		}
	}
	if err := r.begin(); err != nil {
		return Result{}, err
	}

	jb := jobRecord{id: uuid.NewString(), model: model, req: req, createdAt: time.Now()}
	res, err := r.execute(ctx, jb)
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// begin claims the single-flight slot, or fails with a conflict error.
func (r *Runner) begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusProcessing {
		return ErrConflict()
	}
	r.status = StatusProcessing
	r.lastProgress = nil
	r.lastProgressAt = nil
	return nil
}

func (r *Runner) execute(ctx context.Context, jb jobRecord) (Result, error) {
	log := r.log.With().Str("job_id", jb.id).Str("model", jb.model.Name).Str("algo", jb.model.Algo).Int("scale", jb.req.Scale).Logger()
	log.Info().Msg("job started")

	if _, err := r.store.SaveInput(jb.id, jb.req.InputName, bytes.NewReader(jb.req.Image)); err != nil {
		return Result{}, r.fail(jb.id, "failed to store uploaded image", err, false)
	}
	img, _, err := image.Decode(bytes.NewReader(jb.req.Image))
	if err != nil {
		return Result{}, r.fail(jb.id, "failed to decode image", err, false)
	}

	if err := r.store.Create(jb.id, types.TaskRecord{
		Status: string(StatusProcessing),
		ID:     jb.id,
		Model:  jb.model.Name,
		Algo:   jb.model.Algo,
		Scale:  jb.req.Scale,
		Input:  jb.req.InputName,
	}); err != nil {
		return Result{}, r.fail(jb.id, "failed to persist job record", err, false)
	}

	bounds := img.Bounds()
	plan, err := BuildPlan(jb.model.Scale, jb.req.Scale, bounds.Dx(), bounds.Dy(), jb.req.ResizeTo)
	if err != nil {
		return Result{}, r.fail(jb.id, "invalid resize parameters", err, true)
	}
	eng, err := r.factory.Open(jb.model.Path, jb.model.Scale)
	if err != nil {
		return Result{}, r.fail(jb.id, "failed to initialize inference engine", err, true)
	}

	jobCtx, cancel := context.WithTimeout(ctx, r.jobTimeout)
	defer cancel()

	opts := engine.Options{TileSize: r.tileSize, SkipAlpha: jb.req.SkipAlpha, GPUID: r.gpuID}
	tracker := &Tracker{}
	tracker.Reset()
	for pass := 0; pass < plan.Passes; pass++ {
		img, err = eng.Upscale(jobCtx, img, opts, r.progressFunc(jobCtx, log, tracker, pass, plan.Passes))
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return Result{}, r.fail(jb.id, "processing timed out", err, true)
			}
			return Result{}, r.fail(jb.id, "inference pass failed", err, true)
		}
		passesTotal.Inc()
	}
	if plan.NeedsResize() {
		img = engine.Resize(img, plan.ResizeW, plan.ResizeH)
	}

	if err := r.writeOutput(jb.id, img); err != nil {
		return Result{}, r.fail(jb.id, "failed to write output image", err, true)
	}
	outputURL := r.baseURL + "/" + r.store.OutputRel(jb.id)
	if err := r.store.Update(jb.id, func(rec *types.TaskRecord) {
		rec.Status = string(StatusFinished)
		rec.OutputURL = outputURL
	}); err != nil {
		return Result{}, r.fail(jb.id, "failed to persist job record", err, true)
	}

	r.setStatus(StatusFinished)
	jobsTotal.WithLabelValues(string(StatusFinished)).Inc()
	jobDuration.Observe(time.Since(jb.createdAt).Seconds())
	log.Info().Int("passes", plan.Passes).Str("output_url", outputURL).Dur("dur", time.Since(jb.createdAt)).Msg("job finished")
	return Result{ID: jb.id, OutputURL: outputURL, Model: jb.model}, nil
}

// progressFunc adapts the engine's within-pass callbacks into tracker
// samples and the process-wide last-progress fields.
func (r *Runner) progressFunc(ctx context.Context, log zerolog.Logger, tracker *Tracker, pass, passes int) engine.ProgressFunc {
	return func(fraction float64) error {
		now := float64(time.Now().UnixNano()) / 1e9
		rep := tracker.Record(fraction, now, pass, passes)
		r.mu.Lock()
		f, ts := fraction, now
		r.lastProgress = &f
		r.lastProgressAt = &ts
		r.mu.Unlock()
		log.Debug().
			Int("pass", pass+1).
			Int("passes", passes).
			Int("percent", rep.Percent).
			Int("total_percent", rep.TotalPercent).
			Str("etr", rep.ItemETR).
			Str("total_etr", rep.TotalETR).
			Msg("progress")
		return ctx.Err()
	}
}

func (r *Runner) writeOutput(id string, img image.Image) error {
	f, err := os.Create(r.store.OutputPath(id))
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// fail transitions the job to the error state. summary is the sanitized
// message stored and returned to the caller; cause goes to the log only.
// recordExists controls whether the metadata record is patched.
func (r *Runner) fail(id, summary string, cause error, recordExists bool) error {
	r.log.Error().Str("job_id", id).Err(cause).Msg(summary)
	if recordExists {
		if err := r.store.Update(id, func(rec *types.TaskRecord) {
			rec.Status = string(StatusError)
			rec.Error = summary
		}); err != nil {
			r.log.Error().Str("job_id", id).Err(err).Msg("failed to persist error state")
		}
	}
	r.setStatus(StatusError)
	jobsTotal.WithLabelValues(string(StatusError)).Inc()
	return ErrInference(summary)
}

func (r *Runner) setStatus(s Status) {
	r.mu.Lock()
	r.status = s
	r.mu.Unlock()
}
