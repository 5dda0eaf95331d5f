package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"upscaled/internal/job"
	"upscaled/internal/taskstore"
	"upscaled/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Models(filter string) map[string][]string
	Status() types.StatusResponse
	Submit(ctx context.Context, req job.Request) (job.Result, error)
	Task(id string) (types.TaskRecord, error)
	Health() types.HealthResponse
	Ready() bool
}

// allowedExtensions whitelists upload file types.
var allowedExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true,
}

var modelParamRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+:[a-zA-Z0-9_-]+$`)

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Models(r.URL.Query().Get("algo"))); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.Task(chi.URLParam(r, "id"))
		if err != nil {
			if taskstore.IsNotFound(err) {
				writeJSONError(w, http.StatusNotFound, "task not found")
				return
			}
			writeJSONError(w, http.StatusInternalServerError, "failed to load task")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rec); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Post("/run_process", func(w http.ResponseWriter, r *http.Request) {
		handleRunProcess(svc, w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Health()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Result downloads
	if staticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// parseRunRequest validates the multipart form and builds the job request.
// All validation happens here, before any job state is touched.
func parseRunRequest(r *http.Request) (job.Request, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return job.Request{}, "invalid multipart form", err
	}
	scale, err := strconv.Atoi(r.FormValue("scale"))
	if err != nil || scale < 1 || scale > 16 {
		return job.Request{}, "scale must be an integer between 1 and 16", errBadParam
	}
	modelParam := r.FormValue("model")
	if !modelParamRe.MatchString(modelParam) {
		return job.Request{}, "invalid model parameter format, expected 'algo:model'", errBadParam
	}
	algo, model, _ := strings.Cut(modelParam, ":")

	skipAlpha := false
	if v := r.FormValue("isSkipAlpha"); v != "" {
		skipAlpha, err = strconv.ParseBool(v)
		if err != nil {
			return job.Request{}, "isSkipAlpha must be a boolean", errBadParam
		}
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return job.Request{}, "image file is required", err
	}
	defer file.Close()
	name := header.Filename
	dot := strings.LastIndex(name, ".")
	if dot < 0 || !allowedExtensions[strings.ToLower(name[dot+1:])] {
		return job.Request{}, "invalid file type, allowed types: png, jpg, jpeg, gif, webp", errBadParam
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return job.Request{}, "failed to read upload", err
	}

	return job.Request{
		Algo:      algo,
		Model:     model,
		Scale:     scale,
		SkipAlpha: skipAlpha,
		ResizeTo:  r.FormValue("resizeTo"),
		InputName: name,
		Image:     data,
	}, "", nil
}

func handleRunProcess(svc Service, w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	req, badMsg, err := parseRunRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, badMsg)
		return
	}

	lvl := requestLogLevel(r)
	start := time.Now()
	rid := middleware.GetReqID(r.Context())
	if lvl >= LevelInfo {
		zlog.Info().Str("request_id", rid).Str("model", req.Algo+":"+req.Model).Int("scale", req.Scale).Msg("run_process start")
	}

	// Join server base context with request context so shutdown cancels work too.
	joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	res, err := svc.Submit(joinedCtx, req)
	if err != nil {
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		status := http.StatusInternalServerError
		msg := "internal error"
		switch {
		case job.IsValidation(err):
			status, msg = http.StatusBadRequest, err.Error()
		case job.IsConflict(err):
			status, msg = http.StatusBadRequest, err.Error()
			IncrementConflicts()
		case job.IsModelNotFound(err):
			status, msg = http.StatusNotFound, err.Error()
		case job.IsInference(err):
			// Inference errors carry a pre-sanitized summary.
			msg = err.Error()
		default:
			if he, ok := err.(HTTPError); ok {
				status, msg = he.StatusCode(), he.Error()
			}
		}
		writeJSONError(w, status, msg)
		if lvl >= LevelInfo {
			zlog.Info().Str("request_id", rid).Int("status", status).Dur("dur", time.Since(start)).Err(err).Msg("run_process end")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(types.RunResponse{
		Status:    "success",
		ID:        res.ID,
		OutputURL: res.OutputURL,
		ModelName: res.Model.Name,
		Scale:     req.Scale,
		Algo:      res.Model.Algo,
	})
	if lvl >= LevelInfo {
		zlog.Info().Str("request_id", rid).Int("status", http.StatusCreated).Dur("dur", time.Since(start)).Str("job_id", res.ID).Msg("run_process end")
	}
}
