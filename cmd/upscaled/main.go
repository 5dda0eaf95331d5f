package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"upscaled/internal/config"
	"upscaled/internal/httpapi"
	"upscaled/internal/job"
	"upscaled/internal/registry"
	"upscaled/internal/taskstore"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	addr := flag.String("addr", envOr("UPSCALED_ADDR", ":9000"), "HTTP listen address, e.g. :9000")
	configPath := flag.String("config", "", "Optional config file (.yaml/.json/.toml)")
	modelsDir := flag.String("models-dir", envOr("MODELS_DIR", "./models"), "Directory scanned for <algo>/x<scale>/*.onnx model files")
	dataDir := flag.String("data-dir", envOr("BASE_PATH", "./data"), "Directory for per-job input/output/meta records")
	baseURL := flag.String("base-url", envOr("BASE_URL", "http://localhost:9000/static"), "Public base URL for result links")
	production := flag.Bool("production", os.Getenv("production") == "true", "Production mode (disables permissive CORS)")
	gpuID := flag.Int("gpu-id", 0, "GPU device id, -1 forces CPU")
	tileSize := flag.Int("tile-size", 192, "Tile size for inference passes")
	maxUploadMB := flag.Int("max-upload-mb", 10, "Maximum upload size in MB")
	jobTimeoutMin := flag.Int("job-timeout-min", 30, "Maximum minutes one job may run")
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if !*production {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
		}
		applyConfig(cfg, addr, modelsDir, dataDir, baseURL, production, gpuID, tileSize, maxUploadMB, jobTimeoutMin)
	}

	reg, err := registry.LoadDir(*modelsDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", *modelsDir).Msg("failed to load models")
	}
	store, err := taskstore.New(*dataDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", *dataDir).Msg("failed to open data dir")
	}

	runner := job.NewRunner(job.RunnerConfig{
		Registry:   reg,
		Factory:    engineFactory(),
		Store:      store,
		BaseURL:    *baseURL,
		TileSize:   *tileSize,
		GPUID:      *gpuID,
		JobTimeout: time.Duration(*jobTimeoutMin) * time.Minute,
		Logger:     logger,
	})

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(logger)
	httpapi.SetStaticDir(store.Dir())
	httpapi.SetMaxUploadBytes(int64(*maxUploadMB) << 20)
	if !*production {
		httpapi.SetCORSOptions(true, []string{"*"}, []string{"GET", "POST", "OPTIONS"}, []string{"*"})
	}

	mux := httpapi.NewMux(runner)
	srv := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		logger.Info().Str("addr", *addr).Str("models_dir", *modelsDir).Int("models", len(reg)).Msg("upscaled listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}

// applyConfig fills flags still at their defaults from the config file.
func applyConfig(cfg config.Config, addr, modelsDir, dataDir, baseURL *string, production *bool, gpuID, tileSize, maxUploadMB, jobTimeoutMin *int) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if cfg.Addr != "" && !set["addr"] {
		*addr = cfg.Addr
	}
	if cfg.ModelsDir != "" && !set["models-dir"] {
		*modelsDir = cfg.ModelsDir
	}
	if cfg.DataDir != "" && !set["data-dir"] {
		*dataDir = cfg.DataDir
	}
	if cfg.BaseURL != "" && !set["base-url"] {
		*baseURL = cfg.BaseURL
	}
	if cfg.Production && !set["production"] {
		*production = true
	}
	if cfg.GPUID != 0 && !set["gpu-id"] {
		*gpuID = cfg.GPUID
	}
	if cfg.TileSize != 0 && !set["tile-size"] {
		*tileSize = cfg.TileSize
	}
	if cfg.MaxUploadMB != 0 && !set["max-upload-mb"] {
		*maxUploadMB = cfg.MaxUploadMB
	}
	if cfg.JobTimeoutMin != 0 && !set["job-timeout-min"] {
		*jobTimeoutMin = cfg.JobTimeoutMin
	}
}
