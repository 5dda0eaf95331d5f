package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"upscaled/internal/common/fsutil"
	"upscaled/pkg/types"
)

// LoadDir scans a models directory laid out as <dir>/<algo>/x<scale>/*.onnx
// and builds the model catalog. The algo is the first-level directory name,
// the native scale is parsed from the second level (e.g. "x4"), and the
// model name is the file stem.
func LoadDir(dir string) ([]types.ModelInfo, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	algoDirs, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.ModelInfo
	for _, algoDir := range algoDirs {
		if !algoDir.IsDir() {
			continue
		}
		algo := algoDir.Name()
		scaleDirs, err := os.ReadDir(filepath.Join(abs, algo))
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", algo, err)
		}
		for _, scaleDir := range scaleDirs {
			if !scaleDir.IsDir() {
				continue
			}
			scale, err := strconv.Atoi(strings.TrimPrefix(scaleDir.Name(), "x"))
			if err != nil || scale < 1 {
				continue
			}
			files, err := os.ReadDir(filepath.Join(abs, algo, scaleDir.Name()))
			if err != nil {
				return nil, fmt.Errorf("read dir %s/%s: %w", algo, scaleDir.Name(), err)
			}
			for _, f := range files {
				if f.IsDir() {
					continue
				}
				name := f.Name()
				if !strings.HasSuffix(strings.ToLower(name), ".onnx") {
					continue
				}
				models = append(models, types.ModelInfo{
					Name:  strings.TrimSuffix(name, filepath.Ext(name)),
					Path:  filepath.Join(abs, algo, scaleDir.Name(), name),
					Scale: scale,
					Algo:  algo,
				})
			}
		}
	}
	return models, nil
}

// Find resolves an algo+name pair against the catalog.
// The second return is false when no model matches.
func Find(models []types.ModelInfo, algo, name string) (types.ModelInfo, bool) {
	for _, m := range models {
		if m.Algo == algo && m.Name == name {
			return m, true
		}
	}
	return types.ModelInfo{}, false
}

// GroupByAlgo builds the algo -> model names mapping served by GET /models.
// When filter is non-empty only that algo is included.
func GroupByAlgo(models []types.ModelInfo, filter string) map[string][]string {
	out := make(map[string][]string)
	for _, m := range models {
		if filter != "" && m.Algo != filter {
			continue
		}
		out[m.Algo] = append(out[m.Algo], m.Name)
	}
	return out
}
