package job

import (
	"strconv"
	"strings"
)

// Plan is the composition of native-scale passes and optional final resize
// required to realize a requested scale factor.
type Plan struct {
	// Number of inference passes at the model's native scale.
	Passes int
	// Explicit final output dimensions; zero when the last pass's raw
	// output is the final image.
	ResizeW int
	ResizeH int
}

// NeedsResize reports whether the plan ends with an explicit resize step.
func (p Plan) NeedsResize() bool { return p.ResizeW > 0 && p.ResizeH > 0 }

// BuildPlan decides how to go from nativeScale to requestedScale for an
// image of origW x origH pixels. resizeTo, when non-empty, overrides the
// computed target dimensions.
func BuildPlan(nativeScale, requestedScale, origW, origH int, resizeTo string) (Plan, error) {
	p := Plan{Passes: 1}
	switch {
	case requestedScale > nativeScale && nativeScale != 1:
		// Smallest pass count whose compound scale covers the request.
		// Integer arithmetic; float log would misjudge exact powers.
		compound := nativeScale
		for compound < requestedScale {
			compound *= nativeScale
			p.Passes++
		}
		if compound != requestedScale {
			p.ResizeW = origW * requestedScale
			p.ResizeH = origH * requestedScale
		}
	case requestedScale < nativeScale:
		p.ResizeW = origW * requestedScale
		p.ResizeH = origH * requestedScale
	}
	if resizeTo != "" {
		w, h, err := parseResizeTo(resizeTo, origW, origH)
		if err != nil {
			return Plan{}, err
		}
		p.ResizeW, p.ResizeH = w, h
	}
	return p, nil
}

// parseResizeTo handles the two override forms: "<width>x..." is an
// absolute target width with aspect-preserving height, "<num>/<den>" is a
// uniform ratio applied to the original dimensions.
func parseResizeTo(s string, origW, origH int) (int, int, error) {
	switch {
	case strings.Contains(s, "x"):
		w, err := strconv.Atoi(s[:strings.Index(s, "x")])
		if err != nil || w < 1 {
			return 0, 0, ErrValidation("invalid resizeTo width: " + s)
		}
		return w, origH * w / origW, nil
	case strings.Contains(s, "/"):
		parts := strings.SplitN(s, "/", 2)
		num, err1 := strconv.Atoi(parts[0])
		den, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || num < 1 || den < 1 {
			return 0, 0, ErrValidation("invalid resizeTo ratio: " + s)
		}
		return origW * num / den, origH * num / den, nil
	}
	return 0, 0, ErrValidation("invalid resizeTo format: " + s)
}
