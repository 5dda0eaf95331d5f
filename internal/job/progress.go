package job

import (
	"fmt"
	"math"
)

// UnknownETR is reported when no velocity can be computed yet.
const UnknownETR = "--:--:--"

// Report is the human-facing view of one progress sample.
type Report struct {
	// Within-pass completion, rounded percent.
	Percent int
	// Completion across all passes, rounded percent.
	TotalPercent int
	// Time remaining in the current pass, "HH:MM:SS" or UnknownETR.
	ItemETR string
	// Time remaining across all passes, "HH:MM:SS" or UnknownETR.
	TotalETR string
}

// Tracker converts raw progress samples into Reports by linear
// extrapolation from the two most recent samples. One Tracker serves one
// job; Reset must be called before the first sample of a new job.
type Tracker struct {
	hasPrev  bool
	prevFrac float64
	prevTime float64
}

// Reset clears the retained sample so state never leaks across jobs.
func (t *Tracker) Reset() {
	t.hasPrev = false
	t.prevFrac = 0
	t.prevTime = 0
}

// Record ingests one sample. fraction is within-item progress in [0,1],
// timestamp is in seconds (any monotonic origin), itemIndex counts finished
// items and itemCount is the total. The first sample after a Reset, and any
// degenerate pair with a non-increasing fraction, yields UnknownETR.
func (t *Tracker) Record(fraction, timestamp float64, itemIndex, itemCount int) Report {
	rep := Report{
		Percent:  int(math.Round(fraction * 100)),
		ItemETR:  UnknownETR,
		TotalETR: UnknownETR,
	}
	if itemCount > 0 {
		rep.TotalPercent = int(math.Round((float64(itemIndex) + fraction) / float64(itemCount) * 100))
	}
	if t.hasPrev && fraction > t.prevFrac {
		rate := (timestamp - t.prevTime) / (fraction - t.prevFrac)
		itemEtr := rate * (1 - t.prevFrac)
		totalEtr := rate * (float64(itemCount-itemIndex) - t.prevFrac)
		if itemEtr >= 0 && !math.IsInf(itemEtr, 0) {
			rep.ItemETR = formatHMS(itemEtr)
		}
		if totalEtr >= 0 && !math.IsInf(totalEtr, 0) {
			rep.TotalETR = formatHMS(totalEtr)
		}
	}
	t.prevFrac = fraction
	t.prevTime = timestamp
	t.hasPrev = true
	return rep
}

// formatHMS renders seconds as zero-padded HH:MM:SS with unbounded hours.
func formatHMS(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}
