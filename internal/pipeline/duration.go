package pipeline

import (
	"context"
	"math"
	"os"

	"github.com/amankumarsingh77/slidecast/pkg/logger"
)

// DefaultSlideDuration is used when neither audio nor a valid configured
// fallback gives a length.
const DefaultSlideDuration = 5.0

type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

func validDuration(d float64) bool {
	return d > 0 && !math.IsNaN(d) && !math.IsInf(d, 0)
}

// ResolveDuration returns the length of audioPath when it can be probed,
// otherwise fallback. The result is always positive and finite.
func ResolveDuration(ctx context.Context, prober DurationProber, audioPath string, fallback float64, log logger.Logger) float64 {
	if !validDuration(fallback) {
		fallback = DefaultSlideDuration
	}
	if audioPath == "" {
		return fallback
	}
	if _, err := os.Stat(audioPath); err != nil {
		log.Warnf("audio %s unavailable, using %.2fs: %v", audioPath, fallback, err)
		return fallback
	}
	d, err := prober.ProbeDuration(ctx, audioPath)
	if err != nil {
		log.Warnf("failed to probe %s, using %.2fs: %v", audioPath, fallback, err)
		return fallback
	}
	if !validDuration(d) {
		log.Warnf("probed duration %v for %s is invalid, using %.2fs", d, audioPath, fallback)
		return fallback
	}
	return d
}
