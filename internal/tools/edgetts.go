package tools

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/amankumarsingh77/slidecast/internal/config"
)

const (
	minSpeed = 0.5
	maxSpeed = 2.0
)

// EdgeTTSSynthesizer speaks narration through the edge-tts CLI.
type EdgeTTSSynthesizer struct {
	binary
}

func NewEdgeTTSSynthesizer(cfg *config.Config, runner CommandRunner) *EdgeTTSSynthesizer {
	return &EdgeTTSSynthesizer{binary: newBinary("edge-tts", cfg.Tools.EdgeTTSPath, cfg.Tools.Timeout, runner)}
}

func (s *EdgeTTSSynthesizer) Name() string { return s.name }

func (s *EdgeTTSSynthesizer) CheckAvailable(ctx context.Context) error { return s.check() }

func (s *EdgeTTSSynthesizer) Synthesize(ctx context.Context, text, voice string, speed float64, outputPath string) error {
	if strings.TrimSpace(text) == "" {
		return ErrNoAudio
	}

	textFile, err := os.CreateTemp(filepath.Dir(outputPath), ".tts-*.txt")
	if err != nil {
		return fmt.Errorf("create narration file: %w", err)
	}
	defer os.Remove(textFile.Name())
	if _, err := textFile.WriteString(text); err != nil {
		textFile.Close()
		return fmt.Errorf("write narration file: %w", err)
	}
	if err := textFile.Close(); err != nil {
		return fmt.Errorf("close narration file: %w", err)
	}

	tmp := outputPath + ".part"
	args := make([]string, 0, 8)
	if voice != "" {
		args = append(args, "--voice", voice)
	}
	// The rate is glued to its flag; a leading "-" would otherwise be read as an option.
	args = append(args, "--rate="+RateFor(speed), "--file", textFile.Name(), "--write-media", tmp)
	if _, err := s.run(ctx, args...); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := nonEmptyFile(tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrNoAudio, err)
	}
	return promote(tmp, outputPath)
}

// RateFor maps a speed multiplier to edge-tts's signed percentage, e.g.
// 1.25 becomes "+25%". Zero means normal speed.
func RateFor(speed float64) string {
	if speed == 0 || math.IsNaN(speed) {
		speed = 1
	}
	speed = math.Max(minSpeed, math.Min(maxSpeed, speed))
	return fmt.Sprintf("%+d%%", int(math.Round((speed-1)*100)))
}
