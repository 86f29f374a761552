// Package tools wraps the external programs an export depends on: the
// marp slide renderer, the edge-tts speech synthesizer and ffmpeg/ffprobe.
package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrNoAudio is returned by a Synthesizer when there is nothing to speak or
// the tool produced an empty file.
var ErrNoAudio = errors.New("no audio produced")

type Tool interface {
	Name() string
	CheckAvailable(ctx context.Context) error
}

// RenderRequest describes one slide to rasterize. Directives are the deck's
// front-matter keys, re-applied to the standalone single-slide document.
type RenderRequest struct {
	Markdown   string
	Theme      string
	Directives map[string]interface{}
	OutputPath string
}

type Renderer interface {
	Tool
	Render(ctx context.Context, req RenderRequest) error
}

type Synthesizer interface {
	Tool
	Synthesize(ctx context.Context, text, voice string, speed float64, outputPath string) error
}

type Encoder interface {
	Tool
	BuildSegment(ctx context.Context, imagePath, audioPath string, duration float64, outputPath string) error
	Concatenate(ctx context.Context, segmentPaths []string, outputPath string) error
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// promote moves a finished temporary file to its final name, removing it if
// the rename fails so no partial file survives.
func promote(tmpPath, finalPath string) error {
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("move %s to %s: %w", tmpPath, finalPath, err)
	}
	return nil
}

func nonEmptyFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s is empty", path)
	}
	return nil
}
