package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/amankumarsingh77/slidecast/internal/models"
	"github.com/amankumarsingh77/slidecast/internal/tools"
)

type fakeTool struct {
	name         string
	availableErr error
}

func (f *fakeTool) Name() string                         { return f.name }
func (f *fakeTool) CheckAvailable(context.Context) error { return f.availableErr }

type fakeRenderer struct {
	fakeTool
	mu      sync.Mutex
	calls   []tools.RenderRequest
	failFor map[string]bool
}

func (f *fakeRenderer) Render(_ context.Context, req tools.RenderRequest) error {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.failFor[req.Markdown] {
		return errors.New("marp exploded")
	}
	return os.WriteFile(req.OutputPath, []byte("png"), 0o644)
}

type synthCall struct {
	text  string
	voice string
	speed float64
}

type fakeSynthesizer struct {
	fakeTool
	mu    sync.Mutex
	calls []synthCall
	fail  bool
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text, voice string, speed float64, out string) error {
	f.mu.Lock()
	f.calls = append(f.calls, synthCall{text: text, voice: voice, speed: speed})
	f.mu.Unlock()
	if f.fail {
		return errors.New("tts service unavailable")
	}
	return os.WriteFile(out, []byte(text), 0o644)
}

type segmentCall struct {
	image    string
	audio    string
	duration float64
	output   string
}

type fakeEncoder struct {
	fakeTool
	mu           sync.Mutex
	segments     []segmentCall
	concatenated []string
	audioLength  float64
	failSegment  int
}

func newFakeEncoder() *fakeEncoder {
	return &fakeEncoder{fakeTool: fakeTool{name: "ffmpeg"}, failSegment: -1}
}

func (f *fakeEncoder) BuildSegment(_ context.Context, image, audio string, duration float64, out string) error {
	f.mu.Lock()
	idx := len(f.segments)
	f.segments = append(f.segments, segmentCall{image: image, audio: audio, duration: duration, output: out})
	f.mu.Unlock()
	if idx == f.failSegment {
		return errors.New("encoder crashed")
	}
	return os.WriteFile(out, []byte(fmt.Sprintf("%s|%.2f", image, duration)), 0o644)
}

func (f *fakeEncoder) Concatenate(_ context.Context, paths []string, out string) error {
	f.mu.Lock()
	f.concatenated = append([]string(nil), paths...)
	f.mu.Unlock()
	var parts []string
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		parts = append(parts, string(raw))
	}
	return os.WriteFile(out, []byte(strings.Join(parts, "\n")), 0o644)
}

func (f *fakeEncoder) ProbeDuration(context.Context, string) (float64, error) {
	if f.audioLength <= 0 {
		return 0, errors.New("no duration")
	}
	return f.audioLength, nil
}

type stageUpdate struct {
	phase    models.ExportPhase
	label    string
	progress int
}

type fakeReporter struct {
	mu        sync.Mutex
	stages    []stageUpdate
	total     int
	processed int
	cancel    atomic.Bool
}

func (r *fakeReporter) Stage(phase models.ExportPhase, label string, progress int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stageUpdate{phase: phase, label: label, progress: progress})
}

func (r *fakeReporter) Slides(total, processed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total, r.processed = total, processed
}

func (r *fakeReporter) CancelRequested() bool { return r.cancel.Load() }

func (r *fakeReporter) labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.stages))
	for _, s := range r.stages {
		out = append(out, s.label)
	}
	return out
}
