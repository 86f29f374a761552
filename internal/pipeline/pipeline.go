// Package pipeline turns one deck into one narrated video: it checks the
// external tools, parses slides, synthesizes narration, renders images,
// encodes one segment per slide and concatenates them.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/amankumarsingh77/slidecast/internal/config"
	"github.com/amankumarsingh77/slidecast/internal/models"
	"github.com/amankumarsingh77/slidecast/internal/slides"
	"github.com/amankumarsingh77/slidecast/internal/tools"
	"github.com/amankumarsingh77/slidecast/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	progressParsed    = 10
	progressSynthDone = 40
	progressRendered  = 60
	progressSegments  = 90
	progressConcat    = 95
)

// Reporter receives a run's progress. It is the job's single writer and
// the source of its cancel flag.
type Reporter interface {
	Stage(phase models.ExportPhase, label string, progress int)
	Slides(total, processed int)
	CancelRequested() bool
}

type Request struct {
	JobID           string
	PresentationID  string
	Content         string
	Theme           string
	Voice           string
	Speed           float64
	DefaultDuration float64
	OutputPath      string
}

type Result struct {
	OutputPath  string
	TotalSlides int
	Duration    float64
	// Warnings lists narration that could not be synthesized; those slides
	// were encoded silent at the fallback duration.
	Warnings []*StageError
}

type Pipeline struct {
	renderer     tools.Renderer
	synthesizer  tools.Synthesizer
	encoder      tools.Encoder
	logger       logger.Logger
	workDir      string
	parallelism  int
	defaultTheme string
	defaultVoice string
	onCheckpoint func(Checkpoint)
	removeAll    func(string) error
}

func NewPipeline(cfg *config.Config, renderer tools.Renderer, synthesizer tools.Synthesizer, encoder tools.Encoder, logger logger.Logger) *Pipeline {
	parallelism := cfg.Export.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	return &Pipeline{
		renderer:     renderer,
		synthesizer:  synthesizer,
		encoder:      encoder,
		logger:       logger,
		workDir:      cfg.Export.WorkDir,
		parallelism:  parallelism,
		defaultTheme: cfg.Export.DefaultTheme,
		defaultVoice: cfg.Export.DefaultVoice,
		removeAll:    os.RemoveAll,
	}
}

// OnCheckpoint registers fn to observe every cancellation checkpoint.
func (p *Pipeline) OnCheckpoint(fn func(Checkpoint)) *Pipeline {
	p.onCheckpoint = fn
	return p
}

// WorkDirFor is the scratch directory of one job. It never outlives Run.
func (p *Pipeline) WorkDirFor(presentationID, jobID string) string {
	return filepath.Join(p.workDir, presentationID+"-"+jobID)
}

// Tools lists the external programs a run needs.
func (p *Pipeline) Tools() []tools.Tool {
	return []tools.Tool{p.renderer, p.synthesizer, p.encoder}
}

func (p *Pipeline) Run(ctx context.Context, req Request, rep Reporter) (*Result, error) {
	workDir := p.WorkDirFor(req.PresentationID, req.JobID)
	defer func() {
		if err := p.removeAll(workDir); err != nil {
			p.logger.Errorf("job %s: failed to remove work dir %s: %v", req.JobID, workDir, err)
		}
	}()

	if err := p.checkpoint(ctx, rep, models.PhaseCheckingDependencies, -1); err != nil {
		return nil, err
	}
	rep.Stage(models.PhaseCheckingDependencies, "Checking dependencies", 0)
	for _, tool := range p.Tools() {
		if err := tool.CheckAvailable(ctx); err != nil {
			return nil, stageError(models.PhaseCheckingDependencies, KindDependencyMissing, -1,
				fmt.Sprintf("required tool %s is unavailable", tool.Name()), err)
		}
	}

	if err := p.checkpoint(ctx, rep, models.PhaseParsing, -1); err != nil {
		return nil, err
	}
	rep.Stage(models.PhaseParsing, "Parsing slides", 0)
	doc := slides.Parse(req.Content)
	total := len(doc.Slides)
	if total == 0 {
		return nil, stageError(models.PhaseParsing, KindEmptyInput, -1, "no slides found", nil)
	}
	rep.Slides(total, 0)
	rep.Stage(models.PhaseParsing, fmt.Sprintf("Parsed %d slides", total), progressParsed)

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, stageError(models.PhaseParsing, KindEncodeFailure, -1, "failed to create work dir", err)
	}

	if err := p.checkpoint(ctx, rep, models.PhaseSynthesizingAudio, -1); err != nil {
		return nil, err
	}
	audio, warnings := p.synthesize(ctx, req, doc.Slides, workDir, rep)

	if err := p.checkpoint(ctx, rep, models.PhaseRenderingSlides, -1); err != nil {
		return nil, err
	}
	images, err := p.render(ctx, p.themeFor(req, doc.Meta), doc, workDir, rep)
	if err != nil {
		return nil, interrupted(ctx, rep, err)
	}

	if err := p.checkpoint(ctx, rep, models.PhaseBuildingSegments, -1); err != nil {
		return nil, err
	}
	segments := make([]string, total)
	var totalDuration float64
	for i, slide := range doc.Slides {
		if err := p.checkpoint(ctx, rep, models.PhaseBuildingSegments, slide.Index); err != nil {
			return nil, err
		}
		rep.Stage(models.PhaseBuildingSegments, fmt.Sprintf("Building segment %d/%d", i+1, total),
			progressRendered+(progressSegments-progressRendered)*i/total)

		duration := ResolveDuration(ctx, p.encoder, audio[i], req.DefaultDuration, p.logger)
		segments[i] = filepath.Join(workDir, fmt.Sprintf("segment_%03d.mp4", slide.Index))
		if err := p.encoder.BuildSegment(ctx, images[i], audio[i], duration, segments[i]); err != nil {
			return nil, interrupted(ctx, rep, stageError(models.PhaseBuildingSegments, KindEncodeFailure, slide.Index,
				"failed to build segment", err))
		}
		totalDuration += duration
		rep.Slides(total, i+1)
		rep.Stage(models.PhaseBuildingSegments, fmt.Sprintf("Building segment %d/%d", i+1, total),
			progressRendered+(progressSegments-progressRendered)*(i+1)/total)
	}

	if err := p.checkpoint(ctx, rep, models.PhaseConcatenating, -1); err != nil {
		return nil, err
	}
	rep.Stage(models.PhaseConcatenating, "Concatenating segments", progressConcat)
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return nil, stageError(models.PhaseConcatenating, KindEncodeFailure, -1, "failed to create output dir", err)
	}
	if err := p.encoder.Concatenate(ctx, segments, req.OutputPath); err != nil {
		return nil, interrupted(ctx, rep, stageError(models.PhaseConcatenating, KindEncodeFailure, -1,
			"failed to concatenate segments", err))
	}

	return &Result{
		OutputPath:  req.OutputPath,
		TotalSlides: total,
		Duration:    totalDuration,
		Warnings:    warnings,
	}, nil
}

// themeFor picks the request theme, then the deck's own, then the default.
func (p *Pipeline) themeFor(req Request, meta map[string]interface{}) string {
	if req.Theme != "" {
		return req.Theme
	}
	if theme, ok := meta["theme"].(string); ok && theme != "" {
		return theme
	}
	return p.defaultTheme
}

// synthesize returns one audio path per slide, "" for silent slides.
// Failures are collected as warnings and never abort the run.
func (p *Pipeline) synthesize(ctx context.Context, req Request, deck []models.Slide, workDir string, rep Reporter) ([]string, []*StageError) {
	audio := make([]string, len(deck))
	narrated := 0
	for _, slide := range deck {
		if slide.Narration != "" {
			narrated++
		}
	}
	rep.Stage(models.PhaseSynthesizingAudio, fmt.Sprintf("Synthesizing narration 0/%d", narrated), progressParsed)
	if narrated == 0 {
		rep.Stage(models.PhaseSynthesizingAudio, "No narration to synthesize", progressSynthDone)
		return audio, nil
	}

	voice := req.Voice
	if voice == "" {
		voice = p.defaultVoice
	}

	var (
		mu       sync.Mutex
		warnings []*StageError
		done     atomic.Int64
	)
	g := new(errgroup.Group)
	g.SetLimit(p.parallelism)
	for i, slide := range deck {
		i, slide := i, slide
		if slide.Narration == "" {
			continue
		}
		g.Go(func() error {
			path := filepath.Join(workDir, fmt.Sprintf("audio_%03d.mp3", slide.Index))
			if err := p.synthesizer.Synthesize(ctx, slide.Narration, voice, req.Speed, path); err != nil {
				p.logger.Warnf("job %s: slide %d narration skipped: %v", req.JobID, slide.Index, err)
				mu.Lock()
				warnings = append(warnings, stageError(models.PhaseSynthesizingAudio, KindSynthesisFailure,
					slide.Index, "narration synthesis failed", err))
				mu.Unlock()
			} else {
				audio[i] = path
			}
			n := int(done.Add(1))
			rep.Stage(models.PhaseSynthesizingAudio, fmt.Sprintf("Synthesizing narration %d/%d", n, narrated),
				progressParsed+(progressSynthDone-progressParsed)*n/narrated)
			return nil
		})
	}
	_ = g.Wait()
	return audio, warnings
}

// render rasterizes every slide. The first failure cancels the rest.
func (p *Pipeline) render(ctx context.Context, theme string, doc slides.Document, workDir string, rep Reporter) ([]string, error) {
	total := len(doc.Slides)
	images := make([]string, total)
	rep.Stage(models.PhaseRenderingSlides, fmt.Sprintf("Rendering slides 0/%d", total), progressSynthDone)

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)
	for i, slide := range doc.Slides {
		i, slide := i, slide
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			path := filepath.Join(workDir, fmt.Sprintf("slide_%03d.png", slide.Index))
			err := p.renderer.Render(gctx, tools.RenderRequest{
				Markdown:   slide.Content,
				Theme:      theme,
				Directives: doc.Meta,
				OutputPath: path,
			})
			if err != nil {
				return stageError(models.PhaseRenderingSlides, KindRenderFailure, slide.Index, "failed to render slide", err)
			}
			images[i] = path
			n := int(done.Add(1))
			rep.Stage(models.PhaseRenderingSlides, fmt.Sprintf("Rendering slides %d/%d", n, total),
				progressSynthDone+(progressRendered-progressSynthDone)*n/total)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}
