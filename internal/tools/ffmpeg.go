package tools

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/amankumarsingh77/slidecast/internal/config"
)

// FFmpegEncoder turns slide images and narration into uniform mp4 segments
// and joins them. Every segment shares one encoding so Concatenate can use
// stream copy.
type FFmpegEncoder struct {
	ffmpeg       binary
	ffprobe      binary
	width        int
	height       int
	frameRate    int
	videoCodec   string
	preset       string
	crf          int
	audioBitrate string
	sampleRate   int
}

func NewFFmpegEncoder(cfg *config.Config, runner CommandRunner) *FFmpegEncoder {
	t := cfg.Tools
	return &FFmpegEncoder{
		ffmpeg:       newBinary("ffmpeg", t.FFmpegPath, t.Timeout, runner),
		ffprobe:      newBinary("ffprobe", t.FFprobePath, t.Timeout, runner),
		width:        t.Width,
		height:       t.Height,
		frameRate:    t.FrameRate,
		videoCodec:   t.VideoCodec,
		preset:       t.Preset,
		crf:          t.CRF,
		audioBitrate: t.AudioBitrate,
		sampleRate:   t.SampleRate,
	}
}

func (e *FFmpegEncoder) Name() string { return e.ffmpeg.name }

func (e *FFmpegEncoder) CheckAvailable(ctx context.Context) error {
	if err := e.ffmpeg.check(); err != nil {
		return err
	}
	return e.ffprobe.check()
}

func (e *FFmpegEncoder) BuildSegment(ctx context.Context, imagePath, audioPath string, duration float64, outputPath string) error {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return fmt.Errorf("invalid segment duration %v", duration)
	}

	fps := strconv.Itoa(e.frameRate)
	args := []string{"-y", "-hide_banner", "-loglevel", "error",
		"-loop", "1", "-framerate", fps, "-i", imagePath,
	}
	if audioPath != "" {
		args = append(args, "-i", audioPath)
	} else {
		args = append(args, "-f", "lavfi",
			"-i", fmt.Sprintf("anullsrc=channel_layout=stereo:sample_rate=%d", e.sampleRate))
	}
	args = append(args,
		"-map", "0:v:0", "-map", "1:a:0",
		"-vf", e.videoFilter(),
		"-r", fps,
		"-c:v", e.videoCodec,
		"-preset", e.preset,
		"-crf", strconv.Itoa(e.crf),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", e.audioBitrate,
		"-ar", strconv.Itoa(e.sampleRate),
		"-ac", "2",
	)
	if audioPath != "" {
		// pad narration with silence so the slide holds for the full duration
		args = append(args, "-af", "apad")
	}

	tmp := outputPath + ".part"
	args = append(args,
		"-t", strconv.FormatFloat(duration, 'f', 3, 64),
		"-movflags", "+faststart",
		"-f", "mp4", tmp,
	)
	if _, err := e.ffmpeg.run(ctx, args...); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return promote(tmp, outputPath)
}

func (e *FFmpegEncoder) videoFilter() string {
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=black,setsar=1,format=yuv420p",
		e.width, e.height, e.width, e.height,
	)
}

func (e *FFmpegEncoder) Concatenate(ctx context.Context, segmentPaths []string, outputPath string) error {
	if len(segmentPaths) == 0 {
		return fmt.Errorf("no segments to concatenate")
	}

	listPath, err := writeConcatList(filepath.Dir(outputPath), segmentPaths)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	tmp := outputPath + ".part"
	_, err = e.ffmpeg.run(ctx,
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-movflags", "+faststart",
		"-f", "mp4", tmp,
	)
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return promote(tmp, outputPath)
}

func writeConcatList(dir string, segmentPaths []string) (string, error) {
	f, err := os.CreateTemp(dir, ".concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create concat list: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, segment := range segmentPaths {
		absPath, err := filepath.Abs(segment)
		if err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", err
		}
		fmt.Fprintf(w, "file '%s'\n", strings.ReplaceAll(absPath, "'", `'\''`))
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write concat list: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (e *FFmpegEncoder) ProbeDuration(ctx context.Context, path string) (float64, error) {
	result, err := e.ffprobe.run(ctx,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	)
	if err != nil {
		return 0, err
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(result.Stdout), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", strings.TrimSpace(result.Stdout), err)
	}
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return 0, fmt.Errorf("invalid duration %v", duration)
	}
	return duration, nil
}
