package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/amankumarsingh77/slidecast/internal/config"
	"gopkg.in/yaml.v3"
)

// MarpRenderer rasterizes one slide at a time with the marp CLI.
type MarpRenderer struct {
	binary
}

func NewMarpRenderer(cfg *config.Config, runner CommandRunner) *MarpRenderer {
	return &MarpRenderer{binary: newBinary("marp", cfg.Tools.MarpPath, cfg.Tools.Timeout, runner)}
}

func (m *MarpRenderer) Name() string { return m.name }

func (m *MarpRenderer) CheckAvailable(ctx context.Context) error { return m.check() }

func (m *MarpRenderer) Render(ctx context.Context, req RenderRequest) error {
	workDir, err := os.MkdirTemp(filepath.Dir(req.OutputPath), ".marp-*")
	if err != nil {
		return fmt.Errorf("create marp workspace: %w", err)
	}
	defer os.RemoveAll(workDir)

	doc, err := singleSlideDocument(req)
	if err != nil {
		return err
	}
	source := filepath.Join(workDir, "slide.md")
	if err := os.WriteFile(source, doc, 0o644); err != nil {
		return fmt.Errorf("write slide document: %w", err)
	}

	target := filepath.Join(workDir, "slide.png")
	args := []string{source, "--images", "png", "--output", target, "--allow-local-files"}
	if isThemeFile(req.Theme) {
		args = append(args, "--theme", req.Theme)
	}
	if _, err := m.run(ctx, args...); err != nil {
		return err
	}

	produced, err := renderedImage(target)
	if err != nil {
		return err
	}
	return promote(produced, req.OutputPath)
}

func isThemeFile(theme string) bool {
	return strings.HasSuffix(strings.ToLower(theme), ".css")
}

func singleSlideDocument(req RenderRequest) ([]byte, error) {
	front := make(map[string]interface{}, len(req.Directives)+2)
	for k, v := range req.Directives {
		front[k] = v
	}
	front["marp"] = true
	switch {
	case req.Theme == "":
	case isThemeFile(req.Theme):
		delete(front, "theme")
	default:
		front["theme"] = req.Theme
	}

	header, err := yaml.Marshal(front)
	if err != nil {
		return nil, fmt.Errorf("encode slide front matter: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	b.WriteString(req.Markdown)
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// renderedImage finds marp's output, which is either the requested name or
// a numbered variant such as slide.001.png.
func renderedImage(target string) (string, error) {
	if err := nonEmptyFile(target); err == nil {
		return target, nil
	}
	pattern := strings.TrimSuffix(target, filepath.Ext(target)) + ".*" + filepath.Ext(target)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	sort.Strings(matches)
	for _, match := range matches {
		if nonEmptyFile(match) == nil {
			return match, nil
		}
	}
	return "", fmt.Errorf("marp produced no image for %s", filepath.Base(target))
}
