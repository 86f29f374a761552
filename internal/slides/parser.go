// Package slides splits deck markdown into ordered slide records.
package slides

import (
	"strings"

	"github.com/amankumarsingh77/slidecast/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	separator     = "---"
	commentOpen   = "<!--"
	commentClose  = "-->"
	byteOrderMark = "\ufeff"
)

// directiveKeys are Marp directives, spelled the way Marp matches them
// (case-sensitive). A comment made only of these is slide styling, not
// narration, and stays in the rendered content.
var directiveKeys = map[string]bool{
	"theme": true, "paginate": true, "header": true, "footer": true,
	"class": true, "backgroundColor": true, "backgroundImage": true,
	"backgroundPosition": true, "backgroundRepeat": true, "backgroundSize": true,
	"color": true, "headingDivider": true, "size": true, "style": true,
	"math": true, "lang": true, "marp": true, "title": true,
	"description": true, "author": true, "transition": true,
}

// Document is a parsed deck. Meta holds the decoded front matter, nil when
// the deck has none.
type Document struct {
	Meta   map[string]interface{}
	Slides []models.Slide
}

// Parse never fails: malformed front matter is treated as slide content and
// an unterminated comment is treated as absent.
func Parse(markdown string) Document {
	text := strings.TrimPrefix(strings.ReplaceAll(markdown, "\r\n", "\n"), byteOrderMark)
	meta, body := splitFrontMatter(text)

	doc := Document{Meta: meta}
	for _, part := range splitParts(body) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		content, narration := extractNarration(part)
		doc.Slides = append(doc.Slides, models.Slide{
			Index:     len(doc.Slides),
			Content:   content,
			Narration: narration,
		})
	}
	return doc
}

func ParseSlides(markdown string) []models.Slide {
	return Parse(markdown).Slides
}

func isSeparator(line string) bool {
	return strings.TrimRight(line, " \t") == separator
}

// splitFrontMatter accepts a leading block only when it decodes to a YAML
// mapping (or is empty); otherwise the text is returned untouched.
func splitFrontMatter(text string) (map[string]interface{}, string) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || !isSeparator(lines[0]) {
		return nil, text
	}
	for i := 1; i < len(lines); i++ {
		if !isSeparator(lines[i]) {
			continue
		}
		header := strings.Join(lines[1:i], "\n")
		body := strings.Join(lines[i+1:], "\n")
		if strings.TrimSpace(header) == "" {
			return map[string]interface{}{}, body
		}
		meta := map[string]interface{}{}
		if err := yaml.Unmarshal([]byte(header), &meta); err != nil || len(meta) == 0 {
			return nil, text
		}
		return meta, body
	}
	return nil, text
}

// splitParts cuts body on separator lines outside fenced code blocks.
func splitParts(body string) []string {
	var (
		parts   []string
		current []string
		fence   string
	)
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case fence != "":
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
		case fenceMarker(trimmed) != "":
			fence = fenceMarker(trimmed)
		case isSeparator(line):
			parts = append(parts, strings.Join(current, "\n"))
			current = current[:0]
			continue
		}
		current = append(current, line)
	}
	return append(parts, strings.Join(current, "\n"))
}

func fenceMarker(trimmed string) string {
	switch {
	case strings.HasPrefix(trimmed, "```"):
		return "```"
	case strings.HasPrefix(trimmed, "~~~"):
		return "~~~"
	}
	return ""
}

// fencedRanges returns the byte spans of fenced code blocks in part. An
// unclosed fence runs to the end of the text.
func fencedRanges(part string) [][2]int {
	var (
		ranges [][2]int
		fence  string
		open   int
		pos    int
	)
	for _, line := range strings.SplitAfter(part, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case fence != "":
			if strings.HasPrefix(trimmed, fence) {
				ranges = append(ranges, [2]int{open, pos + len(line)})
				fence = ""
			}
		case fenceMarker(trimmed) != "":
			fence = fenceMarker(trimmed)
			open = pos
		}
		pos += len(line)
	}
	if fence != "" {
		ranges = append(ranges, [2]int{open, len(part)})
	}
	return ranges
}

// extractNarration takes the first comment outside fenced code that is not a
// directive. Comments inside code samples are slide content.
func extractNarration(part string) (string, string) {
	fenced := fencedRanges(part)
	offset := 0
	for {
		start := strings.Index(part[offset:], commentOpen)
		if start < 0 {
			return part, ""
		}
		start += offset
		if skip := fenceEnd(fenced, start); skip > 0 {
			offset = skip
			continue
		}
		end := strings.Index(part[start+len(commentOpen):], commentClose)
		if end < 0 {
			return part, ""
		}
		end += start + len(commentOpen)
		inner := strings.TrimSpace(part[start+len(commentOpen) : end])
		if isDirective(inner) {
			offset = end + len(commentClose)
			continue
		}
		content := strings.TrimSpace(part[:start] + part[end+len(commentClose):])
		return content, inner
	}
}

func fenceEnd(ranges [][2]int, at int) int {
	for _, r := range ranges {
		if at >= r[0] && at < r[1] {
			return r[1]
		}
	}
	return 0
}

// isDirective reports whether every line of comment is a "key: value" pair
// naming a directive. Keys may carry Marp's "_" scope prefix but are otherwise
// exact, so prose such as "Title: why we moved" is narration.
func isDirective(comment string) bool {
	if comment == "" {
		return false
	}
	for _, line := range strings.Split(comment, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, _, ok := strings.Cut(line, ":")
		if !ok {
			return false
		}
		key = strings.TrimPrefix(strings.TrimSpace(key), "_")
		if !directiveKeys[key] {
			return false
		}
	}
	return true
}
