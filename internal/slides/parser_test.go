package slides

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSplitsSlidesAndNarration(t *testing.T) {
	md := "# A\n<!-- hello -->\n---\n# B"

	slides := ParseSlides(md)

	require.Len(t, slides, 2)
	assert.Equal(t, 0, slides[0].Index)
	assert.Equal(t, "# A", slides[0].Content)
	assert.Equal(t, "hello", slides[0].Narration)
	assert.Equal(t, 1, slides[1].Index)
	assert.Equal(t, "# B", slides[1].Content)
	assert.Empty(t, slides[1].Narration)
}

func TestParseSkipsEmptyParts(t *testing.T) {
	slides := ParseSlides("---\n\n---\n# Only\n---\n   \n")

	require.Len(t, slides, 1)
	assert.Equal(t, 0, slides[0].Index)
	assert.Equal(t, "# Only", slides[0].Content)
}

func TestParseEmptyInput(t *testing.T) {
	assert.Empty(t, ParseSlides(""))
	assert.Empty(t, ParseSlides("\n---\n\n---\n"))
}

func TestParseFrontMatter(t *testing.T) {
	md := "---\nmarp: true\ntheme: gaia\npaginate: true\n---\n# Title\n<!-- Welcome everyone. -->\n---\n# Next"

	doc := Parse(md)

	require.Len(t, doc.Slides, 2)
	assert.Equal(t, "gaia", doc.Meta["theme"])
	assert.Equal(t, true, doc.Meta["paginate"])
	assert.Equal(t, "# Title", doc.Slides[0].Content)
	assert.Equal(t, "Welcome everyone.", doc.Slides[0].Narration)
}

func TestParseLeadingBlockThatIsNotYAMLStaysContent(t *testing.T) {
	doc := Parse("---\n# One\n---\n# Two")

	assert.Nil(t, doc.Meta)
	require.Len(t, doc.Slides, 2)
	assert.Equal(t, "# One", doc.Slides[0].Content)
	assert.Equal(t, "# Two", doc.Slides[1].Content)
}

func TestParseFirstCommentOnly(t *testing.T) {
	slides := ParseSlides("# A\n<!-- first -->\ntext\n<!-- second -->")

	require.Len(t, slides, 1)
	assert.Equal(t, "first", slides[0].Narration)
	assert.NotContains(t, slides[0].Content, "first")
	assert.Contains(t, slides[0].Content, "<!-- second -->")
}

func TestParseKeepsDirectiveComments(t *testing.T) {
	slides := ParseSlides("<!-- _class: lead -->\n# Intro\n<!-- Say hi. -->")

	require.Len(t, slides, 1)
	assert.Equal(t, "Say hi.", slides[0].Narration)
	assert.Contains(t, slides[0].Content, "<!-- _class: lead -->")
	assert.NotContains(t, slides[0].Content, "Say hi.")
}

func TestParseUnterminatedComment(t *testing.T) {
	slides := ParseSlides("# A\n<!-- never closed")

	require.Len(t, slides, 1)
	assert.Empty(t, slides[0].Narration)
	assert.Equal(t, "# A\n<!-- never closed", slides[0].Content)
}

func TestParseIgnoresSeparatorInsideFence(t *testing.T) {
	md := "# Code\n```yaml\na: 1\n---\nb: 2\n```\n---\n# After"

	slides := ParseSlides(md)

	require.Len(t, slides, 2)
	assert.Contains(t, slides[0].Content, "b: 2")
	assert.Equal(t, "# After", slides[1].Content)
}

func TestParseIgnoresCommentsInsideFence(t *testing.T) {
	slides := ParseSlides("# Code\n```html\n<!-- a markup sample -->\n```")

	require.Len(t, slides, 1)
	assert.Empty(t, slides[0].Narration)
	assert.Equal(t, "# Code\n```html\n<!-- a markup sample -->\n```", slides[0].Content)
}

func TestParseNarrationAfterFence(t *testing.T) {
	md := "# Code\n~~~html\n<!-- sample -->\n~~~\n<!-- Walk through the markup. -->"

	slides := ParseSlides(md)

	require.Len(t, slides, 1)
	assert.Equal(t, "Walk through the markup.", slides[0].Narration)
	assert.Contains(t, slides[0].Content, "<!-- sample -->")
	assert.NotContains(t, slides[0].Content, "Walk through")
}

func TestParseUnclosedFenceHidesComments(t *testing.T) {
	slides := ParseSlides("# Code\n```\n<!-- not narration -->")

	require.Len(t, slides, 1)
	assert.Empty(t, slides[0].Narration)
	assert.Contains(t, slides[0].Content, "<!-- not narration -->")
}

func TestParseProseShapedLikeDirective(t *testing.T) {
	slides := ParseSlides("# Why Go\n<!-- Title: why we moved to Go -->\n---\n# Deck\n<!-- title: Quarterly -->")

	require.Len(t, slides, 2)
	assert.Equal(t, "Title: why we moved to Go", slides[0].Narration)
	assert.Equal(t, "# Why Go", slides[0].Content)
	assert.Empty(t, slides[1].Narration)
	assert.Contains(t, slides[1].Content, "<!-- title: Quarterly -->")
}

func TestParseCRLF(t *testing.T) {
	slides := ParseSlides("# A\r\n<!-- note -->\r\n---\r\n# B\r\n")

	require.Len(t, slides, 2)
	assert.Equal(t, "note", slides[0].Narration)
	assert.Equal(t, "# B", slides[1].Content)
}

func TestParseMultilineNarration(t *testing.T) {
	slides := ParseSlides("# A\n<!--\n  Line one.\n  Line two.\n-->")

	require.Len(t, slides, 1)
	assert.Equal(t, "Line one.\n  Line two.", slides[0].Narration)
	assert.Equal(t, "# A", slides[0].Content)
}

func TestIsDirective(t *testing.T) {
	cases := map[string]bool{
		"_class: lead":                 true,
		"paginate: true\nfooter: x":    true,
		"backgroundColor: #fff":        true,
		"_backgroundImage: url(a.png)": true,
		"backgroundcolor: #fff":        false,
		"Title: why we moved to Go":    false,
		"Author: the whole team":       false,
		"Note: remember to smile":      false,
		"hello":                        false,
		"":                             false,
		"theme: gaia\nsay this aloud":  false,
	}
	for comment, want := range cases {
		assert.Equal(t, want, isDirective(comment), comment)
	}
}
