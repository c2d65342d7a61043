package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdownSanitizesHTML(t *testing.T) {
	out := string(RenderMarkdown("Здравей <script>alert(1)</script> **свят**"))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<strong>свят</strong>")
}

func TestRenderMarkdownLinks(t *testing.T) {
	out := string(RenderMarkdown("[обява](https://example.com/listings/1)"))
	assert.Contains(t, out, `href="https://example.com/listings/1"`)
	assert.Contains(t, out, `target="_blank"`)
}

func TestStringConversions(t *testing.T) {
	assert.Equal(t, 42, StringToInt("42"))
	assert.Equal(t, 0, StringToInt("not a number"))

	assert.Equal(t, uint(7), StringToUint("7"))
	assert.Equal(t, uint(0), StringToUint("-7"))

	f := StringToFloat("42.6977")
	if assert.NotNil(t, f) {
		assert.InDelta(t, 42.6977, *f, 0.00001)
	}
	assert.Nil(t, StringToFloat(""))
	assert.Nil(t, StringToFloat("x"))
}
