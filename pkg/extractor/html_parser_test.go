package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Page Title</title><style>body { color: red; }</style></head>
<body>
  <!-- navigation -->
  <h1>  Accelerating <em>Inference</em>  </h1>
  <h1>Second heading</h1>
  <div class="post-content">
    <p>First paragraph.</p>
    <script>var tracking = true;</script>
    <p>Second &amp; final <b>paragraph</b>.</p>
    <style>.x { display: none; }</style>
    <ul><li>  item one </li><li></li><li>item two</li></ul>
  </div>
</body>
</html>`

func TestFirstText(t *testing.T) {
	doc, err := Parse([]byte(articlePage))
	require.NoError(t, err)

	title, ok := FirstText(doc, "h1")
	assert.True(t, ok)
	assert.Equal(t, "AcceleratingInference", title)

	_, ok = FirstText(doc, "h2")
	assert.False(t, ok)
}

func TestContainerText(t *testing.T) {
	doc, err := Parse([]byte(articlePage))
	require.NoError(t, err)

	text, ok := ContainerText(doc, "div.post-content")
	require.True(t, ok)

	assert.Equal(t, "First paragraph.\nSecond & final\nparagraph\n.\nitem one\nitem two", text)
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "display")

	_, ok = ContainerText(doc, "div.entry-content")
	assert.False(t, ok)
}

func TestDocumentText(t *testing.T) {
	doc, err := Parse([]byte(articlePage))
	require.NoError(t, err)

	text := DocumentText(doc)
	assert.Contains(t, text, "Page Title")
	assert.Contains(t, text, "Second heading")
	assert.Contains(t, text, "item two")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "navigation")
	assert.NotContains(t, text, "tracking")
}

func TestEmptyContainer(t *testing.T) {
	doc, err := Parse([]byte(`<div class="post-content">  <script>x()</script> </div>`))
	require.NoError(t, err)

	text, ok := ContainerText(doc, ".post-content")
	assert.True(t, ok)
	assert.Empty(t, text)
}
