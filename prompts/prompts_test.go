package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogOrder(t *testing.T) {
	var names []string
	for _, tpl := range Tasks() {
		names = append(names, tpl.Name)
	}
	assert.Equal(t, []string{"Summarize", "Compose Mail", "Fix Grammar", "Extract Keywords", "Explain", "Translate"}, names)

	names = names[:0]
	for _, tpl := range Editors() {
		names = append(names, tpl.Name)
	}
	assert.Equal(t, []string{"Casual", "Formal", "Professional", "Technical", "Simple"}, names)
}

func TestRender(t *testing.T) {
	tpl, err := Task("summarize")
	require.NoError(t, err)
	assert.Equal(t, "Summarize the text below in English:\n\nGo is fun.\n\nSummary:", tpl.Render("Go is fun.", "English"))

	tpl, err = Editor(" Formal ")
	require.NoError(t, err)
	assert.Equal(t, "Rewrite the text below in a formal tone in Chinese:\n\nhey\n\nRewritten Text:", tpl.Render("hey", ""))

	// Text containing a placeholder is not expanded twice.
	assert.Equal(t, "[{language}] in French", Render("[{text}] in {language}", "{language}", "French"))
}

func TestUnknownTemplate(t *testing.T) {
	_, err := Task("Poem")
	assert.ErrorContains(t, err, `unknown task "Poem"`)
	_, err = Editor("Angry")
	assert.Error(t, err)
}

func TestCatalogCopies(t *testing.T) {
	list := Tasks()
	list[0].Name = "changed"
	assert.Equal(t, "Summarize", Tasks()[0].Name)
}
