package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd()

	want := []string{"prepare", "fetch", "ask", "chat", "search", "docs", "serve", "version"}
	var got []string
	for _, c := range root.Commands() {
		got = append(got, c.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name)
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "migrag "+AppVersion)
	assert.Contains(t, out.String(), "Git Commit:")
}

func TestFetchRejectsUnknownGuide(t *testing.T) {
	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"fetch", "ci5"})

	err := root.Execute()
	require.Error(t, err)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 10))
	assert.Equal(t, "abcde...", snippet("abcdefgh", 5))

	// rune-safe truncation
	got := snippet(strings.Repeat("模", 10), 4)
	assert.Equal(t, "模模模模...", got)
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n  b", indent("a\nb", "  "))
}

func TestRenderMarkdown_Plain(t *testing.T) {
	text := "# Heading\n\nbody"
	assert.Equal(t, text, renderMarkdown(text, true))
}
