package diffview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_IdenticalInputsHaveNoChanges(t *testing.T) {
	text := "line one\nline two\nline three\n"

	r := Diff("a", "b", text, text)

	assert.Zero(t, r.Added())
	assert.Zero(t, r.Removed())
	require.Len(t, r.Lines, 3)

	for _, line := range r.Lines {
		assert.Equal(t, Equal, line.Op)
	}
}

func TestDiff_EmptyInputs(t *testing.T) {
	r := Diff("a", "b", "", "")
	assert.Empty(t, r.Lines)

	r = Diff("a", "b", "", "new\n")
	assert.Equal(t, 1, r.Added())
	assert.Zero(t, r.Removed())

	r = Diff("a", "b", "old\n", "")
	assert.Zero(t, r.Added())
	assert.Equal(t, 1, r.Removed())
}

func TestDiff_ChangedLine(t *testing.T) {
	a := "one\ntwo\nthree\n"
	b := "one\nTWO\nthree\n"

	r := Diff("a", "b", a, b)

	assert.Equal(t, 1, r.Added())
	assert.Equal(t, 1, r.Removed())

	var removed, added []string

	for _, line := range r.Lines {
		switch line.Op {
		case Removed:
			removed = append(removed, line.Text)
		case Added:
			added = append(added, line.Text)
		case Equal:
		}
	}

	assert.Equal(t, []string{"two"}, removed)
	assert.Equal(t, []string{"TWO"}, added)
}

func TestDiff_RolesSwapWhenInputsSwap(t *testing.T) {
	a := "shared\nonly in a\n"
	b := "shared\nonly in b\n"

	fwd := Diff("a", "b", a, b)
	rev := Diff("b", "a", b, a)

	assert.Equal(t, fwd.Added(), rev.Removed())
	assert.Equal(t, fwd.Removed(), rev.Added())

	collect := func(r Result, op Op) []string {
		var out []string
		for _, line := range r.Lines {
			if line.Op == op {
				out = append(out, line.Text)
			}
		}
		return out
	}

	assert.ElementsMatch(t, collect(fwd, Added), collect(rev, Removed))
	assert.ElementsMatch(t, collect(fwd, Removed), collect(rev, Added))
}

func TestDiff_Deterministic(t *testing.T) {
	a := "alpha\nbeta\ngamma\n"
	b := "alpha\ndelta\ngamma\nepsilon\n"

	first := Diff("a", "b", a, b)
	second := Diff("a", "b", a, b)

	assert.Equal(t, first, second)
}

func TestDiff_LineBasedNotCharBased(t *testing.T) {
	// A single changed character still reports whole-line records.
	a := "the quick brown fox\n"
	b := "the quick brown box\n"

	r := Diff("a", "b", a, b)

	require.Equal(t, 1, r.Removed())
	require.Equal(t, 1, r.Added())

	for _, line := range r.Lines {
		if line.Op == Removed {
			assert.Equal(t, "the quick brown fox", line.Text)
		}
		if line.Op == Added {
			assert.Equal(t, "the quick brown box", line.Text)
		}
	}
}

func TestDiff_NoTrailingNewline(t *testing.T) {
	r := Diff("a", "b", "one\ntwo", "one\ntwo")
	require.Len(t, r.Lines, 2)
	assert.Equal(t, "two", r.Lines[1].Text)
}

func TestRenderText(t *testing.T) {
	r := Diff("note.md", "note.sync-conflict-20240101-113000-ABCDEF.md",
		"one\ntwo\n", "one\nTWO\n")

	out := RenderText(r)

	assert.True(t, strings.HasPrefix(out, "--- note.md\n+++ note.sync-conflict-20240101-113000-ABCDEF.md\n"))
	assert.Contains(t, out, " one\n")
	assert.Contains(t, out, "-two\n")
	assert.Contains(t, out, "+TWO\n")
}

func TestRenderHTML_EscapesContent(t *testing.T) {
	r := Diff("a", "b", "<script>alert(1)</script>\n", "safe\n")

	out := RenderHTML(r)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, `class="line removed"`)
	assert.Contains(t, out, `class="line added"`)
}

func TestRenderHTML_LabelsPresent(t *testing.T) {
	r := Diff("orig", "variant", "x\n", "x\n")

	out := RenderHTML(r)
	assert.Contains(t, out, `data-a="orig"`)
	assert.Contains(t, out, `data-b="variant"`)
}
