// Package diffview computes line-based diffs between two file variants
// and renders them. The engine is a pure function over the two texts;
// rendering to markup is a separate step so the engine stays
// presentation-agnostic.
package diffview

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op classifies a diff line.
type Op int

const (
	// Equal lines appear in both inputs.
	Equal Op = iota
	// Added lines appear only in the second input.
	Added
	// Removed lines appear only in the first input.
	Removed
)

// Line is one line-level change record.
type Line struct {
	Op   Op
	Text string
}

// Result is the structured comparison of two texts, identified by the
// labels the caller passed. Immutable; recompute when content changes.
type Result struct {
	LabelA string
	LabelB string
	Lines  []Line
}

// Added returns the count of added lines.
func (r Result) Added() int { return r.count(Added) }

// Removed returns the count of removed lines.
func (r Result) Removed() int { return r.count(Removed) }

func (r Result) count(op Op) int {
	n := 0

	for _, line := range r.Lines {
		if line.Op == op {
			n++
		}
	}

	return n
}

// Diff compares two texts line by line. It is deterministic and total:
// any pair of strings is legal input, including empty ones. Worst case
// is O(n*m) in the line counts, which is acceptable for the file sizes
// a conflict assistant sees but worth knowing for multi-megabyte
// inputs.
func Diff(labelA, labelB, textA, textB string) Result {
	result := Result{LabelA: labelA, LabelB: labelB}

	if textA == textB {
		// Fast path; also keeps diffmatchpatch from emitting a single
		// empty Equal chunk for two empty inputs.
		for _, text := range splitLines(textA) {
			result.Lines = append(result.Lines, Line{Op: Equal, Text: text})
		}

		return result
	}

	dmp := diffmatchpatch.New()

	// Line mode: map each distinct line to a rune, diff the rune
	// strings, then translate back. This keeps the comparison
	// line-based rather than character-based.
	charsA, charsB, lineIndex := dmp.DiffLinesToChars(textA, textB)
	diffs := dmp.DiffMain(charsA, charsB, false)
	diffs = dmp.DiffCharsToLines(diffs, lineIndex)

	for _, d := range diffs {
		op := Equal

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = Added
		case diffmatchpatch.DiffDelete:
			op = Removed
		case diffmatchpatch.DiffEqual:
		}

		for _, text := range splitLines(d.Text) {
			result.Lines = append(result.Lines, Line{Op: op, Text: text})
		}
	}

	return result
}

// splitLines splits a text into lines without trailing newlines. A
// trailing newline does not produce a phantom empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	text = strings.TrimSuffix(text, "\n")

	return strings.Split(text, "\n")
}
