// Package diff computes line-level differences between two byte snapshots
// using the Myers shortest-edit-script algorithm, grouped into hunks with
// configurable context.
package diff

import (
	"bytes"
	"strings"
)

// Options controls how a comparison is performed.
type Options struct {
	// ContextLines is the number of unchanged lines shown around each change.
	ContextLines int
	// IgnoreWhitespace folds runs of spaces and tabs before comparing.
	IgnoreWhitespace bool
	// IgnoreCase compares lines case-insensitively.
	IgnoreCase bool
}

// DefaultOptions returns the standard three-line-context comparison.
func DefaultOptions() Options {
	return Options{ContextLines: 3}
}

// Line is one line of a hunk. OldLine and NewLine are 1-based positions; a
// zero means the line does not exist on that side.
type Line struct {
	Kind    OpKind
	Text    string
	OldLine int
	NewLine int
}

// Hunk is a contiguous group of changes with surrounding context.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// Result is the outcome of comparing two snapshots. Binary results carry no
// hunks; identical inputs produce an empty hunk list.
type Result struct {
	Binary        bool
	BinaryDiffers bool
	Hunks         []Hunk
}

// HasChanges reports whether the inputs differ.
func (r *Result) HasChanges() bool {
	if r.Binary {
		return r.BinaryDiffers
	}
	return len(r.Hunks) > 0
}

// IsBinary reports whether data looks like binary content. The heuristic is
// a NUL byte anywhere in the input.
func IsBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0
}

// Compare diffs two byte snapshots line by line. If either side is binary
// the result only records whether the bytes differ.
func Compare(oldData, newData []byte, opts Options) *Result {
	if opts.ContextLines < 0 {
		opts.ContextLines = 0
	}
	if IsBinary(oldData) || IsBinary(newData) {
		return &Result{Binary: true, BinaryDiffers: !bytes.Equal(oldData, newData)}
	}
	if bytes.Equal(oldData, newData) {
		return &Result{}
	}

	oldLines := splitLines(oldData)
	newLines := splitLines(newData)
	ops := Myers(oldLines, newLines, compareKeys(oldLines, opts), compareKeys(newLines, opts))
	return &Result{Hunks: buildHunks(ops, opts.ContextLines)}
}

// splitLines splits on newlines, dropping the empty tail a trailing newline
// produces so "a\n" is one line, not two.
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func compareKeys(lines []string, opts Options) []string {
	if !opts.IgnoreWhitespace && !opts.IgnoreCase {
		return lines
	}
	keys := make([]string, len(lines))
	for i, line := range lines {
		keys[i] = foldLine(line, opts)
	}
	return keys
}

func foldLine(line string, opts Options) string {
	if opts.IgnoreWhitespace {
		line = strings.Join(strings.Fields(line), " ")
	}
	if opts.IgnoreCase {
		line = strings.ToLower(line)
	}
	return line
}

// buildHunks numbers each op and groups changes into hunks, merging changes
// whose separating equal run fits within twice the context.
func buildHunks(ops []Op, context int) []Hunk {
	lines := make([]Line, len(ops))
	oldBefore := make([]int, len(ops))
	newBefore := make([]int, len(ops))

	o, n := 0, 0
	for i, op := range ops {
		oldBefore[i] = o
		newBefore[i] = n
		switch op.Kind {
		case OpEqual:
			o++
			n++
			lines[i] = Line{Kind: OpEqual, Text: op.Text, OldLine: o, NewLine: n}
		case OpDelete:
			o++
			lines[i] = Line{Kind: OpDelete, Text: op.Text, OldLine: o}
		case OpInsert:
			n++
			lines[i] = Line{Kind: OpInsert, Text: op.Text, NewLine: n}
		}
	}

	var hunks []Hunk
	i := 0
	for i < len(lines) {
		if lines[i].Kind == OpEqual {
			i++
			continue
		}

		start := i - context
		if start < 0 {
			start = 0
		}

		// Extend over subsequent changes separated by small equal runs.
		end := i + 1
		j := i + 1
		for j < len(lines) {
			if lines[j].Kind != OpEqual {
				j++
				end = j
				continue
			}
			k := j
			for k < len(lines) && lines[k].Kind == OpEqual {
				k++
			}
			if k < len(lines) && k-j <= 2*context {
				j = k
				continue
			}
			break
		}

		tail := end + context
		if tail > len(lines) {
			tail = len(lines)
		}

		seg := lines[start:tail]
		h := Hunk{Lines: append([]Line(nil), seg...)}
		for _, l := range seg {
			if l.Kind != OpInsert {
				h.OldLines++
			}
			if l.Kind != OpDelete {
				h.NewLines++
			}
		}
		if h.OldLines > 0 {
			h.OldStart = oldBefore[start] + 1
		} else {
			h.OldStart = oldBefore[start]
		}
		if h.NewLines > 0 {
			h.NewStart = newBefore[start] + 1
		} else {
			h.NewStart = newBefore[start]
		}
		hunks = append(hunks, h)

		i = tail
	}
	return hunks
}
