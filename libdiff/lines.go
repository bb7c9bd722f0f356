package libdiff

import (
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

var opPrefix = [...]string{Equal: " ", Insert: "+", Delete: "-"}

func (o Op) Prefix() string { return opPrefix[o] }

// Line is one line of a line diff, without its trailing newline.
type Line struct {
	Op   Op
	Text string
}

// Lines computes a line diff from one text to another. Within each run of
// changed lines the deletions come before the insertions.
func Lines(from, to string) []Line {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	res := make([]Line, 0, len(diffs))
	for i := range diffs {
		d := &diffs[i]
		var op Op
		switch d.Type {
		case diffpatch.DiffInsert:
			op = Insert
		case diffpatch.DiffDelete:
			op = Delete
		default:
			op = Equal
		}
		for _, txt := range splitLines(d.Text) {
			res = append(res, Line{Op: op, Text: txt})
		}
	}
	return normalize(res)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// Changed reports whether lines contains any insertion or deletion.
func Changed(lines []Line) bool {
	for i := range lines {
		if lines[i].Op != Equal {
			return true
		}
	}
	return false
}

// Reverse returns the diff going the other way.
func Reverse(lines []Line) []Line {
	res := make([]Line, len(lines))
	for i, l := range lines {
		switch l.Op {
		case Insert:
			l.Op = Delete
		case Delete:
			l.Op = Insert
		}
		res[i] = l
	}
	return normalize(res)
}

// normalize orders each run of changes so deletions precede insertions.
func normalize(lines []Line) []Line {
	i := 0
	for i < len(lines) {
		if lines[i].Op == Equal {
			i++
			continue
		}
		j := i
		for j < len(lines) && lines[j].Op != Equal {
			j++
		}
		run := make([]Line, 0, j-i)
		for _, op := range []Op{Delete, Insert} {
			for _, l := range lines[i:j] {
				if l.Op == op {
					run = append(run, l)
				}
			}
		}
		copy(lines[i:j], run)
		i = j
	}
	return lines
}

// Text reassembles the from (or to) side of a diff.
func Text(lines []Line, to bool) string {
	skip := Insert
	if to {
		skip = Delete
	}
	b := &strings.Builder{}
	for _, l := range lines {
		if l.Op == skip {
			continue
		}
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
