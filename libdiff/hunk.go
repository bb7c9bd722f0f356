package libdiff

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// DefaultContext is the number of unchanged lines kept around each change.
const DefaultContext = 3

// Hunk is a group of nearby changes with surrounding context. Line numbers
// are 1-based as in unified diffs.
type Hunk struct {
	FromLine, FromCount int
	ToLine, ToCount     int
	Lines               []Line
}

func (h *Hunk) Header() string {
	return fmt.Sprintf("@@ -%s +%s @@", span(h.FromLine, h.FromCount), span(h.ToLine, h.ToCount))
}

func span(line, count int) string {
	if count == 1 {
		return fmt.Sprint(line)
	}
	return fmt.Sprintf("%d,%d", line, count)
}

// Hunks groups the changes in lines, merging changes whose unchanged gap is
// at most twice context.
func Hunks(lines []Line, context int) []Hunk {
	if context < 0 {
		context = 0
	}
	var changes []int
	for i := range lines {
		if lines[i].Op != Equal {
			changes = append(changes, i)
		}
	}
	var res []Hunk
	for start := 0; start < len(changes); {
		end := start
		for end+1 < len(changes) && changes[end+1]-changes[end] <= 2*context+1 {
			end++
		}
		lo := max(0, changes[start]-context)
		hi := min(len(lines), changes[end]+context+1)
		res = append(res, makeHunk(lines, lo, hi))
		start = end + 1
	}
	return res
}

func makeHunk(lines []Line, lo, hi int) Hunk {
	fromBefore, toBefore := 0, 0
	for _, l := range lines[:lo] {
		if l.Op != Insert {
			fromBefore++
		}
		if l.Op != Delete {
			toBefore++
		}
	}
	h := Hunk{Lines: lines[lo:hi]}
	for _, l := range h.Lines {
		if l.Op != Insert {
			h.FromCount++
		}
		if l.Op != Delete {
			h.ToCount++
		}
	}
	h.FromLine = fromBefore
	if h.FromCount > 0 {
		h.FromLine++
	}
	h.ToLine = toBefore
	if h.ToCount > 0 {
		h.ToLine++
	}
	return h
}

type Colors struct {
	Header func(a ...any) string
	Hunk   func(a ...any) string
	Insert func(a ...any) string
	Delete func(a ...any) string
}

func NewColors() *Colors {
	return &Colors{
		Header: color.New(color.Bold).SprintFunc(),
		Hunk:   color.New(color.FgCyan).SprintFunc(),
		Insert: color.New(color.FgGreen).SprintFunc(),
		Delete: color.New(color.FgRed).SprintFunc(),
	}
}

func (c *Colors) paint(f func(a ...any) string, s string) string {
	if c == nil || f == nil {
		return s
	}
	return f(s)
}

// Write writes hunks to w in unified diff form. c may be nil for plain
// output.
func Write(w io.Writer, fromName, toName string, hunks []Hunk, c *Colors) error {
	if len(hunks) == 0 {
		return nil
	}
	var hdr, hnk, ins, del func(a ...any) string
	if c != nil {
		hdr, hnk, ins, del = c.Header, c.Hunk, c.Insert, c.Delete
	}
	b := &strings.Builder{}
	b.WriteString(c.paint(hdr, "--- "+fromName))
	b.WriteByte('\n')
	b.WriteString(c.paint(hdr, "+++ "+toName))
	b.WriteByte('\n')
	for i := range hunks {
		h := &hunks[i]
		b.WriteString(c.paint(hnk, h.Header()))
		b.WriteByte('\n')
		for _, l := range h.Lines {
			s := l.Op.Prefix() + l.Text
			switch l.Op {
			case Insert:
				s = c.paint(ins, s)
			case Delete:
				s = c.paint(del, s)
			}
			b.WriteString(s)
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
