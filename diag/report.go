package diag

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/fatih/color"
)

// Status is the outcome of a phase.
type Status int

const (
	StatusOK Status = iota
	StatusDegraded
	StatusSkipped
	StatusFailed
)

var statusNames = []string{"ok", "degraded", "skipped", "failed"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(d []byte) error {
	i := slices.Index(statusNames, string(d))
	if i < 0 {
		return fmt.Errorf("unknown status %q", d)
	}
	*s = Status(i)
	return nil
}

// PhaseResult collects what one phase did.
type PhaseResult struct {
	Phase    string         `json:"phase"`
	Status   Status         `json:"status"`
	Counts   map[string]int `json:"counts,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
	// Problems holds the branch level errors the phase recovered from.
	Problems []error `json:"-"`
	// Err is set when the phase failed.
	Err error `json:"-"`
}

// NewPhase returns an ok result for phase.
func NewPhase(phase string) *PhaseResult {
	return &PhaseResult{Phase: phase}
}

// Count adds n to the counter key.
func (r *PhaseResult) Count(key string, n int) {
	if r.Counts == nil {
		r.Counts = map[string]int{}
	}
	r.Counts[key] += n
}

// Warn records a warning without changing the status.
func (r *PhaseResult) Warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Degrade records a recovered error and marks the phase degraded.
func (r *PhaseResult) Degrade(err error) {
	r.Problems = append(r.Problems, err)
	if r.Status == StatusOK {
		r.Status = StatusDegraded
	}
}

// Skip marks the phase skipped.
func (r *PhaseResult) Skip(format string, args ...any) {
	r.Warn(format, args...)
	if r.Status != StatusFailed {
		r.Status = StatusSkipped
	}
}

// Fail marks the phase failed with err.
func (r *PhaseResult) Fail(err error) {
	r.Status = StatusFailed
	r.Err = err
}

// Merge adds o's counters, warnings and problems to r. The worse status
// wins.
func (r *PhaseResult) Merge(o *PhaseResult) {
	for k, n := range o.Counts {
		r.Count(k, n)
	}
	r.Warnings = append(r.Warnings, o.Warnings...)
	r.Problems = append(r.Problems, o.Problems...)
	if o.Status > r.Status {
		r.Status = o.Status
	}
	if o.Err != nil && r.Err == nil {
		r.Err = o.Err
	}
}

// Run runs f as phase. An error returned by f fails the phase unless f has
// already set a status; a panic fails it with ErrPanic.
func Run(phase string, f func(*PhaseResult) error) (res *PhaseResult) {
	res = NewPhase(phase)
	defer func() {
		if r := recover(); r != nil {
			res.Fail(fmt.Errorf("%w: %v\n%s", ErrPanic, r, debug.Stack()))
		}
	}()
	if err := f(res); err != nil {
		res.Fail(err)
	}
	return res
}

// Report aggregates the results of the phases of one run.
type Report struct {
	Phases []*PhaseResult `json:"phases"`
}

// Add appends results to the report.
func (r *Report) Add(res ...*PhaseResult) {
	r.Phases = append(r.Phases, res...)
}

// Phase returns the result named phase, or nil.
func (r *Report) Phase(phase string) *PhaseResult {
	for _, p := range r.Phases {
		if p.Phase == phase {
			return p
		}
	}
	return nil
}

// Status returns the worst status of the phases.
func (r *Report) Status() Status {
	res := StatusOK
	for _, p := range r.Phases {
		if p.Status > res {
			res = p.Status
		}
	}
	return res
}

// Err joins the errors of failed phases.
func (r *Report) Err() error {
	var errs []error
	for _, p := range r.Phases {
		if p.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Phase, p.Err))
		}
	}
	return errors.Join(errs...)
}

// Log writes one record per phase to logger.
func (r *Report) Log(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, p := range r.Phases {
		attrs := []any{"phase", p.Phase, "status", p.Status.String()}
		for _, k := range sortedKeys(p.Counts) {
			attrs = append(attrs, k, p.Counts[k])
		}
		switch p.Status {
		case StatusFailed:
			logger.Error("phase", append(attrs, "error", p.Err)...)
		case StatusDegraded, StatusSkipped:
			logger.Warn("phase", append(attrs, "problems", len(p.Problems), "warnings", len(p.Warnings))...)
		default:
			logger.Info("phase", attrs...)
		}
	}
}

var statusColors = map[Status]*color.Color{
	StatusOK:       color.New(color.FgGreen),
	StatusDegraded: color.New(color.FgYellow),
	StatusSkipped:  color.New(color.FgCyan),
	StatusFailed:   color.New(color.FgRed, color.Bold),
}

// Print writes a human readable summary of the report to w.
func (r *Report) Print(w io.Writer, colored bool) error {
	buf := &strings.Builder{}
	for _, p := range r.Phases {
		status := p.Status.String()
		if c := statusColors[p.Status]; colored && c != nil {
			status = c.Sprint(status)
		}
		fmt.Fprintf(buf, "%-10s %s", p.Phase, status)
		for _, k := range sortedKeys(p.Counts) {
			fmt.Fprintf(buf, " %s=%d", k, p.Counts[k])
		}
		buf.WriteByte('\n')
		for _, e := range p.Problems {
			fmt.Fprintf(buf, "    problem: %v\n", e)
		}
		for _, wn := range p.Warnings {
			fmt.Fprintf(buf, "    warning: %s\n", wn)
		}
		if p.Err != nil {
			fmt.Fprintf(buf, "    error: %v\n", firstLine(p.Err.Error()))
		}
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

func firstLine(s string) string {
	s, _, _ = strings.Cut(s, "\n")
	return s
}

func sortedKeys(m map[string]int) []string {
	res := make([]string, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	slices.Sort(res)
	return res
}
