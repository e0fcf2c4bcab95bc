package kernel

import (
	"context"
	"fmt"
	"log/slog"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Code classifies a diagnostic.
type Code string

const (
	CodeMissingArgument   Code = "MissingRequiredArgument"
	CodeCoercion          Code = "TypeCoercionExhausted"
	CodePackingInfeasible Code = "PackingInfeasible"
	CodeUnknownModule     Code = "UnknownModule"
	CodeUnknownUnit       Code = "UnknownUnit"
	CodeUnsupportedPaths  Code = "UnsupportedPaths"
	CodeUndefinedVariable Code = "UndefinedVariable"
	CodeFunctionResult    Code = "FunctionResult"
	CodeEcho              Code = "Echo"
)

// Diagnostic is a message reported while evaluating a statement. Reporting
// never alters control flow.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Module   string
	Message  string
}

func (d Diagnostic) String() string {
	if d.Module == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Module, d.Message)
}

// Sink receives diagnostics synchronously.
type Sink interface {
	Report(Diagnostic)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Diagnostic)

func (f SinkFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Sink = SinkFunc(func(Diagnostic) {})

// Recorder keeps diagnostics in arrival order.
type Recorder struct {
	Diagnostics []Diagnostic
}

func (r *Recorder) Report(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// Count returns how many recorded diagnostics carry code.
func (r *Recorder) Count(code Code) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Errors returns the diagnostics with error severity.
func (r *Recorder) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() { r.Diagnostics = nil }

// Tee reports to every non-nil sink in order.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(d Diagnostic) {
		for _, s := range sinks {
			if s != nil {
				s.Report(d)
			}
		}
	})
}

// LogSink writes diagnostics to a structured logger. Errors log at error
// level, warnings at warn and everything else at info.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Report(d Diagnostic) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	switch d.Severity {
	case SeverityError:
		level = slog.LevelError
	case SeverityWarning:
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{slog.String("code", string(d.Code))}
	if d.Module != "" {
		attrs = append(attrs, slog.String("module", d.Module))
	}
	logger.LogAttrs(context.Background(), level, d.Message, attrs...)
}
