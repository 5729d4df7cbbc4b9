// Package fault defines the engine's error taxonomy.
//
// Malformed render graphs produce a *CompilationError and failed resource
// operations produce a *ResourceError; both are returned as ordinary errors.
// Programmer errors, such as asking the scene for an entity it does not own,
// are raised as a *Fault panic at the point of detection.
package fault

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// CompilationError reports a render graph that cannot be compiled.
type CompilationError struct {
	Graph  string // Graph name
	Node   string // Offending node, if known
	Reason string
}

func (e *CompilationError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("compile graph %q: %s", e.Graph, e.Reason)
	}
	return fmt.Sprintf("compile graph %q: node %s: %s", e.Graph, e.Node, e.Reason)
}

// ResourceError reports a failed load, compile or link of a backend resource.
type ResourceError struct {
	Op       string // "load", "compile", "link", ...
	Resource string
	Log      string // Native diagnostic text, e.g. a shader info log
	Err      error
}

func (e *ResourceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Op, e.Resource)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if log := strings.TrimSpace(e.Log); log != "" {
		fmt.Fprintf(&b, "\n%s", log)
	}
	return b.String()
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Fault is an unrecoverable programmer error.
type Fault struct {
	Msg string
}

func (f *Fault) Error() string {
	return "engine fault: " + f.Msg
}

// Raise panics with a *Fault.
func Raise(format string, args ...any) {
	panic(&Fault{Msg: fmt.Sprintf(format, args...)})
}

// Recover logs a recovered panic instead of letting it escape. It must be
// called directly by defer.
func Recover(log *zap.Logger, what string) {
	if r := recover(); r != nil {
		if log == nil {
			return
		}
		if err, ok := r.(error); ok {
			log.Error(what+" failed", zap.Error(err))
			return
		}
		log.Error(what+" failed", zap.Any("panic", r))
	}
}
