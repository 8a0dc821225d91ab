package agent

import (
	"errors"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

// Pipeline error taxonomy. Everything here is recovered inside the pipeline
// and turned into a composed user-facing message; nothing propagates to the
// caller as an unhandled fault.
var (
	// ErrValidation and ErrNotFound are shared with the store ports so a
	// single errors.Is check covers both layers.
	ErrValidation = ports.ErrValidation
	ErrNotFound   = ports.ErrNotFound

	ErrAmbiguousReference   = errors.New("reference matches multiple tasks")
	ErrLowConfidenceIntent  = errors.New("intent could not be classified confidently")
	ErrToolInvocation       = errors.New("tool invocation failed")
	ErrConfirmationRequired = errors.New("destructive operation requires confirmation")
)
