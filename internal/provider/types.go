package provider

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// CreateStep is one of the canonical steps of item creation. The order is
// part of the contract: a partial failure reports the prefix that completed.
type CreateStep string

const (
	// StepCreateRecord creates the bare record and embeds the metadata
	// marker in its body. It always runs first so a later discovery can
	// find and resume a partially configured item.
	StepCreateRecord CreateStep = "create_record"

	// StepAssignType assigns the categorical item type
	StepAssignType CreateStep = "assign_type"

	// StepApplyLabels applies the configured labels
	StepApplyLabels CreateStep = "apply_labels"

	// StepAttachBoard attaches the item to the board
	StepAttachBoard CreateStep = "attach_board"

	// StepSetFields sets board fields (size, workflow defaults)
	StepSetFields CreateStep = "set_fields"
)

// CreateSteps lists the canonical creation steps in execution order
var CreateSteps = []CreateStep{
	StepCreateRecord,
	StepAssignType,
	StepApplyLabels,
	StepAttachBoard,
	StepSetFields,
}

// Identity is the external identity of an item that was (at least partly)
// created
type Identity struct {
	ID  string
	Key string
	URL string
}

// PartialFailure signals that CreateItem mutated external state but did not
// finish all configuration steps. Because the marker is embedded at
// StepCreateRecord, a subsequent discovery finds and repairs the item.
type PartialFailure struct {
	// Created is the identity already created externally, nil if
	// StepCreateRecord itself never completed
	Created *Identity

	// CompletedSteps are the canonical steps that did complete, in order
	CompletedSteps []CreateStep

	// Retryable indicates whether re-running the sync can succeed
	Retryable bool

	// Cause is the underlying failure
	Cause error
}

// Error implements the error interface
func (e *PartialFailure) Error() string {
	var b strings.Builder
	b.WriteString("item creation failed partway")
	if e.Created != nil {
		b.WriteString(fmt.Sprintf(" (created %s)", e.Created.Key))
	}
	if len(e.CompletedSteps) > 0 {
		steps := make([]string, len(e.CompletedSteps))
		for i, s := range e.CompletedSteps {
			steps[i] = string(s)
		}
		b.WriteString(fmt.Sprintf(" after steps [%s]", strings.Join(steps, ", ")))
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap implements error unwrapping
func (e *PartialFailure) Unwrap() error {
	return e.Cause
}

// AsPartialFailure extracts a PartialFailure from an error chain
func AsPartialFailure(err error) (*PartialFailure, bool) {
	var pf *PartialFailure
	if stderrors.As(err, &pf) {
		return pf, true
	}
	return nil, false
}

// RateLimitError signals that the external system throttled a call.
// RetryAfter carries the server-provided delay, zero when the server gave
// none. The retry helper pauses the whole adapter gate on it.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// Retryable marks rate limits as transient
func (e *RateLimitError) Retryable() bool {
	return true
}

// CallError is a generic external-call failure
type CallError struct {
	// Op names the failing operation (e.g. "create_item")
	Op string

	// Transient indicates the failure may succeed on retry
	Transient bool

	// Cause is the underlying failure
	Cause error
}

// Error implements the error interface
func (e *CallError) Error() string {
	return fmt.Sprintf("provider call %s failed: %v", e.Op, e.Cause)
}

// Unwrap implements error unwrapping
func (e *CallError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the call may succeed on retry
func (e *CallError) Retryable() bool {
	return e.Transient
}

// IsRetryable reports whether an error in the chain marks itself retryable
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	if stderrors.As(err, &r) {
		return r.Retryable()
	}
	return false
}
