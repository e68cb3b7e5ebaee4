package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Plan load errors (PLAN-001 to PLAN-099)
	ErrCodePlanNotFound  ErrorCode = "PLAN-001"
	ErrCodePlanRead      ErrorCode = "PLAN-002"
	ErrCodePlanParse     ErrorCode = "PLAN-003"
	ErrCodePlanStructure ErrorCode = "PLAN-004"

	// Validation errors (VALIDATE-001 to VALIDATE-099)
	ErrCodeValidation ErrorCode = "VALIDATE-001"

	// Hashing errors (HASH-001 to HASH-099)
	ErrCodeHashCanonicalize ErrorCode = "HASH-001"

	// Provider errors (PROVIDER-001 to PROVIDER-099)
	ErrCodeProviderNotFound      ErrorCode = "PROVIDER-001"
	ErrCodeProviderConfig        ErrorCode = "PROVIDER-002"
	ErrCodeProviderAuth          ErrorCode = "PROVIDER-003"
	ErrCodeProviderAPI           ErrorCode = "PROVIDER-004"
	ErrCodeProviderRateLimit     ErrorCode = "PROVIDER-005"
	ErrCodeProviderCapability    ErrorCode = "PROVIDER-006"
	ErrCodeProviderPartialCreate ErrorCode = "PROVIDER-007"

	// Sync errors (SYNC-001 to SYNC-099)
	ErrCodeSyncFailed ErrorCode = "SYNC-001"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"
)

// PlanPilotError represents an enhanced error with code, suggestions, and documentation
type PlanPilotError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *PlanPilotError) Error() string {
	var b strings.Builder

	// Error code and message
	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	// Add cause if present
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	// Add suggestions
	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	// Add documentation link
	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *PlanPilotError) Unwrap() error {
	return e.Cause
}

// New creates a new PlanPilotError
func New(code ErrorCode, message string) *PlanPilotError {
	return &PlanPilotError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new PlanPilotError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *PlanPilotError {
	return &PlanPilotError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *PlanPilotError) WithSuggestion(suggestion string) *PlanPilotError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *PlanPilotError) WithSuggestions(suggestions ...string) *PlanPilotError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *PlanPilotError) WithDocs(url string) *PlanPilotError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewPlanNotFoundError creates a plan file not found error
func NewPlanNotFoundError(path string) *PlanPilotError {
	return New(ErrCodePlanNotFound, fmt.Sprintf("plan file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Review the plan file paths in .planpilot/config.yaml")
}

// NewPlanLoadError creates a plan load error carrying the failing file and reason
func NewPlanLoadError(path string, cause error) *PlanPilotError {
	return Wrap(ErrCodePlanRead, fmt.Sprintf("load plan from %s", path), cause).
		WithSuggestion("Verify that the file is readable, valid YAML")
}

// NewProviderAuthError creates a provider authentication error
func NewProviderAuthError(target string) *PlanPilotError {
	return New(ErrCodeProviderAuth, fmt.Sprintf("authentication failed for target: %s", target)).
		WithSuggestion(fmt.Sprintf("Set the %s_TOKEN environment variable", strings.ToUpper(target))).
		WithSuggestion("Check if your token is valid and not expired")
}

// NewProviderRateLimitError creates a rate limit error
func NewProviderRateLimitError(target string, retryAfter string) *PlanPilotError {
	msg := fmt.Sprintf("rate limit exceeded for target: %s", target)
	if retryAfter != "" {
		msg += fmt.Sprintf(" (retry after: %s)", retryAfter)
	}

	return New(ErrCodeProviderRateLimit, msg).
		WithSuggestion("Wait before retrying the request").
		WithSuggestion("Lower the configured concurrency limit")
}

// NewCapabilityError creates an error for an adapter that cannot meet the contract
func NewCapabilityError(target string, capability string) *PlanPilotError {
	return New(ErrCodeProviderCapability, fmt.Sprintf("target %s does not support %s", target, capability)).
		WithSuggestion("Choose a target that supports the full provider contract").
		WithSuggestion("Check the adapter documentation for configuration that enables it")
}

// NewSyncError wraps a phase failure into the terminal synchronization error
func NewSyncError(phase string, cause error) *PlanPilotError {
	return Wrap(ErrCodeSyncFailed, fmt.Sprintf("synchronization failed during %s", phase), cause).
		WithSuggestion("Re-run the sync; discovery will find and repair partially created items")
}
