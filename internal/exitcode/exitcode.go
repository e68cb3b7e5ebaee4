package exitcode

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/planpilot/planpilot/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// LoadError indicates the plan files could not be loaded
	LoadError = 3

	// ValidationError indicates the plan failed relational validation
	ValidationError = 4

	// AuthError indicates an authentication or authorization failure
	AuthError = 5

	// CapabilityError indicates the target adapter cannot meet the provider contract
	CapabilityError = 6

	// PartialCreateError indicates a creation call was interrupted partway
	PartialCreateError = 7

	// ProviderError indicates a generic external-call failure
	ProviderError = 8

	// SyncError indicates the synchronization run terminated with an error
	SyncError = 9

	// Interrupted indicates the run was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	code := DetermineExitCode(err)
	Exit(code)
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	// Coded errors map directly; walk the chain so the innermost category
	// wins over the terminal sync wrapper.
	var ppErr *errors.PlanPilotError
	if stderrors.As(err, &ppErr) {
		if code, ok := codeFor(ppErr); ok {
			return code
		}
	}

	// Fall back to message heuristics for uncoded errors
	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "authentication") || strings.Contains(errMsg, "unauthorized") {
		return AuthError
	}
	if strings.Contains(errMsg, "validation") {
		return ValidationError
	}
	if strings.Contains(errMsg, "usage") || strings.Contains(errMsg, "unknown flag") {
		return UsageError
	}

	return GeneralError
}

func codeFor(err *errors.PlanPilotError) (int, bool) {
	// Prefer the cause's category when it is also coded: the SYNC-001
	// wrapper should not mask a partial-create or auth failure.
	if err.Code == errors.ErrCodeSyncFailed && err.Cause != nil {
		var inner *errors.PlanPilotError
		if stderrors.As(err.Cause, &inner) {
			if code, ok := codeFor(inner); ok {
				return code, true
			}
		}
		return SyncError, true
	}

	switch err.Code {
	case errors.ErrCodePlanNotFound, errors.ErrCodePlanRead, errors.ErrCodePlanParse, errors.ErrCodePlanStructure:
		return LoadError, true
	case errors.ErrCodeValidation:
		return ValidationError, true
	case errors.ErrCodeProviderAuth:
		return AuthError, true
	case errors.ErrCodeProviderCapability:
		return CapabilityError, true
	case errors.ErrCodeProviderPartialCreate:
		return PartialCreateError, true
	case errors.ErrCodeProviderNotFound, errors.ErrCodeProviderConfig, errors.ErrCodeProviderAPI, errors.ErrCodeProviderRateLimit:
		return ProviderError, true
	case errors.ErrCodeSyncFailed:
		return SyncError, true
	case errors.ErrCodeConfigNotFound, errors.ErrCodeConfigInvalid:
		return UsageError, true
	}

	return 0, false
}
