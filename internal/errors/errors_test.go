package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodePlanNotFound, "plan file not found: plan/epics.yaml").
		WithSuggestion("Check the plan paths in .planpilot/config.yaml")

	msg := err.Error()
	assert.Contains(t, msg, "[PLAN-001]")
	assert.Contains(t, msg, "plan file not found")
	assert.Contains(t, msg, "Suggestions:")
	assert.Contains(t, msg, "Check the plan paths")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("yaml: line 3: mapping values are not allowed")
	err := Wrap(ErrCodePlanParse, "parse plan/epics.yaml", cause)

	assert.Contains(t, err.Error(), "yaml: line 3")
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	inner := New(ErrCodeProviderPartialCreate, "item E1 creation incomplete")
	outer := fmt.Errorf("upsert: %w", NewSyncError("upsert", inner))

	var perr *PlanPilotError
	require.ErrorAs(t, outer, &perr)
	assert.Equal(t, ErrCodeSyncFailed, perr.Code)
	assert.True(t, stderrors.Is(outer, inner))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *PlanPilotError
		code ErrorCode
	}{
		{"plan not found", NewPlanNotFoundError("plan.yaml"), ErrCodePlanNotFound},
		{"plan load", NewPlanLoadError("plan.yaml", fmt.Errorf("eof")), ErrCodePlanRead},
		{"provider auth", NewProviderAuthError("memory"), ErrCodeProviderAuth},
		{"rate limit", NewProviderRateLimitError("memory", "30s"), ErrCodeProviderRateLimit},
		{"capability", NewCapabilityError("memory", "add_dependency relations"), ErrCodeProviderCapability},
		{"sync", NewSyncError("discovery", fmt.Errorf("boom")), ErrCodeSyncFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}
