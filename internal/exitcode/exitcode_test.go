package exitcode

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/planpilot/planpilot/internal/errors"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error",
			err:  nil,
			want: Success,
		},
		{
			name: "plan not found",
			err:  errors.NewPlanNotFoundError("plan/epics.yaml"),
			want: LoadError,
		},
		{
			name: "plan parse failure",
			err:  errors.New(errors.ErrCodePlanParse, "bad yaml"),
			want: LoadError,
		},
		{
			name: "validation failure",
			err:  errors.New(errors.ErrCodeValidation, "duplicate ids"),
			want: ValidationError,
		},
		{
			name: "auth failure",
			err:  errors.NewProviderAuthError("memory"),
			want: AuthError,
		},
		{
			name: "capability failure",
			err:  errors.NewCapabilityError("memory", "add_dependency relations"),
			want: CapabilityError,
		},
		{
			name: "partial create",
			err:  errors.New(errors.ErrCodeProviderPartialCreate, "interrupted"),
			want: PartialCreateError,
		},
		{
			name: "rate limit",
			err:  errors.NewProviderRateLimitError("memory", "30s"),
			want: ProviderError,
		},
		{
			name: "bare sync failure",
			err:  errors.NewSyncError("discovery", fmt.Errorf("search failed")),
			want: SyncError,
		},
		{
			name: "invalid config",
			err:  errors.New(errors.ErrCodeConfigInvalid, "target must be set"),
			want: UsageError,
		},
		{
			name: "uncoded error",
			err:  fmt.Errorf("something broke"),
			want: GeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineExitCode(tt.err))
		})
	}
}

// The sync wrapper must not mask the category of its cause.
func TestDetermineExitCodeUnwrapsSyncWrapper(t *testing.T) {
	tests := []struct {
		name  string
		cause error
		want  int
	}{
		{
			name:  "partial create inside sync",
			cause: errors.New(errors.ErrCodeProviderPartialCreate, "item E1 creation incomplete"),
			want:  PartialCreateError,
		},
		{
			name:  "auth inside sync",
			cause: errors.NewProviderAuthError("memory"),
			want:  AuthError,
		},
		{
			name:  "deeply wrapped cause",
			cause: fmt.Errorf("create E1: %w", errors.New(errors.ErrCodeProviderAPI, "boom")),
			want:  ProviderError,
		},
		{
			name:  "uncoded cause",
			cause: fmt.Errorf("plain failure"),
			want:  SyncError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.NewSyncError("upsert", tt.cause)
			assert.Equal(t, tt.want, DetermineExitCode(err))
		})
	}
}

func TestDetermineExitCodeWrappedCoded(t *testing.T) {
	err := fmt.Errorf("running sync: %w", errors.New(errors.ErrCodeValidation, "bad plan"))
	assert.Equal(t, ValidationError, DetermineExitCode(err))
}

func TestDetermineExitCodeHeuristics(t *testing.T) {
	assert.Equal(t, AuthError, DetermineExitCode(stderrors.New("request unauthorized")))
	assert.Equal(t, ValidationError, DetermineExitCode(stderrors.New("validation failed")))
	assert.Equal(t, UsageError, DetermineExitCode(stderrors.New("unknown flag: --frobnicate")))
}
