package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomy(t *testing.T) {
	cause := stderrors.New("timeout")

	tests := []struct {
		name      string
		err       *DeviceError
		category  ErrorCategory
		retryable bool
		fatal     bool
	}{
		{"refresh", SourceRefreshFailed("feed", cause), CategoryContent, true, false},
		{"persist", PersistFailed("last_page", cause), CategoryStorage, true, false},
		{"connect", ConnectFailed("home", cause), CategoryNetwork, true, false},
		{"platform", PlatformInit("spi", cause), CategoryPlatform, false, true},
		{"config", ConfigInvalid("timing.debounce", "must be > 0"), CategoryConfig, false, true},
		{"invariant", InvariantViolation("lock poisoned"), CategoryInternal, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, IsCategory(wrapped, tt.category))
			assert.Equal(t, tt.retryable, IsRetryable(wrapped))
			assert.Equal(t, tt.fatal, IsFatal(wrapped))
		})
	}
}

func TestUnwrapAndMessage(t *testing.T) {
	cause := stderrors.New("disk full")
	err := PersistFailed("wifi", cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "storage (warning): persisting value failed: disk full")
	assert.Equal(t, "wifi", err.Context["key"])
}

func TestPlainErrorsAreNotClassified(t *testing.T) {
	err := stderrors.New("plain")
	assert.False(t, IsRetryable(err))
	assert.False(t, IsFatal(err))
	assert.False(t, IsCategory(err, CategoryInternal))
}
