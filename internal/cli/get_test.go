package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveRateLimit(t *testing.T) {
	cmd := newGetAllExtensionsCmd()

	// Flag untouched: the configured pause applies, not the flag default.
	assert.Equal(t, 4*time.Second, effectiveRateLimit(cmd, 10, 4*time.Second))

	// An explicit flag overrides the configured value, including zero.
	require.NoError(t, cmd.Flags().Set("rate-limit", "3"))
	seconds, err := cmd.Flags().GetUint("rate-limit")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, effectiveRateLimit(cmd, seconds, 4*time.Second))

	require.NoError(t, cmd.Flags().Set("rate-limit", "0"))
	seconds, err = cmd.Flags().GetUint("rate-limit")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), effectiveRateLimit(cmd, seconds, 4*time.Second))
}
