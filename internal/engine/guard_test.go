package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckLimit(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckLimit(0, 100))
	assert.NoError(t, CheckLimit(100, 100), "exactly at the limit is allowed")

	err := CheckLimit(101, 100)
	var le *LimitError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 101, le.Requested)
	assert.Equal(t, 100, le.Limit)
	assert.Contains(t, err.Error(), "--max-limit")
}

func TestCheckLimit_Disabled(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckLimit(1_000_000, 0))
}
