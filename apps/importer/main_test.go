package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 6, 21, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveRangeDefaults(t *testing.T) {
	from, to, err := resolveRange(now, options{days: -1}, 14)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 5, 6), from)
	assert.Equal(t, day(2024, 5, 20), to)
}

func TestResolveRangeDaysFlag(t *testing.T) {
	from, to, err := resolveRange(now, options{from: "2024-05-01", days: 3}, 14)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 5, 1), from)
	assert.Equal(t, day(2024, 5, 4), to)
}

func TestResolveRangeExplicit(t *testing.T) {
	from, to, err := resolveRange(now, options{from: "2024-05-06", to: "2024-05-10", days: -1}, 14)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 5, 6), from)
	assert.Equal(t, day(2024, 5, 10), to)
}

func TestResolveRangeRejectsBadFlags(t *testing.T) {
	_, _, err := resolveRange(now, options{from: "06.05.2024"}, 14)
	assert.ErrorIs(t, err, errInvalidFlags)

	_, _, err = resolveRange(now, options{from: "2024-05-10", to: "2024-05-06"}, 14)
	assert.ErrorIs(t, err, errInvalidFlags)
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"from", "to", "days"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
