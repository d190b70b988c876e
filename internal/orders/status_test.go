package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPaid, StatusPreparing, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusCompleted, true},

		{StatusPending, StatusPreparing, false}, // bayar dulu
		{StatusPending, StatusCompleted, false},
		{StatusPaid, StatusPending, false}, // tidak bisa mundur
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusPaid, false},
		{Status("ngawur"), StatusPaid, false},
	}
	for _, c := range cases {
		require.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusPaid, StatusPreparing, StatusReady, StatusCompleted} {
		require.True(t, ValidStatus(s))
	}
	require.False(t, ValidStatus(Status("paid ")))
	require.False(t, ValidStatus(Status("")))
}
