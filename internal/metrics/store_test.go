package metrics_test

import (
	"testing"

	"github.com/codeclash/arena/internal/database"
	"github.com/codeclash/arena/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurableCounters(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(teardown)

	store := metrics.New(db)
	store.Increment(metrics.SlackAlertsSentKey)
	store.Increment(metrics.SlackAlertsSentKey)

	counts, err := store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, 2, counts[metrics.SlackAlertsSentKey])
}
