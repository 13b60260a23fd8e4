package slack

import (
	"context"
	"testing"

	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/metrics"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSlackAPI struct {
	PostMessageContextFunc func(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	calls                  int
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	m.calls++
	if m.PostMessageContextFunc != nil {
		return m.PostMessageContextFunc(ctx, channelID, options...)
	}
	return channelID, "123.456", nil
}

type mockMetricsStore struct {
	counts map[string]int
}

func (m *mockMetricsStore) Increment(key string) {
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[key]++
}

func (m *mockMetricsStore) GetAll() (map[string]int, error) {
	return m.counts, nil
}

func TestAlerter(t *testing.T) {
	rec := arena.IntegrityRecord{
		MatchID:        "m1",
		PlayerID:       "bob",
		Stylometry:     90,
		LLMProbability: 95,
		Behavioral:     40,
		Overall:        82,
		Action:         "hard_flag",
	}
	change := arena.RatingChange{MatchID: "m1", PlayerID: "bob", OldRating: 1200, NewRating: 1216, Status: arena.RatingFrozen}

	t.Run("should post alerts to the review channel", func(t *testing.T) {
		api := &mockSlackAPI{}
		var gotChannel string
		api.PostMessageContextFunc = func(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
			gotChannel = channelID
			return channelID, "123.456", nil
		}
		m := metrics.NewMock()
		store := &mockMetricsStore{}
		a := NewAlerterWithAPI(api, "C123REVIEW", m, store)

		require.NoError(t, a.SendIntegrityAlert(rec, false))
		require.NoError(t, a.SendFreezeNotice(change, false))
		require.NoError(t, a.SendClearanceNotice(change, false))

		assert.Equal(t, 3, api.calls)
		assert.Equal(t, "C123REVIEW", gotChannel)
		assert.Equal(t, 3, m.NotifSent())
		assert.Equal(t, 3, store.counts[metrics.SlackAlertsSentKey])
	})

	t.Run("should count a failed post", func(t *testing.T) {
		api := &mockSlackAPI{}
		api.PostMessageContextFunc = func(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
			return "", "", assert.AnError
		}
		m := metrics.NewMock()
		a := NewAlerterWithAPI(api, "C123REVIEW", m, &mockMetricsStore{})

		assert.Error(t, a.SendIntegrityAlert(rec, false))
		assert.Equal(t, 1, m.NotifFailed())
	})

	t.Run("should not post in dry run mode", func(t *testing.T) {
		api := &mockSlackAPI{}
		a := NewAlerterWithAPI(api, "C123REVIEW", metrics.NewMock(), &mockMetricsStore{})

		require.NoError(t, a.SendFreezeNotice(change, true))
		assert.Equal(t, 0, api.calls)
	})
}
