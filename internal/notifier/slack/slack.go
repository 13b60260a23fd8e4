package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/metrics"
	"github.com/codeclash/arena/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Alerter = (*Alerter)(nil)

// Alerter posts integrity review alerts to the moderation Slack channel.
type Alerter struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	store     metrics.MetricsStore
}

// NewAlerter creates a new Alerter.
func NewAlerter(token, channelID string, metrics metrics.Metrics, store metrics.MetricsStore) *Alerter {
	api := slack.New(token)
	return &Alerter{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		store:     store,
	}
}

// NewAlerterWithAPI creates a new Alerter with a specific slack client instance.
// Useful for tests that need to intercept API calls.
func NewAlerterWithAPI(api slackClient, channelID string, metrics metrics.Metrics, store metrics.MetricsStore) *Alerter {
	return &Alerter{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		store:     store,
	}
}

func (a *Alerter) sendMessage(message slack.Message, dryRun bool) error {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", a.channelID, "message", string(jsonMsg))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := a.api.PostMessageContext(
		ctx,
		a.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		a.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return fmt.Errorf("failed to post message: %w", err)
	}

	a.metrics.IncNotifSent()
	a.store.Increment(metrics.SlackAlertsSentKey)
	log.Debug("Sent Slack message", "channel", channelID, "timestamp", timestamp)
	return nil
}

// SendIntegrityAlert posts a review alert for a flagged final submission.
func (a *Alerter) SendIntegrityAlert(rec arena.IntegrityRecord, dryRun bool) error {
	header := slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, ":rotating_light: Integrity flag raised", false, false))
	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Player:*\n%s", rec.PlayerID), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Match:*\n%s", rec.MatchID), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Action:*\n%s", rec.Action), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Cheat probability:*\n%.1f", rec.Overall), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Stylometry:*\n%.1f", rec.Stylometry), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*LLM probability:*\n%.1f", rec.LLMProbability), false, false),
	}
	section := slack.NewSectionBlock(nil, fields, nil)

	msg := slack.NewBlockMessage(header, section)
	return a.sendMessage(msg, dryRun)
}

// SendFreezeNotice posts a notice that a rating change was withheld.
func (a *Alerter) SendFreezeNotice(change arena.RatingChange, dryRun bool) error {
	text := fmt.Sprintf(
		":snowflake: Rating change frozen pending review\n*Player:* %s\n*Match:* %s\n*Withheld change:* %d → %d",
		change.PlayerID, change.MatchID, change.OldRating, change.NewRating,
	)
	section := slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
	return a.sendMessage(slack.NewBlockMessage(section), dryRun)
}

// SendClearanceNotice posts a notice that a frozen change was re-admitted.
func (a *Alerter) SendClearanceNotice(change arena.RatingChange, dryRun bool) error {
	text := fmt.Sprintf(
		":white_check_mark: Frozen rating change cleared\n*Player:* %s\n*Match:* %s\n*Applied change:* %d → %d",
		change.PlayerID, change.MatchID, change.OldRating, change.NewRating,
	)
	section := slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
	return a.sendMessage(slack.NewBlockMessage(section), dryRun)
}
