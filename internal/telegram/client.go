// Package telegram sends pipeline run notifications via the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rewired-gh/sentiday/internal/models"
)

// maxListedFailures bounds the failure lines of one report message.
const maxListedFailures = 10

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client handles Telegram notifications.
type Client struct {
	bot            sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client.
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	return newClient(bot, chatIDInt, maxRetries, retryDelayBase), nil
}

func newClient(bot sender, chatID int64, maxRetries int, retryDelayBase time.Duration) *Client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &Client{
		bot:            bot,
		chatID:         chatID,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}
}

// sendMarkdownV2 sends a MarkdownV2 message with linear-backoff retry.
func (c *Client) sendMarkdownV2(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if _, err := c.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if i == c.maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("send cancelled after %d attempts: %w", i+1, ctx.Err())
		case <-time.After(c.retryDelayBase * time.Duration(i+1)):
		}
	}
	return fmt.Errorf("failed after %d retries: %w", c.maxRetries, lastErr)
}

// SendError sends a fatal pipeline error notification.
func (c *Client) SendError(ctx context.Context, runErr error) error {
	text := fmt.Sprintf("⚠️ *Pipeline error*\n`%s`", escapeMarkdownV2(runErr.Error()))
	return c.sendMarkdownV2(ctx, text)
}

// SendRunReport sends the end-of-run summary.
func (c *Client) SendRunReport(ctx context.Context, report *models.RunReport) error {
	return c.sendMarkdownV2(ctx, formatReport(report))
}

// formatReport formats a run report into a Telegram MarkdownV2 message.
func formatReport(report *models.RunReport) string {
	failures := report.FailedUnits()

	var b strings.Builder
	if len(failures) == 0 {
		b.WriteString("✅ *Sentiment run finished*\n\n")
	} else {
		b.WriteString("⚠️ *Sentiment run finished with failures*\n\n")
	}

	fmt.Fprintf(&b, "🆔 `%s`\n", escapeMarkdownV2(report.RunID))
	fmt.Fprintf(&b, "⏱ %s\n", escapeMarkdownV2(report.Duration().Round(time.Millisecond).String()))
	fmt.Fprintf(&b, "📅 Days merged: %d\n", report.DaysMerged)
	fmt.Fprintf(&b, "📝 Files scored: %d \\(%d records\\)\n", report.FilesScored, report.RecordsScored)
	fmt.Fprintf(&b, "📈 Series written: %d\n", report.SeriesWritten)

	if len(failures) > 0 {
		fmt.Fprintf(&b, "\n*Failures* \\(%d\\)\n", len(failures))
		for i, f := range failures {
			if i == maxListedFailures {
				fmt.Fprintf(&b, "…and %d more\n", len(failures)-maxListedFailures)
				break
			}
			line := fmt.Sprintf("%s/%s %s: %v", f.Entity, f.Stage, f.Unit, f.Err)
			fmt.Fprintf(&b, "• %s\n", escapeMarkdownV2(line))
		}
	}

	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
