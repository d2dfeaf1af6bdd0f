// Package notify sends pipeline run reports to a Telegram chat.
package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"newsdesk/internal/pipeline"
)

// Sender is the part of the Telegram bot API the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier posts run summaries to a single chat.
type Notifier struct {
	bot    Sender
	chatID int64
}

// New creates a Notifier for the given chat.
func New(bot Sender, chatID int64) *Notifier {
	return &Notifier{bot: bot, chatID: chatID}
}

// NewBot connects to the Telegram bot API with the given token.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	return bot, nil
}

// ReportRun sends a human readable summary of one pipeline run.
func (n *Notifier) ReportRun(report *pipeline.RunReport) error {
	msg := tgbotapi.NewMessage(n.chatID, formatReport(report))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send run report: %w", err)
	}
	return nil
}

func formatReport(report *pipeline.RunReport) string {
	var b strings.Builder
	if report.Success {
		b.WriteString("✅ Pipeline run succeeded\n")
	} else {
		fmt.Fprintf(&b, "❌ Pipeline run failed at stage %q\n", report.FailedStage)
	}
	fmt.Fprintf(&b, "Started: %s\n", report.Timestamp.Format("2006-01-02 15:04:05"))
	for _, step := range report.Steps {
		if step.Error != "" {
			fmt.Fprintf(&b, "- %s: %s\n", step.Name, step.Error)
			continue
		}
		fmt.Fprintf(&b, "- %s: ok\n", step.Name)
	}
	return b.String()
}
