package connectors

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// telegramSender narrows *tgbot.Bot to the one call this connector needs,
// grounded in the teacher's BotClient seam (internal/channels/telegram/
// bot_client.go) so tests can inject a stub without a live bot token.
type telegramSender interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*tgmodels.Message, error)
}

type realTelegramSender struct{ bot *tgbot.Bot }

func (r *realTelegramSender) SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*tgmodels.Message, error) {
	return r.bot.SendMessage(ctx, params)
}

// TelegramConnector sends the LLM's chosen text to a fixed Telegram chat.
type TelegramConnector struct {
	sender telegramSender
	chatID int64
}

// NewTelegramConnector builds a connector from a bot token and target
// chat id, constructing the underlying *tgbot.Bot internally.
func NewTelegramConnector(token string, chatID int64) (*TelegramConnector, error) {
	b, err := tgbot.New(token)
	if err != nil {
		return nil, err
	}
	return &TelegramConnector{sender: &realTelegramSender{bot: b}, chatID: chatID}, nil
}

func (c *TelegramConnector) Connect(ctx context.Context, value string) error {
	_, err := c.sender.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: c.chatID,
		Text:   value,
	})
	return err
}
