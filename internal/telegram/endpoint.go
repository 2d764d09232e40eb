// Package telegram adapts the Telegram Bot API to bot.Endpoint.
package telegram

import (
	"context"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/types"
)

// longPollTimeout is the getUpdates timeout in seconds.
const longPollTimeout = 60

// botAPI is the subset of *tgbotapi.BotAPI the endpoint uses.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Endpoint struct {
	api      botAPI
	userName string
	logger   *log.Logger
}

// New authenticates with token (getMe) and returns a ready endpoint.
func New(token string, debug bool, logger *log.Logger) (*Endpoint, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	api.Debug = debug
	return &Endpoint{api: api, userName: api.Self.UserName, logger: logger}, nil
}

// UserName is the bot's @handle, used to ignore commands meant for other
// bots in group chats.
func (e *Endpoint) UserName() string { return e.userName }

// Updates long-polls Telegram until ctx is cancelled.  Updates that carry
// no message (edits, callbacks, channel posts) are skipped.  Call it once.
func (e *Endpoint) Updates(ctx context.Context) <-chan types.Message {
	out := make(chan types.Message)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = longPollTimeout
	in := e.api.GetUpdatesChan(u)

	go func() {
		defer close(out)
		defer e.api.StopReceivingUpdates()

		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-in:
				if !ok {
					return
				}
				m, ok := messageFromUpdate(upd)
				if !ok {
					continue
				}
				select {
				case out <- m:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

func (e *Endpoint) Reply(ctx context.Context, msg types.Message, text string) error {
	cfg := tgbotapi.NewMessage(msg.ChatID, text)
	cfg.ReplyToMessageID = msg.ID
	return e.send(ctx, cfg)
}

func (e *Endpoint) SendTo(ctx context.Context, chatID int64, text string) error {
	return e.send(ctx, tgbotapi.NewMessage(chatID, text))
}

// send checks ctx first: the Bot API client has no context support of
// its own.
func (e *Endpoint) send(ctx context.Context, cfg tgbotapi.MessageConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := e.api.Send(cfg); err != nil {
		return fmt.Errorf("telegram send to %d: %w", cfg.ChatID, err)
	}
	return nil
}

func messageFromUpdate(upd tgbotapi.Update) (types.Message, bool) {
	m := upd.Message
	if m == nil || m.Chat == nil {
		return types.Message{}, false
	}

	out := types.Message{
		ID:     m.MessageID,
		ChatID: m.Chat.ID,
		SentAt: time.Unix(int64(m.Date), 0).UTC(),
		Text:   m.Text,
	}
	if m.From != nil {
		out.SenderID = m.From.ID
	}

	if m.ForwardDate != 0 || m.ForwardFrom != nil || m.ForwardFromChat != nil || m.ForwardSenderName != "" {
		out.Forward = &types.ForwardOrigin{}
		if m.ForwardFrom != nil {
			out.Forward.UserID = m.ForwardFrom.ID
			out.Forward.Known = true
		}
	}

	return out, true
}
