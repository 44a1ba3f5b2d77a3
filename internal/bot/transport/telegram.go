package transport

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sharebot/internal/bot/models"
	"github.com/dmitrijs2005/sharebot/internal/logging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const pollTimeout = 60

// botAPI is the subset of *tgbotapi.BotAPI used here.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Telegram implements Transport over the Telegram Bot API with long polling.
type Telegram struct {
	api    botAPI
	logger logging.Logger
}

// NewTelegram authenticates with token and returns a ready transport.
func NewTelegram(token string, logger logging.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	t := newTelegram(api, logger)
	t.logger.Info(context.Background(), "authorized", "bot", api.Self.UserName)
	return t, nil
}

func newTelegram(api botAPI, logger logging.Logger) *Telegram {
	return &Telegram{api: api, logger: logger.With("module", "telegram")}
}

func (t *Telegram) Updates(ctx context.Context) <-chan Update {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeout
	in := t.api.GetUpdatesChan(cfg)

	out := make(chan Update)
	go func() {
		defer close(out)
		defer t.api.StopReceivingUpdates()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-in:
				if !ok {
					return
				}
				u, ok := convert(raw)
				if !ok {
					continue
				}
				select {
				case out <- u:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// convert maps a Telegram update to an Update. Non-message updates are dropped.
func convert(raw tgbotapi.Update) (Update, bool) {
	msg := raw.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return Update{}, false
	}

	u := Update{
		UserID: msg.From.ID,
		ChatID: msg.Chat.ID,
		Text:   msg.Text,
	}
	if msg.IsCommand() {
		u.Command = msg.Command()
		u.Args = msg.CommandArguments()
	}
	u.File = fileRef(msg)

	if u.File == nil && u.Text == "" {
		return Update{}, false
	}
	return u, true
}

// fileRef extracts the attachment of msg. Animations also carry a Document,
// so they are checked before the generic document case.
func fileRef(msg *tgbotapi.Message) *models.FileRef {
	switch {
	case len(msg.Photo) > 0:
		// sizes are ordered small to large
		return &models.FileRef{Kind: models.KindPhoto, FileID: msg.Photo[len(msg.Photo)-1].FileID}
	case msg.Video != nil:
		return &models.FileRef{Kind: models.KindVideo, FileID: msg.Video.FileID}
	case msg.Audio != nil:
		return &models.FileRef{Kind: models.KindAudio, FileID: msg.Audio.FileID}
	case msg.Animation != nil:
		return &models.FileRef{Kind: models.KindAnimation, FileID: msg.Animation.FileID}
	case msg.Document != nil:
		return &models.FileRef{Kind: models.KindDocument, FileID: msg.Document.FileID}
	}
	return nil
}

func (t *Telegram) SendText(ctx context.Context, chatID int64, text string) error {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	if _, err := t.api.Send(m); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (t *Telegram) SendPhoto(ctx context.Context, chatID int64, fileID string) (int, error) {
	return t.send(tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID)), "photo")
}

func (t *Telegram) SendVideo(ctx context.Context, chatID int64, fileID string) (int, error) {
	return t.send(tgbotapi.NewVideo(chatID, tgbotapi.FileID(fileID)), "video")
}

func (t *Telegram) SendDocument(ctx context.Context, chatID int64, fileID string) (int, error) {
	return t.send(tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID)), "document")
}

func (t *Telegram) Forward(ctx context.Context, toChatID, fromChatID int64, messageID int) error {
	if _, err := t.api.Send(tgbotapi.NewForward(toChatID, fromChatID, messageID)); err != nil {
		return fmt.Errorf("forward message %d: %w", messageID, err)
	}
	return nil
}

func (t *Telegram) send(c tgbotapi.Chattable, kind string) (int, error) {
	sent, err := t.api.Send(c)
	if err != nil {
		return 0, fmt.Errorf("send %s: %w", kind, err)
	}
	return sent.MessageID, nil
}
