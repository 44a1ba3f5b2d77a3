// Package transport abstracts the chat platform: inbound updates and the
// send/forward primitives the bot relies on.
package transport

import (
	"context"

	"github.com/dmitrijs2005/sharebot/internal/bot/models"
)

// Update is a transport-neutral inbound event.
type Update struct {
	UserID int64
	ChatID int64
	// Text is the raw message text (empty for attachments).
	Text string
	// Command is set for "/cmd args" messages, without the slash.
	Command string
	Args    string
	// File is set when the message carries an attachment.
	File *models.FileRef
}

// IsCommand reports whether the update is a bot command.
func (u Update) IsCommand() bool {
	return u.Command != ""
}

// Sender is the outbound half of the transport.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	// SendPhoto, SendVideo and SendDocument re-send an existing file by its
	// handle and return the new message id.
	SendPhoto(ctx context.Context, chatID int64, fileID string) (int, error)
	SendVideo(ctx context.Context, chatID int64, fileID string) (int, error)
	SendDocument(ctx context.Context, chatID int64, fileID string) (int, error)
	Forward(ctx context.Context, toChatID, fromChatID int64, messageID int) error
}

// Transport is a Sender that also delivers inbound updates.
type Transport interface {
	Sender
	// Updates streams inbound events until ctx is cancelled.
	Updates(ctx context.Context) <-chan Update
}
