// Package handler routes inbound chat updates to the batch accumulator, the
// archival pipeline and the retrieval conversation.
package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/sharebot/internal/bot/batch"
	"github.com/dmitrijs2005/sharebot/internal/bot/models"
	"github.com/dmitrijs2005/sharebot/internal/bot/retrieval"
	"github.com/dmitrijs2005/sharebot/internal/bot/services"
	"github.com/dmitrijs2005/sharebot/internal/bot/session"
	"github.com/dmitrijs2005/sharebot/internal/bot/transport"
	"github.com/dmitrijs2005/sharebot/internal/common"
	"github.com/dmitrijs2005/sharebot/internal/logging"
)

type Archiver interface {
	Archive(ctx context.Context, b *models.Batch, description string) (*services.ArchiveResult, error)
}

type Retriever interface {
	Lookup(ctx context.Context, code string) (*services.Summary, error)
	Deliver(ctx context.Context, chatID int64, code string) (*services.Delivery, error)
}

type Handler struct {
	sender    transport.Sender
	store     *session.Store
	acc       *batch.Accumulator
	archive   Archiver
	retrieval Retriever
	logger    logging.Logger
}

// New builds a Handler and registers it as the accumulator's close callback.
func New(sender transport.Sender, store *session.Store, acc *batch.Accumulator, a Archiver, r Retriever, logger logging.Logger) *Handler {
	h := &Handler{
		sender:    sender,
		store:     store,
		acc:       acc,
		archive:   a,
		retrieval: r,
		logger:    logger.With("module", "handler"),
	}
	acc.OnClose(h.AskForDescription)
	return h
}

// Handle processes one inbound update. Errors never escape: the user gets a
// short notice and the details go to the log.
func (h *Handler) Handle(ctx context.Context, u transport.Update) {
	switch {
	case u.File != nil:
		h.handleFile(ctx, u)
	case u.IsCommand():
		h.handleCommand(ctx, u)
	default:
		h.handleText(ctx, u)
	}
}

// AskForDescription prompts the owner of a freshly closed batch for a caption.
func (h *Handler) AskForDescription(userID int64, b *models.Batch) {
	h.reply(context.Background(), b.ChatID, msgAskCaption)
}

func (h *Handler) handleFile(ctx context.Context, u transport.Update) {
	if h.acc.Add(u.UserID, u.ChatID, *u.File) {
		h.reply(ctx, u.ChatID, msgSendMore)
	}
}

func (h *Handler) handleCommand(ctx context.Context, u transport.Update) {
	switch u.Command {
	case "start":
		h.reply(ctx, u.ChatID, msgStart)
	case "get":
		h.handleGet(ctx, u)
	case "cancel":
		h.handleCancel(ctx, u)
	default:
		h.reply(ctx, u.ChatID, msgUnknown)
	}
}

func (h *Handler) setConversation(userID int64, c retrieval.Conversation) {
	h.store.Do(userID, func(s *session.Session) {
		s.Retrieval = c
	})
}

func (h *Handler) handleGet(ctx context.Context, u transport.Update) {
	// A new /get always replaces any pending confirmation.
	h.setConversation(u.UserID, retrieval.Conversation{})

	args := strings.Fields(u.Args)
	if len(args) == 0 {
		h.reply(ctx, u.ChatID, msgGetUsage)
		return
	}
	code := args[0]

	sum, err := h.retrieval.Lookup(ctx, code)
	if errors.Is(err, common.ErrNotFound) {
		h.reply(ctx, u.ChatID, msgNotFound)
		return
	}
	if err != nil {
		h.logger.Error(ctx, "lookup failed", "user_id", u.UserID, "code", code, "error", err)
		h.reply(ctx, u.ChatID, msgError)
		return
	}

	h.setConversation(u.UserID, retrieval.Begin(sum.Code))
	h.reply(ctx, u.ChatID, summaryText(sum))
}

func (h *Handler) handleCancel(ctx context.Context, u transport.Update) {
	h.setConversation(u.UserID, retrieval.Conversation{})
	if n := h.acc.Discard(u.UserID); n > 0 {
		h.logger.Info(ctx, "batches discarded", "user_id", u.UserID, "files", n)
	}
	h.reply(ctx, u.ChatID, msgCancelDone)
}

func (h *Handler) handleText(ctx context.Context, u transport.Update) {
	var (
		pending retrieval.Conversation
		action  retrieval.Action
	)
	h.store.Do(u.UserID, func(s *session.Session) {
		pending = s.Retrieval
		s.Retrieval, action = retrieval.Transition(s.Retrieval, retrieval.Classify(u.Text))
	})

	switch action {
	case retrieval.Forward:
		h.deliver(ctx, u.ChatID, pending.PendingCode)
		return
	case retrieval.Cancelled:
		h.reply(ctx, u.ChatID, msgCancelled)
		return
	case retrieval.Reprompt:
		h.reply(ctx, u.ChatID, msgConfirmOnly)
		return
	}

	if b, ok := h.acc.TakeReady(u.UserID); ok {
		h.describe(ctx, u, b)
		return
	}

	h.reply(ctx, u.ChatID, msgHint)
}

func (h *Handler) describe(ctx context.Context, u transport.Update, b *models.Batch) {
	res, err := h.archive.Archive(ctx, b, u.Text)
	switch {
	case errors.Is(err, common.ErrEmptyBatch):
		h.reply(ctx, u.ChatID, msgEmptyBatch)
	case errors.Is(err, common.ErrArchiveFailed):
		h.reply(ctx, u.ChatID, msgArchiveFailed)
	case err != nil:
		h.logger.Error(ctx, "archive failed", "user_id", u.UserID, "error", err)
		h.reply(ctx, u.ChatID, msgError)
	default:
		h.reply(ctx, u.ChatID, archivedText(res))
	}

	if h.acc.Awaiting(u.UserID) > 0 {
		h.reply(ctx, u.ChatID, msgAskCaption)
	}
}

func (h *Handler) deliver(ctx context.Context, chatID int64, code string) {
	h.reply(ctx, chatID, msgSending)

	d, err := h.retrieval.Deliver(ctx, chatID, code)
	if err != nil {
		h.logger.Error(ctx, "delivery failed", "code", code, "error", err)
		h.reply(ctx, chatID, msgError)
		return
	}
	if d.Total == 0 {
		h.reply(ctx, chatID, msgNoFiles)
		return
	}
	h.reply(ctx, chatID, deliveredText(d))
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.sender.SendText(ctx, chatID, text); err != nil {
		h.logger.Warn(ctx, "reply failed", "chat_id", chatID, "error", err)
	}
}
