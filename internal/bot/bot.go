// Package bot is a Telegram front-end for the pipeline. Each chat user is a
// memory user "telegram:<id>"; actions that need confirmation get inline
// Confirm/Cancel buttons.
package bot

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/aura/internal/models"
	"github.com/xaenox/aura/internal/safety"
	"github.com/xaenox/aura/internal/storage"
)

const (
	defaultImagePrompt = "What is in this image?"
	pendingTTL         = 10 * time.Minute

	callbackConfirm = "confirm"
	callbackCancel  = "cancel"
)

// Processor runs one chat request through the pipeline.
type Processor interface {
	Process(ctx context.Context, req models.Request) (models.Response, error)
}

// telegramAPI is the subset of *tgbotapi.BotAPI the bot uses.
type telegramAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Bot struct {
	api        telegramAPI
	pipeline   Processor
	storage    storage.Storage
	pending    *pendingRequests
	httpClient *http.Client
	logger     *zap.Logger
}

func New(token string, pipeline Processor, storage storage.Storage, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))
	return newBot(api, pipeline, storage, logger), nil
}

func newBot(api telegramAPI, pipeline Processor, storage storage.Storage, logger *zap.Logger) *Bot {
	return &Bot{
		api:        api,
		pipeline:   pipeline,
		storage:    storage,
		pending:    newPendingRequests(pendingTTL),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			switch {
			case update.Message != nil:
				go b.handleMessage(ctx, update.Message)
			case update.CallbackQuery != nil:
				go b.handleCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

func userID(from *tgbotapi.User) string {
	return "telegram:" + strconv.FormatInt(from.ID, 10)
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	req := models.Request{
		Message: message.Text,
		UserID:  userID(message.From),
	}

	if len(message.Photo) > 0 {
		image, err := b.downloadPhoto(ctx, message.Photo)
		if err != nil {
			b.logger.Error("Failed to download photo",
				zap.Error(err),
				zap.Int64("chat_id", message.Chat.ID))
			b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't read that image. Please try again.")
			return
		}
		req.ImageBase64 = image
		req.Message = message.Caption
		if req.Message == "" {
			req.Message = defaultImagePrompt
		}
	}

	if strings.TrimSpace(req.Message) == "" {
		b.sendMessage(message.Chat.ID, "Send me a message or a photo and I'll take it from there.")
		return
	}

	b.process(ctx, message.Chat.ID, message.MessageID, req)
}

func (b *Bot) process(ctx context.Context, chatID int64, replyToID int, req models.Request) {
	resp, err := b.pipeline.Process(ctx, req)
	if err != nil {
		b.logger.Error("Failed to process message",
			zap.Error(err),
			zap.String("user_id", req.UserID))
		b.sendErrorMessage(chatID, "Sorry, something went wrong while processing your request.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, formatResponse(resp))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.ReplyToMessageID = replyToID
	msg.DisableWebPagePreview = true

	if resp.RequiresConfirmation {
		confirmed := req
		confirmed.Confirmed = true
		id := b.pending.put(confirmed)
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", callbackConfirm+":"+id),
				tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackCancel+":"+id),
			),
		)
	}

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send response",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	action, id, _ := strings.Cut(query.Data, ":")

	var answer string
	req, ok := b.pending.take(id)
	switch {
	case !ok:
		answer = "This request has expired."
	case action == callbackConfirm:
		answer = "Confirmed"
	default:
		answer = "Cancelled"
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, answer)); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}
	if query.Message == nil {
		return
	}

	chatID := query.Message.Chat.ID
	strip := tgbotapi.NewEditMessageReplyMarkup(chatID, query.Message.MessageID,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	if _, err := b.api.Request(strip); err != nil {
		b.logger.Warn("Failed to remove buttons", zap.Error(err))
	}

	switch {
	case !ok:
		b.sendMessage(chatID, answer)
	case action == callbackConfirm:
		b.process(ctx, chatID, query.Message.MessageID, req)
	default:
		b.sendMessage(chatID, "Okay, I won't do that.")
	}
}

// downloadPhoto fetches the largest size of a photo as base64.
func (b *Bot) downloadPhoto(ctx context.Context, sizes []tgbotapi.PhotoSize) (string, error) {
	largest := sizes[len(sizes)-1]
	url, err := b.api.GetFileDirectURL(largest.FileID)
	if err != nil {
		return "", fmt.Errorf("get file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	// one byte over the limit is enough for the safety gate to reject it
	data, err := io.ReadAll(io.LimitReader(resp.Body, safety.MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "memory":
		b.handleMemory(ctx, message)
	case "forget":
		b.handleForget(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to AURA!
Tell me what you want to do and I'll prepare it for you: open an app, draft a message or an email, play something, search the web or answer a question.

I never send anything on my own. Messages and emails always wait for your confirmation.
Use /help to see all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/memory - Show what I remember about you
/forget - Clear your memory

Try:
- open youtube
- send whatsapp message to 9876543210 saying hello
- email bob@example.com about the meeting
- play lofi beats
- summarize: <some text>
- a photo with a question as caption`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleMemory(ctx context.Context, message *tgbotapi.Message) {
	m, err := b.storage.GetOrCreate(ctx, userID(message.From))
	if err != nil {
		b.logger.Error("Failed to get memory",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, failed to retrieve your memory. Please try again later.")
		return
	}

	summary := storage.SummarizeForContext(m)
	if summary == "" {
		b.sendMessage(message.Chat.ID, "I don't remember anything about you yet.")
		return
	}
	b.sendMessage(message.Chat.ID, summary)
}

func (b *Bot) handleForget(ctx context.Context, message *tgbotapi.Message) {
	if err := b.storage.Clear(ctx, userID(message.From)); err != nil {
		b.logger.Error("Failed to clear memory",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't clear your memory.")
		return
	}
	b.sendMessage(message.Chat.ID, "Done. I've forgotten everything about you.")
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
