package review

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Callback data prefixes carried in the inline keyboard. The webhook
// handler parses these back into decisions.
const (
	CallbackApprove = "approve"
	CallbackReject  = "reject"
)

// TelegramConfig holds configuration for the review channel.
type TelegramConfig struct {
	BaseURL  string
	BotToken string
	ChatID   string
	Timeout  time.Duration
}

// TelegramClient delivers review requests to the operator chat with
// approve/reject buttons attached.
type TelegramClient struct {
	client   *resty.Client
	baseURL  string
	botToken string
	chatID   string
}

// NewTelegramClient creates a new TelegramClient.
// Parameters:
//   - cfg: bot token, chat ID, and optional base URL override.
// Returns:
//   - *TelegramClient: initialized client.
func NewTelegramClient(cfg *TelegramConfig) *TelegramClient {
	client := resty.New()
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramClient{
		client:   client,
		baseURL:  baseURL,
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
	}
}

// telegramResponse is the Bot API result envelope.
type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// SendVideoReview posts the composed video to the review chat with
// approve/reject buttons carrying the content ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - contentID: content awaiting review.
//   - videoURL: durable URL of the composed video.
//   - summary: caption describing the content (title, account, duration).
// Returns:
//   - error: non-nil if the Bot API call fails.
func (t *TelegramClient) SendVideoReview(ctx context.Context, contentID, videoURL, summary string) error {
	keyboard := inlineKeyboard{
		InlineKeyboard: [][]inlineButton{{
			{Text: "Approve", CallbackData: fmt.Sprintf("%s:%s", CallbackApprove, contentID)},
			{Text: "Reject", CallbackData: fmt.Sprintf("%s:%s", CallbackReject, contentID)},
		}},
	}
	markup, err := json.Marshal(keyboard)
	if err != nil {
		return fmt.Errorf("failed to marshal keyboard: %w", err)
	}

	var resp telegramResponse
	httpResp, err := t.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id":      t.chatID,
			"video":        videoURL,
			"caption":      summary,
			"reply_markup": string(markup),
		}).
		SetResult(&resp).
		SetError(&resp).
		Post(fmt.Sprintf("%s/bot%s/sendVideo", t.baseURL, t.botToken))

	if err != nil {
		return fmt.Errorf("failed to call sendVideo: %w", err)
	}
	return checkTelegramResponse(httpResp, &resp)
}

// SendMessage posts a plain text message to the review chat. Used for
// decision acknowledgments and operator notices.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - text: message body.
// Returns:
//   - error: non-nil if the Bot API call fails.
func (t *TelegramClient) SendMessage(ctx context.Context, text string) error {
	var resp telegramResponse
	httpResp, err := t.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": t.chatID,
			"text":    text,
		}).
		SetResult(&resp).
		SetError(&resp).
		Post(fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken))

	if err != nil {
		return fmt.Errorf("failed to call sendMessage: %w", err)
	}
	return checkTelegramResponse(httpResp, &resp)
}

// AnswerCallback acknowledges an inline button press so the Telegram
// client stops showing a spinner.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - callbackID: callback query ID from the update.
//   - text: short notice shown to the reviewer.
// Returns:
//   - error: non-nil if the Bot API call fails.
func (t *TelegramClient) AnswerCallback(ctx context.Context, callbackID, text string) error {
	var resp telegramResponse
	httpResp, err := t.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"callback_query_id": callbackID,
			"text":              text,
		}).
		SetResult(&resp).
		SetError(&resp).
		Post(fmt.Sprintf("%s/bot%s/answerCallbackQuery", t.baseURL, t.botToken))

	if err != nil {
		return fmt.Errorf("failed to call answerCallbackQuery: %w", err)
	}
	return checkTelegramResponse(httpResp, &resp)
}

func checkTelegramResponse(httpResp *resty.Response, resp *telegramResponse) error {
	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		if resp.Description != "" {
			return fmt.Errorf("telegram API returned HTTP %d: %s", httpResp.StatusCode(), resp.Description)
		}
		return fmt.Errorf("telegram API returned HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}
	if !resp.OK {
		return fmt.Errorf("telegram API error: %s", resp.Description)
	}
	return nil
}
