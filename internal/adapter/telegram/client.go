// Package telegram is the chat-delivery adapter. The Bot API is treated as
// unreliable: every failure surfaces as a DeliveryError for the caller to
// log and absorb, never to propagate into domain logic.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Erdaulet0341/taxi-bots/internal/menu"
)

// DeliveryError reports a failed push to one chat.
type DeliveryError struct {
	ChatID string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to chat %s failed: %v", e.ChatID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type keyboardButton struct {
	Text            string `json:"text"`
	RequestLocation bool   `json:"request_location,omitempty"`
}

type replyKeyboard struct {
	Keyboard       [][]keyboardButton `json:"keyboard,omitempty"`
	ResizeKeyboard bool               `json:"resize_keyboard,omitempty"`
	RemoveKeyboard bool               `json:"remove_keyboard,omitempty"`
}

type sendMessageRequest struct {
	ChatID      string         `json:"chat_id"`
	Text        string         `json:"text"`
	ReplyMarkup *replyKeyboard `json:"reply_markup,omitempty"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// SendMessage pushes one text message to a chat. A nil layout removes any
// previous reply keyboard, matching the original bot behavior.
func (c *Client) SendMessage(ctx context.Context, chatID, text string, layout *menu.Layout) error {
	payload := sendMessageRequest{
		ChatID: chatID,
		Text:   text,
	}
	if layout == nil {
		payload.ReplyMarkup = &replyKeyboard{RemoveKeyboard: true}
	} else {
		kb := &replyKeyboard{ResizeKeyboard: layout.Resize}
		for _, row := range layout.Rows {
			buttons := make([]keyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, keyboardButton{Text: b.Text, RequestLocation: b.RequestLocation})
			}
			kb.Keyboard = append(kb.Keyboard, buttons)
		}
		payload.ReplyMarkup = kb
	}

	if err := c.call(ctx, "sendMessage", payload, nil); err != nil {
		return &DeliveryError{ChatID: chatID, Err: err}
	}
	return nil
}

func (c *Client) call(ctx context.Context, method string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var api apiResponse
	if err := json.Unmarshal(data, &api); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !api.OK {
		return fmt.Errorf("%s rejected: %s", method, api.Description)
	}
	if result != nil {
		if err := json.Unmarshal(api.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}
