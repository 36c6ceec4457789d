package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Erdaulet0341/taxi-bots/internal/domain/models"
)

// pollTimeout is the long-poll window passed to getUpdates.
const pollTimeout = 30 * time.Second

// InboundHandler consumes one inbound chat message. Implementations own
// their failure handling; the poller never inspects the outcome.
type InboundHandler interface {
	HandleInbound(ctx context.Context, msg models.InboundMessage)
}

type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text     string `json:"text"`
		Location *struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"location"`
	} `json:"message"`
}

type getUpdatesRequest struct {
	Offset  int64 `json:"offset,omitempty"`
	Timeout int   `json:"timeout"`
}

// Poller long-polls the Bot API and fans inbound messages out to the
// handler. Each message runs in its own goroutine: ordering per user is
// enforced by the session store, not by the transport.
type Poller struct {
	client  *Client
	handler InboundHandler
	offset  int64
}

func NewPoller(client *Client, handler InboundHandler) *Poller {
	// A dedicated client whose timeout exceeds the long-poll window; the
	// send client's short timeout would cut idle polls off early.
	pollClient := &Client{
		baseURL:    client.baseURL,
		token:      client.token,
		httpClient: &http.Client{Timeout: pollTimeout + 15*time.Second},
	}
	return &Poller{client: pollClient, handler: handler}
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	log.Println("Telegram poller started")
	for {
		select {
		case <-ctx.Done():
			log.Println("Telegram poller stopped")
			return
		default:
		}

		updates, err := p.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Failed to fetch updates: %v", err)
			time.Sleep(3 * time.Second)
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= p.offset {
				p.offset = u.UpdateID + 1
			}
			msg, ok := toInbound(u)
			if !ok {
				continue
			}
			go p.handler.HandleInbound(ctx, msg)
		}
	}
}

func (p *Poller) fetch(ctx context.Context) ([]update, error) {
	callCtx, cancel := context.WithTimeout(ctx, pollTimeout+10*time.Second)
	defer cancel()

	var updates []update
	err := p.client.call(callCtx, "getUpdates", getUpdatesRequest{
		Offset:  p.offset,
		Timeout: int(pollTimeout.Seconds()),
	}, &updates)
	if err != nil {
		return nil, fmt.Errorf("getUpdates failed: %w", err)
	}
	return updates, nil
}

func toInbound(u update) (models.InboundMessage, bool) {
	if u.Message == nil {
		return models.InboundMessage{}, false
	}
	msg := models.InboundMessage{
		ChatID: strconv.FormatInt(u.Message.Chat.ID, 10),
		Text:   u.Message.Text,
	}
	if u.Message.Location != nil {
		msg.Location = &models.Location{
			Latitude:  u.Message.Location.Latitude,
			Longitude: u.Message.Location.Longitude,
		}
	}
	return msg, true
}
