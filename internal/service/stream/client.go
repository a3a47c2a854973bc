// Package stream implements the push-channel MarketStream over WebSocket.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/models"
	drepo "github.com/Hjcho123/PlusAlpha-sub001/internal/domain/repository"
	applogger "github.com/Hjcho123/PlusAlpha-sub001/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client implements a MarketStream backed by the dashboard's quote WebSocket.
// A failed connection or send is logged and counted only; the client never
// reconnects on its own and the system degrades to poll-only updates.
type Client struct {
	url          string
	apiKey       string
	pingInterval time.Duration
	bufferSize   int
	logger       *applogger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// New creates a new WebSocket MarketStream.
func New(url, apiKey string, pingInterval time.Duration, bufferSize int, logger *applogger.Logger) drepo.MarketStream {
	return &Client{
		url:          url,
		apiKey:       apiKey,
		pingInterval: pingInterval,
		bufferSize:   bufferSize,
		logger:       logger,
	}
}

// Connect establishes the WebSocket connection. Idempotent: a second call
// while connected is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	u := c.url
	if c.apiKey != "" {
		u = fmt.Sprintf("%s?token=%s", c.url, c.apiKey)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	c.logger.Info("stream: connected", applogger.String("url", c.url))
	return nil
}

type subscribeMsg struct {
	Type    string   `json:"type"`
	Symbols []string `json:"symbols"`
}

// Subscribe sends a subscribe delta for the given symbols.
func (c *Client) Subscribe(ctx context.Context, symbols []string) error {
	return c.sendDelta("subscribe", symbols)
}

// Unsubscribe sends an unsubscribe delta for the given symbols.
func (c *Client) Unsubscribe(ctx context.Context, symbols []string) error {
	return c.sendDelta("unsubscribe", symbols)
}

func (c *Client) sendDelta(typ string, symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || !c.connected {
		return fmt.Errorf("stream not connected")
	}
	if err := c.conn.WriteJSON(subscribeMsg{Type: typ, Symbols: symbols}); err != nil {
		return fmt.Errorf("%s %v: %w", typ, symbols, err)
	}
	c.logger.Debug("stream: sent delta", applogger.String("type", typ), applogger.Strings("symbols", symbols))
	return nil
}

type priceUpdateFrame struct {
	Type string      `json:"type"`
	Data models.Tick `json:"data"`
}

// Read streams ticks and errors. The tick channel is buffered; ticks are
// dropped on backpressure rather than blocking the read loop. Both channels
// close when the read loop exits.
func (c *Client) Read(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	ticks := make(chan *models.Tick, c.bufferSize)
	errs := make(chan error, 1)

	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				if c.conn != nil && c.connected {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
				c.mu.Unlock()
			}
		}
	}()

	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			c.mu.Lock()
			conn := c.conn
			c.mu.Unlock()
			if conn == nil {
				errs <- fmt.Errorf("stream conn nil")
				return
			}

			_, b, err := conn.ReadMessage()
			if err != nil {
				c.mu.Lock()
				c.connected = false
				c.mu.Unlock()
				errs <- fmt.Errorf("stream read: %w", err)
				return
			}

			var frame priceUpdateFrame
			if err := json.Unmarshal(b, &frame); err != nil {
				// ignore malformed frames
				continue
			}
			// insight_update and alert frames exist on the wire but are not
			// consumed by this core
			if frame.Type != "price_update" {
				continue
			}
			tick := frame.Data
			select {
			case ticks <- &tick:
			default:
				// drop on backpressure
			}
		}
	}()

	return ticks, errs
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected = false
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// IsConnected indicates connection status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
