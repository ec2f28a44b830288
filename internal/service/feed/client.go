package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"TradeGate/internal/domain/models"
	drepo "TradeGate/internal/domain/repository"
	"TradeGate/pkg/logger"
)

// Client implements a SignalStream backed by a strategy-agent WebSocket
// feed. Agents push signal frames; the client never writes anything but
// the subscription handshake and pings.
type Client struct {
	apiKey         string
	websocketURL   string
	channels       []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	logger         *logger.Logger

	conn      *websocket.Conn
	connected bool
}

// New creates a new strategy feed SignalStream.
func New(apiKey, websocketURL string, channels []string, reconnectDelay, pingInterval time.Duration, lgr *logger.Logger) drepo.SignalStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		channels:       channels,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		logger:         lgr,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("feed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	c.logger.Info("feed connected", logger.String("url", c.websocketURL))
	return nil
}

// Subscribe subscribes to the configured strategy channels.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("feed not connected")
	}
	for _, ch := range c.channels {
		msg := map[string]string{"type": "subscribe", "channel": ch}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", ch, err)
		}
		c.logger.Info("feed subscribed", logger.String("channel", ch))
	}
	return nil
}

type feedSignal struct {
	Symbol        string  `json:"symbol"`
	Kind          string  `json:"kind"`
	Size          float64 `json:"size"`
	Timestamp     int64   `json:"timestamp"` // ms
	EntryPrice    float64 `json:"entry_price"`
	ExitPrice     float64 `json:"exit_price"`
	StopLoss      float64 `json:"stop_loss"`
	TakeProfit    float64 `json:"take_profit"`
	ExpectedPrice float64 `json:"expected_price"`
	Leverage      float64 `json:"leverage"`
	Region        string  `json:"region"`
}

type feedMessage struct {
	Type string       `json:"type"`
	Data []feedSignal `json:"data"`
}

// parseFrame decodes one feed frame into signals. Non-signal frames,
// unparseable payloads and unknown kinds yield nothing; the feed is never
// a reason to stop reading.
func parseFrame(b []byte) []*models.Signal {
	var m feedMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	if m.Type != "signal" {
		return nil
	}
	out := make([]*models.Signal, 0, len(m.Data))
	for _, d := range m.Data {
		kind, err := models.ParseSignalKind(d.Kind)
		if err != nil {
			continue
		}
		out = append(out, &models.Signal{
			Symbol:        d.Symbol,
			Kind:          kind,
			Size:          d.Size,
			Timestamp:     d.Timestamp / 1000,
			EntryPrice:    d.EntryPrice,
			ExitPrice:     d.ExitPrice,
			StopLoss:      d.StopLoss,
			TakeProfit:    d.TakeProfit,
			ExpectedPrice: d.ExpectedPrice,
			Leverage:      d.Leverage,
			Region:        d.Region,
		})
	}
	return out
}

// Read streams Signal events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.Signal, <-chan error) {
	signals := make(chan *models.Signal, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(signals)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("feed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("feed read: %w", err)
					return
				}
				for _, sig := range parseFrame(b) {
					select {
					case signals <- sig:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return signals, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
