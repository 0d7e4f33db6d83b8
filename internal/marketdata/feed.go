package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abirkan1/eod-backtest/internal/domain"
)

// Quote is one streamed last-traded-price update.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
	Timestamp int64   `json:"ts"` // Unix ms
}

// FeedConfig configures websocket feed behavior.
type FeedConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the backoff between reconnect attempts.
	MaxReconnectDelay time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultFeedConfig returns the default feed configuration.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Feed subscribes to a provider's quote stream and retains the latest
// quote per symbol. It is used to patch the current day's forming bar onto
// a cached EOD series; the backtest engine itself never touches it.
type Feed struct {
	endpoint string
	symbols  []string
	config   FeedConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	latest   map[string]Quote
	latestMu sync.RWMutex

	done chan struct{}
	wg   sync.WaitGroup
}

// NewFeed connects to the endpoint, subscribes to the symbols, and starts
// the read loop with automatic reconnect.
func NewFeed(ctx context.Context, endpoint string, symbols []string, config *FeedConfig) (*Feed, error) {
	cfg := DefaultFeedConfig()
	if config != nil {
		cfg = *config
	}

	f := &Feed{
		endpoint: endpoint,
		symbols:  append([]string(nil), symbols...),
		config:   cfg,
		latest:   make(map[string]Quote),
		done:     make(chan struct{}),
	}

	if err := f.connect(ctx); err != nil {
		return nil, err
	}

	f.wg.Add(1)
	go f.readLoop()

	return f, nil
}

// Latest returns the most recent quote for a symbol, if any arrived.
func (f *Feed) Latest(symbol string) (Quote, bool) {
	f.latestMu.RLock()
	defer f.latestMu.RUnlock()
	q, ok := f.latest[symbol]
	return q, ok
}

// Close shuts down the feed and waits for the read loop to exit.
func (f *Feed) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(f.done)

	f.connMu.Lock()
	if f.conn != nil {
		f.conn.Close()
	}
	f.connMu.Unlock()

	f.wg.Wait()
	return nil
}

func (f *Feed) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial feed %s: %w", f.endpoint, err)
	}

	sub := struct {
		Action  string   `json:"action"`
		Symbols []string `json:"symbols"`
	}{Action: "subscribe", Symbols: f.symbols}

	conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return fmt.Errorf("subscribe: %w", err)
	}

	f.connMu.Lock()
	f.conn = conn
	f.connMu.Unlock()
	return nil
}

func (f *Feed) readLoop() {
	defer f.wg.Done()

	delay := f.config.ReconnectDelay
	for {
		select {
		case <-f.done:
			return
		default:
		}

		f.connMu.Lock()
		conn := f.conn
		f.connMu.Unlock()

		conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if f.closed.Load() {
				return
			}
			// Reconnect with capped backoff.
			select {
			case <-f.done:
				return
			case <-time.After(delay):
			}
			if delay *= 2; delay > f.config.MaxReconnectDelay {
				delay = f.config.MaxReconnectDelay
			}
			if err := f.connect(context.Background()); err != nil {
				continue
			}
			delay = f.config.ReconnectDelay
			continue
		}

		var q Quote
		if err := json.Unmarshal(msg, &q); err != nil || q.Symbol == "" {
			continue // provider keepalives and malformed frames
		}
		f.latestMu.Lock()
		f.latest[q.Symbol] = q
		f.latestMu.Unlock()
	}
}

// PatchForming overlays a live quote onto a bar series: a quote dated the
// same day as the last bar updates that bar's high/low/close and volume; a
// quote for a later day appends a new forming bar opened at the quote
// price. Quotes at or before the last completed day are ignored.
func PatchForming(bars []domain.Bar, q Quote) []domain.Bar {
	if q.Price <= 0 {
		return bars
	}
	day := time.UnixMilli(q.Timestamp).UTC().Truncate(24 * time.Hour)

	if n := len(bars); n > 0 {
		last := bars[n-1].Date
		switch {
		case day.Before(last):
			return bars
		case day.Equal(last):
			b := bars[n-1]
			if q.Price > b.High {
				b.High = q.Price
			}
			if q.Price < b.Low {
				b.Low = q.Price
			}
			b.Close = q.Price
			if q.Volume > 0 {
				b.Volume = q.Volume
			}
			out := append([]domain.Bar(nil), bars...)
			out[n-1] = b
			return out
		}
	}

	return append(append([]domain.Bar(nil), bars...), domain.Bar{
		Date:   day,
		Open:   q.Price,
		High:   q.Price,
		Low:    q.Price,
		Close:  q.Price,
		Volume: q.Volume,
	})
}
