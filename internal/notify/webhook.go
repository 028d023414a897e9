package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/Cheese-SwapChess/internal/domain"
)

// HeaderProvider supplies extra request headers, e.g. an auth token.
type HeaderProvider func() map[string]string

// Event is the JSON body posted when a match ends.
type Event struct {
	Type      string    `json:"type"`
	Match     string    `json:"match"`
	GameID    string    `json:"game_id"`
	Winner    string    `json:"winner"`
	Method    string    `json:"method"`
	Plies     int       `json:"plies"`
	Captured  []string  `json:"captured"`
	EndedAt   time.Time `json:"ended_at"`
	DurationS float64   `json:"duration_s"`
}

// Webhook posts match events to one URL.
type Webhook struct {
	url     string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Webhook)

func WithTimeout(d time.Duration) Option {
	return func(w *Webhook) {
		if d > 0 {
			w.defaultTimeout = d
		}
	}
}

func WithRetry(max int) Option {
	return func(w *Webhook) { w.retryMax = max }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(w *Webhook) { w.headers = h }
}

// WithDial replaces the TCP dialer.
func WithDial(dial func(addr string) (net.Conn, error)) Option {
	return func(w *Webhook) { w.http.Dial = dial }
}

func NewWebhook(url string, opts ...Option) *Webhook {
	w := &Webhook{
		url:            strings.TrimSpace(url),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 5 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// MatchFinished posts a match_finished event.
func (w *Webhook) MatchFinished(ctx context.Context, res *domain.MatchResult) error {
	if res == nil {
		return errors.New("nil match result")
	}
	return w.post(ctx, Event{
		Type:      "match_finished",
		Match:     res.MatchName,
		GameID:    res.MatchUUID,
		Winner:    res.Winner,
		Method:    res.Method,
		Plies:     res.Plies,
		Captured:  res.Captured,
		EndedAt:   res.EndedAt,
		DurationS: res.Duration.Seconds(),
	})
}

func (w *Webhook) post(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()
	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(w.url)
	req.Header.SetContentType("application/json")
	if w.headers != nil {
		for k, v := range w.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}
	req.SetBody(payload)

	attempts := max(w.retryMax, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := w.http.DoDeadline(req, resp, w.computeDeadline(ctx))
		switch {
		case err != nil:
			lastErr = fmt.Errorf("webhook request failed: %w", err)
		case resp.StatusCode() < 200 || resp.StatusCode() >= 300:
			lastErr = fmt.Errorf("webhook error: status=%d body=%s", resp.StatusCode(), truncate(string(resp.Body()), 256))
			if !shouldRetryStatus(resp.StatusCode()) {
				return lastErr
			}
		default:
			return nil
		}
		if attempt == attempts {
			break
		}
		if err := sleepWithContext(ctx, backoffDuration(attempt)); err != nil {
			return lastErr
		}
	}
	return lastErr
}

func (w *Webhook) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(w.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoffDuration doubles from 100ms and caps at 3.2s.
func backoffDuration(attempt int) time.Duration {
	attempt = min(max(attempt, 1), 6)
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case fasthttp.StatusInternalServerError, fasthttp.StatusBadGateway, fasthttp.StatusServiceUnavailable, fasthttp.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
