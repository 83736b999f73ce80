package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tripsify/internal/domain"

	"go.uber.org/zap"
)

// Sender delivers a one-time code over a single channel.
type Sender interface {
	Send(ctx context.Context, target, code string) error
}

// Dispatcher routes a delivery request to the sender registered for
// the requested channel.
type Dispatcher struct {
	senders map[domain.Channel]Sender
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{senders: make(map[domain.Channel]Sender)}
}

func (d *Dispatcher) Register(ch domain.Channel, s Sender) {
	d.senders[ch] = s
}

func (d *Dispatcher) Send(ctx context.Context, ch domain.Channel, target, code string) error {
	s, ok := d.senders[ch]
	if !ok {
		return fmt.Errorf("no sender registered for channel %q", ch)
	}
	return s.Send(ctx, target, code)
}

// GatewaySender posts the delivery request to an external SMS /
// WhatsApp / voice gateway.
type GatewaySender struct {
	url     string
	channel domain.Channel
	client  *http.Client
}

func NewGatewaySender(url string, channel domain.Channel) *GatewaySender {
	return &GatewaySender{
		url:     url,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *GatewaySender) Send(ctx context.Context, target, code string) error {
	body, err := json.Marshal(map[string]string{
		"channel": string(g.channel),
		"to":      target,
		"message": fmt.Sprintf("Your Tripsify verification code is %s", code),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s gateway: %w", g.channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s gateway returned status %d", g.channel, resp.StatusCode)
	}
	return nil
}

// LogSender is the dev fallback when no gateway is configured: the code
// only shows up in the server log.
type LogSender struct {
	channel domain.Channel
	log     *zap.Logger
}

func NewLogSender(channel domain.Channel, log *zap.Logger) *LogSender {
	return &LogSender{channel: channel, log: log}
}

func (l *LogSender) Send(_ context.Context, target, code string) error {
	l.log.Info("otp delivery (dev sender)",
		zap.String("channel", string(l.channel)),
		zap.String("target", target),
		zap.String("code", code),
	)
	return nil
}
