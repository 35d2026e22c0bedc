package mqttpub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	dashboard "github.com/goliatone/go-insights/components/dashboard"
)

// Options configures the broker connection.
type Options struct {
	BrokerURL string
	ClientID  string
	QoS       byte
	Retained  bool
}

// publisher is the slice of mqtt.Client the publisher needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher sends dashboard events to an MQTT broker. It satisfies
// dashboard.NotificationsClient.
type Publisher struct {
	raw      publisher
	qos      byte
	retained bool
}

var _ dashboard.NotificationsClient = (*Publisher)(nil)

// Connect dials the broker, retrying in the background until the first connect succeeds.
func Connect(opts Options) (*Publisher, error) {
	if opts.BrokerURL == "" {
		return nil, errors.New("mqttpub: broker url is required")
	}
	o := mqtt.NewClientOptions()
	o.AddBroker(opts.BrokerURL)
	o.SetClientID(opts.ClientID)
	o.SetConnectRetry(true)
	o.SetConnectRetryInterval(2 * time.Second)
	c := mqtt.NewClient(o)

	token := c.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqttpub: connect %s: %w", opts.BrokerURL, token.Error())
	}
	return newPublisher(c, opts), nil
}

func newPublisher(raw publisher, opts Options) *Publisher {
	return &Publisher{raw: raw, qos: opts.QoS, retained: opts.Retained}
}

// Topic joins the channel with the event kind: "<channel>/<session>/<kind>".
func Topic(channel string, event dashboard.DashboardEvent) string {
	parts := make([]string, 0, 3)
	if channel = strings.Trim(channel, "/"); channel != "" {
		parts = append(parts, channel)
	}
	if event.SessionID != "" {
		parts = append(parts, event.SessionID)
	}
	parts = append(parts, event.Kind)
	return strings.Join(parts, "/")
}

// PublishDashboardEvent encodes event as JSON and publishes it, giving up when ctx ends.
func (p *Publisher) PublishDashboardEvent(ctx context.Context, channel string, event dashboard.DashboardEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("mqttpub: encode event: %w", err)
	}
	token := p.raw.Publish(Topic(channel, event), p.qos, p.retained, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects, allowing 250ms for in-flight work.
func (p *Publisher) Close() {
	p.raw.Disconnect(250)
}
