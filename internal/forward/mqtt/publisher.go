// Package mqtt publishes input record summaries to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/tamzrod/profibus-exchange/internal/config"
	"github.com/tamzrod/profibus-exchange/internal/forward"
	"github.com/tamzrod/profibus-exchange/internal/logger"
	"github.com/tamzrod/profibus-exchange/internal/record"
)

const (
	appID          = "pbexchange"
	connectTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
)

// ErrPublishTimeout is returned when the broker did not acknowledge in time.
var ErrPublishTimeout = errors.New("mqtt: publish timed out")

// client is the part of paho.Client the publisher uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// Message is the published payload.
type Message struct {
	Record record.Summary `json:"record"`
	Verify bool           `json:"verify"`
	At     time.Time      `json:"at"`
}

// Publisher sends one message per decoded record.
// Regular reads go to <topic>/input, read-backs after a write go to <topic>/verify.
type Publisher struct {
	Client  client
	Topic   string
	QoS     byte
	Retain  bool
	Timeout time.Duration
}

var _ forward.Consumer = (*Publisher)(nil)

// ClientOptionsFromURL creates ClientOptions from URL.
// A client-id query parameter overrides the derived client id.
func ClientOptionsFromURL(serverURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, "", err
	}
	var server string
	if u.Scheme == "" || u.Scheme == "mqtt" {
		server = "tcp"
	} else {
		server = u.Scheme
	}
	server += "://" + u.Host

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}

	return opts, u.Query().Get("client-id"), nil
}

// ClientID derives a stable client id from the machine id.
func ClientID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		host, _ := os.Hostname()
		return appID + "-" + host
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return appID + "-" + id
}

// Dial connects to the broker described by cfg.
func Dial(cfg config.MQTTConfig, l logger.Logger) (*Publisher, error) {
	opts, clientID, err := ClientOptionsFromURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("mqtt: %w", err)
	}
	switch {
	case cfg.ClientID != "":
		clientID = cfg.ClientID
	case clientID == "":
		clientID = ClientID()
	}
	opts.SetClientID(clientID)

	if l == nil {
		l = logger.GetLogger()
	}
	l = l.With("component", "mqtt", "client_id", clientID)
	opts.SetOnConnectHandler(func(paho.Client) {
		l.Info("connected", "url", cfg.URL)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		l.Warn("connection lost", "error", err)
	})

	c := paho.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(connectTimeout) {
		c.Disconnect(0)
		return nil, fmt.Errorf("mqtt: connect %s timed out", cfg.URL)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", cfg.URL, err)
	}

	return &Publisher{
		Client:  c,
		Topic:   cfg.Topic,
		QoS:     cfg.QoS,
		Retain:  cfg.Retain,
		Timeout: publishTimeout,
	}, nil
}

func (p *Publisher) Consume(ctx context.Context, res forward.Result) error {
	payload, err := json.Marshal(Message{
		Record: record.Summarize(res.Record),
		Verify: res.Verify,
		At:     res.At,
	})
	if err != nil {
		return fmt.Errorf("mqtt: marshal: %w", err)
	}

	topic := p.topic(res.Verify)
	tok := p.Client.Publish(topic, p.QoS, p.Retain, payload)

	timeout := p.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	if !tok.WaitTimeout(timeout) {
		return fmt.Errorf("%w: %s", ErrPublishTimeout, topic)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt: publish %s: %w", topic, err)
	}
	return nil
}

func (p *Publisher) topic(verify bool) string {
	base := strings.TrimSuffix(p.Topic, "/")
	if verify {
		return base + "/verify"
	}
	return base + "/input"
}

// Close implements io.Closer.
func (p *Publisher) Close() error {
	p.Client.Disconnect(250)
	return nil
}
