// Package remote exposes the equalizer parameters over MQTT.
//
// Every parameter listens on <prefix>/<slug>/set, where slug is the
// ParamSpec slug (e.g. "peak_gain"). The payload is anything
// ParamSpec.Parse accepts: "6", "+6.0 dB", "24dB/Oct". After every store
// write the full state is published, retained, on <prefix>/state in the
// same JSON form as eq.Store.MarshalState. <prefix>/state/set restores a
// whole state document and <prefix>/reset/set restores the defaults.
// Availability is published on <prefix>/availability with an
// "offline" last will.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/W47K3R9/LudEQ/dsp/eq"
)

// DefaultPrefix is the topic prefix used when Config.Prefix is empty.
const DefaultPrefix = "ludeq"

var (
	// ErrNoBroker is returned by Dial when Config.Broker is empty.
	ErrNoBroker = errors.New("remote: no broker configured")
	// ErrConnect wraps connection failures.
	ErrConnect = errors.New("remote: connect failed")
)

// Config describes the broker connection.
type Config struct {
	Broker   string // host name or URL, e.g. "localhost" or "ssl://broker:8883"
	Port     int    // used when Broker carries no port; 0 means 1883
	Username string
	Password string
	Prefix   string
	ClientID string

	// Discovery publishes Home Assistant discovery documents on connect.
	Discovery bool
}

// Client mirrors an eq.Store onto an MQTT broker.
type Client struct {
	conn      mqtt.Client
	store     *eq.Store
	prefix    string
	discovery bool
	logger    *slog.Logger
	cancel    func()
}

// Dial connects to the broker described by cfg and starts mirroring store.
// It returns once the first connection succeeds or ctx is done.
func Dial(ctx context.Context, cfg Config, store *eq.Store, logger *slog.Logger) (*Client, error) {
	if cfg.Broker == "" {
		return nil, ErrNoBroker
	}

	c := newClient(nil, store, cfg.Prefix, logger)
	c.discovery = cfg.Discovery

	opts := mqtt.NewClientOptions()
	opts.AddBroker(BrokerURL(cfg.Broker, cfg.Port))
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("ludeq-%d", time.Now().Unix())
	}
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	// Handlers write the store, which publishes from the same goroutine.
	opts.SetOrderMatters(false)
	opts.SetWill(c.topic("availability"), "offline", 0, true)
	opts.OnConnect = c.onConnect
	opts.OnConnectionLost = c.onConnectionLost

	c.conn = mqtt.NewClient(opts)

	token := c.conn.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		c.conn.Disconnect(0)
		return nil, fmt.Errorf("%w: %w", ErrConnect, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	c.cancel = store.Watch(c.publishState)

	return c, nil
}

func newClient(conn mqtt.Client, store *eq.Store, prefix string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &Client{
		conn:   conn,
		store:  store,
		prefix: prefix,
		logger: logger.With("component", "mqtt"),
	}
}

// BrokerURL normalizes a broker address: a missing scheme becomes tcp://
// and a missing port becomes port (1883 when port is 0).
func BrokerURL(broker string, port int) string {
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}
	if port == 0 {
		port = 1883
	}
	host := broker[strings.Index(broker, "://")+3:]
	if strings.HasPrefix(host, "[") {
		if strings.Contains(host, "]:") {
			return broker
		}
	} else if strings.Contains(host, ":") {
		return broker
	}

	return fmt.Sprintf("%s:%d", broker, port)
}

// Prefix returns the topic prefix in use.
func (c *Client) Prefix() string {
	return c.prefix
}

// Close publishes "offline", stops mirroring and disconnects.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.conn != nil {
		c.conn.Publish(c.topic("availability"), 0, true, "offline").WaitTimeout(time.Second)
		c.conn.Disconnect(250)
	}
}

func (c *Client) topic(parts ...string) string {
	return c.prefix + "/" + strings.Join(parts, "/")
}

// Routes returns every command topic with its handler.
func (c *Client) Routes() map[string]mqtt.MessageHandler {
	routes := make(map[string]mqtt.MessageHandler, eq.NumParams+2)
	for _, spec := range eq.Layout() {
		routes[c.topic(spec.Slug(), "set")] = c.paramHandler(spec)
	}
	routes[c.topic("state", "set")] = c.handleState
	routes[c.topic("reset", "set")] = c.handleReset

	return routes
}

func (c *Client) onConnect(conn mqtt.Client) {
	c.logger.Info("connected to broker", "prefix", c.prefix)

	conn.Publish(c.topic("availability"), 0, true, "online")

	for topic, handler := range c.Routes() {
		if token := conn.Subscribe(topic, 0, handler); token.Wait() && token.Error() != nil {
			c.logger.Warn("subscribe failed", "topic", topic, "err", token.Error())
		}
	}

	if c.discovery {
		c.publishDiscovery(conn)
	}
	c.publishState(c.store.Snapshot())
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	c.logger.Warn("connection lost", "err", err)
}

func (c *Client) paramHandler(spec eq.ParamSpec) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		payload := strings.TrimSpace(string(msg.Payload()))
		v, err := spec.Parse(payload)
		if err != nil {
			c.logger.Warn("ignoring parameter update", "topic", msg.Topic(), "payload", payload, "err", err)
			return
		}

		applied := c.store.Set(spec.ID, v)
		c.logger.Debug("parameter set", "param", spec.Name, "value", applied)
	}
}

func (c *Client) handleState(_ mqtt.Client, msg mqtt.Message) {
	if err := c.store.RestoreState(msg.Payload()); err != nil {
		c.logger.Warn("ignoring state document", "topic", msg.Topic(), "err", err)
	}
}

func (c *Client) handleReset(_ mqtt.Client, _ mqtt.Message) {
	c.store.Reset()
}

// publishState runs on whichever goroutine wrote the store, so it never
// waits for the broker.
func (c *Client) publishState(eq.Parameters) {
	data, err := c.store.MarshalState()
	if err != nil {
		c.logger.Error("marshal state", "err", err)
		return
	}

	c.conn.Publish(c.topic("state"), 0, true, data)
}
