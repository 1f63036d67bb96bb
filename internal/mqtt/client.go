// client.go: paho backed implementation of Client.
package mqtt

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/trailtracker/trailtracker/internal/conf"
	"github.com/trailtracker/trailtracker/internal/errors"
	"github.com/trailtracker/trailtracker/internal/logger"
	"github.com/trailtracker/trailtracker/internal/observability/metrics"
)

// client implements the Client interface.
type client struct {
	config         Config
	internalClient paho.Client
	newClient      func(*paho.ClientOptions) paho.Client
	mu             sync.Mutex
	log            logger.Logger
	metrics        *metrics.MQTTMetrics
}

// ConfigFromSettings maps the mqtt section of the settings to a client Config.
func ConfigFromSettings(settings *conf.Settings) Config {
	cfg := DefaultConfig()
	cfg.Broker = settings.MQTT.Broker
	cfg.Username = settings.MQTT.Username
	cfg.Password = settings.MQTT.Password
	if settings.MQTT.ClientID != "" {
		cfg.ClientID = settings.MQTT.ClientID
	} else if settings.Main.Name != "" {
		cfg.ClientID = settings.Main.Name
	}
	if settings.MQTT.Topic != "" {
		cfg.Topic = settings.MQTT.Topic
	}
	if settings.MQTT.PublishTimeout > 0 {
		cfg.PublishTimeout = settings.MQTT.PublishTimeout
	}
	return cfg
}

// NewClient creates a new MQTT client. m may be nil.
func NewClient(cfg Config, log logger.Logger, m *metrics.MQTTMetrics) Client {
	return newClientWithFactory(cfg, log, m, paho.NewClient)
}

func newClientWithFactory(cfg Config, log logger.Logger, m *metrics.MQTTMetrics, factory func(*paho.ClientOptions) paho.Client) *client {
	if log == nil {
		log = logger.Global().Module("mqtt")
	}
	return &client{
		config:    cfg,
		newClient: factory,
		log:       log,
		metrics:   m,
	}
}

func (c *client) connectError(err error) error {
	return errors.New(err).
		Component("mqtt").
		Category(errors.CategoryMQTTConnect).
		NetworkContext(c.config.Broker, c.config.ConnectTimeout).
		Build()
}

// Connect resolves the broker host and connects. paho keeps reconnecting on its
// own after a successful first connection.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, err := url.Parse(c.config.Broker)
	if err != nil || u.Hostname() == "" {
		return c.connectError(fmt.Errorf("invalid broker URL %q", c.config.Broker))
	}

	host := u.Hostname()
	if net.ParseIP(host) == nil {
		if _, err := net.DefaultResolver.LookupHost(ctx, host); err != nil {
			return c.connectError(fmt.Errorf("failed to resolve hostname %s: %w", host, err))
		}
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(c.config.ClientID)
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(c.config.ConnectTimeout)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)
	opts.SetReconnectingHandler(c.onReconnecting)

	c.internalClient = c.newClient(opts)

	token := c.internalClient.Connect()
	if !waitToken(ctx, token, c.config.ConnectTimeout) {
		return c.connectError(fmt.Errorf("connection timeout"))
	}
	if err := token.Error(); err != nil {
		c.incrementErrors()
		return c.connectError(err)
	}

	c.updateConnectionStatus(true)
	return nil
}

// Publish sends payload to topic and waits for the broker acknowledgement or the
// publish timeout, whichever comes first.
func (c *client) Publish(ctx context.Context, topic string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isConnectedLocked() {
		return c.publishError(fmt.Errorf("not connected to MQTT broker"), topic, 0)
	}

	start := time.Now()

	if c.metrics != nil {
		timer := c.metrics.StartPublishTimer()
		defer timer.ObserveDuration()
	}

	c.log.Debug("publishing message", logger.String("topic", topic), logger.Int("bytes", len(payload)))

	token := c.internalClient.Publish(topic, 1, c.config.Retain, payload)
	if !waitToken(ctx, token, c.config.PublishTimeout) {
		c.incrementErrors()
		return c.publishError(fmt.Errorf("publish timeout"), topic, time.Since(start))
	}
	if err := token.Error(); err != nil {
		c.incrementErrors()
		return c.publishError(err, topic, time.Since(start))
	}

	if c.metrics != nil {
		c.metrics.IncrementMessagesDelivered()
		c.metrics.ObserveMessageSize(float64(len(payload)))
	}
	return nil
}

func (c *client) publishError(err error, topic string, waited time.Duration) error {
	return errors.New(err).
		Component("mqtt").
		Category(errors.CategoryMQTTPublish).
		Context("topic", topic).
		Timing("publish", waited).
		Build()
}

// IsConnected returns true if the client is currently connected to the MQTT broker.
func (c *client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isConnectedLocked()
}

func (c *client) isConnectedLocked() bool {
	return c.internalClient != nil && c.internalClient.IsConnected()
}

// Disconnect closes the connection to the MQTT broker.
func (c *client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.internalClient != nil && c.internalClient.IsConnected() {
		c.internalClient.Disconnect(uint(c.config.DisconnectTimeout.Milliseconds()))
		c.updateConnectionStatus(false)
		c.log.Info("disconnected from MQTT broker", logger.String("broker", c.config.Broker))
	}
}

func (c *client) onConnect(_ paho.Client) {
	c.log.Info("connected to MQTT broker", logger.String("broker", c.config.Broker))
	c.updateConnectionStatus(true)
}

func (c *client) onConnectionLost(_ paho.Client, err error) {
	c.log.Warn("connection to MQTT broker lost",
		logger.String("broker", c.config.Broker),
		logger.Error(err))
	c.updateConnectionStatus(false)
	c.incrementErrors()
}

func (c *client) onReconnecting(_ paho.Client, _ *paho.ClientOptions) {
	c.log.Debug("reconnecting to MQTT broker", logger.String("broker", c.config.Broker))
	if c.metrics != nil {
		c.metrics.IncrementReconnectAttempts()
	}
}

func (c *client) updateConnectionStatus(connected bool) {
	if c.metrics != nil {
		c.metrics.UpdateConnectionStatus(connected)
	}
}

func (c *client) incrementErrors() {
	if c.metrics != nil {
		c.metrics.IncrementErrors()
	}
}

// waitToken waits for token completion, the timeout or ctx, whichever is first.
func waitToken(ctx context.Context, token paho.Token, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}
