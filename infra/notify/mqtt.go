package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/dineshvn/metroplan/core/schedule"
	"github.com/dineshvn/metroplan/infra/logger"
	"github.com/dineshvn/metroplan/internal/eventbus"
)

// Config holds MQTT notifier settings. Depot systems subscribe to the
// schedule topics to react to freshly published plans.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"clientId"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topicPrefix"`
	QoS         byte   `json:"qos"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "metroplan-notifier"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "depot/schedule"
	}
}

// MQTTNotifier republishes snapshot events from the internal bus to an MQTT
// broker on depot/schedule/{planning_date}.
type MQTTNotifier struct {
	cfg Config
	cli paho.Client
	log logger.Logger
}

// NewMQTTNotifier connects to the broker.
func NewMQTTNotifier(cfg Config) (*MQTTNotifier, error) {
	cfg.SetDefaults()
	log := logger.New("mqtt-notifier")
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &MQTTNotifier{cfg: cfg, cli: cli, log: log}, nil
}

// Run forwards snapshot events from the bus until the context is canceled.
func (n *MQTTNotifier) Run(ctx context.Context, bus eventbus.EventBus) {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			published, isSnapshot := ev.(schedule.SnapshotPublished)
			if !isSnapshot {
				continue
			}
			n.publish(published)
		}
	}
}

func (n *MQTTNotifier) publish(ev schedule.SnapshotPublished) {
	payload, err := json.Marshal(ev)
	if err != nil {
		n.log.Errorf("marshal snapshot event: %v", err)
		return
	}
	topic := fmt.Sprintf("%s/%s", n.cfg.TopicPrefix, ev.PlanningDate)
	token := n.cli.Publish(topic, n.cfg.QoS, false, payload)
	if token.Wait() && token.Error() != nil {
		n.log.Errorf("publish %s: %v", topic, token.Error())
		return
	}
	n.log.Debugf("published schedule event on %s", topic)
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() { n.cli.Disconnect(250) }
