package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/unipool/unipool-backend/internal/models"
	"github.com/unipool/unipool-backend/internal/ride"
)

// ProgressTopic is the broker topic pattern carrying per-ride progress
// ticks, published by the driver's device or the simulator.
const ProgressTopic = "rides/+/progress"

const applyTimeout = 5 * time.Second

// ProgressConsumer subscribes to ride progress telemetry and feeds each
// tick into the engine. The engine never runs its own timers; all
// progress enters through this boundary.
type ProgressConsumer struct {
	engine *ride.Engine
	client mqtt.Client
}

// NewProgressConsumer creates a consumer connected to the given broker.
func NewProgressConsumer(brokerURL string, engine *ride.Engine) *ProgressConsumer {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID("unipool-progress-consumer").
		SetAutoReconnect(true)
	return &ProgressConsumer{
		engine: engine,
		client: mqtt.NewClient(opts),
	}
}

// Start connects and subscribes. It returns once the subscription is
// established; ticks are handled on the client's callback goroutine.
func (c *ProgressConsumer) Start() error {
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	if token := c.client.Subscribe(ProgressTopic, 1, c.handleMessage); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.WithField("topic", ProgressTopic).Info("progress consumer subscribed")
	return nil
}

// Stop disconnects from the broker.
func (c *ProgressConsumer) Stop() {
	c.client.Disconnect(250)
}

func (c *ProgressConsumer) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	tick, err := DecodeTick(msg.Topic(), msg.Payload())
	if err != nil {
		log.WithError(err).WithField("topic", msg.Topic()).Warn("dropping malformed progress tick")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), applyTimeout)
	defer cancel()
	if err := c.engine.ApplyProgress(ctx, tick.RideID, tick.Progress); err != nil {
		log.WithError(err).WithField("ride_id", tick.RideID).Warn("progress tick rejected")
	}
}

// DecodeTick parses one progress payload. The ride id embedded in the
// topic takes precedence over any id in the payload.
func DecodeTick(topic string, payload []byte) (models.ProgressTick, error) {
	var tick models.ProgressTick
	if err := json.Unmarshal(payload, &tick); err != nil {
		return tick, err
	}
	if id := rideIDFromTopic(topic); id != "" {
		tick.RideID = id
	}
	if tick.RideID == "" {
		return tick, errors.New("progress tick missing ride id")
	}
	return tick, nil
}

func rideIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "rides" || parts[2] != "progress" {
		return ""
	}
	return parts[1]
}
