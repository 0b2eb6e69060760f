// Package telemetry publishes robot state over MQTT for the shore
// console and the web monitor. Telemetry is strictly best-effort: a
// down broker degrades visibility, never the mission, and every method
// is safe on a nil Publisher so callers need no broker-configured
// branches.
package telemetry

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/aquabotics/amlac/internal/config"
	"github.com/aquabotics/amlac/internal/logbook"
	"github.com/aquabotics/amlac/internal/sensing"
)

// Publisher pushes status, snapshots and collection events to MQTT.
type Publisher struct {
	client mqtt.Client

	topicStatus      string
	topicSnapshot    string
	topicCollections string
}

// StatusMessage is the retained robot status payload.
type StatusMessage struct {
	State       string    `json:"state"`
	Collections uint64    `json:"collections"`
	Time        time.Time `json:"time"`
}

// Connect dials the configured broker. With no broker configured it
// returns a nil Publisher, which silently drops everything.
func Connect(cfg *config.Config) (*Publisher, error) {
	if cfg.MQTTBroker == "" {
		return nil, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDRobot).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	log.Printf("telemetry: connected to MQTT broker at %s", cfg.MQTTBroker)

	return &Publisher{
		client:           client,
		topicStatus:      cfg.TopicStatus,
		topicSnapshot:    cfg.TopicSnapshot,
		topicCollections: cfg.TopicCollections,
	}, nil
}

func (p *Publisher) publish(topic string, retained bool, payload any) {
	if p == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("telemetry: marshal for %s: %v", topic, err)
		return
	}
	// Fire and forget. Waiting here would let a slow broker stall the
	// control loop.
	p.client.Publish(topic, 0, retained, data)
}

// PublishState announces the controller state. Retained, so a console
// that connects late still sees the current state.
func (p *Publisher) PublishState(state string, collections uint64) {
	if p == nil {
		return
	}
	p.publish(p.topicStatus, true, StatusMessage{
		State:       state,
		Collections: collections,
		Time:        time.Now(),
	})
}

// PublishSnapshot pushes one sensor snapshot.
func (p *Publisher) PublishSnapshot(snap sensing.Snapshot) {
	if p == nil {
		return
	}
	p.publish(p.topicSnapshot, false, snap)
}

// PublishCollection pushes one completed collection event.
func (p *Publisher) PublishCollection(ev logbook.CollectionEvent) {
	if p == nil {
		return
	}
	p.publish(p.topicCollections, false, ev)
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.client.Disconnect(250)
}
