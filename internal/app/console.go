package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/aquabotics/amlac/internal/config"
	"github.com/aquabotics/amlac/internal/logbook"
	"github.com/aquabotics/amlac/internal/sensing"
	"github.com/aquabotics/amlac/internal/telemetry"
)

// RunConsole subscribes to the robot's telemetry and prints it as it
// arrives. Meant for a shore-side shell during trials.
func RunConsole() error {
	cfg := config.Get()
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("console: MQTT_BROKER is not configured")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	statusToken := client.Subscribe(cfg.TopicStatus, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s telemetry.StatusMessage
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: status unmarshal error: %v", err)
			return
		}
		fmt.Printf("[STATE] %-10s collections=%d\n", s.State, s.Collections)
	})
	statusToken.Wait()
	if statusToken.Error() != nil {
		return statusToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicStatus)

	snapToken := client.Subscribe(cfg.TopicSnapshot, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var snap sensing.Snapshot
		if err := json.Unmarshal(msg.Payload(), &snap); err != nil {
			log.Printf("console: snapshot unmarshal error: %v", err)
			return
		}

		line := "[SENSE]"
		if snap.DistanceCm != nil {
			line += fmt.Sprintf(" dist=%.1fcm", *snap.DistanceCm)
		}
		if snap.GPS != nil {
			line += fmt.Sprintf(" lat=%.6f lon=%.6f", snap.GPS.Lat, snap.GPS.Lon)
		}
		if snap.WeightKg != nil {
			line += fmt.Sprintf(" weight=%.2fkg", *snap.WeightKg)
			if snap.WeightStale {
				line += "(stale)"
			}
		}
		if snap.Orientation != nil {
			line += fmt.Sprintf(" pitch=%.1f roll=%.1f", snap.Orientation.Pitch, snap.Orientation.Roll)
		}
		if snap.BinFull {
			line += " BIN-FULL"
		}
		fmt.Println(line)
	})
	snapToken.Wait()
	if snapToken.Error() != nil {
		return snapToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicSnapshot)

	collToken := client.Subscribe(cfg.TopicCollections, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev logbook.CollectionEvent
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("console: collection unmarshal error: %v", err)
			return
		}
		fmt.Printf("[HAUL ] #%d conf=%.2f weight=%.2fkg\n", ev.Collections, ev.Confidence, ev.WeightKg)
	})
	collToken.Wait()
	if collToken.Error() != nil {
		return collToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicCollections)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
