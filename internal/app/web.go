package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/aquabotics/amlac/internal/config"
	"github.com/aquabotics/amlac/internal/logbook"
	"github.com/aquabotics/amlac/internal/sensing"
	"github.com/aquabotics/amlac/internal/telemetry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// robotStatus is the combined view served to the browser.
type robotStatus struct {
	Status   *telemetry.StatusMessage `json:"status,omitempty"`
	Snapshot *sensing.Snapshot        `json:"snapshot,omitempty"`
}

// RunWeb bridges MQTT telemetry to a small HTTP monitor: a JSON API for
// the latest state and a websocket that pushes every snapshot as it
// arrives.
func RunWeb() error {
	cfg := config.Get()
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("web: MQTT_BROKER is not configured")
	}

	var (
		mu     sync.RWMutex
		latest robotStatus
	)

	var (
		wsMu      sync.Mutex
		wsClients = map[*websocket.Conn]bool{}
	)

	broadcast := func(payload []byte) {
		wsMu.Lock()
		defer wsMu.Unlock()
		for conn := range wsClients {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				conn.Close()
				delete(wsClients, conn)
			}
		}
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	statusToken := client.Subscribe(cfg.TopicStatus, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s telemetry.StatusMessage
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("web: status unmarshal error: %v", err)
			return
		}
		mu.Lock()
		latest.Status = &s
		mu.Unlock()
	})
	statusToken.Wait()
	if statusToken.Error() != nil {
		return statusToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicStatus)

	snapToken := client.Subscribe(cfg.TopicSnapshot, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var snap sensing.Snapshot
		if err := json.Unmarshal(msg.Payload(), &snap); err != nil {
			log.Printf("web: snapshot unmarshal error: %v", err)
			return
		}
		mu.Lock()
		latest.Snapshot = &snap
		mu.Unlock()
		broadcast(msg.Payload())
	})
	snapToken.Wait()
	if snapToken.Error() != nil {
		return snapToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicSnapshot)

	http.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if latest.Status == nil && latest.Snapshot == nil {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(latest); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	http.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		events, err := logbook.Read(cfg.LogFilePath)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(logbook.Summarize(events)); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		wsMu.Lock()
		wsClients[conn] = true
		wsMu.Unlock()
		log.Printf("web: websocket client connected from %s", r.RemoteAddr)

		// Drain (and discard) client messages to notice disconnects.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
						log.Printf("web: websocket error: %v", err)
					}
					wsMu.Lock()
					delete(wsClients, conn)
					wsMu.Unlock()
					conn.Close()
					return
				}
			}
		}()
	})

	// Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	log.Printf("web: listening on %s", cfg.WebAddr)
	return http.ListenAndServe(cfg.WebAddr, nil)
}
