package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/stereo_rig/internal/config"
	"github.com/relabs-tech/stereo_rig/internal/orientation"
)

var upgrader = websocket.Upgrader{
	// Monitor runs on the rig's LAN; no origin restrictions.
	CheckOrigin: func(*http.Request) bool { return true },
}

// RunWeb serves the monitoring UI: latest pose and gaze state as JSON,
// plus a websocket that streams poses as they arrive over MQTT.
func RunWeb() error {
	cfg := config.Get()

	var (
		mu         sync.RWMutex
		lastPose   orientation.HeadPose
		havePose   bool
		lastGaze   GazeStatus
		haveGaze   bool
		subscriber = newPoseFanout()
	)

	// 1) Connect to the MQTT broker on the rig
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to pose and gaze topics, caching the latest value
	poseToken := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.HeadPose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("web: pose unmarshal error: %v", err)
			return
		}
		mu.Lock()
		lastPose = p
		havePose = true
		mu.Unlock()
		subscriber.broadcast(msg.Payload())
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicPose)

	gazeToken := client.Subscribe(cfg.TopicGaze, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var g GazeStatus
		if err := json.Unmarshal(msg.Payload(), &g); err != nil {
			log.Printf("web: gaze unmarshal error: %v", err)
			return
		}
		mu.Lock()
		lastGaze = g
		haveGaze = true
		mu.Unlock()
	})
	gazeToken.Wait()
	if gazeToken.Error() != nil {
		return gazeToken.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicGaze)

	// 3) JSON API endpoints
	http.HandleFunc("/api/pose", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()
		if !havePose {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastPose); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	http.HandleFunc("/api/gaze", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()
		if !haveGaze {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastGaze); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// 4) Websocket pose stream
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		subscriber.add(conn)
	})

	// 5) Latest composited frame, written there by the viewer's
	// -frame-out flag
	http.HandleFunc("/api/frame", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join("web", "frame.png"))
	})

	// 6) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}

// poseFanout pushes pose payloads to all connected websocket clients,
// dropping clients whose writes fail.
type poseFanout struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newPoseFanout() *poseFanout {
	return &poseFanout{conns: make(map[*websocket.Conn]struct{})}
}

func (f *poseFanout) add(conn *websocket.Conn) {
	f.mu.Lock()
	f.conns[conn] = struct{}{}
	f.mu.Unlock()
}

func (f *poseFanout) broadcast(payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(f.conns, conn)
		}
	}
}
