package app

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/stereo_rig/internal/config"
	"github.com/relabs-tech/stereo_rig/internal/gaze"
	"github.com/relabs-tech/stereo_rig/internal/orientation"
)

// RunConsoleMQTT subscribes to the rig's pose and event topics and
// prints them, for watching a headset session from a laptop.
func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	poseToken := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.HeadPose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("console: pose unmarshal error: %v", err)
			return
		}
		pitch, yaw, roll := p.Rotation.Euler()
		fmt.Printf(
			"[POSE]  PITCH=%6.2f  YAW=%6.2f  ROLL=%6.2f\n",
			pitch*180/math.Pi, yaw*180/math.Pi, roll*180/math.Pi,
		)
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}

	eventToken := client.Subscribe(cfg.TopicEvents, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev gaze.Event
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("console: event unmarshal error: %v", err)
			return
		}
		fmt.Printf("[EVENT] %-10s target=%s\n", ev.Kind, ev.Target)
	})
	eventToken.Wait()
	if eventToken.Error() != nil {
		return eventToken.Error()
	}

	log.Println("console: subscribed, waiting for data (Ctrl+C to exit)")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	client.Disconnect(250)
	return nil
}
