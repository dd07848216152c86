package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

type locationMessage struct {
	UserID    string  `json:"user_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

// Bhopal city centre and the Anand Nagar red zone, about 7 km apart.
const (
	cityLat = 23.2599
	cityLon = 77.4126
	zoneLat = 23.2508
	zoneLon = 77.4858
)

// tourist walks from the city centre towards the red zone and back.
type tourist struct {
	id       string
	progress float64
	step     float64
}

func (t *tourist) next() (float64, float64) {
	t.progress += t.step
	if t.progress >= 1 || t.progress <= 0 {
		t.step = -t.step
		t.progress = min(max(t.progress, 0), 1)
	}
	lat := cityLat + (zoneLat-cityLat)*t.progress + (rand.Float64()-0.5)*0.0002 // ~10m drift
	lon := cityLon + (zoneLon-cityLon)*t.progress + (rand.Float64()-0.5)*0.0002
	return lat, lon
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds> [user_id...]\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	ids := os.Args[2:]
	if len(ids) == 0 {
		for i := 0; i < 3; i++ {
			ids = append(ids, uuid.NewString())
		}
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("tourist-mock-publisher")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	tourists := make([]*tourist, len(ids))
	for i, id := range ids {
		tourists[i] = &tourist{id: id, progress: rand.Float64(), step: 0.02 + rand.Float64()*0.03}
	}

	log.Printf("connected to %s, publishing every %ds...", broker, intervalSec)
	log.Printf("tourists: %v", ids)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		t := tourists[rand.Intn(len(tourists))]
		lat, lon := t.next()

		msg := locationMessage{
			UserID:    t.id,
			Latitude:  lat,
			Longitude: lon,
			Timestamp: time.Now().Unix(),
		}

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("/tourist/%s/location", t.id)

		token := client.Publish(topic, 1, false, payload)
		token.Wait()

		log.Printf("published to %s: %s", topic, payload)
	}
}
