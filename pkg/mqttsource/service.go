// Mqttsource receives readings published by the ESP32 over MQTT.
package mqttsource

import (
	"fmt"
	"time"

	"github.com/NotCoffee418/ignyte_sensor/pkg/types"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

type Options struct {
	Broker   string
	Topic    string
	ClientID string
}

// Subscription is a live MQTT subscription. Close it to disconnect.
type Subscription struct {
	client mqtt.Client
	topic  string
}

// Subscribe connects to the broker and calls handle for every reading
// published on the topic. The subscription is restored on reconnect.
func Subscribe(opts Options, handle func(reading *types.RawReading)) (*Subscription, error) {
	onMessage := MessageHandler(handle)

	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("MQTT connection lost: %v", err)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			log.Printf("Connected to %s, subscribing to %s", opts.Broker, opts.Topic)
			if token := c.Subscribe(opts.Topic, 1, onMessage); token.Wait() && token.Error() != nil {
				log.Printf("Failed to subscribe to %s: %v", opts.Topic, token.Error())
			}
		})

	client := mqtt.NewClient(clientOpts)
	if token := client.Connect(); token.WaitTimeout(30*time.Second) && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	return &Subscription{client: client, topic: opts.Topic}, nil
}

// MessageHandler decodes JSON payloads and drops the ones that fail.
func MessageHandler(handle func(reading *types.RawReading)) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		reading, err := types.RawReadingFromJsonBytes(msg.Payload())
		if err != nil {
			log.WithFields(log.Fields{"topic": msg.Topic()}).
				Warnf("Failed to parse reading: %v", err)
			return
		}
		handle(reading)
	}
}

func (s *Subscription) Close() {
	if token := s.client.Unsubscribe(s.topic); token.WaitTimeout(time.Second) && token.Error() != nil {
		log.Printf("Failed to unsubscribe from %s: %v", s.topic, token.Error())
	}
	s.client.Disconnect(250)
}
