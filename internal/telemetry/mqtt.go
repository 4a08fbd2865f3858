// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/relabs-tech/depth_logger/internal/logging"
	"github.com/relabs-tech/depth_logger/internal/reading"
)

const (
	publishTimeout = 2 * time.Second
	connectRetries = 5
)

var errPublishTimeout = errors.New("publish timed out")

// MQTTOptions describes the broker connection.
type MQTTOptions struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
}

// MQTT publishes each reading as retained JSON on one topic.
type MQTT struct {
	client mqtt.Client
	topic  string
	cb     *gobreaker.CircuitBreaker
}

// DialMQTT connects to the broker, retrying with exponential backoff until
// the retries run out or ctx is done.
func DialMQTT(ctx context.Context, opts MQTTOptions) (*MQTT, error) {
	log := logging.For("telemetry").WithField("broker", opts.Broker)

	co := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetCleanSession(true).
		SetAutoReconnect(true)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 10 * time.Second

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(co)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			log.WithError(token.Error()).Warn("MQTT connect failed")
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, connectRetries-1), ctx))
	if err != nil {
		return nil, fmt.Errorf("could not connect to MQTT broker %s: %w", opts.Broker, err)
	}

	log.Info("connected to MQTT broker")
	return NewMQTT(client, opts.Topic), nil
}

// NewMQTT wraps an already connected client.
func NewMQTT(client mqtt.Client, topic string) *MQTT {
	return &MQTT{
		client: client,
		topic:  topic,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "mqtt-publish",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.For("telemetry").WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("circuit breaker state changed")
			},
		}),
	}
}

// Name implements Sink.
func (m *MQTT) Name() string { return "mqtt" }

// Publish implements Sink. While the breaker is open it fails fast with
// gobreaker.ErrOpenState.
func (m *MQTT) Publish(r reading.Reading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode reading: %w", err)
	}
	_, err = m.cb.Execute(func() (any, error) {
		token := m.client.Publish(m.topic, 0, true, payload)
		if !token.WaitTimeout(publishTimeout) {
			return nil, errPublishTimeout
		}
		return nil, token.Error()
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", m.topic, err)
	}
	return nil
}

// Close implements Sink.
func (m *MQTT) Close() {
	if m.client.IsConnected() {
		m.client.Disconnect(250)
	}
}
