// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/depth_logger/internal/config"
	"github.com/relabs-tech/depth_logger/internal/logging"
	"github.com/relabs-tech/depth_logger/internal/reading"
)

// RunConsoleMQTT prints every reading published on the reading topic until
// ctx is done.
func RunConsoleMQTT(ctx context.Context, cfg *config.Config, out io.Writer) error {
	log := logging.For("console")

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID + "-console").
		SetUsername(cfg.MQTTUsername).
		SetPassword(cfg.MQTTPassword)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Infof("connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicReading, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r reading.Reading
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.WithError(err).Warn("reading unmarshal error")
			return
		}
		fmt.Fprintln(out, formatReading(r))
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.TopicReading, token.Error())
	}
	log.Infof("subscribed to %s", cfg.TopicReading)

	<-ctx.Done()
	log.Info("shutting down")
	return nil
}

func formatReading(r reading.Reading) string {
	return fmt.Sprintf(
		"[READ] %s  P=%8.2f mbar (%6.2f psi)  T=%6.2f C (%6.2f F)  D=%6.2f m",
		r.Timestamp, r.PressureMbar, r.PressurePSI, r.TemperatureC, r.TemperatureF, r.DepthM,
	)
}
