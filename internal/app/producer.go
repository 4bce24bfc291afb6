// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"math"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/sally-golding/stepsmart/internal/config"
	"github.com/sally-golding/stepsmart/internal/gps"
	"github.com/sally-golding/stepsmart/internal/insole"
)

const (
	mockFixInterval  = time.Second
	mockIMUEvery     = 5 // pressure ticks per accel/gyro sample
	mockFixAccuracyM = 4.0
)

// insoleProducer stands in for the phone bridge: it publishes the insole
// characteristics and a GPS fix stream.
type insoleProducer struct {
	cfg    *config.Config
	client mqtt.Client
	src    insole.Source
	tick   int
}

// publishSample publishes the next pressure sample, and every few ticks an
// accelerometer and gyroscope triple.
func (p *insoleProducer) publishSample() (insole.Sample, error) {
	s, err := p.src.Next()
	if err != nil {
		return s, fmt.Errorf("mock insole: %w", err)
	}
	if err := publishRaw(p.client, p.cfg.TopicPressure, false, []byte(s.Format())); err != nil {
		return s, err
	}

	p.tick++
	if p.tick%mockIMUEvery != 0 {
		return s, nil
	}
	phase := float64(s.Timestamp%1000) / 1000 * 2 * math.Pi
	accel := insole.Triple{X: 0.1 * math.Sin(phase), Y: 0.05 * math.Cos(phase), Z: 1 + 0.3*math.Sin(phase)}
	gyro := insole.Triple{X: 40 * math.Sin(phase), Y: 5 * math.Cos(phase), Z: 2}
	if err := publishRaw(p.client, p.cfg.TopicAccel, false, []byte(formatTriple(accel))); err != nil {
		return s, err
	}
	return s, publishRaw(p.client, p.cfg.TopicGyro, false, []byte(formatTriple(gyro)))
}

// publishFix publishes a valid fix at the configured mock speed.
func (p *insoleProducer) publishFix(now time.Time) error {
	return publishJSON(p.client, p.cfg.TopicGPS, mockFix(now, p.cfg.ProducerSpeed))
}

// mockFix is a valid fix moving at speed m/s with a good accuracy estimate.
func mockFix(now time.Time, speed float64) gps.Fix {
	accuracy := mockFixAccuracyM
	return gps.Fix{
		Time:       now.UTC().Format("15:04:05"),
		Date:       now.UTC().Format("02/01/06"),
		SpeedKnots: speed / gps.KnotsToMPS,
		SpeedMPS:   &speed,
		Validity:   "A",
		AccuracyM:  &accuracy,
	}
}

func formatTriple(v insole.Triple) string {
	return fmt.Sprintf("%.3f,%.3f,%.3f", v.X, v.Y, v.Z)
}

// RunInsoleProducer publishes a synthetic walk or run at the configured
// cadence, for exercising the tracker without hardware.
func RunInsoleProducer() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(disconnectQuiesceMs)
	log.Printf("producer: connected to MQTT broker at %s", cfg.MQTTBroker)

	interval := config.Interval(cfg.ProducerInterval)
	p := &insoleProducer{
		cfg:    cfg,
		client: client,
		src:    insole.NewMockSource(cfg.ProducerCadence, interval, time.Now()),
	}
	log.Printf("producer: %.0f steps/min every %s, mock speed %.2f m/s", cfg.ProducerCadence, interval, cfg.ProducerSpeed)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	fixTicker := time.NewTicker(mockFixInterval)
	defer fixTicker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := p.publishSample(); err != nil {
				log.Printf("producer: %v", err)
			}
		case t := <-fixTicker.C:
			if cfg.ProducerSpeed <= 0 {
				continue
			}
			if err := p.publishFix(t); err != nil {
				log.Printf("producer: %v", err)
			}
		}
	}
}
