// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/sally-golding/stepsmart/internal/config"
	"github.com/sally-golding/stepsmart/internal/gps"
	"github.com/sally-golding/stepsmart/internal/insole"
	"github.com/sally-golding/stepsmart/internal/session"
	"github.com/sally-golding/stepsmart/internal/store"
)

// Session control payloads accepted on the control topic.
const (
	ControlStart = "start"
	ControlStop  = "stop"
)

var errUnknownControl = errors.New("unknown session control command")

// message is one MQTT delivery queued for the tracker loop.
type message struct {
	topic   string
	payload []byte
	at      time.Time
}

// trackerService runs the tracker against the bus. Handlers only enqueue;
// a single loop goroutine decodes and applies messages in arrival order so
// it can publish and wait on tokens without stalling the client.
type trackerService struct {
	cfg     *config.Config
	client  mqtt.Client
	store   *store.Store
	tracker *Tracker
	queue   chan message
	stopped chan struct{}
	now     func() time.Time
}

func newTrackerService(cfg *config.Config, client mqtt.Client, st *store.Store) *trackerService {
	return &trackerService{
		cfg:    cfg,
		client: client,
		store:  st,
		tracker: NewTracker(TrackerOptions{
			Gait:   cfg.GaitOptions(),
			Filter: cfg.SpeedFilter(),
		}),
		queue:   make(chan message, 256),
		stopped: make(chan struct{}),
		now:     time.Now,
	}
}

// subscribe registers the service on every input topic.
func (s *trackerService) subscribe() error {
	enqueue := func(_ mqtt.Client, msg mqtt.Message) {
		m := message{topic: msg.Topic(), payload: msg.Payload(), at: s.now()}
		select {
		case s.queue <- m:
		case <-s.stopped:
		}
	}
	for _, topic := range []string{
		s.cfg.TopicPressure,
		s.cfg.TopicAccel,
		s.cfg.TopicGyro,
		s.cfg.TopicGPS,
		s.cfg.TopicSessionControl,
	} {
		if topic == "" {
			continue
		}
		if err := subscribe(s.client, topic, enqueue); err != nil {
			return err
		}
		log.Printf("tracker: subscribed to %s", topic)
	}
	return nil
}

// run applies queued messages until ctx is cancelled.
func (s *trackerService) run(ctx context.Context) {
	defer close(s.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-s.queue:
			if err := s.handle(ctx, m); err != nil {
				log.Printf("tracker: %s: %v", m.topic, err)
			}
		}
	}
}

func (s *trackerService) handle(ctx context.Context, m message) error {
	switch m.topic {
	case s.cfg.TopicPressure:
		sample, err := insole.ParsePressure(m.payload, m.at)
		if err != nil {
			return err
		}
		snap, err := s.tracker.HandlePressure(sample)
		if err != nil {
			return err
		}
		return publishJSON(s.client, s.cfg.TopicMetrics, snap)

	case s.cfg.TopicAccel, s.cfg.TopicGyro:
		v, err := insole.ParseTriple(m.payload)
		if err != nil {
			return err
		}
		kind := Accel
		if m.topic == s.cfg.TopicGyro {
			kind = Gyro
		}
		s.tracker.HandleIMU(kind, v)
		return nil

	case s.cfg.TopicGPS:
		var f gps.Fix
		if err := json.Unmarshal(m.payload, &f); err != nil {
			return fmt.Errorf("gps fix: %w", err)
		}
		s.tracker.HandleFix(f)
		return nil

	case s.cfg.TopicSessionControl:
		return s.control(ctx, strings.TrimSpace(string(m.payload)), m.at)
	}
	return nil
}

// control handles start/stop. Starting while a session is open closes
// and saves the old one first.
func (s *trackerService) control(ctx context.Context, cmd string, at time.Time) error {
	switch strings.ToLower(cmd) {
	case ControlStart:
		if _, err := s.endSession(ctx, at); err != nil {
			return err
		}
		id := s.tracker.StartSession(at)
		log.Printf("tracker: session %s started", id)
		return nil
	case ControlStop, "end":
		_, err := s.endSession(ctx, at)
		return err
	default:
		return fmt.Errorf("%w: %q", errUnknownControl, cmd)
	}
}

// endSession closes the open session, saves it and publishes the summary.
func (s *trackerService) endSession(ctx context.Context, at time.Time) (session.Summary, error) {
	sum, ok := s.tracker.EndSession(at)
	if !ok {
		return sum, nil
	}
	log.Printf("tracker: session %s ended: %d steps, %.0f m, %s", sum.ID, sum.Steps, sum.DistanceMeters, sum.Duration)

	var errs []error
	if s.store != nil {
		if err := s.store.Save(ctx, sum); err != nil {
			errs = append(errs, err)
		}
	}
	if s.cfg.TopicSessionSummary != "" {
		if err := publishJSON(s.client, s.cfg.TopicSessionSummary, sum); err != nil {
			errs = append(errs, err)
		}
	}
	return sum, errors.Join(errs...)
}

// RunTracker subscribes to the insole, GPS and control topics, publishes
// metrics for every pressure sample, and records sessions in the history
// database. On SIGINT/SIGTERM the open session is ended and saved.
func RunTracker() error {
	cfg := config.Get()

	st, err := store.Open(cfg.SessionDBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDTracker)
	if err != nil {
		return err
	}
	defer client.Disconnect(disconnectQuiesceMs)
	log.Printf("tracker: connected to MQTT broker at %s", cfg.MQTTBroker)

	svc := newTrackerService(cfg, client, st)
	if err := svc.subscribe(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go svc.run(ctx)

	waitForSignal("tracker")
	cancel()
	<-svc.stopped

	saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer saveCancel()
	if _, err := svc.endSession(saveCtx, time.Now()); err != nil {
		return fmt.Errorf("save open session: %w", err)
	}
	return nil
}
