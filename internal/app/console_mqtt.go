package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/sally-golding/stepsmart/internal/config"
	"github.com/sally-golding/stepsmart/internal/gait"
	"github.com/sally-golding/stepsmart/internal/gps"
	"github.com/sally-golding/stepsmart/internal/session"
)

func printMetrics(w io.Writer, s gait.Snapshot) {
	fmt.Fprintf(w,
		"[GAIT]  steps=%5d  cadence=%3d spm  stride=%4.2fm  speed=%5.2fmph  pace=%s/mi  dist=%7.1fm\n",
		s.StepCount, s.Cadence, s.StrideLength, s.Speed, session.FormatPace(s.Pace), s.Distance,
	)
}

func printSummary(w io.Writer, s session.Summary) {
	fmt.Fprintf(w, "[SESSION] %s  %s  %d steps  %.2f mi\n", s.ID, s.Duration, s.Steps, s.DistanceMiles)
	fmt.Fprintf(w, "          cadence %d±%.1f spm  stride %.2fm  speed %.2fmph  pace %s/mi\n",
		s.Cadence, s.CadenceStdDev, s.StrideLength, s.Speed, session.FormatPace(s.Pace))
	fmt.Fprintf(w, "          pressure toe=%d arch=%d heel=%d  strike=%s\n",
		s.Pressure[0], s.Pressure[1], s.Pressure[2], s.Strike)
	if s.Insight != "" {
		fmt.Fprintf(w, "          %s\n", s.Insight)
	}
}

func printFix(w io.Writer, f gps.Fix) {
	speed := "--"
	if f.SpeedMPS != nil {
		speed = fmt.Sprintf("%.2fm/s", *f.SpeedMPS)
	}
	acc := "--"
	if f.AccuracyM != nil {
		acc = fmt.Sprintf("%.1fm", *f.AccuracyM)
	}
	fmt.Fprintf(w,
		"[GPS ]  time=%s lat=%.6f lon=%.6f speed=%s acc=%s validity=%s\n",
		f.Time, f.Latitude, f.Longitude, speed, acc, f.Validity,
	)
}

// decodeAndPrint returns a handler that decodes the JSON payload into a T
// and prints it.
func decodeAndPrint[T any](w io.Writer, label string, show func(io.Writer, T)) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var v T
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			log.Printf("console: %s unmarshal error: %v", label, err)
			return
		}
		show(w, v)
	}
}

// RunConsoleMQTT prints live metrics, GPS fixes and session summaries
// until interrupted.
func RunConsoleMQTT(w io.Writer) error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	subs := []struct {
		topic   string
		handler mqtt.MessageHandler
	}{
		{cfg.TopicMetrics, decodeAndPrint(w, "metrics", printMetrics)},
		{cfg.TopicGPS, decodeAndPrint(w, "gps", printFix)},
		{cfg.TopicSessionSummary, decodeAndPrint(w, "summary", printSummary)},
	}
	for _, s := range subs {
		if err := subscribe(client, s.topic, s.handler); err != nil {
			return err
		}
		log.Printf("console: subscribed to %s", s.topic)
	}

	waitForSignal("console")
	client.Disconnect(disconnectQuiesceMs)
	return nil
}
