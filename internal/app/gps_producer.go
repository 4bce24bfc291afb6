package app

import (
	"bufio"
	"fmt"
	"io"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/sally-golding/stepsmart/internal/config"
	"github.com/sally-golding/stepsmart/internal/gps"
)

// RunGPSProducer opens the GPS serial port, parses NMEA sentences, and
// publishes one JSON fix per RMC sentence to the GPS topic.
func RunGPSProducer() error {
	cfg := config.Get()

	// ---- 1) Connect to MQTT broker ----
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDGPS)
	if err != nil {
		return err
	}
	defer client.Disconnect(disconnectQuiesceMs)
	log.Printf("gps: connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 2) Open GPS serial port ----
	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPSSerialPort,
		BaudRate:              uint(cfg.GPSBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("open GPS serial port %s: %w", serialOpts.PortName, err)
	}
	defer port.Close()
	log.Printf("gps: serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	return streamFixes(port, gps.NewParser(cfg.GPSUERE), client, cfg.TopicGPS)
}

// streamFixes reads NMEA lines from r until it fails and publishes every
// fix the parser produces.
func streamFixes(r io.Reader, parser *gps.Parser, client mqtt.Client, topic string) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("gps read: %w", err)
		}

		fix, ok, err := parser.Feed(line)
		if err != nil {
			// noisy receivers emit partial sentences; skip them
			continue
		}
		if !ok {
			continue
		}

		if err := publishJSON(client, topic, fix); err != nil {
			log.Printf("gps: %v", err)
			continue
		}
		if fix.SpeedMPS != nil {
			log.Printf("gps: fix %s lat=%.6f lon=%.6f speed=%.2fm/s", fix.Validity, fix.Latitude, fix.Longitude, *fix.SpeedMPS)
		} else {
			log.Printf("gps: fix %s (no speed)", fix.Validity)
		}
	}
}
