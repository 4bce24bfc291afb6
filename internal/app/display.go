package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/sally-golding/stepsmart/internal/config"
	"github.com/sally-golding/stepsmart/internal/gait"
	"github.com/sally-golding/stepsmart/internal/session"
)

const (
	oledWidth  = 128
	oledHeight = 64
	lineHeight = 13
)

// DisplayData holds the latest snapshot for the display loop.
type DisplayData struct {
	mu sync.RWMutex

	snap     gait.Snapshot
	haveSnap bool
}

func (d *DisplayData) set(s gait.Snapshot) {
	d.mu.Lock()
	d.snap = s
	d.haveSnap = true
	d.mu.Unlock()
}

func (d *DisplayData) get() (gait.Snapshot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap, d.haveSnap
}

func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: initialized on bus %q", cfg.DisplayI2CBus)

	if err := dev.Draw(dev.Bounds(), renderLines("StepSmart", "", "Waiting for", "insole..."), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(disconnectQuiesceMs)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	err = subscribe(client, cfg.TopicMetrics, func(_ mqtt.Client, msg mqtt.Message) {
		var s gait.Snapshot
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("display: metrics unmarshal error: %v", err)
			return
		}
		data.set(s)
	})
	if err != nil {
		return err
	}
	log.Printf("display: subscribed to %s", cfg.TopicMetrics)

	ticker := time.NewTicker(config.Interval(cfg.DisplayUpdateInterval))
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		snap, ok := data.get()
		if err := dev.Draw(dev.Bounds(), renderMetrics(snap, ok), image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}
	return nil
}

// renderMetrics lays out the run metrics in four text lines.
func renderMetrics(s gait.Snapshot, haveData bool) *image1bit.VerticalLSB {
	if !haveData {
		return renderLines("Metrics", "Waiting...")
	}
	return renderLines(
		fmt.Sprintf("Steps %7d", s.StepCount),
		fmt.Sprintf("Cad   %3d spm", s.Cadence),
		fmt.Sprintf("Pace  %s /mi", session.FormatPace(s.Pace)),
		fmt.Sprintf("Dist  %.2f mi", s.Distance/session.MetersPerMile),
	)
}

// renderLines draws up to four lines of 7x13 text on a blank frame.
func renderLines(lines ...string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, oledWidth, oledHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		if line == "" {
			continue
		}
		drawer.Dot = fixed.P(0, lineHeight*(i+1))
		drawer.DrawString(line)
	}
	return img
}
