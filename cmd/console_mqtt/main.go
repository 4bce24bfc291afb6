// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/sally-golding/stepsmart/internal/app"
	"github.com/sally-golding/stepsmart/internal/config"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, nil)))

	configPath := flag.String("config", config.DefaultPath, "path to configuration file")
	flag.Parse()

	log.Println("starting stepsmart console (MQTT subscriber)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsoleMQTT(os.Stdout); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
