// Copyright (c) 2026 Aquabotics
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/aquabotics/amlac/internal/app"
	"github.com/aquabotics/amlac/internal/config"
)

func main() {
	configPath := flag.String("config", "./amlac_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting AMLAC mission controller")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunRobot(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
