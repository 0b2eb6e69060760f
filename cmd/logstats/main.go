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

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunLogStats(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
