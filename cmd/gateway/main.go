package main

import (
	"context"
	"flag"
	"log"

	"github.com/anthanhphan/go-image-metadata/internal/metadata/app"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "configPath", "", "Path to configuration file")
	flag.Parse()

	application, err := app.New(configPath)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.RunGateway(context.Background()); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}
