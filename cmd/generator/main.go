package main

import (
	"context"
	"flag"
	"log"

	"github.com/anthanhphan/go-image-metadata/internal/metadata/app"
	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "configPath", "", "Path to configuration file")
	flag.Parse()

	application, err := app.New(configPath)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	handler, err := application.GeneratorHandler(context.Background())
	if err != nil {
		log.Fatalf("Failed to wire generator handler: %v", err)
	}

	lambda.Start(handler.Handle)
}
