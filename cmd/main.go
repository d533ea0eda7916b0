// Package main is the production entry point of the audio visualiser.
//
// Build:
//
//	go build -o build/audiovisualiser ./cmd
//
// Run:
//
//	./build/audiovisualiser
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/CoderFleet/AudioVisualiserHackClub/internal/app"
)

func main() {
	config := app.DefaultConfig()

	// Create the application with dependency injection
	application, err := app.NewApplication(config)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	// Run application (blocks until the window closed)
	if err := application.Run(); err != nil {
		log.Printf("Application error: %v", err)
	}
}
