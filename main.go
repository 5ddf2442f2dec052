package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
)

func init() {
	// This is needed to arrange that main() runs on main thread.
	// See documentation for functions that are only allowed to be called
	// from the main thread.
	runtime.LockOSThread()
}

const (
	title             = "Vulkan Video Example"
	maxFramesInFlight = 2
)

func main() {
	err := run(os.Args[1:])
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		log.Printf("ERROR: %s", err)
	}
	os.Exit(exitCode(err))
}

func run(arguments []string) error {
	log.Printf("Starting video example.")

	args, err := parseArgs(os.Args[0], arguments, os.Stderr)
	if err != nil {
		return err
	}

	app, err := NewVideoExampleApp(args)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Run(); err != nil {
		return fmt.Errorf("running: %w", err)
	}

	return nil
}
