package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
)

// Config defines program configuration.
type Config struct {
	Inputs   []string   // WGSL files to check.
	Embedded bool       // Check the sources compiled into the engine as well.
	Reflect  bool       // Print bind group layouts and vertex inputs of each entry point.
	LogLevel slog.Level // Minimum level written to stderr.
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
func parseArgs() *Config {
	var c Config
	c.LogLevel = slog.LevelWarn

	flag.Usage = func() {
		fmt.Printf("%s [options] [file.wgsl ...]\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.BoolVar(&c.Embedded, "embedded", c.Embedded, "Check every WGSL source embedded in the engine.")
	flag.BoolVar(&c.Reflect, "reflect", c.Reflect, "Print the reflected bind group layouts and vertex inputs.")
	verbose := flag.Bool("v", false, "Log every checked file.")
	flag.Parse()

	if *verbose {
		c.LogLevel = slog.LevelDebug
	}

	if flag.NArg() == 0 && !c.Embedded {
		flag.Usage()
		os.Exit(1)
	}

	c.Inputs = flag.Args()
	return &c
}
