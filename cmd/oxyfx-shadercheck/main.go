// Command oxyfx-shadercheck validates WGSL shaders the way the engine does before it builds a
// pipeline, optionally printing what the renderer would reflect from them.
package main

import (
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
)

func main() {
	c := parseArgs()
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel})))
	log := common.Logger()

	var sources []source
	if c.Embedded {
		for _, name := range shader.EmbeddedNames() {
			sources = append(sources, source{name: name, ref: shader.EmbeddedRef(name)})
		}
	}
	for _, path := range c.Inputs {
		sources = append(sources, source{name: path, ref: shader.PathRef(path)})
	}

	failed := 0
	for _, src := range sources {
		if err := check(os.Stdout, src, c.Reflect); err != nil {
			log.Error("invalid shader", "file", src.name, "err", err)
			failed++
			continue
		}
		log.Debug("shader ok", "file", src.name)
	}

	if failed > 0 {
		log.Error("shader check failed", "failed", failed, "checked", len(sources))
		os.Exit(1)
	}
}
