// cmd/easyflash/env.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/steamicc/easyflash/internal/config"
	"github.com/steamicc/easyflash/internal/logging"
	"github.com/steamicc/easyflash/internal/logsink"
	"github.com/steamicc/easyflash/internal/openocd"
	"github.com/steamicc/easyflash/internal/process"
)

// env is the per-run wiring shared by every command.
type env struct {
	cfg    *config.Config
	paths  config.Paths
	sink   *logsink.Sink
	render logging.Renderer
}

func (e *env) setup(cfg *config.Config) error {
	paths, err := config.ResolvePaths(cfg.Paths.BaseDir)
	if err != nil {
		return err
	}
	if err := paths.Ensure(); err != nil {
		return err
	}

	e.cfg = cfg
	e.paths = paths
	e.sink = logsink.New()
	e.render = logging.Renderer{Timestamps: cfg.Log.Timestamps}
	return nil
}

// tool builds the openocd wrapper on a fresh supervisor.
func (e *env) tool() (*openocd.Tool, error) {
	tags := process.DefaultStreamTags
	if e.cfg.OpenOCD.StreamTags == config.StreamTagsLegacy {
		tags = process.LegacyStreamTags
	}
	sup := process.New(process.Config{Tags: tags, Dir: e.paths.Base})
	return openocd.New(sup, e.cfg.OpenOCD.Program, e.paths, e.cfg.OpenOCD.SearchPaths)
}

// follow prints the sink while fn runs, then flushes it.
func (e *env) follow(ctx context.Context, fn func() error) error {
	done := make(chan struct{})
	printed := make(chan error, 1)
	go func() {
		printed <- e.render.Follow(context.WithoutCancel(ctx), e.sink, os.Stdout, done)
	}()

	err := fn()
	close(done)
	if perr := <-printed; perr != nil && err == nil {
		err = fmt.Errorf("print job output: %w", perr)
	}
	return err
}
