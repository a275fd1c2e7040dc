// internal/openocd/tool.go
package openocd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/steamicc/easyflash/internal/config"
	"github.com/steamicc/easyflash/internal/flasherr"
	"github.com/steamicc/easyflash/internal/image"
	"github.com/steamicc/easyflash/internal/logsink"
	"github.com/steamicc/easyflash/internal/process"
)

// Script names inside the configs directory.
const (
	UnlockScript = "f1x-unlock.cfg"
	EraseScript  = "f1x-erase.cfg"
	FlashScript  = "f1x-flash.cfg"

	// RadioConfig is the board profile for the wireless co-processor.
	RadioConfig = "wb5x.cfg"

	// BootloaderCopy is the name FlashScript loads from the tmp directory.
	BootloaderCopy = "bootloader"
)

// Runner runs an external program; *process.Supervisor implements it.
type Runner interface {
	Run(ctx context.Context, program string, args []string, live chan<- logsink.Entry) (process.Result, error)
	Available(ctx context.Context, program string) (bool, error)
}

// Tool builds openocd command lines against one directory layout.
type Tool struct {
	runner  Runner
	program string
	paths   config.Paths
	search  []string
}

// New creates a Tool. program defaults to "openocd".
func New(runner Runner, program string, paths config.Paths, extraSearch []string) (*Tool, error) {
	if runner == nil {
		return nil, errors.New("openocd: runner required")
	}
	if paths.Base == "" {
		return nil, errors.New("openocd: paths required")
	}
	if program == "" {
		program = config.DefaultProgram
	}
	return &Tool{
		runner:  runner,
		program: program,
		paths:   paths,
		search:  append([]string(nil), extraSearch...),
	}, nil
}

// Program is the executable name or path used for every run.
func (t *Tool) Program() string { return t.program }

// Installed runs `openocd --version`.
func (t *Tool) Installed(ctx context.Context) (bool, error) {
	ok, err := t.runner.Available(ctx, t.program)
	return ok, flasherr.New(flasherr.KindExternalTool, "openocd --version", err)
}

// Unlock removes read protection from the target.
func (t *Tool) Unlock(ctx context.Context) (process.Result, error) {
	return t.run(ctx, "unlock", nil, "-f", filepath.Join(t.paths.Configs, UnlockScript))
}

// Erase mass-erases the target.
func (t *Tool) Erase(ctx context.Context) (process.Result, error) {
	return t.run(ctx, "erase", nil, "-f", filepath.Join(t.paths.Configs, EraseScript))
}

// FlashBootloader copies path to <tmp>/bootloader and runs the flash script,
// which loads it from the tmp search path.
func (t *Tool) FlashBootloader(ctx context.Context, path string) (process.Result, error) {
	dst := filepath.Join(t.paths.Tmp, BootloaderCopy)
	if err := image.CopyFile(path, dst); err != nil {
		return process.Result{}, flasherr.New(flasherr.KindFile, "copy bootloader", err)
	}
	return t.run(ctx, "flash bootloader", nil,
		"-s", t.paths.Tmp,
		"-f", filepath.Join(t.paths.Configs, FlashScript),
	)
}

// FlashRadio programs a hex image into the wireless co-processor.
// Output goes to live when it is non-nil.
func (t *Tool) FlashRadio(ctx context.Context, file string, live chan<- logsink.Entry) (process.Result, error) {
	return t.run(ctx, "flash "+filepath.Base(file), live,
		"-f", RadioConfig,
		"-c", fmt.Sprintf("program %s verify reset", filepath.ToSlash(file)),
		"-c", "reset run",
		"-c", "exit",
	)
}

// Args returns the full argument list for a run: search paths then cmd.
func (t *Tool) Args(cmd ...string) []string {
	dirs := append(append([]string(nil), t.search...),
		t.paths.Scripts, t.paths.Configs, t.paths.Tmp, t.paths.WirelessStack)

	args := make([]string, 0, 2*len(dirs)+len(cmd))
	for _, d := range dirs {
		args = append(args, "-s", d)
	}
	return append(args, cmd...)
}

func (t *Tool) run(ctx context.Context, op string, live chan<- logsink.Entry, cmd ...string) (process.Result, error) {
	res, err := t.runner.Run(ctx, t.program, t.Args(cmd...), live)
	if err != nil {
		return process.Result{}, flasherr.New(flasherr.KindExternalTool, op, err)
	}
	return res, nil
}
