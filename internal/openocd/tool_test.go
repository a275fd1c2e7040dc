// internal/openocd/tool_test.go
package openocd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/steamicc/easyflash/internal/config"
	"github.com/steamicc/easyflash/internal/flasherr"
	"github.com/steamicc/easyflash/internal/logsink"
	"github.com/steamicc/easyflash/internal/process"
)

type call struct {
	program string
	args    []string
	live    bool
}

type fakeRunner struct {
	calls     []call
	err       error
	available bool
}

func (f *fakeRunner) Run(_ context.Context, program string, args []string, live chan<- logsink.Entry) (process.Result, error) {
	f.calls = append(f.calls, call{program: program, args: args, live: live != nil})
	if f.err != nil {
		return process.Result{}, f.err
	}
	return process.Result{ExitCode: process.ExitCode(0)}, nil
}

func (f *fakeRunner) Available(context.Context, string) (bool, error) { return f.available, nil }

func newTool(t *testing.T, r Runner) (*Tool, config.Paths) {
	t.Helper()
	paths, err := config.ResolvePaths(t.TempDir())
	if err != nil {
		t.Fatalf("ResolvePaths err=%v", err)
	}
	if err := paths.Ensure(); err != nil {
		t.Fatalf("Ensure err=%v", err)
	}
	tool, err := New(r, "", paths, []string{"scripts"})
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	return tool, paths
}

func searchArgs(p config.Paths) []string {
	return []string{
		"-s", "scripts",
		"-s", p.Scripts,
		"-s", p.Configs,
		"-s", p.Tmp,
		"-s", p.WirelessStack,
	}
}

func TestUnlock_Args(t *testing.T) {
	r := &fakeRunner{}
	tool, p := newTool(t, r)

	res, err := tool.Unlock(context.Background())
	if err != nil || !res.Success() {
		t.Fatalf("Unlock res=%+v err=%v", res, err)
	}

	want := append(searchArgs(p), "-f", filepath.Join(p.Configs, UnlockScript))
	if r.calls[0].program != "openocd" || !reflect.DeepEqual(r.calls[0].args, want) {
		t.Fatalf("call=%+v\nwant args=%v", r.calls[0], want)
	}
}

func TestErase_Args(t *testing.T) {
	r := &fakeRunner{}
	tool, p := newTool(t, r)

	if _, err := tool.Erase(context.Background()); err != nil {
		t.Fatalf("Erase err=%v", err)
	}
	want := append(searchArgs(p), "-f", filepath.Join(p.Configs, EraseScript))
	if !reflect.DeepEqual(r.calls[0].args, want) {
		t.Fatalf("args=%v", r.calls[0].args)
	}
}

func TestFlashBootloader_CopiesIntoTmp(t *testing.T) {
	r := &fakeRunner{}
	tool, p := newTool(t, r)

	src := filepath.Join(t.TempDir(), "bl.bin")
	if err := os.WriteFile(src, []byte("BOOT"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := tool.FlashBootloader(context.Background(), src); err != nil {
		t.Fatalf("FlashBootloader err=%v", err)
	}

	got, err := os.ReadFile(filepath.Join(p.Tmp, BootloaderCopy))
	if err != nil || string(got) != "BOOT" {
		t.Fatalf("copy: %q err=%v", got, err)
	}
	want := append(searchArgs(p), "-s", p.Tmp, "-f", filepath.Join(p.Configs, FlashScript))
	if !reflect.DeepEqual(r.calls[0].args, want) {
		t.Fatalf("args=%v", r.calls[0].args)
	}
}

func TestFlashBootloader_MissingFile(t *testing.T) {
	r := &fakeRunner{}
	tool, _ := newTool(t, r)

	_, err := tool.FlashBootloader(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if flasherr.KindOf(err) != flasherr.KindFile {
		t.Fatalf("expected file error, got %v", err)
	}
	if len(r.calls) != 0 {
		t.Fatalf("openocd must not run without a bootloader copy")
	}
}

func TestFlashRadio_Args(t *testing.T) {
	r := &fakeRunner{}
	tool, p := newTool(t, r)
	live := make(chan logsink.Entry, 1)

	file := filepath.Join(p.Tmp, "merged.hex")
	if _, err := tool.FlashRadio(context.Background(), file, live); err != nil {
		t.Fatalf("FlashRadio err=%v", err)
	}

	want := append(searchArgs(p),
		"-f", RadioConfig,
		"-c", "program "+filepath.ToSlash(file)+" verify reset",
		"-c", "reset run",
		"-c", "exit",
	)
	if !reflect.DeepEqual(r.calls[0].args, want) || !r.calls[0].live {
		t.Fatalf("call=%+v", r.calls[0])
	}
}

func TestRun_SpawnErrorTagged(t *testing.T) {
	spawn := &process.SpawnError{Program: "openocd", Err: errors.New("not found")}
	tool, _ := newTool(t, &fakeRunner{err: spawn})

	_, err := tool.Unlock(context.Background())
	var se *process.SpawnError
	if !errors.As(err, &se) {
		t.Fatalf("expected SpawnError in chain, got %v", err)
	}
	if flasherr.KindOf(err) != flasherr.KindExternalTool {
		t.Fatalf("kind=%v", flasherr.KindOf(err))
	}
}

func TestNew_Validates(t *testing.T) {
	if _, err := New(nil, "", config.Paths{Base: "/x"}, nil); err == nil {
		t.Fatalf("expected runner error")
	}
	if _, err := New(&fakeRunner{}, "", config.Paths{}, nil); err == nil {
		t.Fatalf("expected paths error")
	}
}
