// internal/bootflash/bootflash_test.go
package bootflash

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/steamicc/easyflash/internal/logsink"
	"github.com/steamicc/easyflash/internal/process"
	"github.com/steamicc/easyflash/internal/volume"
)

// ---- fakes ----

type fakeFlasher struct {
	mu       sync.Mutex
	missing  bool
	exits    map[string]*int // step name -> exit code; absent => 0
	spawnErr map[string]error
	calls    []string
	gate     chan struct{} // when set, Unlock blocks until closed
}

func (f *fakeFlasher) Installed(context.Context) (bool, error) { return !f.missing, nil }

func (f *fakeFlasher) result(name string) (process.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()

	if err := f.spawnErr[name]; err != nil {
		return process.Result{}, err
	}
	code, ok := f.exits[name]
	if !ok {
		code = process.ExitCode(0)
	}
	return process.Result{ExitCode: code, Log: []logsink.Entry{logsink.NewInfo(name + " output")}}, nil
}

func (f *fakeFlasher) Unlock(context.Context) (process.Result, error) {
	if f.gate != nil {
		<-f.gate
	}
	return f.result("unlock")
}

func (f *fakeFlasher) Erase(context.Context) (process.Result, error) { return f.result("erase") }

func (f *fakeFlasher) FlashBootloader(_ context.Context, _ string) (process.Result, error) {
	return f.result("flash")
}

type fakeWaiter struct {
	vols  map[string]string // name -> mount path
	calls []string
}

func (f *fakeWaiter) Wait(_ context.Context, name string) (volume.Volume, error) {
	f.calls = append(f.calls, name)
	if p, ok := f.vols[name]; ok {
		return volume.Volume{Name: name, Path: p}, nil
	}
	return volume.Volume{}, volume.ErrNotFound
}

// neverLister is a volume lister on which nothing is ever mounted.
type neverLister struct{}

func (neverLister) List(context.Context) ([]volume.Volume, error) {
	return []volume.Volume{{Name: "root", Path: "/"}}, nil
}

// ---- helpers ----

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func newJob(t *testing.T) Job {
	dir := t.TempDir()
	return Job{
		BootloaderPath:  writeFile(t, dir, "bootloader.bin", "BL"),
		FirmwarePath:    writeFile(t, dir, "firmware.bin", "FW"),
		UserFilePath:    filepath.Join(dir, "missing.bin"),
		TargetName:      "STeaMi",
		MaintenanceName: "MAINTENANCE",
	}
}

func collect(steps <-chan Step) []Step {
	var out []Step
	for s := range steps {
		out = append(out, s)
	}
	return out
}

func hasEntry(entries []logsink.Entry, kind logsink.Kind, substr string) bool {
	for _, e := range entries {
		if e.Kind == kind && strings.Contains(e.Text, substr) {
			return true
		}
	}
	return false
}

// ---- Transition ----

func TestTransition_ExitCodes(t *testing.T) {
	st := State{Step: Unlocking, Job: Job{MaintenanceName: "MAINTENANCE"}}

	next, _ := Transition(st, Event{Result: process.Result{ExitCode: process.ExitCode(0)}})
	if next.Step != Erasing {
		t.Fatalf("exit 0: got %s want erasing", next.Step)
	}

	next, entries := Transition(st, Event{Result: process.Result{ExitCode: process.ExitCode(2)}})
	if next.Step != Aborted || !hasEntry(entries, logsink.Warning, "Exit code: 2") {
		t.Fatalf("exit 2: step=%s entries=%v", next.Step, entries)
	}

	next, entries = Transition(st, Event{Result: process.Result{ExitCode: nil}})
	if next.Step != Aborted || !hasEntry(entries, logsink.Error, "Process terminated by signal.") {
		t.Fatalf("signal: step=%s entries=%v", next.Step, entries)
	}

	next, entries = Transition(st, Event{Err: &process.SpawnError{Program: "openocd", Err: errors.New("nope")}})
	if next.Step != Aborted || !hasEntry(entries, logsink.Error, "Failed to run unlock process") {
		t.Fatalf("spawn: step=%s entries=%v", next.Step, entries)
	}
}

func TestTransition_KeepsToolLog(t *testing.T) {
	st := State{Step: Erasing}
	log := []logsink.Entry{logsink.NewInfo("Info : erased"), logsink.NewInfo("Exit code: 0")}

	_, entries := Transition(st, Event{Result: process.Result{ExitCode: process.ExitCode(0), Log: log}})
	if len(entries) < 2 || entries[0].Text != "Info : erased" || entries[1].Text != "Exit code: 0" {
		t.Fatalf("tool log not forwarded first: %v", entries)
	}
	if !hasEntry(entries, logsink.Info, "Flash bootloader") {
		t.Fatalf("missing next header: %v", entries)
	}
}

func TestTransition_WaitTimeout(t *testing.T) {
	st := State{Step: WaitingMaintenanceVolume, Job: Job{MaintenanceName: "MAINTENANCE"}}

	next, entries := Transition(st, Event{Err: volume.ErrNotFound})
	if next.Step != Aborted {
		t.Fatalf("step=%s", next.Step)
	}
	if !hasEntry(entries, logsink.Error, "TIMEOUT : The device 'MAINTENANCE' was not found.") {
		t.Fatalf("entries=%v", entries)
	}
}

func TestTransition_CopyFirmware(t *testing.T) {
	st := State{Step: CopyingFirmware, Job: Job{TargetName: "STeaMi", MaintenanceName: "MAINTENANCE"}}

	next, entries := Transition(st, Event{HasUserFile: false})
	if next.Step != Done || !hasEntry(entries, logsink.Warning, "No user file. Skip.") {
		t.Fatalf("no user file: step=%s entries=%v", next.Step, entries)
	}

	next, entries = Transition(st, Event{HasUserFile: true})
	if next.Step != WaitingDeviceVolume || !hasEntry(entries, logsink.Info, "Wait for 'STeaMi' drive") {
		t.Fatalf("user file: step=%s entries=%v", next.Step, entries)
	}

	next, entries = Transition(st, Event{Err: errors.New("disk full")})
	if next.Step != Aborted || !hasEntry(entries, logsink.Error, "Copy failed (disk full)") {
		t.Fatalf("copy error: step=%s entries=%v", next.Step, entries)
	}
}

// ---- end to end ----

func TestRun_NoUserFile(t *testing.T) {
	job := newJob(t)
	maint := t.TempDir()
	writeFile(t, maint, "DETAILS.TXT", "Git SHA: abc123\n")

	waiter := &fakeWaiter{vols: map[string]string{"MAINTENANCE": maint}}
	sink := logsink.New()
	seq, err := New(&fakeFlasher{}, waiter, sink, nil)
	if err != nil {
		t.Fatalf("New err=%v", err)
	}

	steps, err := seq.Start(context.Background(), job)
	if err != nil {
		t.Fatalf("Start err=%v", err)
	}
	got := collect(steps)

	if got[len(got)-1] != Done {
		t.Fatalf("final step=%s entries=%v", got[len(got)-1], sink.Drain())
	}
	for _, s := range got {
		if s == WaitingDeviceVolume {
			t.Fatalf("WaitingDeviceVolume must not be entered: %v", got)
		}
	}

	entries := sink.Drain()
	if !hasEntry(entries, logsink.Warning, "No user file. Skip.") {
		t.Fatalf("missing skip warning: %v", entries)
	}
	if !hasEntry(entries, logsink.Info, "Git SHA: abc123") {
		t.Fatalf("missing SHA line: %v", entries)
	}
	if b, err := os.ReadFile(filepath.Join(maint, "firmware.bin")); err != nil || string(b) != "FW" {
		t.Fatalf("firmware not copied: %q %v", b, err)
	}
	if len(waiter.calls) != 1 {
		t.Fatalf("waiter calls=%v", waiter.calls)
	}
	if seq.Busy() {
		t.Fatalf("guard not released")
	}
}

func TestRun_WithUserFile(t *testing.T) {
	job := newJob(t)
	job.UserFilePath = writeFile(t, t.TempDir(), "main.py", "print(1)")
	maint, target := t.TempDir(), t.TempDir()

	waiter := &fakeWaiter{vols: map[string]string{"MAINTENANCE": maint, "STeaMi": target}}
	sink := logsink.New()
	seq, _ := New(&fakeFlasher{}, waiter, sink, nil)

	final, err := seq.Run(context.Background(), job)
	if err != nil || final != Done {
		t.Fatalf("Run final=%s err=%v entries=%v", final, err, sink.Drain())
	}
	if b, err := os.ReadFile(filepath.Join(target, "main.py")); err != nil || string(b) != "print(1)" {
		t.Fatalf("user file not copied: %q %v", b, err)
	}
	// DETAILS.TXT is absent on both volumes
	if !hasEntry(sink.Drain(), logsink.Warning, "Could not read DETAILS.TXT") {
		t.Fatalf("missing DETAILS.TXT warning")
	}
}

func TestRun_VolumeTimeout(t *testing.T) {
	job := newJob(t)
	poller, err := volume.New(volume.Config{Interval: 5 * time.Millisecond, Timeout: 50 * time.Millisecond}, neverLister{})
	if err != nil {
		t.Fatalf("volume.New err=%v", err)
	}

	sink := logsink.New()
	seq, _ := New(&fakeFlasher{}, poller, sink, nil)

	steps, err := seq.Start(context.Background(), job)
	if err != nil {
		t.Fatalf("Start err=%v", err)
	}
	got := collect(steps)

	if got[len(got)-1] != Aborted {
		t.Fatalf("final step=%s", got[len(got)-1])
	}
	for _, s := range got {
		if s == CopyingFirmware {
			t.Fatalf("copy must not be attempted: %v", got)
		}
	}
	entries := sink.Drain()
	if !hasEntry(entries, logsink.Error, "TIMEOUT") || !hasEntry(entries, logsink.Error, "MAINTENANCE") {
		t.Fatalf("missing timeout error: %v", entries)
	}
}

func TestRun_UnlockFailsStopsSequence(t *testing.T) {
	f := &fakeFlasher{exits: map[string]*int{"unlock": process.ExitCode(1)}}
	sink := logsink.New()
	seq, _ := New(f, &fakeWaiter{}, sink, nil)

	final, err := seq.Run(context.Background(), newJob(t))
	if err == nil || final != Aborted {
		t.Fatalf("final=%s err=%v", final, err)
	}
	if len(f.calls) != 1 {
		t.Fatalf("no step may follow a failed unlock: %v", f.calls)
	}
}

func TestStart_Preconditions(t *testing.T) {
	sink := logsink.New()
	seq, _ := New(&fakeFlasher{}, &fakeWaiter{}, sink, nil)

	job := newJob(t)
	job.FirmwarePath = filepath.Join(t.TempDir(), "nope.bin")
	if _, err := seq.Start(context.Background(), job); err == nil {
		t.Fatalf("expected firmware precondition error")
	}
	if !hasEntry(sink.Drain(), logsink.Error, "Invalid firmware file") {
		t.Fatalf("precondition error not logged")
	}

	seq, _ = New(&fakeFlasher{missing: true}, &fakeWaiter{}, sink, nil)
	if _, err := seq.Start(context.Background(), newJob(t)); err == nil {
		t.Fatalf("expected openocd missing error")
	}
	if !hasEntry(sink.Drain(), logsink.Error, "OpenOCD is not found") {
		t.Fatalf("missing openocd not logged")
	}
	if seq.Busy() {
		t.Fatalf("guard held after precondition failure")
	}
}

func TestStart_Busy(t *testing.T) {
	f := &fakeFlasher{gate: make(chan struct{}), exits: map[string]*int{"unlock": process.ExitCode(1)}}
	seq, _ := New(f, &fakeWaiter{}, logsink.New(), nil)

	steps, err := seq.Start(context.Background(), newJob(t))
	if err != nil {
		t.Fatalf("Start err=%v", err)
	}
	if _, err := seq.Start(context.Background(), newJob(t)); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(f.gate)
	collect(steps)

	steps, err = seq.Start(context.Background(), newJob(t))
	if err != nil {
		t.Fatalf("restart after finish err=%v", err)
	}
	collect(steps)
}
