// internal/bootflash/step.go
package bootflash

import (
	"errors"
	"fmt"

	"github.com/steamicc/easyflash/internal/image"
	"github.com/steamicc/easyflash/internal/logsink"
	"github.com/steamicc/easyflash/internal/process"
	"github.com/steamicc/easyflash/internal/volume"
)

// Step is the current position of a bootloader job.
type Step uint8

const (
	Idle Step = iota
	Unlocking
	Erasing
	FlashingBootloader
	WaitingMaintenanceVolume
	CopyingFirmware
	WaitingDeviceVolume
	CopyingUserFile
	Done
	Aborted
)

func (s Step) String() string {
	switch s {
	case Idle:
		return "idle"
	case Unlocking:
		return "unlocking"
	case Erasing:
		return "erasing"
	case FlashingBootloader:
		return "flashing-bootloader"
	case WaitingMaintenanceVolume:
		return "waiting-maintenance-volume"
	case CopyingFirmware:
		return "copying-firmware"
	case WaitingDeviceVolume:
		return "waiting-device-volume"
	case CopyingUserFile:
		return "copying-user-file"
	case Done:
		return "done"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("step(%d)", uint8(s))
	}
}

// Terminal reports whether no further step follows.
func (s Step) Terminal() bool { return s == Done || s == Aborted }

// Job is one bootloader + firmware flash request.
type Job struct {
	BootloaderPath string
	FirmwarePath   string
	UserFilePath   string // optional

	TargetName      string
	MaintenanceName string
}

// State is what the driver carries between steps.
type State struct {
	Step   Step
	Job    Job
	Volume volume.Volume // last volume found by a wait step
}

// Event is the completion message of the current step's work.
type Event struct {
	// Tool steps.
	Result process.Result

	// Wait steps.
	Volume volume.Volume
	SHA    string
	SHAErr error

	// CopyingFirmware: whether a user file is present.
	HasUserFile bool

	// Err is set when the work could not be carried out at all.
	Err error
}

// ---- transitions ----

// Transition returns the next state and the log entries produced by ev.
// It has no side effects. Starting a job is Transition(State{Step: Idle}, Event{}).
func Transition(st State, ev Event) (State, []logsink.Entry) {
	switch st.Step {
	case Idle:
		return enter(st, Unlocking)

	case Unlocking:
		return afterTool(st, ev, "unlock", Erasing)

	case Erasing:
		return afterTool(st, ev, "erase", FlashingBootloader)

	case FlashingBootloader:
		return afterTool(st, ev, "flash", WaitingMaintenanceVolume)

	case WaitingMaintenanceVolume:
		return afterWait(st, ev, st.Job.MaintenanceName, CopyingFirmware)

	case WaitingDeviceVolume:
		return afterWait(st, ev, st.Job.TargetName, CopyingUserFile)

	case CopyingFirmware:
		if ev.Err != nil {
			return abort(st, logsink.Errorf("Copy failed (%v)", ev.Err))
		}
		if !ev.HasUserFile {
			st.Step = Done
			return st, []logsink.Entry{logsink.NewWarning("No user file. Skip.")}
		}
		return enter(st, WaitingDeviceVolume)

	case CopyingUserFile:
		if ev.Err != nil {
			return abort(st, logsink.Errorf("Copy failed (%v)", ev.Err))
		}
		st.Step = Done
		return st, []logsink.Entry{logsink.NewPlain("")}

	default:
		return st, nil
	}
}

// Header is the Info line announcing a step.
func Header(st State) string {
	switch st.Step {
	case Unlocking:
		return "Unlock target"
	case Erasing:
		return "Erase target"
	case FlashingBootloader:
		return "Flash bootloader"
	case WaitingMaintenanceVolume:
		return fmt.Sprintf("Wait for '%s' drive", st.Job.MaintenanceName)
	case CopyingFirmware:
		return fmt.Sprintf("Copy firmware to %s", st.Job.MaintenanceName)
	case WaitingDeviceVolume:
		return fmt.Sprintf("Wait for '%s' drive", st.Job.TargetName)
	case CopyingUserFile:
		return fmt.Sprintf("Copy user file to %s", st.Job.TargetName)
	default:
		return ""
	}
}

func enter(st State, next Step) (State, []logsink.Entry) {
	st.Step = next
	return st, []logsink.Entry{logsink.NewPlain(""), logsink.NewInfo(Header(st))}
}

func abort(st State, e ...logsink.Entry) (State, []logsink.Entry) {
	st.Step = Aborted
	return st, e
}

func afterTool(st State, ev Event, what string, next Step) (State, []logsink.Entry) {
	if ev.Err != nil {
		return abort(st, logsink.Errorf("Failed to run %s process. Error: %v", what, ev.Err))
	}

	out := append([]logsink.Entry(nil), ev.Result.Log...)
	switch {
	case ev.Result.ExitCode == nil:
		out = append(out, logsink.Errorf("%s failed. Process terminated by signal.", Header(st)))
		st.Step = Aborted
		return st, out
	case *ev.Result.ExitCode != 0:
		out = append(out, logsink.Warningf("%s failed. Exit code: %d", Header(st), *ev.Result.ExitCode))
		st.Step = Aborted
		return st, out
	}

	ns, hdr := enter(st, next)
	return ns, append(out, hdr...)
}

func afterWait(st State, ev Event, name string, next Step) (State, []logsink.Entry) {
	if ev.Err != nil {
		if errors.Is(ev.Err, volume.ErrNotFound) {
			return abort(st, logsink.Errorf("TIMEOUT : The device '%s' was not found.", name))
		}
		return abort(st, logsink.Errorf("Wait for '%s' failed: %v", name, ev.Err))
	}

	st.Volume = ev.Volume
	out := []logsink.Entry{logsink.Infof("Search for 'Git SHA' from %s in '%s' mount point:", image.DetailsFile, name)}
	switch {
	case ev.SHAErr == nil:
		out = append(out, logsink.NewInfo(ev.SHA))
	case errors.Is(ev.SHAErr, image.ErrNoSHA):
		out = append(out, logsink.NewWarning("No SHA found in file..."))
	default:
		out = append(out, logsink.Warningf("Could not read %s (%v)", image.DetailsFile, ev.SHAErr))
	}

	ns, hdr := enter(st, next)
	return ns, append(out, hdr...)
}
