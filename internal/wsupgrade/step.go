// internal/wsupgrade/step.go
package wsupgrade

import (
	"fmt"
	"strings"

	"github.com/steamicc/easyflash/internal/fus"
	"github.com/steamicc/easyflash/internal/image"
	"github.com/steamicc/easyflash/internal/logsink"
	"github.com/steamicc/easyflash/internal/process"
)

// StepKind names a position in the upgrade sequence.
type StepKind uint8

const (
	Ready StepKind = iota
	StartProcess
	FlashOperator
	UpgradeFus
	FlashFus
	UnlockFus
	DeleteFirmware
	FlashFirmware
)

func (k StepKind) String() string {
	switch k {
	case Ready:
		return "ready"
	case StartProcess:
		return "start-process"
	case FlashOperator:
		return "flash-operator"
	case UpgradeFus:
		return "upgrade-fus"
	case FlashFus:
		return "flash-fus"
	case UnlockFus:
		return "unlock-fus"
	case DeleteFirmware:
		return "delete-firmware"
	case FlashFirmware:
		return "flash-firmware"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Step is the current position. Fus is only meaningful for FlashFus.
type Step struct {
	Kind StepKind
	Fus  image.Fus
}

func (s Step) String() string {
	if s.Kind == FlashFus {
		return fmt.Sprintf("%s(%s)", s.Kind, s.Fus)
	}
	return s.Kind.String()
}

// Job is one wireless-stack upgrade request.
type Job struct {
	Port  string
	Stack image.Stack
}

// State is what the driver carries between steps.
type State struct {
	Step Step
	Job  Job

	// FusFlashes counts FlashFus completions in this job.
	FusFlashes    int
	MaxFusFlashes int

	// Failed is set when the job went back to Ready through the abort path.
	Failed bool
}

// UpgradeOutcome is what an UPGRADE command reported until status 0.
type UpgradeOutcome struct {
	Errors []uint32 // non-zero error codes, in arrival order
}

// Event is the completion message of the current step's work.
type Event struct {
	Result  process.Result      // flash steps
	Version fus.VersionResponse // UpgradeFus
	Upgrade UpgradeOutcome      // FlashFus, FlashFirmware
	Err     error
}

// ---- transitions ----

// Transition returns the next state and the log entries produced by ev.
// It has no side effects. Starting a job is Transition(State{...Ready}, Event{}).
func Transition(st State, ev Event) (State, []logsink.Entry) {
	switch st.Step.Kind {
	case Ready:
		st.Failed = false
		st.FusFlashes = 0
		return enter(st, Step{Kind: StartProcess}, "Start flashing...")

	case StartProcess:
		if ev.Err != nil {
			return abort(st, logsink.Errorf("Cannot start: %v", ev.Err))
		}
		return enter(st, Step{Kind: FlashOperator}, "Flash operator firmware")

	case FlashOperator:
		if e, failed := flashFailure("Operator flash", ev); failed {
			return abort(st, e)
		}
		return enter(st, Step{Kind: UpgradeFus}, "Read FUS version")

	case UpgradeFus:
		return afterVersion(st, ev)

	case FlashFus:
		st.FusFlashes++
		if e, failed := flashFailure("FUS flash", ev); failed {
			return abort(st, e)
		}
		if len(ev.Upgrade.Errors) > 0 {
			return abort(st, logsink.Errorf("FUS upgrade failed: %s", errorTexts(ev.Upgrade.Errors)))
		}
		st2, out := enter(st, Step{Kind: UpgradeFus}, "Read FUS version")
		return st2, append([]logsink.Entry{logsink.Infof("%s installed.", st.Step.Fus)}, out...)

	case DeleteFirmware:
		if ev.Err != nil {
			return abort(st, logsink.Errorf("Failed to delete the wireless stack: %v", ev.Err))
		}
		return enter(st, Step{Kind: UnlockFus}, "Confirm FUS state")

	case UnlockFus:
		if ev.Err != nil {
			return abort(st, logsink.Errorf("FUS state not confirmed: %v", ev.Err))
		}
		return enter(st, Step{Kind: FlashFirmware}, fmt.Sprintf("Flash wireless stack %s", st.Job.Stack))

	case FlashFirmware:
		if e, failed := flashFailure("Wireless stack flash", ev); failed {
			return abort(st, e)
		}
		if len(ev.Upgrade.Errors) > 0 {
			return abort(st, logsink.Errorf("Wireless stack upgrade failed: %s", errorTexts(ev.Upgrade.Errors)))
		}
		st.Step = Step{Kind: Ready}
		return st, []logsink.Entry{logsink.Infof("Wireless stack %s installed.", st.Job.Stack)}

	default:
		return st, nil
	}
}

func afterVersion(st State, ev Event) (State, []logsink.Entry) {
	if ev.Err != nil {
		return abort(st, logsink.Errorf("Failed to read FUS version: %v", ev.Err))
	}

	v := ev.Version.FusVersion
	out := []logsink.Entry{logsink.Infof("FUS version %s, copro firmware %s", fus.FormatVersion(v), ev.Version.CoproFwVersion)}

	d := fus.ClassifyVersion(v)
	switch d.Action {
	case fus.ActionFlashFus:
		if st.MaxFusFlashes > 0 && st.FusFlashes >= st.MaxFusFlashes {
			st2, e := abort(st, logsink.Errorf("FUS still at %s after %d upgrades", fus.FormatVersion(v), st.FusFlashes))
			return st2, append(out, e...)
		}
		st2, e := enter(st, Step{Kind: FlashFus, Fus: d.Image}, fmt.Sprintf("Upgrade FUS with %s", d.Image.Filename()))
		return st2, append(out, e...)

	case fus.ActionProceed:
		if d.Warn {
			out = append(out, logsink.Warningf("FUS version %s is newer than expected, continuing", fus.FormatVersion(v)))
		}
		st2, e := enter(st, Step{Kind: DeleteFirmware}, "Delete current wireless stack")
		return st2, append(out, e...)

	default:
		st2, e := abort(st, logsink.Errorf("unknown FUS version %s (%#08x)", fus.FormatVersion(v), v))
		return st2, append(out, e...)
	}
}

// flashFailure turns a failed flash event into its Error entry.
func flashFailure(what string, ev Event) (logsink.Entry, bool) {
	if ev.Err != nil {
		return logsink.Errorf("%s failed: %v", what, ev.Err), true
	}
	if !ev.Result.Success() {
		if ev.Result.ExitCode == nil {
			return logsink.Errorf("%s failed. Process terminated by signal.", what), true
		}
		return logsink.Errorf("%s failed. %s", what, ev.Result.Summary()), true
	}
	return logsink.Entry{}, false
}

func errorTexts(codes []uint32) string {
	parts := make([]string, 0, len(codes))
	for _, c := range codes {
		parts = append(parts, fmt.Sprintf("0x%02X %s", c, fus.ErrorString(c)))
	}
	return strings.Join(parts, "; ")
}

func enter(st State, next Step, header string) (State, []logsink.Entry) {
	st.Step = next
	return st, []logsink.Entry{logsink.NewPlain(""), logsink.NewInfo(header)}
}

// abort is the single failure path: Error entry, back to Ready.
func abort(st State, e logsink.Entry) (State, []logsink.Entry) {
	st.Step = Step{Kind: Ready}
	st.Failed = true
	return st, []logsink.Entry{e}
}
