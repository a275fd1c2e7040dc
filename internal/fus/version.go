// internal/fus/version.go
package fus

import (
	"fmt"

	"github.com/steamicc/easyflash/internal/image"
)

// Action is what the upgrade must do next for a given FUS version.
type Action uint8

const (
	// ActionFlashFus installs Decision.Image before anything else.
	ActionFlashFus Action = iota
	// ActionProceed skips the FUS upgrade and goes on to the wireless stack.
	ActionProceed
	// ActionAbort stops the job: the version is not one we know how to handle.
	ActionAbort
)

func (a Action) String() string {
	switch a {
	case ActionFlashFus:
		return "flash-fus"
	case ActionProceed:
		return "proceed"
	case ActionAbort:
		return "abort"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

// Decision is the outcome of ClassifyVersion.
type Decision struct {
	Action Action
	Image  image.Fus // valid for ActionFlashFus
	Warn   bool      // proceed, but the version is newer than expected
}

// Major returns byte 3 of a fus_version value.
func Major(v uint32) uint8 { return uint8(v >> VersionMajorShift) }

// Minor returns byte 2 of a fus_version value.
func Minor(v uint32) uint8 { return uint8(v >> VersionMinorShift) }

// FormatVersion renders fus_version as "major.minor.patch".
func FormatVersion(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", Major(v), Minor(v), uint8(v>>8))
}

// ClassifyVersion decides the FUS branch.
//
//	0.x.x        -> flash the legacy FUS image
//	1.0.x, 1.1.x -> flash the current FUS image
//	1.2.x        -> proceed
//	2.x.x        -> proceed with a warning
//	anything else -> abort
func ClassifyVersion(v uint32) Decision {
	major, minor := Major(v), Minor(v)

	switch {
	case major == 0:
		return Decision{Action: ActionFlashFus, Image: image.FusLegacy}
	case major == 1 && minor < 2:
		return Decision{Action: ActionFlashFus, Image: image.FusCurrent}
	case major == 1 && minor == 2:
		return Decision{Action: ActionProceed}
	case major == 2:
		return Decision{Action: ActionProceed, Warn: true}
	default:
		return Decision{Action: ActionAbort}
	}
}
