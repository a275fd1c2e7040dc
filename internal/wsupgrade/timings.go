// internal/wsupgrade/timings.go
package wsupgrade

import (
	"time"

	"github.com/steamicc/easyflash/internal/config"
)

// Timings are the waits and bounds of one upgrade job.
type Timings struct {
	Settle          time.Duration // before VERSION, after a reboot
	RebootWait      time.Duration // after flashing, before UPGRADE
	CommandWait     time.Duration // between a command and its answer
	ReadTimeout     time.Duration // per answer line
	RetryPace       time.Duration // between DELETE / STATUS attempts
	ProgressTimeout time.Duration // whole UPGRADE follow-up
	MaxFusFlashes   int
}

// Retry bounds.
const (
	DeleteAttempts = 3
	StatusRounds   = 2
	StatusAttempts = 3
)

// TimingsFromConfig converts a normalized wireless_stack section.
func TimingsFromConfig(ws config.WirelessStackConfig) Timings {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return Timings{
		Settle:          ms(ws.SettleMs),
		RebootWait:      ms(ws.RebootWaitMs),
		CommandWait:     ms(ws.CommandWaitMs),
		ReadTimeout:     ms(ws.ReadTimeoutMs),
		RetryPace:       ms(ws.RetryPaceMs),
		ProgressTimeout: time.Duration(ws.ProgressTimeoutS) * time.Second,
		MaxFusFlashes:   ws.MaxFusFlashes,
	}
}
