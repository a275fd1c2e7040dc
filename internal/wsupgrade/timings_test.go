// internal/wsupgrade/timings_test.go
package wsupgrade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/steamicc/easyflash/internal/config"
)

func TestTimingsFromConfig_Defaults(t *testing.T) {
	cfg := &config.Config{}
	config.Normalize(cfg)

	tm := TimingsFromConfig(cfg.WirelessStack)

	assert.Equal(t, 2*time.Second, tm.Settle)
	assert.Equal(t, 5*time.Second, tm.RebootWait)
	assert.Equal(t, time.Second, tm.CommandWait)
	assert.Equal(t, 2*time.Second, tm.ReadTimeout)
	assert.Equal(t, time.Second, tm.RetryPace)
	assert.Equal(t, 10*time.Minute, tm.ProgressTimeout)
	assert.Equal(t, 3, tm.MaxFusFlashes)
}
