// cmd/easyflash/main_test.go
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steamicc/easyflash/internal/config"
	"github.com/steamicc/easyflash/internal/image"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func testEnv(t *testing.T) *env {
	t.Helper()
	cfg := &config.Config{Paths: config.PathsConfig{BaseDir: t.TempDir()}}
	config.Normalize(cfg)

	e := &env{}
	require.NoError(t, e.setup(cfg))
	return e
}

func TestSetup_CreatesLayout(t *testing.T) {
	e := testEnv(t)

	for _, dir := range []string{e.paths.Scripts, e.paths.Configs, e.paths.Tmp, e.paths.WirelessStack} {
		st, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, st.IsDir(), dir)
	}
	assert.NotNil(t, e.sink)
}

func TestStacksCmd_MarksInstalledImages(t *testing.T) {
	e := testEnv(t)
	installed := image.StackThreadFtd.Filename()
	require.NoError(t, os.WriteFile(filepath.Join(e.paths.WirelessStack, installed), []byte(":00000001FF\n"), 0o644))

	var out bytes.Buffer
	cmd := stacksCmd(e)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.Contains(t, text, "BLE_HCI_EXT *")
	assert.Contains(t, text, image.FusLegacy.Filename())
	assert.Contains(t, text, config.DefaultOperatorImage)
	assert.Contains(t, text, e.paths.WirelessStack)

	for _, line := range bytes.Split(out.Bytes(), []byte("\n")) {
		if bytes.Contains(line, []byte(installed)) {
			assert.Contains(t, string(line), "ok")
			return
		}
	}
	t.Fatalf("no row for %s in:\n%s", installed, text)
}

func TestTool_UsesConfiguredProgram(t *testing.T) {
	e := testEnv(t)
	e.cfg.OpenOCD.Program = "/opt/openocd/bin/openocd"
	e.cfg.OpenOCD.StreamTags = config.StreamTagsLegacy

	tool, err := e.tool()
	require.NoError(t, err)
	assert.Equal(t, "/opt/openocd/bin/openocd", tool.Program())
}
