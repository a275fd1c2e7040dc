// cmd/easyflash/bootloader.go
package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/steamicc/easyflash/internal/bootflash"
	"github.com/steamicc/easyflash/internal/config"
	"github.com/steamicc/easyflash/internal/volume"
)

func bootloaderCmd(e *env) *cobra.Command {
	var (
		bootloaderPath string
		firmwarePath   string
		userFilePath   string
		targetName     string
		timeoutS       int
	)

	cmd := &cobra.Command{
		Use:   "bootloader",
		Short: "Flash the bootloader, then copy firmware and user file to the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := &e.cfg.Bootloader
			flags := cmd.Flags()
			if flags.Changed("bootloader") {
				b.BootloaderPath = bootloaderPath
			}
			if flags.Changed("firmware") {
				b.FirmwarePath = firmwarePath
			}
			if flags.Changed("user-file") {
				b.UserFilePath = userFilePath
			}
			if flags.Changed("target-name") {
				b.TargetName = targetName
			}
			if flags.Changed("timeout") {
				b.TimeoutS = config.ClampTimeout(timeoutS)
			}

			tool, err := e.tool()
			if err != nil {
				return err
			}
			poller, err := volume.Build(*b)
			if err != nil {
				return err
			}
			seq, err := bootflash.New(tool, poller, e.sink, slog.Default())
			if err != nil {
				return err
			}

			job := bootflash.Job{
				BootloaderPath:  b.BootloaderPath,
				FirmwarePath:    b.FirmwarePath,
				UserFilePath:    b.UserFilePath,
				TargetName:      b.TargetName,
				MaintenanceName: b.MaintenanceName,
			}
			return e.follow(cmd.Context(), func() error {
				_, err := seq.Run(cmd.Context(), job)
				return err
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&bootloaderPath, "bootloader", "", "Bootloader image (overrides config)")
	f.StringVar(&firmwarePath, "firmware", "", "Firmware image copied to the maintenance volume")
	f.StringVar(&userFilePath, "user-file", "", "Optional file copied to the device volume")
	f.StringVar(&targetName, "target-name", "", "Device volume name")
	f.IntVar(&timeoutS, "timeout", config.DefaultTimeoutS, "Volume wait timeout in seconds (1-30)")

	return cmd
}
