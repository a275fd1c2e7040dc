// cmd/easyflash/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/steamicc/easyflash/internal/config"
	"github.com/steamicc/easyflash/internal/logging"
)

func main() {
	var (
		cfgPath    string
		debug      bool
		timestamps bool
	)
	if err := logging.Configure(logging.LevelWarn); err != nil {
		log.Fatalf("configure logger: %v", err)
	}

	e := &env{}

	root := &cobra.Command{
		Use:           "easyflash",
		Short:         "Flash STeaMi bootloader, firmware and wireless stack through openocd",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// --------------------
			// Load + validate config
			// --------------------
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("config load failed: %w", err)
			}
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("config validation failed: %w", err)
			}
			config.Normalize(cfg)

			if cmd.Flags().Changed("timestamps") {
				cfg.Log.Timestamps = timestamps
			}
			level := cfg.Log.Level
			if debug {
				level = logging.LevelDebug
			}
			if err := logging.Configure(level); err != nil {
				return err
			}

			return e.setup(cfg)
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&timestamps, "timestamps", false, "Prefix job output with timestamps")

	root.AddCommand(bootloaderCmd(e))
	root.AddCommand(wirelessStackCmd(e))
	root.AddCommand(portsCmd(e))
	root.AddCommand(volumesCmd(e))
	root.AddCommand(stacksCmd(e))

	// ctx only stops waiting: a running openocd is never killed
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalf("easyflash: %v", err)
	}
}
