// cmd/easyflash/wirelessstack.go
package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/steamicc/easyflash/internal/image"
	"github.com/steamicc/easyflash/internal/serialcmd"
	"github.com/steamicc/easyflash/internal/wsupgrade"
)

func wirelessStackCmd(e *env) *cobra.Command {
	var (
		port   string
		driver string
		stack  string
	)

	cmd := &cobra.Command{
		Use:     "wireless-stack",
		Aliases: []string{"ws"},
		Short:   "Upgrade FUS if needed, then flash a wireless stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws := &e.cfg.WirelessStack
			flags := cmd.Flags()
			if flags.Changed("port") {
				ws.Port = port
			}
			if flags.Changed("driver") {
				ws.Driver = driver
			}
			if flags.Changed("stack") {
				ws.Stack = stack
			}

			st, err := image.ParseStack(ws.Stack)
			if err != nil {
				return err
			}
			opener, err := serialcmd.NewOpener(serialcmd.Driver(ws.Driver))
			if err != nil {
				return err
			}

			// A configured port must be one the system currently lists.
			sel := serialcmd.NewSelection(serialcmd.SystemLister{})
			if _, err := sel.Refresh(); err != nil {
				return fmt.Errorf("list serial ports: %w", err)
			}
			if ws.Port != "" {
				if err := sel.Select(ws.Port); err != nil {
					return err
				}
			}
			selected, _ := sel.Selected()

			tool, err := e.tool()
			if err != nil {
				return err
			}
			seq, err := wsupgrade.New(
				wsupgrade.Config{
					WirelessStackDir: e.paths.WirelessStack,
					TmpDir:           e.paths.Tmp,
					OperatorImage:    ws.OperatorImage,
					Timings:          wsupgrade.TimingsFromConfig(*ws),
				},
				tool,
				wsupgrade.SerialDialer{Opener: opener},
				e.sink,
				slog.Default(),
			)
			if err != nil {
				return err
			}

			job := wsupgrade.Job{Port: selected, Stack: st}
			return e.follow(cmd.Context(), func() error {
				return seq.Run(cmd.Context(), job)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&port, "port", "p", "", "Serial port of the operator firmware")
	f.StringVar(&driver, "driver", "", "Serial driver: bugst or goburrow")
	f.StringVarP(&stack, "stack", "s", "", "Wireless stack id or label (see 'easyflash stacks')")

	return cmd
}
