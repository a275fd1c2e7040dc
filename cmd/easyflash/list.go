// cmd/easyflash/list.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/steamicc/easyflash/internal/image"
	"github.com/steamicc/easyflash/internal/logging"
	"github.com/steamicc/easyflash/internal/serialcmd"
	"github.com/steamicc/easyflash/internal/volume"
)

func portsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := serialcmd.NewSelection(serialcmd.SystemLister{}).Refresh()
			if err != nil {
				return fmt.Errorf("list serial ports: %w", err)
			}
			rows := make([][]string, 0, len(ports))
			for _, p := range ports {
				product := p.Product
				if product == "" {
					product = "-"
				}
				rows = append(rows, []string{p.Name, product})
			}
			fmt.Fprintln(cmd.OutOrStdout(), logging.Table([]string{"PORT", "PRODUCT"}, rows))
			return nil
		},
	}
}

func volumesCmd(e *env) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "volumes",
		Short: "List mounted volumes",
		RunE: func(cmd *cobra.Command, args []string) error {
			poller, err := volume.Build(e.cfg.Bootloader)
			if err != nil {
				return err
			}
			if !watch {
				return printSnapshot(cmd, poller.PollOnce(cmd.Context()))
			}

			out := make(chan volume.Snapshot)
			go poller.Run(cmd.Context(), out)
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case snap := <-out:
					if err := printSnapshot(cmd, snap); err != nil {
						return err
					}
				}
			}
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep listing on every poll interval")
	return cmd
}

func printSnapshot(cmd *cobra.Command, snap volume.Snapshot) error {
	if snap.Err != nil {
		return fmt.Errorf("list volumes: %w", snap.Err)
	}
	rows := make([][]string, 0, len(snap.Volumes))
	for _, v := range snap.Volumes {
		rows = append(rows, []string{v.Name, v.Path, v.Device})
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, snap.At.Format(time.TimeOnly))
	fmt.Fprintln(w, logging.Table([]string{"NAME", "PATH", "DEVICE"}, rows))
	return nil
}

func stacksCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stacks",
		Short: "List wireless stacks and whether their image is installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			present := func(name string) string {
				if _, err := os.Stat(filepath.Join(e.paths.WirelessStack, name)); err != nil {
					return "missing"
				}
				return "ok"
			}

			var rows [][]string
			for _, s := range image.AllStacks() {
				id := s.ID()
				if s == image.DefaultStack {
					id += " *"
				}
				rows = append(rows, []string{id, s.String(), s.Filename(), present(s.Filename())})
			}
			for _, f := range []image.Fus{image.FusLegacy, image.FusCurrent} {
				rows = append(rows, []string{"-", f.String(), f.Filename(), present(f.Filename())})
			}
			op := e.cfg.WirelessStack.OperatorImage
			rows = append(rows, []string{"-", "Operator firmware", op, present(op)})

			fmt.Fprintln(cmd.OutOrStdout(), logging.Table([]string{"ID", "NAME", "FILE", "IMAGE"}, rows))
			fmt.Fprintf(cmd.OutOrStdout(), "images are read from %s\n", e.paths.WirelessStack)
			return nil
		},
	}
}
