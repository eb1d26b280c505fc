package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

// smokeRuns exercise the built binary against every emulated controller.
var smokeRuns = [][]string{
	{"--adapter", "mock", "--mock-profile", "nunchuk", "identify"},
	{"--adapter", "mock", "--mock-profile", "classic", "identify"},
	{"--adapter", "mock", "--mock-profile", "classic-pro", "identify"},
	{"--adapter", "mock", "--mock-profile", "nunchuk", "read", "nunchuk", "-n", "5", "--rate", "100"},
	{"--adapter", "mock", "--mock-profile", "classic", "read", "classic", "-n", "5", "--rate", "100"},
	{"--adapter", "mock", "--mock-profile", "classic", "read", "classic", "--hires", "-n", "5", "--rate", "100"},
	{"--adapter", "mock", "--mock-profile", "classic-pro", "calibrate", "--yes"},
}

func SmokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run the built cli against the emulated controllers",
		Long: `Run the binary produced by 'dev build' against the mock adapter.

Every emulated controller is identified, polled and calibrated. The command
fails on the first run that exits with a non zero status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, err := cmd.Flags().GetString("binary")
			if err != nil {
				return fmt.Errorf("could not get binary flag: %w", err)
			}
			if _, err := os.Stat(bin); err != nil {
				slog.Error("cli binary not found, run 'dev build' first", "path", bin)
				return fmt.Errorf("missing binary: %w", err)
			}
			for _, run := range smokeRuns {
				slog.Info("running", "args", strings.Join(run, " "))
				c := exec.CommandContext(cmd.Context(), bin, run...)
				c.Stdout = os.Stdout
				c.Stderr = os.Stderr
				if err := c.Run(); err != nil {
					slog.Error("smoke run failed", "args", run, "error", err)
					return fmt.Errorf("smoke run %q failed: %w", strings.Join(run, " "), err)
				}
			}
			slog.Info("smoke tests passed", "runs", len(smokeRuns))
			return nil
		},
	}
	cmd.Flags().String("binary", binary, "path to the wiiext binary")
	return cmd
}
