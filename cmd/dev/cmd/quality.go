package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

func TestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run unit tests, the emulated controller included",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := test.Test()
			if err != nil {
				return fmt.Errorf("failed to run tests: %w", err)
			}
			return nil
		},
	}
	return cmd
}

func LintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Run linting",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := test.Lint()
			if err != nil {
				return fmt.Errorf("failed to run linting: %w", err)
			}
			return nil
		},
	}
	return cmd
}

// IntegrationTestCmd runs the integration tagged tests. They need an idle
// controller on the periph bus named by WIIEXT_DEVICE.
func IntegrationTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integration-test",
		Short: "Run integration tests against a controller on a real bus",
		RunE: func(cmd *cobra.Command, args []string) error {
			device, err := cmd.Flags().GetString("device")
			if err != nil {
				return fmt.Errorf("could not get device flag: %w", err)
			}
			if device == "" {
				slog.Error("no bus selected, pass --device or set " + deviceEnv)
				return fmt.Errorf("missing %s", deviceEnv)
			}
			if err := os.Setenv(deviceEnv, device); err != nil {
				return fmt.Errorf("could not export %s: %w", deviceEnv, err)
			}
			slog.Info("running integration tests", "device", device)
			err = test.Integ()
			if err != nil {
				return fmt.Errorf("failed to run integration testing: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("device", os.Getenv(deviceEnv), "periph bus name with an idle controller attached, e.g. /dev/i2c-1")
	return cmd
}

// deviceEnv is read by i2c/integration_test.go.
const deviceEnv = "WIIEXT_DEVICE"
