package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/imgdrop/internal/adapters/clipboard"
	"github.com/kamal-hamza/imgdrop/pkg/ui"
)

const doctorProbeTimeout = 3 * time.Second

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of your imgdrop setup",
	Long: `Diagnose issues with your imgdrop setup.

Checks for:
  - Configuration file existence and validity
  - Upload service reachability
  - Clipboard support (xclip, xsel or wl-copy on Linux)
  - Drop folder access`,
	Run: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) {
	fmt.Println(ui.FormatTitle("🏥 imgdrop Doctor"))
	fmt.Println()

	// 1. Check Config
	checkStep("Configuration File", func() error {
		if _, err := os.Stat(appPaths.ConfigPath); os.IsNotExist(err) {
			return fmt.Errorf("missing at %s (defaults in use, run 'imgdrop config' to create it)", appPaths.ConfigPath)
		}
		return nil
	})

	checkStep("Base URL", func() error {
		return appConfig.Validate()
	})

	// 2. Check the upload service
	checkStep("Upload Service ("+appConfig.BaseURL+")", func() error {
		return probeService(getContext())
	})

	// 3. Check Environment
	checkStep("Clipboard", func() error {
		if !clipboard.Available() {
			return fmt.Errorf("no clipboard utility found (install xclip, xsel or wl-clipboard)")
		}
		return nil
	})

	if appConfig.WatchDrop {
		checkStep("Drop Folder", func() error {
			dir := appConfig.DropDir
			if dir == "" {
				dir = appPaths.DropDir
			}
			info, err := os.Stat(dir)
			if os.IsNotExist(err) {
				return fmt.Errorf("missing at %s (created on first run)", dir)
			}
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}
			return nil
		})
	}

	checkStep("Log File", func() error {
		path := appConfig.LogFile
		if path == "" {
			path = appPaths.LogPath()
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		return f.Close()
	})
}

// probeService reports whether anything answers at the upload endpoint
func probeService(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, doctorProbeTimeout)
	defer cancel()

	if err := httpUploader.Ping(ctx); err != nil {
		return fmt.Errorf("unreachable: %w", err)
	}
	return nil
}

// checkStep runs a check function and prints the result nicely
func checkStep(name string, check func() error) {
	err := check()
	if err == nil {
		fmt.Printf("%s %s\n", ui.StyleSuccess.Render(ui.IconSuccess), name)
	} else {
		fmt.Printf("%s %s\n", ui.StyleError.Render(ui.IconError), name)
		fmt.Printf("    %s\n", ui.StyleMuted.Render(err.Error()))
	}
}
