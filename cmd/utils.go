package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// GetPreferredEditor returns the editor command from env or default
func GetPreferredEditor() string {
	if env := os.Getenv("VISUAL"); env != "" {
		return env
	}
	if env := os.Getenv("EDITOR"); env != "" {
		return env
	}
	return "vi"
}

// openerCommand returns the OS default opener for a file or URL
func openerCommand(target string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", target)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return exec.Command("xdg-open", target)
	}
}

// OpenURL opens target in the default browser or viewer.
func OpenURL(target string) error {
	cmd := openerCommand(target)

	// Start() detaches so the dropzone keeps running while the browser is open
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open '%s': %w", target, err)
	}
	go func() { _ = cmd.Wait() }()

	return nil
}
