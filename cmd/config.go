package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/imgdrop/pkg/config"
	"github.com/kamal-hamza/imgdrop/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the imgdrop configuration file",
	Long: `Open the configuration file in $EDITOR, creating it with defaults first
if it does not exist yet.

Environment variables override the file: IMGDROP_BASE_URL (or
REACT_APP_BASE_URL), IMGDROP_UPLOAD_PATH, IMGDROP_REQUEST_TIMEOUT_SECONDS,
IMGDROP_DROP_DIR, IMGDROP_COLOR_THEME, IMGDROP_LOG_LEVEL, IMGDROP_LOG_FILE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := appPaths.ConfigPath

		// Ensure it exists
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Println(ui.FormatSuccess("Created default config"))
		}

		fmt.Println(ui.FormatInfo("Opening config: " + path))

		c := exec.Command(GetPreferredEditor(), path)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appPaths.ConfigPath)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(ui.RenderKeyValue("Config File", appPaths.ConfigPath))
		fmt.Println(ui.RenderKeyValue("Base URL", appConfig.BaseURL))
		fmt.Println(ui.RenderKeyValue("Upload Endpoint", httpUploader.Endpoint()))
		fmt.Println(ui.RenderKeyValue("Request Timeout", appConfig.RequestTimeout().String()))
		fmt.Println(ui.RenderKeyValue("Watch Drop Folder", fmt.Sprintf("%v", appConfig.WatchDrop)))
		if appConfig.DropDir != "" {
			fmt.Println(ui.RenderKeyValue("Drop Folder", appConfig.DropDir))
		}
		fmt.Println(ui.RenderKeyValue("Color Theme", appConfig.ColorTheme))
		fmt.Println(ui.RenderKeyValue("Log Level", appConfig.LogLevel))
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
}
