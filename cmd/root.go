package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/imgdrop/internal/adapters/clipboard"
	"github.com/kamal-hamza/imgdrop/internal/adapters/preview"
	"github.com/kamal-hamza/imgdrop/internal/adapters/uploader"
	"github.com/kamal-hamza/imgdrop/internal/core/services"
	"github.com/kamal-hamza/imgdrop/pkg/config"
	"github.com/kamal-hamza/imgdrop/pkg/logging"
	"github.com/kamal-hamza/imgdrop/pkg/paths"
	"github.com/kamal-hamza/imgdrop/pkg/ui"
)

var (
	// Global paths and configuration
	appPaths  *paths.Paths
	appConfig *config.Config

	// Services
	uploadService    *services.UploadService
	selectionService *services.SelectionService

	// Adapters
	httpUploader    *uploader.HTTPUploader
	previewRegistry *preview.Registry
	systemClipboard *clipboard.SystemClipboard

	logCloser io.Closer

	// Flags
	flagBaseURL string
	flagDropDir string
	flagWatch   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "imgdrop [files...]",
	Short: "imgdrop - drop an image, get a URL",
	Long: ui.StyleTitle.Render("imgdrop") + " - Terminal Image Uploader\n\n" +
		"Drag an image onto the terminal (or paste its path), pick one with the\n" +
		"fuzzy finder, or drop it into a watched folder. imgdrop uploads it and\n" +
		"shows the hosted URL, ready to copy.\n\n" +
		"Files given as arguments are treated as an initial drop.",
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
	RunE:               runDropzone,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Upload service base URL (overrides config)")
	rootCmd.Flags().StringVar(&flagDropDir, "drop-dir", "", "Folder to watch for dropped images")
	rootCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "Watch the configured drop folder")
}

// initializeApp loads configuration and wires the adapters into the services
func initializeApp(cmd *cobra.Command, args []string) error {
	// Version needs nothing
	if cmd.Name() == "version" {
		return nil
	}

	p, err := paths.New()
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := p.Initialize(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	appPaths = p

	cfg, err := config.LoadWithEnv(appPaths.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	appConfig = cfg

	ui.SetTheme(appConfig.ColorTheme)

	logPath := appConfig.LogFile
	if logPath == "" {
		logPath = appPaths.LogPath()
	}
	closer, err := logging.Setup(logPath, appConfig.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	logCloser = closer

	// Initialize adapters
	previewRegistry = preview.NewRegistry()
	httpUploader = uploader.NewHTTPUploader(appConfig.BaseURL, appConfig.UploadPath, appConfig.RequestTimeout())
	systemClipboard = clipboard.NewSystemClipboard()

	// Initialize services
	uploadService = services.NewUploadService(httpUploader, appConfig.BaseURL)
	selectionService = services.NewSelectionService(previewRegistry)

	slog.Info("app_initialized",
		"command", cmd.Name(),
		"endpoint", httpUploader.Endpoint(),
		"config", appPaths.ConfigPath,
	)
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagDropDir != "" {
		cfg.DropDir = flagDropDir
		cfg.WatchDrop = true
	}
	if f := cmd.Flags().Lookup("watch"); f != nil && f.Changed {
		cfg.WatchDrop = flagWatch
	}
}

func shutdownApp(cmd *cobra.Command, args []string) error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return err
}

// getContext returns a context for operations
func getContext() context.Context {
	return context.Background()
}
