package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/imgdrop/internal/core/services"
	"github.com/kamal-hamza/imgdrop/pkg/ui"
)

var uploadCopy bool

var uploadCmd = &cobra.Command{
	Use:     "upload <file> [files...]",
	Aliases: []string{"up"},
	Short:   "Upload an image and print its URL (alias: up)",
	Long: `Upload an image without the interactive view and print the hosted URL.

When several files are given they are checked like a drop: non-images are
skipped and only the first image is uploaded.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return uploadPaths(getContext(), args, uploadCopy)
	},
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadCopy, "copy", "c", false, "Copy the hosted URL to the clipboard")
}

// uploadPaths selects paths like a drop and uploads the first image
func uploadPaths(ctx context.Context, paths []string, copyURL bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	sel, err := selectionService.Execute(ctx, services.SelectRequest{Paths: paths})
	if err != nil {
		return fmt.Errorf("failed to read files: %w", err)
	}
	defer previewRegistry.Revoke(sel.Batch.Previews()...)

	file, ok := sel.Batch.Primary()
	if !ok {
		fmt.Println(selectionTable(sel).Render())
		return fmt.Errorf("no image to upload")
	}

	fmt.Println(ui.FormatRocket(fmt.Sprintf("Uploading %s (%s)...",
		ui.StyleBold.Render(file.Name), ui.FormatBytes(file.Size()))))

	resp, err := uploadService.Execute(ctx, services.UploadRequest{File: file})
	if err != nil {
		if services.IsCancelled(err) || errors.Is(err, context.Canceled) {
			fmt.Println(ui.FormatWarning("Upload cancelled"))
			return nil
		}
		fmt.Println(ui.FormatError(services.UserMessage(err)))
		return fmt.Errorf("upload failed")
	}

	if len(paths) > 1 {
		fmt.Println()
		fmt.Println(selectionTable(sel).Render())
		fmt.Println()
	}

	fmt.Println(ui.FormatSuccess("Uploaded Successfully!"))
	fmt.Println(resp.HostedURL)

	if copyURL {
		if err := systemClipboard.WriteText(resp.HostedURL); err != nil {
			fmt.Println(ui.FormatWarning("Could not copy: " + err.Error()))
		} else {
			fmt.Println(ui.FormatMuted(ui.IconCopy + " Copied to clipboard"))
		}
	}

	return nil
}

// selectionTable summarises which files of a drop were uploaded or skipped
func selectionTable(sel *services.SelectResponse) *ui.Table {
	table := ui.NewTable(
		ui.Column{Header: "FILE", Width: 20},
		ui.Column{Header: "TYPE", Width: 10},
		ui.Column{Header: "SIZE", Width: 8, Right: true},
		ui.Column{Header: "STATUS", Width: 12},
	)

	for i, f := range sel.Batch.Files {
		if i == 0 {
			table.AddRow(f.Name, f.ContentType, ui.FormatBytes(f.Size()), "uploaded")
			continue
		}
		table.AddStyledRow(ui.StyleMuted, f.Name, f.ContentType, ui.FormatBytes(f.Size()), "preview only")
	}
	for _, r := range sel.Rejected {
		table.AddStyledRow(ui.StyleWarning, baseName(r.Path), "-", "-", "skipped: "+r.Reason)
	}

	return table
}
