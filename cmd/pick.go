package cmd

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/imgdrop/pkg/ui"
)

// maxPickerFiles bounds the walk so a picker rooted at $HOME stays responsive
const maxPickerFiles = 5000

var errNoImages = errors.New("no images found")

var pickCopy bool

var pickCmd = &cobra.Command{
	Use:   "pick [dir]",
	Short: "Choose an image with the fuzzy finder and upload it",
	Long: `Browse for images under a directory (the configured browse_root, or the
current directory) with a fuzzy finder, then upload the selection.

Use Tab to mark several files; only the first one is uploaded.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPick,
}

func init() {
	pickCmd.Flags().BoolVarP(&pickCopy, "copy", "c", false, "Copy the hosted URL to the clipboard")
}

func runPick(cmd *cobra.Command, args []string) error {
	root := appConfig.BrowseRoot
	if len(args) == 1 {
		root = args[0]
	}

	picker := newImagePicker(root)
	if err := picker.Run(); err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		if errors.Is(err, errNoImages) {
			fmt.Println(ui.FormatWarning("No images found under " + picker.dir()))
			return nil
		}
		return err
	}

	return uploadPaths(getContext(), picker.selected, pickCopy)
}

// imagePicker runs go-fuzzyfinder over the images below root. It satisfies
// tea.ExecCommand so the dropzone can hand it the terminal.
type imagePicker struct {
	root     string
	selected []string
}

func newImagePicker(root string) *imagePicker {
	return &imagePicker{root: root}
}

func (p *imagePicker) dir() string {
	if p.root != "" {
		return p.root
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// Run blocks until the user confirms or aborts the finder
func (p *imagePicker) Run() error {
	p.selected = nil
	root := p.dir()

	files, err := collectImages(root, maxPickerFiles)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", root, err)
	}
	if len(files) == 0 {
		return errNoImages
	}

	idxs, err := fuzzyfinder.FindMulti(
		files,
		func(i int) string {
			if rel, err := filepath.Rel(root, files[i]); err == nil {
				return rel
			}
			return files[i]
		},
		fuzzyfinder.WithHeader("Choose a file (tab to mark, enter to upload)"),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return describeImage(files[i])
		}),
	)
	if err != nil {
		return err
	}

	for _, i := range idxs {
		p.selected = append(p.selected, files[i])
	}
	return nil
}

// The finder opens the tty itself
func (p *imagePicker) SetStdin(io.Reader)  {}
func (p *imagePicker) SetStdout(io.Writer) {}
func (p *imagePicker) SetStderr(io.Writer) {}

// collectImages walks root and returns up to limit image files, skipping
// hidden files and directories.
func collectImages(root string, limit int) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			if path == root {
				return err
			}
			return nil
		}

		name := d.Name()
		if path != root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if isImageName(name) {
			files = append(files, path)
			if len(files) >= limit {
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

func isImageName(name string) bool {
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	return strings.HasPrefix(ct, "image/")
}

// describeImage renders the preview pane text for path
func describeImage(path string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", filepath.Base(path))

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(&b, "\n%v", err)
		return b.String()
	}
	fmt.Fprintf(&b, "Size: %s\n", ui.FormatBytes(info.Size()))
	fmt.Fprintf(&b, "Type: %s\n", mime.TypeByExtension(strings.ToLower(filepath.Ext(path))))

	f, err := os.Open(path)
	if err != nil {
		return b.String()
	}
	defer f.Close()

	if cfg, format, err := image.DecodeConfig(f); err == nil {
		fmt.Fprintf(&b, "Dimensions: %dx%d (%s)\n", cfg.Width, cfg.Height, format)
	}

	return b.String()
}
