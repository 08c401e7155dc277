package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/imgdrop/internal/adapters/preview"
	"github.com/kamal-hamza/imgdrop/internal/core/domain"
	"github.com/kamal-hamza/imgdrop/internal/core/lifecycle"
	"github.com/kamal-hamza/imgdrop/internal/core/ports"
	"github.com/kamal-hamza/imgdrop/internal/core/services"
	"github.com/kamal-hamza/imgdrop/pkg/droppath"
	"github.com/kamal-hamza/imgdrop/pkg/ui"
)

const defaultStatusTTL = 3 * time.Second

func runDropzone(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(getContext())
	defer cancel()

	m := newDropzoneModel(ctx, dropzoneDeps{
		Uploads:        uploadService,
		Selection:      selectionService,
		Clipboard:      systemClipboard,
		Previews:       previewRegistry,
		BrowseRoot:     appConfig.BrowseRoot,
		ThumbnailWidth: appConfig.ThumbnailWidth,
	}, args)

	var watchDir string
	if appConfig.WatchDrop {
		watchDir = appConfig.DropDir
		if watchDir == "" {
			watchDir = appPaths.DropDir
		}
		if err := os.MkdirAll(watchDir, 0755); err != nil {
			return fmt.Errorf("failed to create drop folder: %w", err)
		}
		m.watchDir = watchDir
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	if watchDir != "" {
		go func() {
			if err := newDropWatcher(watchDir).Run(ctx, p.Send); err != nil {
				slog.Error("drop_watch_failed", "dir", watchDir, "error", err)
				p.Send(statusMsg{message: ui.FormatError("Drop folder: " + err.Error()), style: ui.StyleError})
			}
		}()
	}

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running dropzone: %w", err)
	}
	if fm, ok := final.(dropzoneModel); ok {
		fm.release()
	}

	return nil
}

// dropzoneDeps are the collaborators of the dropzone model
type dropzoneDeps struct {
	Uploads        *services.UploadService
	Selection      *services.SelectionService
	Clipboard      ports.Clipboard
	Previews       ports.PreviewStore
	BrowseRoot     string
	ThumbnailWidth int
}

// Dropzone model
type dropzoneModel struct {
	ctx     context.Context
	deps    dropzoneDeps
	machine lifecycle.Machine
	initial []string

	// In-flight requests by attempt
	cancels map[int]context.CancelFunc
	sent    int64
	total   int64

	renderer *preview.Renderer
	showQR   bool

	watchDir string

	spinner  spinner.Model
	progress progress.Model
	help     help.Model
	keys     dropzoneKeyMap
	width    int
	height   int

	message       string // Status message
	messageStyle  lipgloss.Style
	messageExpiry time.Time
	statusTTL     time.Duration

	quitting bool
}

// Key bindings
type dropzoneKeyMap struct {
	Browse  key.Binding
	Copy    key.Binding
	Dismiss key.Binding
	Open    key.Binding
	QR      key.Binding
	Reset   key.Binding
	Cancel  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k dropzoneKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Browse, k.Copy, k.Dismiss, k.Open, k.QR, k.Reset, k.Cancel, k.Help, k.Quit}
}

func (k dropzoneKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Browse, k.Reset, k.Cancel},
		{k.Copy, k.Dismiss, k.Open, k.QR},
		{k.Help, k.Quit},
	}
}

// forPhase enables only the bindings that do something in phase
func (k dropzoneKeyMap) forPhase(phase lifecycle.Phase, copied bool) dropzoneKeyMap {
	k.Copy.SetEnabled(phase == lifecycle.PhaseSuccess)
	k.Open.SetEnabled(phase == lifecycle.PhaseSuccess)
	k.QR.SetEnabled(phase == lifecycle.PhaseSuccess)
	k.Dismiss.SetEnabled(phase == lifecycle.PhaseSuccess && copied)
	k.Reset.SetEnabled(phase == lifecycle.PhaseError || phase == lifecycle.PhaseSuccess)
	k.Cancel.SetEnabled(phase != lifecycle.PhaseIdle)
	return k
}

var dropzoneKeys = dropzoneKeyMap{
	Browse: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "choose a file"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c", "y"),
		key.WithHelp("c", "copy URL"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "dismiss"),
	),
	Open: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "open in browser"),
	),
	QR: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "QR code"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r", "enter"),
		key.WithHelp("enter", "upload another"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func newDropzoneModel(ctx context.Context, deps dropzoneDeps, initial []string) dropzoneModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.StylePrimary

	if deps.ThumbnailWidth <= 0 {
		deps.ThumbnailWidth = 32
	}

	return dropzoneModel{
		ctx:       ctx,
		deps:      deps,
		machine:   lifecycle.New(),
		initial:   initial,
		cancels:   make(map[int]context.CancelFunc),
		renderer:  preview.NewRenderer(deps.Previews, 0),
		spinner:   s,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:      help.New(),
		keys:      dropzoneKeys,
		statusTTL: defaultStatusTTL,
	}
}

// Messages
type pathsDroppedMsg struct {
	paths  []string
	source string
}

type selectionMsg struct {
	resp   *services.SelectResponse
	err    error
	source string
}

type uploadProgressMsg struct {
	attempt int
	sent    int64
	total   int64
	events  <-chan tea.Msg
}

type uploadDoneMsg struct {
	attempt int
	resp    *services.UploadResponse
	err     error
}

type revealMsg struct{ attempt int }

type clipboardResultMsg struct{ err error }

type copyExpiredMsg struct{ seq int }

type browseClosedMsg struct {
	paths []string
	err   error
}

type statusMsg struct {
	message string
	style   lipgloss.Style
}

type clearMessageMsg struct{}

func (m dropzoneModel) Init() tea.Cmd {
	if len(m.initial) > 0 {
		return tea.Batch(m.spinner.Tick, m.selectPaths(m.initial, "args"))
	}
	return m.spinner.Tick
}

func (m dropzoneModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width-12, 10), 60)
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pathsDroppedMsg:
		return m, m.selectPaths(msg.paths, msg.source)

	case selectionMsg:
		return m.applySelection(msg)

	case uploadProgressMsg:
		if msg.attempt == m.machine.Attempt() {
			m.sent, m.total = msg.sent, msg.total
		}
		return m, waitForUpload(msg.events)

	case uploadDoneMsg:
		return m.finishUpload(msg)

	case revealMsg:
		return m.dispatch(lifecycle.DelayElapsed{Attempt: msg.attempt})

	case clipboardResultMsg:
		if msg.err != nil {
			slog.Warn("clipboard_write_failed", "error", msg.err)
			cmd := m.setStatus(
				ui.FormatWarning("Could not copy ("+msg.err.Error()+"), copy the URL manually"),
				ui.StyleWarning,
			)
			return m, cmd
		}
		slog.Info("url_copied", "url", m.machine.HostedURL())
		return m.dispatch(lifecycle.CopySucceeded{})

	case copyExpiredMsg:
		return m.dispatch(lifecycle.CopyExpired{Seq: msg.seq})

	case browseClosedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, fuzzyfinder.ErrAbort) {
				return m, nil
			}
			cmd := m.setStatus(ui.FormatError(msg.err.Error()), ui.StyleError)
			return m, cmd
		}
		if len(msg.paths) == 0 {
			return m, nil
		}
		return m, m.selectPaths(msg.paths, "browse")

	case statusMsg:
		cmd := m.setStatus(msg.message, msg.style)
		return m, cmd

	case clearMessageMsg:
		if !time.Now().Before(m.messageExpiry) {
			m.message = ""
		}
		return m, nil
	}

	return m, nil
}

func (m dropzoneModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Terminals deliver a drag-and-drop as pasted text
	if msg.Paste || (msg.Type == tea.KeyRunes && len(msg.Runes) > 1) {
		paths := droppath.Parse(string(msg.Runes))
		if len(paths) == 0 {
			return m, nil
		}
		return m, m.selectPaths(paths, "drop")
	}

	keys := m.keys.forPhase(m.machine.Phase(), m.machine.Copied)

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		m.release()
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, keys.Browse):
		return m, m.browse()

	case key.Matches(msg, keys.Copy):
		return m.dispatch(lifecycle.CopyRequested{})

	case key.Matches(msg, keys.Dismiss):
		return m.dispatch(lifecycle.CopyDismissed{})

	case key.Matches(msg, keys.Open):
		url := m.machine.HostedURL()
		return m, func() tea.Msg {
			if err := OpenURL(url); err != nil {
				return statusMsg{message: ui.FormatError(err.Error()), style: ui.StyleError}
			}
			return nil
		}

	case key.Matches(msg, keys.QR):
		m.showQR = !m.showQR

	case key.Matches(msg, keys.Reset), key.Matches(msg, keys.Cancel):
		return m.dispatch(lifecycle.ResetRequested{})
	}

	return m, nil
}

// dispatch runs ev through the reducer and turns its effects into commands
func (m dropzoneModel) dispatch(ev lifecycle.Event) (dropzoneModel, tea.Cmd) {
	before := m.machine.Phase()

	next, effects := lifecycle.Reduce(m.machine, ev)
	m.machine = next
	cmd := m.runEffects(effects)

	if after := m.machine.Phase(); after != before {
		m.showQR = false
		slog.Debug("state_changed",
			"from", before.String(),
			"to", after.String(),
			"attempt", m.machine.Attempt(),
		)
	}

	return m, cmd
}

func (m *dropzoneModel) runEffects(effects []lifecycle.Effect) tea.Cmd {
	var cmds []tea.Cmd

	for _, eff := range effects {
		switch e := eff.(type) {
		case lifecycle.CancelUpload:
			if cancel, ok := m.cancels[e.Attempt]; ok {
				cancel()
				delete(m.cancels, e.Attempt)
				slog.Info("upload_superseded", "attempt", e.Attempt)
			}

		case lifecycle.RevokePreviews:
			m.deps.Previews.Revoke(e.Refs...)
			m.renderer.Forget(e.Refs...)

		case lifecycle.StartUpload:
			m.sent, m.total = 0, e.File.Size()
			cmds = append(cmds, m.startUpload(e.Attempt, e.File))

		case lifecycle.ScheduleReveal:
			attempt := e.Attempt
			cmds = append(cmds, tea.Tick(e.After, func(time.Time) tea.Msg {
				return revealMsg{attempt: attempt}
			}))

		case lifecycle.CopyToClipboard:
			clip, text := m.deps.Clipboard, e.Text
			cmds = append(cmds, func() tea.Msg {
				return clipboardResultMsg{err: clip.WriteText(text)}
			})

		case lifecycle.ScheduleCopyExpiry:
			seq := e.Seq
			cmds = append(cmds, tea.Tick(e.After, func(time.Time) tea.Msg {
				return copyExpiredMsg{seq: seq}
			}))
		}
	}

	return tea.Batch(cmds...)
}

// startUpload registers a cancel func for attempt and returns a command
// that runs the request, streaming progress and the final result.
func (m *dropzoneModel) startUpload(attempt int, file domain.SelectedFile) tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancels[attempt] = cancel

	uploads := m.deps.Uploads
	events := make(chan tea.Msg, 8)

	return func() tea.Msg {
		go func() {
			defer close(events)

			resp, err := uploads.Execute(ctx, services.UploadRequest{
				File: file,
				Progress: func(sent, total int64) {
					// Progress is best effort; drop updates the UI has not caught up with
					select {
					case events <- uploadProgressMsg{attempt: attempt, sent: sent, total: total, events: events}:
					default:
					}
				},
			})
			events <- uploadDoneMsg{attempt: attempt, resp: resp, err: err}
		}()

		return waitForUpload(events)()
	}
}

func waitForUpload(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (m dropzoneModel) finishUpload(msg uploadDoneMsg) (tea.Model, tea.Cmd) {
	if cancel, ok := m.cancels[msg.attempt]; ok {
		cancel()
		delete(m.cancels, msg.attempt)
	}

	if msg.err != nil {
		if services.IsCancelled(msg.err) {
			slog.Debug("upload_result_dropped", "attempt", msg.attempt)
			return m, nil
		}
		return m.dispatch(lifecycle.UploadFailed{
			Attempt: msg.attempt,
			Message: services.UserMessage(msg.err),
		})
	}

	if m.total > 0 && msg.attempt == m.machine.Attempt() {
		m.sent = m.total
	}
	return m.dispatch(lifecycle.UploadSucceeded{
		Attempt:   msg.attempt,
		HostedURL: msg.resp.HostedURL,
	})
}

func (m dropzoneModel) selectPaths(paths []string, source string) tea.Cmd {
	ctx, selection := m.ctx, m.deps.Selection
	return func() tea.Msg {
		resp, err := selection.Execute(ctx, services.SelectRequest{Paths: paths})
		return selectionMsg{resp: resp, err: err, source: source}
	}
}

func (m dropzoneModel) applySelection(msg selectionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		cmd := m.setStatus(ui.FormatError("Failed to read files: "+msg.err.Error()), ui.StyleError)
		return m, cmd
	}

	slog.Info("selection_received",
		"source", msg.source,
		"accepted", msg.resp.Batch.Len(),
		"rejected", len(msg.resp.Rejected),
	)

	var cmds []tea.Cmd
	if len(msg.resp.Rejected) > 0 {
		cmds = append(cmds, m.setStatus(ui.FormatWarning(describeRejected(msg.resp.Rejected)), ui.StyleWarning))
	}

	if msg.resp.Batch.Len() == 0 {
		return m, tea.Batch(cmds...)
	}

	next, cmd := m.dispatch(lifecycle.FileSelected{Batch: msg.resp.Batch})
	cmds = append(cmds, cmd)
	return next, tea.Batch(cmds...)
}

func describeRejected(rejected []services.RejectedFile) string {
	first := rejected[0]
	msg := fmt.Sprintf("Skipped %s (%s)", baseName(first.Path), first.Reason)
	if len(rejected) > 1 {
		msg += fmt.Sprintf(" and %d more", len(rejected)-1)
	}
	return msg
}

func (m *dropzoneModel) setStatus(message string, style lipgloss.Style) tea.Cmd {
	m.message = message
	m.messageStyle = style
	m.messageExpiry = time.Now().Add(m.statusTTL)
	return tea.Tick(m.statusTTL, func(time.Time) tea.Msg { return clearMessageMsg{} })
}

func (m dropzoneModel) browse() tea.Cmd {
	picker := newImagePicker(m.deps.BrowseRoot)
	return tea.Exec(picker, func(err error) tea.Msg {
		return browseClosedMsg{paths: picker.selected, err: err}
	})
}

// release cancels in-flight uploads and revokes every preview still held
func (m dropzoneModel) release() {
	for attempt, cancel := range m.cancels {
		cancel()
		delete(m.cancels, attempt)
	}
	if refs := m.machine.Batch.Previews(); len(refs) > 0 {
		m.deps.Previews.Revoke(refs...)
		m.renderer.Forget(refs...)
	}
}

func (m dropzoneModel) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch s := m.machine.State.(type) {
	case lifecycle.Failed:
		body = m.viewError(s)
	case lifecycle.Uploading:
		body = m.viewUploading(s)
	case lifecycle.Succeeded:
		body = m.viewSuccess(s)
	default:
		body = m.viewIdle()
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n")

	if m.message != "" {
		b.WriteString(m.messageStyle.Render(m.message))
		b.WriteString("\n\n")
	}

	b.WriteString(m.help.View(m.keys.forPhase(m.machine.Phase(), m.machine.Copied)))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m dropzoneModel) viewIdle() string {
	var b strings.Builder

	b.WriteString(ui.StyleTitle.Render("Upload your image"))
	b.WriteString("\n")
	b.WriteString(ui.StyleMuted.Render("File should be Jpeg, Png,..."))
	b.WriteString("\n\n")

	// The border lights up while a drop folder is watched
	target := ui.IconImage + "\n\n" + "Drag & Drop your image here"
	zone := ui.StyleDropTarget
	if m.watchDir != "" {
		zone = ui.StyleDropActive
	}
	b.WriteString(zone.Render(target))
	b.WriteString("\n\n")

	b.WriteString(ui.StyleSubtle.Render("Or"))
	b.WriteString("\n\n")
	b.WriteString(ui.StyleAccent.Render("Choose a file") + ui.StyleMuted.Render("  (press o)"))

	if m.watchDir != "" {
		b.WriteString("\n\n")
		b.WriteString(ui.FormatMuted("Watching " + m.watchDir))
	}

	return b.String()
}

func (m dropzoneModel) viewUploading(s lifecycle.Uploading) string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(ui.StyleHeader.Render("Uploading..."))
	b.WriteString("\n\n")

	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.sent) / float64(m.total)
	}
	if s.Outcome != nil {
		ratio = 1
	}
	b.WriteString(m.progress.ViewAs(min(ratio, 1)))
	b.WriteString("\n")
	b.WriteString(ui.StyleMuted.Render(fmt.Sprintf("%s  %s / %s",
		s.File.Name, ui.FormatBytes(min(m.sent, m.total)), ui.FormatBytes(m.total))))
	b.WriteString("\n\n")

	b.WriteString(m.viewThumbnail())
	b.WriteString(m.viewBatchNote())

	return b.String()
}

func (m dropzoneModel) viewError(s lifecycle.Failed) string {
	var b strings.Builder

	b.WriteString(ui.FormatError("Upload failed"))
	b.WriteString("\n\n")
	b.WriteString(ui.StyleCard.Render(s.Message))
	b.WriteString("\n\n")
	b.WriteString(ui.StyleMuted.Render(s.File.Name))
	b.WriteString("\n")
	b.WriteString(ui.StyleAccent.Render("Try again") + ui.StyleMuted.Render("  (press enter)"))

	return b.String()
}

func (m dropzoneModel) viewSuccess(s lifecycle.Succeeded) string {
	var b strings.Builder

	b.WriteString(ui.FormatSuccess("Uploaded Successfully!"))
	b.WriteString("\n\n")

	b.WriteString(m.viewThumbnail())

	link := ui.IconLink + " " + ui.StyleURL.Render(s.HostedURL)
	b.WriteString(ui.StyleCard.Render(link))
	b.WriteString("\n")

	if m.showQR {
		b.WriteString(m.viewQRCode(s.HostedURL))
	}

	if m.machine.Copied {
		b.WriteString(ui.StyleBanner.Render(ui.IconCopy + " Copied!"))
		b.WriteString(ui.StyleMuted.Render("  (x to dismiss)"))
	} else {
		b.WriteString(ui.StyleMuted.Render("Press c to copy the link"))
	}
	b.WriteString(m.viewBatchNote())

	return b.String()
}

func (m dropzoneModel) viewThumbnail() string {
	file, ok := m.machine.File()
	if !ok {
		return ""
	}

	width := m.thumbnailWidth()
	thumb, err := m.renderer.Thumbnail(file.Preview, width, max(width/2, 4))
	if err != nil {
		slog.Debug("thumbnail_unavailable", "file", file.Name, "error", err)
		return ui.FormatMuted("no preview for "+file.ContentType) + "\n\n"
	}
	return thumb + "\n\n"
}

// thumbnailWidth shrinks the configured width to fit narrow terminals
func (m dropzoneModel) thumbnailWidth() int {
	width := m.deps.ThumbnailWidth
	if m.width > 0 {
		width = min(width, max(m.width-8, 8))
	}
	return width
}

func (m dropzoneModel) viewQRCode(url string) string {
	qr, err := m.renderer.QRCode(url)
	if err != nil {
		return ui.FormatMuted(err.Error()) + "\n"
	}
	return "\n" + qr + "\n"
}

// viewBatchNote tells the user that only the first file of a drop is sent
func (m dropzoneModel) viewBatchNote() string {
	extra := m.machine.Batch.Len() - 1
	if extra <= 0 {
		return ""
	}
	noun := "file"
	if extra > 1 {
		noun = "files"
	}
	return "\n" + ui.FormatMuted(fmt.Sprintf("+%d more %s previewed, only the first is uploaded", extra, noun))
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 && i < len(path)-1 {
		return path[i+1:]
	}
	return path
}
