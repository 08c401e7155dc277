package lifecycle

import (
	"time"

	"github.com/kamal-hamza/imgdrop/internal/core/domain"
)

// Event is an input to Reduce
type Event interface{ isEvent() }

// FileSelected starts a new attempt with the primary file of the batch.
// A selection made while an attempt is still running cancels and replaces it.
type FileSelected struct{ Batch domain.Batch }

// UploadSucceeded reports a 2xx response with a parsed body.
type UploadSucceeded struct {
	Attempt   int
	HostedURL string
}

// UploadFailed reports any failure; Message is what the user sees.
type UploadFailed struct {
	Attempt int
	Message string
}

// DelayElapsed fires once the reveal delay of an attempt is over.
type DelayElapsed struct{ Attempt int }

// ResetRequested returns to Idle from any state.
type ResetRequested struct{}

// CopyRequested asks for the hosted URL to be copied.
type CopyRequested struct{}

// CopySucceeded reports the clipboard write went through.
type CopySucceeded struct{}

// CopyDismissed hides the copied banner.
type CopyDismissed struct{}

// CopyExpired fires when the banner of copy Seq times out.
type CopyExpired struct{ Seq int }

func (FileSelected) isEvent()    {}
func (UploadSucceeded) isEvent() {}
func (UploadFailed) isEvent()    {}
func (DelayElapsed) isEvent()    {}
func (ResetRequested) isEvent()  {}
func (CopyRequested) isEvent()   {}
func (CopySucceeded) isEvent()   {}
func (CopyDismissed) isEvent()   {}
func (CopyExpired) isEvent()     {}

// Effect is a side effect requested by Reduce
type Effect interface{ isEffect() }

// StartUpload sends exactly one request for the file.
type StartUpload struct {
	Attempt int
	File    domain.SelectedFile
}

// CancelUpload aborts the in-flight request of an attempt.
type CancelUpload struct{ Attempt int }

// ScheduleReveal arms the one-shot display delay of an attempt.
type ScheduleReveal struct {
	Attempt int
	After   time.Duration
}

// RevokePreviews releases preview references that are no longer shown.
type RevokePreviews struct{ Refs []domain.PreviewRef }

// CopyToClipboard writes Text to the system clipboard.
type CopyToClipboard struct{ Text string }

// ScheduleCopyExpiry arms the auto-clear of the copied banner.
type ScheduleCopyExpiry struct {
	Seq   int
	After time.Duration
}

func (StartUpload) isEffect()        {}
func (CancelUpload) isEffect()       {}
func (ScheduleReveal) isEffect()     {}
func (RevokePreviews) isEffect()     {}
func (CopyToClipboard) isEffect()    {}
func (ScheduleCopyExpiry) isEffect() {}

// Reduce applies ev to m. It never performs I/O; everything observable is
// returned as effects, in the order they should run.
func Reduce(m Machine, ev Event) (Machine, []Effect) {
	if m.State == nil {
		m.State = Idle{}
	}

	switch ev := ev.(type) {
	case FileSelected:
		return selectFile(m, ev.Batch)

	case UploadSucceeded:
		return hold(m, ev.Attempt, Outcome{HostedURL: ev.HostedURL})

	case UploadFailed:
		return hold(m, ev.Attempt, Outcome{Message: ev.Message, Failed: true})

	case DelayElapsed:
		up, ok := m.State.(Uploading)
		if !ok || up.Attempt != ev.Attempt || up.Outcome == nil {
			return m, nil
		}
		if up.Outcome.Failed {
			m.State = Failed{File: up.File, Attempt: up.Attempt, Message: up.Outcome.Message}
		} else {
			m.State = Succeeded{File: up.File, Attempt: up.Attempt, HostedURL: up.Outcome.HostedURL}
		}
		return m, nil

	case ResetRequested:
		return reset(m)

	case CopyRequested:
		s, ok := m.State.(Succeeded)
		if !ok {
			return m, nil
		}
		return m, []Effect{CopyToClipboard{Text: s.HostedURL}}

	case CopySucceeded:
		if _, ok := m.State.(Succeeded); !ok {
			return m, nil
		}
		m.copySeq++
		m.Copied = true
		return m, []Effect{ScheduleCopyExpiry{Seq: m.copySeq, After: m.CopiedTTL}}

	case CopyDismissed:
		m.Copied = false
		return m, nil

	case CopyExpired:
		if ev.Seq == m.copySeq {
			m.Copied = false
		}
		return m, nil
	}

	return m, nil
}

func selectFile(m Machine, batch domain.Batch) (Machine, []Effect) {
	file, ok := batch.Primary()
	if !ok {
		return m, nil
	}

	var effects []Effect
	if up, ok := m.State.(Uploading); ok && up.Outcome == nil {
		effects = append(effects, CancelUpload{Attempt: up.Attempt})
	}
	if old := m.Batch.Previews(); len(old) > 0 {
		effects = append(effects, RevokePreviews{Refs: old})
	}

	m.attempt++
	m.Batch = batch
	m.Copied = false
	m.State = Uploading{File: file, Attempt: m.attempt}

	effects = append(effects, StartUpload{Attempt: m.attempt, File: file})
	return m, effects
}

// hold parks the outcome of the current attempt and starts the reveal delay.
// Outcomes of superseded attempts are dropped.
func hold(m Machine, attempt int, out Outcome) (Machine, []Effect) {
	up, ok := m.State.(Uploading)
	if !ok || up.Attempt != attempt || up.Outcome != nil {
		return m, nil
	}
	up.Outcome = &out
	m.State = up
	return m, []Effect{ScheduleReveal{Attempt: attempt, After: m.RevealDelay}}
}

func reset(m Machine) (Machine, []Effect) {
	var effects []Effect
	if up, ok := m.State.(Uploading); ok && up.Outcome == nil {
		effects = append(effects, CancelUpload{Attempt: up.Attempt})
	}
	if refs := m.Batch.Previews(); len(refs) > 0 {
		effects = append(effects, RevokePreviews{Refs: refs})
	}

	m.State = Idle{}
	m.Batch = domain.Batch{}
	m.Copied = false
	return m, effects
}
