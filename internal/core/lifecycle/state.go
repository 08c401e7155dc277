// Package lifecycle holds the upload lifecycle: a single sum-typed state,
// the events that drive it and a pure reducer that returns the side effects
// the caller has to run.
package lifecycle

import (
	"time"

	"github.com/kamal-hamza/imgdrop/internal/core/domain"
)

const (
	// GenericFailureMessage is shown for rejected uploads and malformed responses.
	GenericFailureMessage = "Please Try again, you may have invalid image."

	// DefaultRevealDelay is the minimum time the uploading view stays up
	// after the outcome is known.
	DefaultRevealDelay = 3 * time.Second

	// DefaultCopiedTTL is how long the "copied" banner stays visible.
	DefaultCopiedTTL = 6 * time.Second
)

// Phase names the four mutually exclusive views
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseUploading
	PhaseError
	PhaseSuccess
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseUploading:
		return "uploading"
	case PhaseError:
		return "error"
	case PhaseSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// State is one of Idle, Uploading, Failed or Succeeded.
type State interface {
	Phase() Phase
	isState()
}

// Idle is the drop-target state. It holds no file.
type Idle struct{}

// Uploading holds the file being sent. Outcome is set once the request has
// finished and the reveal delay is running.
type Uploading struct {
	File    domain.SelectedFile
	Attempt int
	Outcome *Outcome
}

// Failed is the terminal error state of an attempt.
type Failed struct {
	File    domain.SelectedFile
	Attempt int
	Message string
}

// Succeeded is the terminal success state of an attempt.
type Succeeded struct {
	File      domain.SelectedFile
	Attempt   int
	HostedURL string
}

// Outcome is the held result of a finished request
type Outcome struct {
	HostedURL string
	Message   string
	Failed    bool
}

func (Idle) Phase() Phase      { return PhaseIdle }
func (Uploading) Phase() Phase { return PhaseUploading }
func (Failed) Phase() Phase    { return PhaseError }
func (Succeeded) Phase() Phase { return PhaseSuccess }

func (Idle) isState()      {}
func (Uploading) isState() {}
func (Failed) isState()    {}
func (Succeeded) isState() {}

// Machine is the full state container: the lifecycle state, the batch that
// produced it and the independent "copied" flag.
type Machine struct {
	State  State
	Batch  domain.Batch
	Copied bool

	RevealDelay time.Duration
	CopiedTTL   time.Duration

	attempt int
	copySeq int
}

// New returns a Machine in the Idle state with the default delays
func New() Machine {
	return Machine{
		State:       Idle{},
		RevealDelay: DefaultRevealDelay,
		CopiedTTL:   DefaultCopiedTTL,
	}
}

// Phase returns the phase of the current state
func (m Machine) Phase() Phase {
	if m.State == nil {
		return PhaseIdle
	}
	return m.State.Phase()
}

// File returns the file carried by the current state, if any
func (m Machine) File() (domain.SelectedFile, bool) {
	switch s := m.State.(type) {
	case Uploading:
		return s.File, true
	case Failed:
		return s.File, true
	case Succeeded:
		return s.File, true
	default:
		return domain.SelectedFile{}, false
	}
}

// HostedURL returns the URL of a successful upload, or ""
func (m Machine) HostedURL() string {
	if s, ok := m.State.(Succeeded); ok {
		return s.HostedURL
	}
	return ""
}

// ErrorMessage returns the message of a failed upload, or ""
func (m Machine) ErrorMessage() string {
	if s, ok := m.State.(Failed); ok {
		return s.Message
	}
	return ""
}

// Attempt returns the number of the latest upload attempt
func (m Machine) Attempt() int {
	return m.attempt
}
