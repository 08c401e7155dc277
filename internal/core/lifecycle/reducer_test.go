package lifecycle

import (
	"fmt"
	"testing"
	"time"

	"github.com/kamal-hamza/imgdrop/internal/core/domain"
)

func testBatch(names ...string) domain.Batch {
	var b domain.Batch
	for _, n := range names {
		b.Files = append(b.Files, domain.SelectedFile{
			Name:        n,
			Data:        []byte("data-" + n),
			ContentType: "image/png",
			Preview:     domain.PreviewRef("blob:imgdrop/" + n),
		})
	}
	return b
}

func findEffect[T Effect](effects []Effect) (T, bool) {
	for _, e := range effects {
		if v, ok := e.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func mustReduce(t *testing.T, m Machine, events ...Event) (Machine, []Effect) {
	t.Helper()
	var effects []Effect
	for _, ev := range events {
		m, effects = Reduce(m, ev)
	}
	return m, effects
}

func TestNew_StartsIdle(t *testing.T) {
	m := New()
	if m.Phase() != PhaseIdle {
		t.Errorf("expected idle, got %s", m.Phase())
	}
	if m.RevealDelay != 3*time.Second {
		t.Errorf("expected reveal delay 3s, got %v", m.RevealDelay)
	}
	if m.CopiedTTL != 6*time.Second {
		t.Errorf("expected copied ttl 6s, got %v", m.CopiedTTL)
	}
	if _, ok := m.File(); ok {
		t.Error("expected no file in idle")
	}
}

func TestFileSelected_StartsUpload(t *testing.T) {
	m, effects := Reduce(New(), FileSelected{Batch: testBatch("a.png")})

	up, ok := m.State.(Uploading)
	if !ok {
		t.Fatalf("expected Uploading, got %T", m.State)
	}
	if up.File.Name != "a.png" {
		t.Errorf("expected a.png to be carried forward, got %q", up.File.Name)
	}
	if up.Attempt != 1 {
		t.Errorf("expected attempt 1, got %d", up.Attempt)
	}

	start, ok := findEffect[StartUpload](effects)
	if !ok {
		t.Fatal("expected StartUpload effect")
	}
	if start.Attempt != 1 || start.File.Name != "a.png" {
		t.Errorf("unexpected StartUpload: %+v", start)
	}
}

func TestFileSelected_OnlyFirstFileUploaded(t *testing.T) {
	batch := testBatch("first.png", "second.png", "third.png")
	m, effects := Reduce(New(), FileSelected{Batch: batch})

	starts := 0
	for _, e := range effects {
		if s, ok := e.(StartUpload); ok {
			starts++
			if s.File.Name != "first.png" {
				t.Errorf("expected first.png uploaded, got %q", s.File.Name)
			}
		}
	}
	if starts != 1 {
		t.Errorf("expected exactly one StartUpload, got %d", starts)
	}

	if len(m.Batch.Previews()) != 3 {
		t.Errorf("expected all 3 previews kept, got %d", len(m.Batch.Previews()))
	}
}

func TestFileSelected_EmptyBatchIgnored(t *testing.T) {
	m, effects := Reduce(New(), FileSelected{})
	if m.Phase() != PhaseIdle {
		t.Errorf("expected idle, got %s", m.Phase())
	}
	if len(effects) != 0 {
		t.Errorf("expected no effects, got %v", effects)
	}
}

func TestUploadSucceeded_HeldUntilDelay(t *testing.T) {
	m, _ := Reduce(New(), FileSelected{Batch: testBatch("a.png")})

	m, effects := Reduce(m, UploadSucceeded{Attempt: 1, HostedURL: "http://host/uploads/a.png"})
	if m.Phase() != PhaseUploading {
		t.Fatalf("expected to stay uploading during delay, got %s", m.Phase())
	}

	reveal, ok := findEffect[ScheduleReveal](effects)
	if !ok {
		t.Fatal("expected ScheduleReveal effect")
	}
	if reveal.After != 3*time.Second {
		t.Errorf("expected delay 3s, got %v", reveal.After)
	}

	m, _ = Reduce(m, DelayElapsed{Attempt: 1})
	if m.Phase() != PhaseSuccess {
		t.Fatalf("expected success, got %s", m.Phase())
	}
	if m.HostedURL() != "http://host/uploads/a.png" {
		t.Errorf("unexpected hosted URL %q", m.HostedURL())
	}
	if f, ok := m.File(); !ok || f.Name != "a.png" {
		t.Error("expected success state to carry the file")
	}
}

func TestUploadFailed_Messages(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{"rejected", GenericFailureMessage},
		{"transport", `Post "http://localhost:1800/api/v1/upload": dial tcp [::1]:1800: connect: connection refused`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := mustReduce(t, New(),
				FileSelected{Batch: testBatch("a.png")},
				UploadFailed{Attempt: 1, Message: tt.message},
			)
			if m.Phase() != PhaseUploading {
				t.Fatalf("expected uploading while held, got %s", m.Phase())
			}

			m, _ = Reduce(m, DelayElapsed{Attempt: 1})
			if m.Phase() != PhaseError {
				t.Fatalf("expected error, got %s", m.Phase())
			}
			if m.ErrorMessage() != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, m.ErrorMessage())
			}
		})
	}
}

func TestDelayElapsed_WithoutOutcomeIgnored(t *testing.T) {
	m, _ := Reduce(New(), FileSelected{Batch: testBatch("a.png")})
	m, _ = Reduce(m, DelayElapsed{Attempt: 1})
	if m.Phase() != PhaseUploading {
		t.Errorf("expected uploading, got %s", m.Phase())
	}
}

func TestRevealFiresOnce(t *testing.T) {
	m, _ := mustReduce(t, New(),
		FileSelected{Batch: testBatch("a.png")},
		UploadSucceeded{Attempt: 1, HostedURL: "http://host/a.png"},
	)

	// A second outcome for the same attempt does not re-arm the delay
	_, effects := Reduce(m, UploadFailed{Attempt: 1, Message: "late"})
	if _, ok := findEffect[ScheduleReveal](effects); ok {
		t.Error("expected reveal to be scheduled only once per attempt")
	}
}

func TestReset_FromTerminalStates(t *testing.T) {
	terminal := map[string][]Event{
		"error": {
			FileSelected{Batch: testBatch("a.png", "b.png")},
			UploadFailed{Attempt: 1, Message: GenericFailureMessage},
			DelayElapsed{Attempt: 1},
		},
		"success": {
			FileSelected{Batch: testBatch("a.png", "b.png")},
			UploadSucceeded{Attempt: 1, HostedURL: "http://host/a.png"},
			DelayElapsed{Attempt: 1},
			CopySucceeded{},
		},
	}

	for name, events := range terminal {
		t.Run(name, func(t *testing.T) {
			m, _ := mustReduce(t, New(), events...)
			m, effects := Reduce(m, ResetRequested{})

			if m.Phase() != PhaseIdle {
				t.Fatalf("expected idle, got %s", m.Phase())
			}
			if _, ok := m.File(); ok {
				t.Error("expected no selected file")
			}
			if m.ErrorMessage() != "" || m.HostedURL() != "" {
				t.Error("expected error and hosted URL cleared")
			}
			if m.Copied {
				t.Error("expected copied flag cleared")
			}
			if m.Batch.Len() != 0 {
				t.Error("expected batch cleared")
			}

			revoke, ok := findEffect[RevokePreviews](effects)
			if !ok {
				t.Fatal("expected previews to be revoked")
			}
			if len(revoke.Refs) != 2 {
				t.Errorf("expected 2 revoked previews, got %d", len(revoke.Refs))
			}
			if _, ok := findEffect[CancelUpload](effects); ok {
				t.Error("no request in flight, nothing to cancel")
			}
		})
	}
}

func TestReset_WhileUploadingCancels(t *testing.T) {
	m, _ := Reduce(New(), FileSelected{Batch: testBatch("a.png")})
	m, effects := Reduce(m, ResetRequested{})

	cancel, ok := findEffect[CancelUpload](effects)
	if !ok || cancel.Attempt != 1 {
		t.Fatalf("expected CancelUpload for attempt 1, got %v", effects)
	}

	// The late result of the cancelled attempt is ignored
	m, effects = Reduce(m, UploadSucceeded{Attempt: 1, HostedURL: "http://host/a.png"})
	if m.Phase() != PhaseIdle || len(effects) != 0 {
		t.Errorf("expected stale result ignored, got %s with %v", m.Phase(), effects)
	}
}

func TestReset_DuringRevealDelay(t *testing.T) {
	m, _ := mustReduce(t, New(),
		FileSelected{Batch: testBatch("a.png")},
		UploadSucceeded{Attempt: 1, HostedURL: "http://host/a.png"},
		ResetRequested{},
		DelayElapsed{Attempt: 1},
	)
	if m.Phase() != PhaseIdle {
		t.Errorf("expected stale reveal to be ignored, got %s", m.Phase())
	}
}

func TestFileSelected_WhileUploadingReplaces(t *testing.T) {
	m, _ := Reduce(New(), FileSelected{Batch: testBatch("a.png")})
	m, effects := Reduce(m, FileSelected{Batch: testBatch("b.png")})

	if len(effects) < 3 {
		t.Fatalf("expected cancel, revoke and start effects, got %v", effects)
	}
	if c, ok := effects[0].(CancelUpload); !ok || c.Attempt != 1 {
		t.Errorf("expected first effect to cancel attempt 1, got %#v", effects[0])
	}
	if r, ok := findEffect[RevokePreviews](effects); !ok || r.Refs[0] != "blob:imgdrop/a.png" {
		t.Errorf("expected old preview revoked, got %v", effects)
	}
	if s, ok := findEffect[StartUpload](effects); !ok || s.Attempt != 2 {
		t.Errorf("expected StartUpload for attempt 2, got %v", effects)
	}

	// Old attempt resolves late: ignored
	m, _ = Reduce(m, UploadFailed{Attempt: 1, Message: "boom"})
	up, ok := m.State.(Uploading)
	if !ok || up.Outcome != nil || up.File.Name != "b.png" {
		t.Fatalf("expected attempt 2 untouched, got %#v", m.State)
	}

	m, _ = mustReduce(t, m,
		UploadSucceeded{Attempt: 2, HostedURL: "http://host/b.png"},
		DelayElapsed{Attempt: 2},
	)
	if m.HostedURL() != "http://host/b.png" {
		t.Errorf("expected b.png hosted URL, got %q", m.HostedURL())
	}
}

func TestFileSelected_FromSuccessStartsFresh(t *testing.T) {
	m, _ := mustReduce(t, New(),
		FileSelected{Batch: testBatch("a.png")},
		UploadSucceeded{Attempt: 1, HostedURL: "http://host/a.png"},
		DelayElapsed{Attempt: 1},
		CopySucceeded{},
	)

	m, effects := Reduce(m, FileSelected{Batch: testBatch("b.png")})
	if m.Phase() != PhaseUploading {
		t.Fatalf("expected uploading, got %s", m.Phase())
	}
	if m.Copied {
		t.Error("expected copied flag cleared by a new selection")
	}
	if _, ok := findEffect[CancelUpload](effects); ok {
		t.Error("nothing in flight, expected no cancel")
	}
}

func TestCopy_SetsAndExpires(t *testing.T) {
	m, _ := mustReduce(t, New(),
		FileSelected{Batch: testBatch("a.png")},
		UploadSucceeded{Attempt: 1, HostedURL: "http://host/a.png"},
		DelayElapsed{Attempt: 1},
	)

	m, effects := Reduce(m, CopyRequested{})
	write, ok := findEffect[CopyToClipboard](effects)
	if !ok {
		t.Fatal("expected CopyToClipboard effect")
	}
	if write.Text != "http://host/a.png" {
		t.Errorf("expected URL copied verbatim, got %q", write.Text)
	}
	if m.Copied {
		t.Error("flag must not be set before the clipboard write succeeds")
	}

	m, effects = Reduce(m, CopySucceeded{})
	if !m.Copied {
		t.Fatal("expected copied flag set")
	}
	expiry, ok := findEffect[ScheduleCopyExpiry](effects)
	if !ok {
		t.Fatal("expected ScheduleCopyExpiry effect")
	}
	if expiry.After != 6*time.Second {
		t.Errorf("expected ttl 6s, got %v", expiry.After)
	}
	if m.Phase() != PhaseSuccess {
		t.Error("copying must not change the lifecycle state")
	}

	m, _ = Reduce(m, CopyExpired{Seq: expiry.Seq})
	if m.Copied {
		t.Error("expected copied flag cleared after expiry")
	}
}

func TestCopy_OlderExpiryDoesNotClearNewerBanner(t *testing.T) {
	m, _ := mustReduce(t, New(),
		FileSelected{Batch: testBatch("a.png")},
		UploadSucceeded{Attempt: 1, HostedURL: "http://host/a.png"},
		DelayElapsed{Attempt: 1},
	)

	m, first := Reduce(m, CopySucceeded{})
	m, _ = Reduce(m, CopySucceeded{})
	firstExpiry, _ := findEffect[ScheduleCopyExpiry](first)

	m, _ = Reduce(m, CopyExpired{Seq: firstExpiry.Seq})
	if !m.Copied {
		t.Error("expected newer banner to survive the older expiry")
	}
}

func TestCopy_Dismiss(t *testing.T) {
	m, _ := mustReduce(t, New(),
		FileSelected{Batch: testBatch("a.png")},
		UploadSucceeded{Attempt: 1, HostedURL: "http://host/a.png"},
		DelayElapsed{Attempt: 1},
		CopySucceeded{},
		CopyDismissed{},
	)
	if m.Copied {
		t.Error("expected dismissal to clear the flag")
	}
}

func TestCopy_OutsideSuccessIgnored(t *testing.T) {
	m := New()
	for _, ev := range []Event{CopyRequested{}, CopySucceeded{}} {
		var effects []Effect
		m, effects = Reduce(m, ev)
		if len(effects) != 0 || m.Copied {
			t.Errorf("%T in idle should be a no-op", ev)
		}
	}
}

func TestPhaseString(t *testing.T) {
	for p, want := range map[Phase]string{
		PhaseIdle:      "idle",
		PhaseUploading: "uploading",
		PhaseError:     "error",
		PhaseSuccess:   "success",
		Phase(42):      "unknown",
	} {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(p), got, want)
		}
	}
}

func TestExactlyOnePhase(t *testing.T) {
	// Walk a long random-ish sequence and check every non-idle state carries a file
	events := []Event{
		FileSelected{Batch: testBatch("a.png")},
		UploadFailed{Attempt: 1, Message: GenericFailureMessage},
		FileSelected{Batch: testBatch("b.png")},
		DelayElapsed{Attempt: 1},
		UploadSucceeded{Attempt: 2, HostedURL: "http://host/b.png"},
		DelayElapsed{Attempt: 2},
		CopyRequested{},
		ResetRequested{},
		FileSelected{Batch: testBatch("c.png")},
		UploadFailed{Attempt: 3, Message: "x"},
		DelayElapsed{Attempt: 3},
	}

	m := New()
	for i, ev := range events {
		m, _ = Reduce(m, ev)
		t.Run(fmt.Sprintf("step-%d", i), func(t *testing.T) {
			_, hasFile := m.File()
			if m.Phase() != PhaseIdle && !hasFile {
				t.Errorf("%s state without a file", m.Phase())
			}
			if m.Phase() == PhaseIdle && hasFile {
				t.Error("idle state holding a file")
			}
		})
	}

	if m.Phase() != PhaseError || m.ErrorMessage() != "x" {
		t.Errorf("expected final error state with message x, got %s %q", m.Phase(), m.ErrorMessage())
	}
}
