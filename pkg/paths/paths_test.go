package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_XDG(t *testing.T) {
	configHome := t.TempDir()
	stateHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_STATE_HOME", stateHome)

	p, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"config path", p.ConfigPath, filepath.Join(configHome, "imgdrop", "config.yaml")},
		{"config dir", p.ConfigDir(), filepath.Join(configHome, "imgdrop")},
		{"state dir", p.StateDir, filepath.Join(stateHome, "imgdrop")},
		{"log path", p.LogPath(), filepath.Join(stateHome, "imgdrop", "imgdrop.log")},
		{"drop dir", p.DropDir, filepath.Join(stateHome, "imgdrop", "drop")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestInitialize(t *testing.T) {
	p := &Paths{StateDir: filepath.Join(t.TempDir(), "nested", "imgdrop")}

	if err := p.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(p.StateDir)
	if err != nil {
		t.Fatalf("state dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected state dir to be a directory")
	}

	// Idempotent
	if err := p.Initialize(); err != nil {
		t.Errorf("second Initialize failed: %v", err)
	}
}
