package droppath

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseWith_POSIX(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "/tmp/cat.png", []string{"/tmp/cat.png"}},
		{"trailing space", "/tmp/cat.png ", []string{"/tmp/cat.png"}},
		{"escaped spaces", `/Users/me/My\ Photos/cat\ 1.png`, []string{"/Users/me/My Photos/cat 1.png"}},
		{"single quoted", `'/home/me/my cat.png'`, []string{"/home/me/my cat.png"}},
		{"double quoted", `"/home/me/say \"hi\".png"`, []string{`/home/me/say "hi".png`}},
		{"multiple", `/a.png /b.png '/c d.png'`, []string{"/a.png", "/b.png", "/c d.png"}},
		{"newline separated", "/a.png\n/b.png\r\n", []string{"/a.png", "/b.png"}},
		{"file uri", "file:///home/me/My%20Photos/cat.png", []string{"/home/me/My Photos/cat.png"}},
		{"file uris", "file:///a.png\nfile:///b%23c.png", []string{"/a.png", "/b#c.png"}},
		{"empty", "   \n", nil},
		{"empty quotes", `'' /a.png`, []string{"/a.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseWith(tt.in, true)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseWith(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseWith_Windows(t *testing.T) {
	got := ParseWith(`"C:\Users\me\My Pictures\cat.png" C:\tmp\dog.png`, false)
	want := []string{`C:\Users\me\My Pictures\cat.png`, `C:\tmp\dog.png`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParse_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got := ParseWith("~/Pictures/cat.png", true)
	want := filepath.Join(home, "Pictures", "cat.png")
	if len(got) != 1 || got[0] != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
