package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	xdg := t.TempDir()

	tests := []struct {
		xdg  string
		want string
	}{
		{"", filepath.Join(home, ".cache", "graphscape")},
		{xdg, filepath.Join(xdg, "graphscape")},
	}
	for _, tt := range tests {
		t.Setenv("XDG_CACHE_HOME", tt.xdg)
		got, err := cacheDir()
		if err != nil || got != tt.want {
			t.Errorf("cacheDir() with XDG_CACHE_HOME=%q = %q, %v, want %q", tt.xdg, got, err, tt.want)
		}
	}
}
