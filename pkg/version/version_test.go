package version

import (
	"runtime"
	"testing"
)

func TestSummary(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })

	tests := []struct {
		version, commit, want string
	}{
		{"dev", "none", "dev"},
		{"", "", "dev"},
		{"1.2.0", "abcdef1234567", "1.2.0 (abcdef1)"},
		{"1.2.0", "abc", "1.2.0 (abc)"},
	}
	for _, tt := range tests {
		Version, Commit = tt.version, tt.commit
		if got := Summary(); got != tt.want {
			t.Errorf("Summary() with %q/%q = %q, want %q", tt.version, tt.commit, got, tt.want)
		}
	}
}

func TestPlatform(t *testing.T) {
	if got, want := Platform(), runtime.GOOS+"/"+runtime.GOARCH; got != want {
		t.Fatalf("Platform() = %q, want %q", got, want)
	}
}
