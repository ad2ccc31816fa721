package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	safeDir := filepath.Join(tmpDir, "safe")
	outsideDir := filepath.Join(tmpDir, "outside")
	if err := os.MkdirAll(safeDir, 0755); err != nil {
		t.Fatalf("Failed to create safe directory: %v", err)
	}
	if err := os.MkdirAll(outsideDir, 0755); err != nil {
		t.Fatalf("Failed to create outside directory: %v", err)
	}

	outsideFile := filepath.Join(outsideDir, "secret.txt")
	if err := os.WriteFile(outsideFile, []byte("secret"), 0644); err != nil {
		t.Fatalf("Failed to create outside file: %v", err)
	}

	// Symlink inside the safe directory pointing out of it.
	escapeLink := filepath.Join(safeDir, "escape")
	if err := os.Symlink(outsideDir, escapeLink); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	tests := []struct {
		name      string
		filePath  string
		safeDir   string
		wantError bool
	}{
		{
			name:      "symlink resolving within the tree",
			filePath:  escapeLink, // resolves out of safeDir but stays in tmpDir
			safeDir:   tmpDir,
			wantError: false,
		},
		{
			name:      "new file inside",
			filePath:  filepath.Join(safeDir, "report.json"),
			safeDir:   safeDir,
			wantError: false,
		},
		{
			name:      "new file in missing subdirectory",
			filePath:  filepath.Join(safeDir, "plots", "csi.png"),
			safeDir:   safeDir,
			wantError: false,
		},
		{
			name:      "dot-dot traversal",
			filePath:  filepath.Join(safeDir, "..", "outside", "secret.txt"),
			safeDir:   safeDir,
			wantError: true,
		},
		{
			name:      "relative traversal",
			filePath:  "../../../etc/passwd",
			safeDir:   safeDir,
			wantError: true,
		},
		{
			name:      "absolute path outside",
			filePath:  "/etc/passwd",
			safeDir:   safeDir,
			wantError: true,
		},
		{
			name:      "symlink to outside directory",
			filePath:  escapeLink,
			safeDir:   safeDir,
			wantError: true,
		},
		{
			name:      "new file behind escaping symlink",
			filePath:  filepath.Join(escapeLink, "report.json"),
			safeDir:   safeDir,
			wantError: true,
		},
		{
			name:      "missing safe directory",
			filePath:  filepath.Join(safeDir, "report.json"),
			safeDir:   filepath.Join(tmpDir, "nonexistent"),
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.filePath, tt.safeDir)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidatePathWithinDirectory(%q, %q) error = %v, wantError %v",
					tt.filePath, tt.safeDir, err, tt.wantError)
			}
		})
	}
}

func TestValidatePathWithinDirectorySymlinkedSafeDir(t *testing.T) {
	// The safe directory itself may be reached through a symlink (on macOS
	// /tmp is one). Both sides canonicalize, so a file inside still passes.
	tmpDir := t.TempDir()
	realDir := filepath.Join(tmpDir, "real")
	if err := os.MkdirAll(realDir, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	linkDir := filepath.Join(tmpDir, "link")
	if err := os.Symlink(realDir, linkDir); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	if err := ValidatePathWithinDirectory(filepath.Join(linkDir, "out.json"), linkDir); err != nil {
		t.Errorf("path under symlinked safe dir rejected: %v", err)
	}
	if err := ValidatePathWithinDirectory(filepath.Join(realDir, "out.json"), linkDir); err != nil {
		t.Errorf("real path under symlinked safe dir rejected: %v", err)
	}
}
