package vfs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveVirtual(t *testing.T) {
	cases := []struct {
		currentDir, input, want string
	}{
		{"/", "sub", "/sub"},
		{"/sub", "..", "/"},
		{"/", "../../etc/passwd", "/etc/passwd"},
		{"/a/b", "/../../etc", "/etc"},
		{"/a", "./b/./c", "/a/b/c"},
		{"/", "", "/"},
	}
	for _, c := range cases {
		if got := ResolveVirtual(c.currentDir, c.input); got != c.want {
			t.Errorf("ResolveVirtual(%q, %q) = %q, want %q", c.currentDir, c.input, got, c.want)
		}
	}
}

func TestResolveWithinRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	fsys, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	virtual, real, err := fsys.Resolve("/", "sub")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if virtual != "/sub" {
		t.Fatalf("virtual = %q", virtual)
	}
	wantReal, _ := filepath.EvalSymlinks(filepath.Join(root, "sub"))
	if real != wantReal {
		t.Fatalf("real = %q, want %q", real, wantReal)
	}
}

func TestResolveClampsDotDotAtRoot(t *testing.T) {
	root := t.TempDir()
	fsys, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Lexical .. popping never escapes "/"; this resolves to root/etc/passwd,
	// which is within root and must succeed (no such file, fine for Resolve
	// itself — existence is the caller's concern).
	virtual, _, err := fsys.Resolve("/", "/../../etc/passwd")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if virtual != "/etc/passwd" {
		t.Fatalf("virtual = %q, want /etc/passwd (still under root)", virtual)
	}
}

func TestResolveRejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "escape")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	fsys, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, _, err := fsys.Resolve("/", "escape/secret.txt"); err != ErrOutsideRoot {
		t.Fatalf("Resolve via symlink escape: err = %v, want ErrOutsideRoot", err)
	}
}

func TestResolveParentForCreation(t *testing.T) {
	root := t.TempDir()
	fsys, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	virtual, real, err := fsys.ResolveParent("/", "new.txt")
	if err != nil {
		t.Fatalf("ResolveParent: %v", err)
	}
	if virtual != "/new.txt" {
		t.Fatalf("virtual = %q", virtual)
	}
	wantDir, _ := filepath.EvalSymlinks(root)
	if filepath.Dir(real) != wantDir {
		t.Fatalf("real parent = %q, want %q", filepath.Dir(real), wantDir)
	}
}

func TestCWDThenCDUPIsNoop(t *testing.T) {
	cur := ResolveVirtual("/", "a")
	if cur != "/a" {
		t.Fatalf("cur = %q", cur)
	}
	back := ResolveVirtual(cur, "..")
	if back != "/" {
		t.Fatalf("back = %q, want /", back)
	}
}
