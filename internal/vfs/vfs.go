// Package vfs implements the server's virtual filesystem: mapping a
// client-visible path rooted at "/" onto a bounded subtree of the real
// filesystem, rejecting any path that would escape the configured root
// — including via absolute paths, ".." components, or a symlink
// planted inside the root that points outside it.
package vfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a resolved path would fall outside
// the configured root.
var ErrOutsideRoot = fmt.Errorf("vfs: path escapes root")

// FS resolves virtual paths against a real root directory.
type FS struct {
	root string
}

// New creates an FS rooted at root, which must be an existing real
// directory.
func New(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("vfs: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vfs: root %q: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vfs: root %q is not a directory", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the real root directory.
func (fs *FS) Root() string {
	return fs.root
}

// ResolveVirtual computes the new virtual path (always "/"-rooted) for
// input, interpreted relative to currentDir if not absolute. "." and
// ""  components are skipped; ".." pops the last component but never
// pops past the root.
func ResolveVirtual(currentDir, input string) string {
	base := currentDir
	if strings.HasPrefix(input, "/") {
		base = "/"
	}
	combined := base
	if input != "" {
		if strings.HasSuffix(combined, "/") {
			combined += input
		} else {
			combined += "/" + input
		}
	}

	var stack []string
	for _, part := range strings.Split(combined, "/") {
		switch part {
		case "", ".":
			// skip
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, part)
		}
	}
	return "/" + strings.Join(stack, "/")
}

// Resolve maps a client-supplied path to both its virtual form and its
// real filesystem path, failing with ErrOutsideRoot if the real path —
// after resolving symlinks on its longest existing ancestor — would
// land outside the root.
func (fs *FS) Resolve(currentDir, input string) (virtual, real string, err error) {
	virtual = ResolveVirtual(currentDir, input)
	real = filepath.Join(fs.root, filepath.FromSlash(strings.TrimPrefix(virtual, "/")))

	contained, err := fs.containedReal(real)
	if err != nil {
		return "", "", err
	}
	return virtual, contained, nil
}

// ResolveParent is like Resolve but for creation operations: it
// resolves and containment-checks the parent directory of input, and
// returns the real path of input itself (which need not exist) joined
// under that verified parent.
func (fs *FS) ResolveParent(currentDir, input string) (virtual, real string, err error) {
	virtual = ResolveVirtual(currentDir, input)
	parentVirtual := filepath.ToSlash(filepath.Dir(virtual))
	parentReal := filepath.Join(fs.root, filepath.FromSlash(strings.TrimPrefix(parentVirtual, "/")))

	containedParent, err := fs.containedReal(parentReal)
	if err != nil {
		return "", "", err
	}
	base := filepath.Base(virtual)
	return virtual, filepath.Join(containedParent, base), nil
}

// containedReal resolves symlinks on the longest existing ancestor of
// real and verifies the result is still within the root.
func (fs *FS) containedReal(real string) (string, error) {
	rootResolved, err := evalSymlinksBestEffort(fs.root)
	if err != nil {
		return "", err
	}

	ancestor := real
	var suffix []string
	for {
		if _, statErr := os.Lstat(ancestor); statErr == nil {
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		suffix = append([]string{filepath.Base(ancestor)}, suffix...)
		ancestor = parent
	}

	resolvedAncestor, err := evalSymlinksBestEffort(ancestor)
	if err != nil {
		return "", err
	}

	full := resolvedAncestor
	for _, s := range suffix {
		full = filepath.Join(full, s)
	}

	if full != rootResolved && !strings.HasPrefix(full, rootResolved+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}

func evalSymlinksBestEffort(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		// The ancestor may not exist (e.g. root itself was just
		// created, or a parent in an over-deep creation request); fall
		// back to the literal absolute path for the containment check.
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			return "", fmt.Errorf("vfs: %w", err)
		}
		return abs, nil
	}
	return resolved, nil
}
