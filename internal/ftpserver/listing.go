package ftpserver

import (
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
)

// formatEntry renders one directory entry in the format from spec.md
// §6: "<type+perms 10 chars> <nlink> <owner> <group> <size> <date>
// <name>". Owner/group are the literal placeholders this spec's Open
// Question chooses (see SPEC_FULL.md).
func formatEntry(info os.FileInfo) string {
	return fmt.Sprintf("%s %3d %-8s %-8s %8d %s %s",
		permString(info.Mode()), 1, "owner", "group",
		info.Size(), lsDate(info.ModTime()), info.Name())
}

func permString(mode fs.FileMode) string {
	var sb strings.Builder
	if mode.IsDir() {
		sb.WriteByte('d')
	} else if mode&os.ModeSymlink != 0 {
		sb.WriteByte('l')
	} else {
		sb.WriteByte('-')
	}
	bits := "rwxrwxrwx"
	perm := mode.Perm()
	for i := 0; i < 9; i++ {
		if perm&(1<<uint(8-i)) != 0 {
			sb.WriteByte(bits[i])
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// lsDate mimics classic ls: a time-of-day for recent files, a year for
// anything older than roughly six months.
func lsDate(t time.Time) string {
	if time.Since(t) > 183*24*time.Hour {
		return t.Format("Jan _2  2006")
	}
	return t.Format("Jan _2 15:04")
}
