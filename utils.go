package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// strings

type caseSensitivity int

const (
	caseSensitive   caseSensitivity = 0
	caseInsensitive caseSensitivity = 1
)

func strContainsAny(str string, parts []string, cs caseSensitivity) bool {
	if cs == caseInsensitive {
		str = strings.ToLower(str)
	}
	for _, part := range parts {
		if cs == caseInsensitive {
			part = strings.ToLower(part)
		}
		if strings.Contains(str, part) {
			return true
		}
	}
	return false
}

// files

// cleanPath returns an absolute slash separated path.
func cleanPath(path string) string {
	if len(path) == 0 {
		return path
	}
	path, err := filepath.Abs(path)
	logFatalError(err)
	return filepath.ToSlash(filepath.Clean(path))
}

func fileExists(path string) bool {
	if len(path) == 0 {
		return false
	}
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// fileBasename returns the file name without its last extension.
func fileBasename(path string) string {
	name := filepath.Base(cleanPath(path))
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// The returned ext is always lower-cased and contains a prefix "." dot (e.g. ".gz")
func fileExtension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func fileSize(path string) int64 {
	if len(path) == 0 {
		return 0
	}
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

// formatting

// formatInt groups thousands with spaces, 1234567 is "1 234 567".
func formatInt(num int) string {
	sign, str := "", intToString(num)
	if num < 0 {
		sign, str = "-", str[1:]
	}
	for i := len(str) - 3; i > 0; i -= 3 {
		str = str[:i] + " " + str[i:]
	}
	return sign + str
}

func intToString(num int) string {
	return strconv.Itoa(num)
}

func formatBytes(numBytes int64) string {
	prefix := ""
	numAbs := numBytes
	if numBytes < 0 {
		prefix = "-"
		numAbs = -numBytes
	}
	const unit = 1024
	switch {
	case numAbs >= unit*unit*unit:
		return fmt.Sprintf("%s%.2f GB", prefix, float64(numAbs)/(unit*unit*unit))
	case numAbs >= unit*unit:
		return fmt.Sprintf("%s%.2f MB", prefix, float64(numAbs)/(unit*unit))
	case numAbs >= unit:
		return fmt.Sprintf("%s%.2f kB", prefix, float64(numAbs)/unit)
	}
	return fmt.Sprintf("%s%d B", prefix, numAbs)
}

// formatDuration prints the largest units first, "1h 2m 3.40s".
func formatDuration(d time.Duration) string {
	seconds := strconv.FormatFloat((d % time.Minute).Seconds(), 'f', 2, 64) + "s"
	if d < time.Minute {
		return seconds
	}
	var (
		day   = 24 * time.Hour
		week  = 7 * day
		parts []string
	)
	if d >= week {
		parts = append(parts, fmt.Sprintf("%dw", d/week))
	}
	if d >= day {
		parts = append(parts, fmt.Sprintf("%dd", d%week/day))
	}
	if d >= time.Hour {
		parts = append(parts, fmt.Sprintf("%dh", d%day/time.Hour))
	}
	parts = append(parts, fmt.Sprintf("%dm", d%time.Hour/time.Minute), seconds)
	return strings.Join(parts, " ")
}
