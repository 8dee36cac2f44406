package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Entry is one decoded line of the log file.
type Entry struct {
	Time      time.Time
	Level     string
	Component string
	Message   string
	Error     string
}

// String renders the entry for the TUI log panel.
func (e Entry) String() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "%-5s", strings.ToUpper(e.Level))
	if e.Component != "" {
		fmt.Fprintf(&b, " [%s]", e.Component)
	}
	b.WriteString(" ")
	b.WriteString(e.Message)
	if e.Error != "" {
		b.WriteString(": ")
		b.WriteString(e.Error)
	}
	return b.String()
}

type rawEntry struct {
	Time      time.Time `json:"time"`
	Level     string    `json:"level"`
	Component string    `json:"component"`
	Message   string    `json:"message"`
	Error     string    `json:"error"`
}

// Path returns the log file path, or "" for loggers without a file.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Tail returns up to maxLines of the most recent entries in the file at path.
// Lines that are not JSON are kept verbatim as the message.
func Tail(path string, maxLines int) []Entry {
	if path == "" || maxLines <= 0 {
		return nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		var raw rawEntry
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			entries = append(entries, Entry{Message: line})
			continue
		}
		entries = append(entries, Entry(raw))
	}
	return entries
}
