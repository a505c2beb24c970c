// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"todoctl/internal/service"
)

// FormatTask formats a task line.
// Format: "{N:>4}  {MARK} {TITLE}  #{ID}[  due {DATE}]\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	line := fmt.Sprintf("%4d  %s %s  #%d", num, statusMark(task.Status), normalizeTitle(task.Title), task.ID)
	if due := dueDate(task.DueDate); due != "" {
		line += "  due " + due
	}
	fmt.Fprintln(w, line)
}

// FormatTaskDetail prints every known field of a task, one per line.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "id:          %d\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "status:      %s\n", task.Status)
	if desc := strings.TrimSpace(task.Description); desc != "" {
		fmt.Fprintf(w, "description: %s\n", oneLine(desc))
	}
	if due := dueDate(task.DueDate); due != "" {
		fmt.Fprintf(w, "due:         %s\n", due)
	}
}

// FormatProfile prints the signed-in user.
func FormatProfile(w io.Writer, p service.Profile) {
	fmt.Fprintf(w, "%s (id %d)\n", p.Username, p.ID)
}

// statusMark renders a status as a checkbox.
func statusMark(status string) string {
	switch status {
	case service.StatusDone:
		return "[x]"
	case service.StatusInProgress:
		return "[~]"
	case service.StatusTodo:
		return "[ ]"
	}
	return "[?]"
}

// dueDate shortens a server timestamp to its date.
// The zero time means no due date.
func dueDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	if t.Year() <= 1 {
		return ""
	}
	return t.Format(time.DateOnly)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = oneLine(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
