package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/craftkontrol/memoboard/internal/lifecycle"
	"github.com/craftkontrol/memoboard/internal/model"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}
	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t))
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t model.Task) {
	fmt.Fprintln(w, formatTaskLine(t))

	ts := "  created:" + t.CreatedAt.Format("2006-01-02")
	if t.UpdatedAt != nil {
		ts += " updated:" + t.UpdatedAt.Format("2006-01-02")
	}
	if t.CompletedAt != nil {
		ts += " completed:" + t.CompletedAt.Format("2006-01-02 15:04")
	}
	if t.SnoozedUntil != nil {
		ts += " snoozed-to:" + t.SnoozedUntil.Format("15:04")
	}
	fmt.Fprintln(w, ts)
}

// StatsCompact renders the aggregate counts in compact format.
func StatsCompact(w io.Writer, stats lifecycle.Statistics) {
	fmt.Fprintf(w, "%d tasks: pending=%d snoozed=%d completed=%d overdue=%d\n",
		stats.Total, stats.Pending, stats.Snoozed, stats.Completed, stats.Overdue)
	if len(stats.ByType) > 0 {
		parts := make([]string, 0, len(stats.ByType))
		for _, kind := range []model.TaskType{
			model.TypeGeneral, model.TypeMedication, model.TypeAppointment, model.TypeCall, model.TypeShopping,
		} {
			if n, ok := stats.ByType[string(kind)]; ok {
				parts = append(parts, string(kind)+"="+strconv.Itoa(n))
			}
		}
		fmt.Fprintln(w, "By type: "+strings.Join(parts, " "))
	}
}

// NoteCompact renders notes one per line.
func NoteCompact(w io.Writer, notes []model.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(os.Stderr, "No notes found.")
		return
	}
	for _, n := range notes {
		fmt.Fprintf(w, "%s [%s] %s\n", shortID(n.ID), n.CreatedAt.Format("2006-01-02"), n.Text)
	}
}

// ListCompact renders lists one per line with inline items.
func ListCompact(w io.Writer, lists []model.List) {
	if len(lists) == 0 {
		fmt.Fprintln(os.Stderr, "No lists found.")
		return
	}
	for _, l := range lists {
		fmt.Fprintf(w, "%s %s: %s\n", shortID(l.ID), l.Name, strings.Join(l.Items, ", "))
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t model.Task) string {
	line := shortID(t.ID) + " [" + string(t.Status) + "/" + string(t.Priority) + "] " + t.Description

	line += " " + t.Date
	if t.Time != "" {
		line += " " + t.Time
	}
	if t.Type != model.TypeGeneral {
		line += " (" + string(t.Type) + ")"
	}
	if t.MedicationInfo != nil && t.MedicationInfo.Dosage != "" {
		line += " dose:" + t.MedicationInfo.Dosage
	}
	if t.Recurrence != model.RecurrenceNone {
		line += " repeats:" + string(t.Recurrence)
	}
	return line
}
