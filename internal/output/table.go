package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/craftkontrol/memoboard/internal/lifecycle"
	"github.com/craftkontrol/memoboard/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	statusStyles = map[string]lipgloss.Style{
		string(model.StatusPending):   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		string(model.StatusSnoozed):   lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
		string(model.StatusCompleted): lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	}

	priorityStyles = map[string]lipgloss.Style{
		string(model.PriorityUrgent): lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		string(model.PriorityNormal): lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		string(model.PriorityLow):    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	typeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	dosageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("44")).Bold(true)
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	statusStyles = map[string]lipgloss.Style{}
	priorityStyles = map[string]lipgloss.Style{}
	typeStyle = lipgloss.NewStyle()
	dosageStyle = lipgloss.NewStyle()
}

// TaskTable renders a list of tasks as a formatted table.
func TaskTable(w io.Writer, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	idW, dateW, timeW, typeW, prioW, statusW, descW := 4, 12, 7, 6, 10, 8, 6
	for _, t := range tasks {
		idW = max(idW, len(shortID(t.ID))+pad)
		typeW = max(typeW, len(t.Type)+pad)
		prioW = max(prioW, len(t.Priority)+pad)
		statusW = max(statusW, len(t.Status)+pad)
		descW = max(descW, min(len(t.Description)+pad, 50))
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s %-*s",
		idW, "ID", dateW, "DATE", timeW, "TIME",
		typeW, "TYPE", prioW, "PRIORITY", statusW, "STATUS", descW, "TASK")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, t := range tasks {
		desc := t.Description
		const maxDesc = 48
		if len(desc) > maxDesc {
			desc = desc[:maxDesc-3] + "..."
		}
		if t.MedicationInfo != nil && t.MedicationInfo.Dosage != "" {
			desc += " " + dosageStyle.Render("["+t.MedicationInfo.Dosage+"]")
		}
		clock := t.Time
		if clock == "" {
			clock = dimStyle.Render("--")
		}

		row := fmt.Sprintf("%-*s %-*s %s %s %s %s %s",
			idW, shortID(t.ID),
			dateW, t.Date,
			padRight(clock, timeW),
			padRight(typeStyle.Render(string(t.Type)), typeW),
			padRight(styledValue(string(t.Priority), priorityStyles), prioW),
			padRight(styledValue(string(t.Status), statusStyles), statusW),
			desc)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail.
func TaskDetail(w io.Writer, t model.Task) {
	titleLine := fmt.Sprintf("Task %s: %s", shortID(t.ID), t.Description)
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("-", len(titleLine)))

	printField(w, "ID", t.ID)
	printField(w, "Status", styledValue(string(t.Status), statusStyles))
	printField(w, "Priority", styledValue(string(t.Priority), priorityStyles))
	printField(w, "Type", typeStyle.Render(string(t.Type)))
	printField(w, "Date", t.Date)
	printField(w, "Time", stringOrDash(t.Time))
	if t.Recurrence != model.RecurrenceNone {
		printField(w, "Repeats", string(t.Recurrence))
	}
	if t.MedicationInfo != nil {
		printField(w, "Dosage", stringOrDash(t.MedicationInfo.Dosage))
		printField(w, "Taken", strconv.FormatBool(t.MedicationInfo.Taken))
	}
	printField(w, "Created", t.CreatedAt.Format("2006-01-02 15:04"))
	if t.UpdatedAt != nil {
		printField(w, "Updated", t.UpdatedAt.Format("2006-01-02 15:04"))
	}
	if t.CompletedAt != nil {
		printField(w, "Completed", t.CompletedAt.Format("2006-01-02 15:04"))
	}
	if t.SnoozedUntil != nil {
		printField(w, "Snoozed to", t.SnoozedUntil.Format("2006-01-02 15:04"))
	}
}

// StatsTable renders the aggregate counts as a small dashboard.
func StatsTable(w io.Writer, stats lifecycle.Statistics) {
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render("Task statistics"))
	fmt.Fprintf(w, "Total: %d tasks\n\n", stats.Total)

	header := fmt.Sprintf("%-12s %6s", "STATUS", "COUNT")
	fmt.Fprintln(w, headerStyle.Render(header))
	fmt.Fprintf(w, "%s %6d\n", padRight(styledValue(string(model.StatusPending), statusStyles), 12), stats.Pending)
	fmt.Fprintf(w, "%s %6d\n", padRight(styledValue(string(model.StatusSnoozed), statusStyles), 12), stats.Snoozed)
	fmt.Fprintf(w, "%s %6d\n", padRight(styledValue(string(model.StatusCompleted), statusStyles), 12), stats.Completed)
	fmt.Fprintf(w, "%-12s %6d\n", "overdue", stats.Overdue)

	if len(stats.ByType) > 0 {
		fmt.Fprintln(w)
		typeHeader := fmt.Sprintf("%-12s %6s", "TYPE", "COUNT")
		fmt.Fprintln(w, headerStyle.Render(typeHeader))
		for _, kind := range []model.TaskType{
			model.TypeGeneral, model.TypeMedication, model.TypeAppointment, model.TypeCall, model.TypeShopping,
		} {
			if n, ok := stats.ByType[string(kind)]; ok {
				fmt.Fprintf(w, "%s %6d\n", padRight(typeStyle.Render(string(kind)), 12), n)
			}
		}
	}
}

// ComplianceTable renders today's medication tally.
func ComplianceTable(w io.Writer, c lifecycle.MedicationCompliance) {
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render("Medication today"))
	printField(w, "Total", strconv.Itoa(c.Total))
	printField(w, "Taken", strconv.Itoa(c.Taken))
	printField(w, "Remaining", strconv.Itoa(c.Remaining))
	if c.AllTaken {
		fmt.Fprintln(w, dosageStyle.Render("All medications taken."))
	}
}

// NoteTable renders notes one per row.
func NoteTable(w io.Writer, notes []model.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(os.Stderr, "No notes found.")
		return
	}
	header := fmt.Sprintf("%-10s %-12s %s", "ID", "CREATED", "NOTE")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, n := range notes {
		fmt.Fprintf(w, "%-10s %-12s %s\n", shortID(n.ID), n.CreatedAt.Format("2006-01-02"), n.Text)
	}
}

// ListTable renders named lists with their items.
func ListTable(w io.Writer, lists []model.List) {
	if len(lists) == 0 {
		fmt.Fprintln(os.Stderr, "No lists found.")
		return
	}
	for i, l := range lists {
		if i > 0 {
			fmt.Fprintln(w)
		}
		title := fmt.Sprintf("%s (%d items)", l.Name, len(l.Items))
		fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(title))
		fmt.Fprintln(w, dimStyle.Render("id: "+l.ID))
		for _, item := range l.Items {
			fmt.Fprintln(w, "  - "+item)
		}
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// shortID trims a UUID to its first group for table display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func stringOrDash(s string) string {
	if s == "" {
		return dimStyle.Render("--")
	}
	return s
}

// styledValue renders s using a matching style from the map, or returns s unchanged.
func styledValue(s string, styles map[string]lipgloss.Style) string {
	if st, ok := styles[s]; ok {
		return st.Render(s)
	}
	return s
}
