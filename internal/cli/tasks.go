package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/craftkontrol/memoboard/internal/lifecycle"
	"github.com/craftkontrol/memoboard/internal/model"
	"github.com/craftkontrol/memoboard/internal/output"
	"github.com/craftkontrol/memoboard/internal/storage"
)

var addCmd = &cobra.Command{
	Use:     "add DESCRIPTION...",
	Aliases: []string{"create"},
	Short:   "Add a new task",
	Long: `Adds a task. The description is the remaining arguments joined together.

Medication tasks get their dosage extracted from the description
automatically ("take 2 pills", "500 mg", "10 ml").`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var listTasksCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks for a period",
	RunE:    runListTasks,
}

var completeCmd = &cobra.Command{
	Use:     "complete ID",
	Aliases: []string{"done"},
	Short:   "Mark a task as completed",
	Args:    cobra.ExactArgs(1),
	RunE:    runComplete,
}

var snoozeCmd = &cobra.Command{
	Use:   "snooze ID",
	Short: "Push a task back by a few minutes",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnooze,
}

var editCmd = &cobra.Command{
	Use:     "edit ID",
	Aliases: []string{"update"},
	Short:   "Edit task fields in place",
	Args:    cobra.ExactArgs(1),
	RunE:    runEdit,
}

var deleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the most recent change",
	Args:  cobra.NoArgs,
	RunE:  runUndo,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var medsCmd = &cobra.Command{
	Use:   "meds",
	Short: "Show today's medication tally",
	Args:  cobra.NoArgs,
	RunE:  runMeds,
}

func init() {
	addCmd.Flags().String("date", "", "task date (YYYY-MM-DD, default today)")
	addCmd.Flags().String("time", "", "task time (HH:MM)")
	addCmd.Flags().String("type", "", "task type (general, medication, appointment, call, shopping)")
	addCmd.Flags().String("priority", "", "priority (urgent, normal, low)")
	addCmd.Flags().String("recurrence", "", "recurrence (daily, weekly, monthly)")
	addCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "repeat" {
			name = "recurrence"
		}
		return pflag.NormalizedName(name)
	})

	listTasksCmd.Flags().String("period", "today", "period (today, week, month, year)")
	listTasksCmd.Flags().Bool("display", false, "board view: today's top tasks only")
	listTasksCmd.Flags().Bool("overdue", false, "show overdue tasks instead")

	snoozeCmd.Flags().IntP("minutes", "m", 0, "snooze duration in minutes (default from config)")
	snoozeCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "for" {
			name = "minutes"
		}
		return pflag.NormalizedName(name)
	})

	editCmd.Flags().String("description", "", "new description")
	editCmd.Flags().String("date", "", "new date (YYYY-MM-DD)")
	editCmd.Flags().String("time", "", "new time (HH:MM)")
	editCmd.Flags().String("type", "", "new type")
	editCmd.Flags().String("priority", "", "new priority")
	editCmd.Flags().String("recurrence", "", "new recurrence")

	rootCmd.AddCommand(addCmd, listTasksCmd, completeCmd, snoozeCmd, editCmd, deleteCmd, undoCmd, statsCmd, medsCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	date, _ := cmd.Flags().GetString("date")
	clock, _ := cmd.Flags().GetString("time")
	kind, _ := cmd.Flags().GetString("type")
	priority, _ := cmd.Flags().GetString("priority")
	recurrence, _ := cmd.Flags().GetString("recurrence")

	task, err := a.manager.Create(cmd.Context(), lifecycle.CreateInput{
		Description: strings.Join(args, " "),
		Date:        date,
		Time:        clock,
		Type:        model.TaskType(kind),
		Priority:    model.Priority(priority),
		Recurrence:  model.Recurrence(recurrence),
	})
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, task)
	case output.FormatCompact:
		output.TaskDetailCompact(os.Stdout, task)
	default:
		output.Messagef(os.Stdout, "Added task %s.", task.ID)
		output.TaskDetail(os.Stdout, task)
	}
	return nil
}

func runListTasks(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	display, _ := cmd.Flags().GetBool("display")
	overdue, _ := cmd.Flags().GetBool("overdue")
	period, _ := cmd.Flags().GetString("period")

	var tasks []model.Task
	switch {
	case overdue:
		tasks, err = a.manager.Overdue(cmd.Context())
	case display:
		tasks, err = a.manager.Displayable(cmd.Context())
	default:
		tasks, err = a.manager.ByPeriod(cmd.Context(), lifecycle.Period(period))
	}
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, tasks)
	case output.FormatCompact:
		output.TaskCompact(os.Stdout, tasks)
	default:
		output.TaskTable(os.Stdout, tasks)
	}
	return nil
}

func runComplete(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	id, err := resolveTaskID(cmd.Context(), a, args[0])
	if err != nil {
		return err
	}
	result, err := a.manager.Complete(cmd.Context(), id)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, result)
	}
	output.Messagef(os.Stdout, "Completed: %s", result.Task.Description)
	if result.AutoDeleted {
		output.Messagef(os.Stdout, "Task removed (done and not worth keeping).")
	}
	if result.NextTask != nil {
		output.Messagef(os.Stdout, "Next %s occurrence scheduled for %s.", result.NextTask.Recurrence, result.NextTask.Date)
	}
	return nil
}

func runSnooze(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	minutes, _ := cmd.Flags().GetInt("minutes")
	if minutes <= 0 {
		minutes = a.cfg.SnoozeMinutes
	}

	id, err := resolveTaskID(cmd.Context(), a, args[0])
	if err != nil {
		return err
	}
	task, err := a.manager.Snooze(cmd.Context(), id, minutes)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, task)
	}
	output.Messagef(os.Stdout, "Snoozed %q until %s.", task.Description, task.SnoozedUntil.Local().Format("15:04"))
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	fields := make(map[string]any)
	for flag, key := range map[string]string{
		"description": model.FieldDescription,
		"date":        model.FieldDate,
		"time":        model.FieldTime,
		"type":        model.FieldType,
		"priority":    model.FieldPriority,
		"recurrence":  model.FieldRecurrence,
	} {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetString(flag)
			fields[key] = v
		}
	}
	if len(fields) == 0 {
		return fmt.Errorf("nothing to edit: pass at least one field flag")
	}

	id, err := resolveTaskID(cmd.Context(), a, args[0])
	if err != nil {
		return err
	}
	task, err := a.manager.Update(cmd.Context(), id, fields)
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, task)
	case output.FormatCompact:
		output.TaskDetailCompact(os.Stdout, task)
	default:
		output.TaskDetail(os.Stdout, task)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	id, err := resolveTaskID(cmd.Context(), a, args[0])
	if err != nil {
		return err
	}
	if err := a.manager.Delete(cmd.Context(), id); err != nil {
		return err
	}
	output.Messagef(os.Stdout, "Deleted task %s. Run 'memoboard undo' to bring it back.", id)
	return nil
}

func runUndo(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.undoer.UndoLast(cmd.Context())
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, result)
	}
	output.Messagef(os.Stdout, "%s", result.Message)
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	stats, err := a.manager.Statistics(cmd.Context())
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, stats)
	case output.FormatCompact:
		output.StatsCompact(os.Stdout, stats)
	default:
		output.StatsTable(os.Stdout, stats)
	}
	return nil
}

func runMeds(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	compliance, err := a.manager.TodayMedicationCompliance(cmd.Context())
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, compliance)
	}
	output.ComplianceTable(os.Stdout, compliance)
	return nil
}

// resolveTaskID accepts a full task id or a unique prefix of one.
func resolveTaskID(ctx context.Context, a *app, arg string) (string, error) {
	if _, err := a.repo.GetTask(ctx, arg); err == nil {
		return arg, nil
	}

	tasks, err := a.repo.ListTasks(ctx, storage.TaskListFilter{})
	if err != nil {
		return "", err
	}
	var matches []string
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, arg) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no task matches %q", arg)
	default:
		return "", fmt.Errorf("%q is ambiguous: %d tasks match", arg, len(matches))
	}
}
