package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/craftkontrol/memoboard/internal/api"
	"github.com/craftkontrol/memoboard/internal/history"
	"github.com/craftkontrol/memoboard/internal/lifecycle"
	"github.com/craftkontrol/memoboard/internal/retention"
	"github.com/craftkontrol/memoboard/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, alarm engine and retention sweeper",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := scheduler.NewEngine(a.cfg.SchedulerBuffer)
	engine.Start()
	defer engine.Stop()
	go logAlarms(a, engine)

	// One-shot commands run without a scheduler, so the manager here gets
	// the real engine instead of the no-op hooks from openApp.
	manager := lifecycle.NewManager(a.repo, a.log, engine, a.logger)
	if err := primeAlarms(ctx, manager, engine); err != nil {
		a.logger.Warn("priming alarms", "error", err)
	}

	sweeper := retention.NewSweeper(a.repo, a.logger, retention.Options{
		MaxCompletedAge:    a.cfg.RetentionAgeDuration(),
		SweepInterval:      a.cfg.SweepIntervalDuration(),
		RecurrenceInterval: a.cfg.RecurrenceIntervalDuration(),
		MistralAPIKey:      a.cfg.MistralAPIKey,
	})
	go sweeper.Run(ctx)

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = a.cfg.HTTPAddr
	}

	server := api.NewServer(manager, lifecycle.NewNotebook(a.repo, a.log, a.logger), history.NewUndoer(a.log, a.repo), a.logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(addr)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
		return nil
	case err := <-errCh:
		return err
	}
}

// primeAlarms queues reminders for today's timed open tasks so a restart
// does not lose pending alarms.
func primeAlarms(ctx context.Context, manager *lifecycle.Manager, engine *scheduler.Engine) error {
	tasks, err := manager.ByPeriod(ctx, lifecycle.PeriodToday)
	if err != nil {
		return err
	}
	for _, task := range tasks {
		if task.Time == "" {
			continue
		}
		if err := engine.Schedule(task); err != nil {
			return err
		}
	}
	return nil
}

func logAlarms(a *app, engine *scheduler.Engine) {
	for ev := range engine.C() {
		a.logger.Info("reminder due",
			"task_id", ev.TaskID,
			"type", ev.Type,
			"description", ev.Description,
			"trigger_at", ev.TriggerAt,
		)
	}
}
