package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"docket/internal/notify"
	"docket/internal/reminder"
)

func (a *app) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the reminder loop without the interactive view",
		Long: `Watch checks for tasks entering their reminder window and shows a desktop
notification for each, printing the reminder to stdout as well. It runs until
interrupted unless --once is given.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().Bool("once", false, "Check once and exit")
	cmd.RunE = a.run(a.runWatch)
	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, args []string) error {
	once, _ := cmd.Flags().GetBool("once")
	out := cmd.OutOrStdout()
	toaster := notify.ToastFunc(func(title, message string, sev notify.Severity) {
		fmt.Fprintf(out, "%s [%s] %s: %s\n", a.engine.Now().Format(time.TimeOnly), sev, title, message)
	})
	sched := reminder.New(a.engine, a.notifier(), toaster, reminder.Options{
		Interval: a.cfg.Interval(),
		Now:      a.engine.Now,
		Logger:   a.log,
	})

	fired := sched.Tick(a.engine.Now())
	if once {
		if len(fired) == 0 {
			fmt.Fprintln(out, "Nothing due.")
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sched.Start(ctx)
	a.log.Info("watching for reminders", "interval", sched.Interval())
	<-ctx.Done()
	sched.Stop()
	return nil
}
