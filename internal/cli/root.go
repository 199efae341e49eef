package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"docket/internal/config"
	"docket/internal/notify"
	"docket/internal/storage"
	"docket/internal/todo"
	"docket/internal/ui"
)

// app is the state shared by every command: flag values first, then the
// opened config, logger, store and engine.
type app struct {
	configPath string
	verbose    bool

	cfg     config.Config
	log     *slog.Logger
	logFile *os.File
	store   *storage.Store
	engine  *todo.Engine

	mu         sync.Mutex
	persistErr error
}

// Execute runs the root command
func Execute(version string) error {
	cmd := newRootCmd()
	cmd.Version = version
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "docket",
		Short: "Docket - tasks, folders and due-date reminders",
		Long: `Docket keeps tasks in folders, sorts and groups them by due date, and
reminds you shortly before something is due.

Run without a subcommand to open the interactive view.`,
		RunE:          a.run(a.runUI),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default $DOCKET_CONFIG or the user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Also write logs to stderr")

	rootCmd.AddCommand(a.listCmd())
	rootCmd.AddCommand(a.addCmd())
	rootCmd.AddCommand(a.doneCmd())
	rootCmd.AddCommand(a.rmCmd())
	rootCmd.AddCommand(a.moveCmd())
	rootCmd.AddCommand(a.folderCmd())
	rootCmd.AddCommand(a.exportCmd())
	rootCmd.AddCommand(a.watchCmd())
	return rootCmd
}

// run wraps a command body with opening and closing the app. A write that
// failed during the command is returned once the body succeeds.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.open(cmd.ErrOrStderr()); err != nil {
			return err
		}
		defer a.close()
		if err := fn(cmd, args); err != nil {
			return err
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.persistErr
	}
}

func (a *app) open(stderr io.Writer) error {
	path := a.configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	var mirror io.Writer
	if a.verbose {
		mirror = stderr
	}
	log, f, err := newLogger(cfg.LogPath, cfg.LogLevel, mirror)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	a.log, a.logFile = log, f

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		a.close()
		return fmt.Errorf("open database: %w", err)
	}
	a.store = store
	a.engine = todo.Open(store, todo.Options{
		Logger:          log,
		ReminderMinutes: cfg.ReminderMinutes,
		OnPersistError:  a.recordPersistError,
	})
	return nil
}

func (a *app) recordPersistError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.persistErr = errors.Join(a.persistErr, err)
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil && a.log != nil {
			a.log.Warn("close database", "err", err)
		}
		a.store = nil
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}

// newLogger opens the log file for appending. mirror, when set, receives a
// copy of every record.
func newLogger(path, level string, mirror io.Writer) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	var w io.Writer = f
	if mirror != nil {
		w = io.MultiWriter(f, mirror)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), f, nil
}

func (a *app) notifier() notify.Notifier {
	if a.cfg.Notifications != "desktop" {
		a.log.Debug("desktop notifications off")
		return notify.Nop{}
	}
	d := notify.NewDesktop()
	if d.Request() != notify.PermissionGranted {
		a.log.Info("desktop notifications unavailable")
	}
	return d
}

func (a *app) runUI(cmd *cobra.Command, args []string) error {
	return ui.Run(a.engine, a.cfg, a.notifier(), a.log)
}
