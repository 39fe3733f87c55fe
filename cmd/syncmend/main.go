package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/syncmend/syncmend/internal/config"
	"github.com/syncmend/syncmend/internal/daemon"
	"github.com/syncmend/syncmend/internal/diffview"
	"github.com/syncmend/syncmend/internal/failure"
	"github.com/syncmend/syncmend/internal/history"
	"github.com/syncmend/syncmend/internal/inventory"
	"github.com/syncmend/syncmend/internal/logging"
	"github.com/syncmend/syncmend/internal/repository"
	"github.com/syncmend/syncmend/internal/resolver"
	"github.com/syncmend/syncmend/internal/store"
	"github.com/syncmend/syncmend/internal/watcher"
)

var Version = "dev"

// termNotifier prints progress notifications to stderr. The duration
// is part of the notification contract for graphical hosts; a terminal
// has nothing to dismiss.
type termNotifier struct{}

func (termNotifier) Notify(message string, _ time.Duration) {
	fmt.Fprintln(os.Stderr, message)
}

// app holds the wired collaborators the commands share.
type app struct {
	logger   *slog.Logger
	settings *config.ConnectionSettings
	prefs    *config.Preferences
	repo     *repository.Repository
	stateDir string
	storeDir string
}

func (a *app) store() (*store.Store, error) {
	return store.New(a.storeDir, a.prefs.Ignore)
}

func (a *app) controller(st *store.Store) (*resolver.Controller, func(), error) {
	log, err := history.Open(filepath.Join(a.stateDir, "history.db"))
	if err != nil {
		return nil, nil, err
	}

	ctrl := resolver.New(st, termNotifier{}, a.logger,
		resolver.WithHistorian(log),
		resolver.WithNotifyDuration(a.prefs.NotifyDuration()),
	)

	return ctrl, func() { log.Close() }, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		debug    bool
		storeDir string
		stateDir string
	)

	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "syncmend",
		Short:   "Conflict-resolution assistant for a sync daemon",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if stateDir == "" {
				dir, err := config.DefaultDir()
				if err != nil {
					return err
				}

				stateDir = dir
			}

			settings, err := config.Load(filepath.Join(stateDir, "settings.json"))
			if err != nil {
				return err
			}

			prefs, err := config.LoadPreferences(filepath.Join(stateDir, "config.yaml"))
			if err != nil {
				return err
			}

			a.logger = logging.NewLogger(os.Getenv("ENVIRONMENT"), debug)
			a.settings = settings
			a.prefs = prefs
			a.stateDir = stateDir
			a.storeDir = storeDir
			a.repo = repository.New(daemon.NewClient(settings, nil), a.logger)

			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store", ".", "synced folder to scan for conflicts")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "settings/history directory (default ~/.syncmend)")

	rootCmd.AddCommand(
		pingCmd(a),
		statusCmd(a),
		devicesCmd(a),
		foldersCmd(a),
		conflictsCmd(a),
		diffCmd(a),
		resolveCmd(a),
		watchCmd(a),
		historyCmd(a),
		settingsCmd(a),
	)

	return rootCmd.Execute()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func pingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the daemon is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			if err := a.repo.Ping(ctx); err != nil {
				return err
			}

			fmt.Println("pong")

			return nil
		},
	}
}

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status, devices, and folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			overview, err := a.repo.Overview(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("device %s, up %s\n", overview.Status.MyID,
				(time.Duration(overview.Status.Uptime) * time.Second).String())
			fmt.Printf("%d devices, %d folders\n", len(overview.Devices), len(overview.Folders))

			return nil
		},
	}
}

func devicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the daemon's devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			devices, err := a.repo.Devices(ctx)
			if err != nil {
				return err
			}

			for _, d := range devices {
				paused := ""
				if d.Paused {
					paused = " (paused)"
				}

				fmt.Printf("%s\t%s%s\n", d.DeviceID, d.Name, paused)
			}

			return nil
		},
	}
}

func foldersCmd(a *app) *cobra.Command {
	var deviceID string

	cmd := &cobra.Command{
		Use:   "folders",
		Short: "List the daemon's folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			var (
				folders []daemon.Folder
				err     error
			)

			if deviceID != "" {
				folders, err = a.repo.FoldersForDevice(ctx, deviceID)
			} else {
				folders, err = a.repo.Folders(ctx)
			}

			if err != nil {
				return err
			}

			for _, f := range folders {
				label := f.Label
				if label == "" {
					label = f.ID
				}

				fmt.Printf("%s\t%s\t%d devices\n", f.ID, label, len(f.Devices))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&deviceID, "device", "", "only folders shared with this device ID")

	return cmd
}

func conflictsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List conflict groups in the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			st, err := a.store()
			if err != nil {
				return err
			}

			ctrl, closeFn, err := a.controller(st)
			if err != nil {
				return err
			}
			defer closeFn()

			groups, err := ctrl.ScanConflicts(ctx)
			if err != nil {
				return err
			}

			if len(groups) == 0 {
				fmt.Println("no conflicts")
				return nil
			}

			printGroups(groups)

			return nil
		},
	}
}

func printGroups(groups []inventory.ConflictGroup) {
	for _, g := range groups {
		state := "original present"
		if g.Original == nil {
			state = "original missing"
		}

		fmt.Printf("%s (%d variants, %s)\n", g.Base, len(g.Conflicts), state)

		for i, c := range g.Conflicts {
			if marker, ok := inventory.ParseMarker(c.Path); ok && !marker.Time.IsZero() {
				fmt.Printf("  [%d] %s  from %s at %s\n", i, c.Path, marker.Device,
					marker.Time.Format("2006-01-02 15:04"))
				continue
			}

			fmt.Printf("  [%d] %s\n", i, c.Path)
		}
	}
}

func diffCmd(a *app) *cobra.Command {
	var (
		against int
		asHTML  bool
		showAll bool
	)

	cmd := &cobra.Command{
		Use:   "diff FILE",
		Short: "Show the line diff between a file and a conflicting variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			st, err := a.store()
			if err != nil {
				return err
			}

			ctrl, closeFn, err := a.controller(st)
			if err != nil {
				return err
			}
			defer closeFn()

			view, err := ctrl.GetDiffFiles(ctx, args[0])
			if failure.Is(err, failure.NotFound) {
				fmt.Printf("no conflicts for %s\n", args[0])
				return nil
			}

			if err != nil {
				return err
			}

			if view.Promoted {
				fmt.Fprintf(os.Stderr, "original missing; comparing against oldest variant %s\n", view.Base.Path)
			}

			indices := []int{against}
			if showAll {
				indices = indices[:0]
				for i := range view.Conflicts {
					indices = append(indices, i)
				}
			}

			for _, i := range indices {
				result, err := ctrl.DiffVariant(ctx, view, i)
				if err != nil {
					return err
				}

				if asHTML {
					fmt.Print(diffview.RenderHTML(result))
				} else {
					fmt.Print(diffview.RenderText(result))
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&against, "against", 0, "variant index to compare against")
	cmd.Flags().BoolVar(&asHTML, "html", false, "emit HTML markup instead of text")
	cmd.Flags().BoolVar(&showAll, "all", false, "diff every variant")

	return cmd
}

func resolveCmd(a *app) *cobra.Command {
	var (
		keep         int
		keepOriginal bool
		manual       bool
	)

	cmd := &cobra.Command{
		Use:   "resolve FILE",
		Short: "Resolve a conflict group",
		Long: `Resolve a conflict group by keeping a chosen variant (--keep N),
keeping the original (--keep-original, which deletes variant N), or
deferring to manual review (--manual).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			st, err := a.store()
			if err != nil {
				return err
			}

			ctrl, closeFn, err := a.controller(st)
			if err != nil {
				return err
			}
			defer closeFn()

			groups, err := ctrl.ScanConflicts(ctx)
			if err != nil {
				return err
			}

			group, ok := inventory.FindGroup(groups, args[0])
			if !ok {
				return fmt.Errorf("%s belongs to no conflict group", args[0])
			}

			if keep < 0 || keep >= len(group.Conflicts) {
				return fmt.Errorf("variant index %d out of range (group has %d)", keep, len(group.Conflicts))
			}

			chosen := group.Conflicts[keep]

			action := resolver.AcceptChosen
			switch {
			case manual:
				action = resolver.Manual
			case keepOriginal:
				action = resolver.AcceptOriginal
			}

			if err := ctrl.Resolve(ctx, group, chosen, action); err != nil {
				return err
			}

			if action == resolver.Manual {
				fmt.Printf("review side by side:\n  %s\n  %s\n",
					filepath.Join(a.storeDir, group.Base),
					filepath.Join(a.storeDir, chosen.Path))

				return nil
			}

			fmt.Printf("resolved %s\n", group.Base)

			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 0, "index of the variant the action applies to")
	cmd.Flags().BoolVar(&keepOriginal, "keep-original", false, "keep the original and delete the variant")
	cmd.Flags().BoolVar(&manual, "manual", false, "no mutation; print both paths for review")
	cmd.MarkFlagsMutuallyExclusive("keep-original", "manual")

	return cmd
}

func watchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the store and announce new conflicts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			st, err := a.store()
			if err != nil {
				return err
			}

			ctrl, closeFn, err := a.controller(st)
			if err != nil {
				return err
			}
			defer closeFn()

			known := make(map[string]bool)

			rescan := func(ctx context.Context) {
				groups, err := ctrl.ScanConflicts(ctx)
				if err != nil {
					a.logger.Warn("rescan failed", slog.String("error", err.Error()))
					return
				}

				for _, g := range groups {
					if known[g.Base] {
						continue
					}

					known[g.Base] = true
					fmt.Printf("conflict: %s (%d variants)\n", g.Base, len(g.Conflicts))
				}
			}

			rescan(ctx)
			a.logger.Info("watching for conflicts", slog.String("dir", st.Dir()))

			w := watcher.New(st, a.logger, rescan)
			if err := w.Watch(ctx); err != nil && ctx.Err() == nil {
				return err
			}

			return nil
		},
	}
}

func historyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show recent resolution outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := history.Open(filepath.Join(a.stateDir, "history.db"))
			if err != nil {
				return err
			}
			defer log.Close()

			records, err := log.Recent(a.prefs.HistoryLimit)
			if err != nil {
				return err
			}

			for _, rec := range records {
				fmt.Printf("%s\t%s\t%s\t%s\n",
					rec.Time.Format(time.RFC3339), rec.Group, rec.Action, rec.Outcome)

				if rec.Detail != "" {
					fmt.Printf("\t%s\n", rec.Detail)
				}
			}

			return nil
		},
	}
}

func settingsCmd(a *app) *cobra.Command {
	var (
		setKey     string
		setAddress string
		setPort    int
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or update daemon connection settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := false

			if setKey != "" {
				a.settings.APIKey = setKey
				changed = true
			}

			if setAddress != "" {
				a.settings.URL.IPAddress = setAddress
				changed = true
			}

			if setPort != 0 {
				a.settings.URL.Port = setPort
				changed = true
			}

			if changed {
				if err := a.settings.Save(); err != nil {
					return err
				}
			}

			key := "(not set)"
			if a.settings.APIKey != "" {
				key = "(set)"
			}

			fmt.Printf("daemon: %s\napi key: %s\n", a.settings.BaseURL(), key)

			return nil
		},
	}

	cmd.Flags().StringVar(&setKey, "set-key", "", "store a new API key")
	cmd.Flags().StringVar(&setAddress, "set-address", "", "store a new daemon address")
	cmd.Flags().IntVar(&setPort, "set-port", 0, "store a new daemon port")

	return cmd
}
