package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/bugdrop/internal/auth"
	"github.com/h0rv/bugdrop/internal/bridge"
	"github.com/h0rv/bugdrop/internal/config"
	"github.com/h0rv/bugdrop/internal/history"
	"github.com/h0rv/bugdrop/internal/logging"
	"github.com/h0rv/bugdrop/internal/monday"
	"github.com/h0rv/bugdrop/internal/store"
	"github.com/h0rv/bugdrop/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string
	logFile    string
	jsonOutput bool

	// Selection flags shared by the root, file and recent commands
	boardFlag string
	groupFlag string

	// Resolved in PersistentPreRunE
	cfg    *config.Config
	logger = zap.NewNop()
)

func main() {
	rootCmd := newRootCmd()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bugdrop",
		Short: "File bug reports on monday.com boards",
		Long: `bugdrop files structured bug reports as items on a monday.com board.

Each bug becomes an item in the selected group, with the report details
posted as an update and any attachments uploaded to a second update.

Authentication:
  1. Saved token: Run 'bugdrop config set-token <token>'
  2. Environment variable: Set MONDAY_TOKEN (or BUGDROP_MONDAY_TOKEN)

Run without arguments for the interactive terminal UI.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		RunE:              runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Settings file (default $XDG_CONFIG_HOME/bugdrop/config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides log.level)")
	pf.StringVar(&logFormat, "log-format", "", "Log format: console or json (overrides log.format)")
	pf.StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
	pf.BoolVar(&jsonOutput, "json", false, "Print machine-readable JSON")

	rootCmd.Flags().StringVar(&boardFlag, "board", "", "Board ID. Skips the board picker.")
	rootCmd.Flags().StringVar(&groupFlag, "group", "", "Group ID. Requires --board. Skips the group picker.")

	rootCmd.AddCommand(
		newFileCmd(),
		newBoardsCmd(),
		newRecentCmd(),
		newPingCmd(),
		newHistoryCmd(),
		newConfigCmd(),
		newServeCmd(),
	)

	return rootCmd
}

// setup loads configuration and builds the logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	opts := logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: logFile,
	}
	if logLevel != "" {
		opts.Level = logLevel
	}
	if logFormat != "" {
		opts.Format = logFormat
	}

	// The TUI owns the terminal; without a log file it runs silent.
	if cmd == cmd.Root() && logFile == "" {
		logger = zap.NewNop()
		return nil
	}

	logger, err = logging.New(opts)
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded",
		zap.String("path", cfg.Path),
		logging.Secret("token", cfg.Monday.Token))
	return nil
}

// credential resolves the monday token from MONDAY_TOKEN or the settings.
func credential() (auth.Credential, error) {
	return auth.Resolve(&auth.EnvProvider{}, &auth.SettingsProvider{Settings: cfg})
}

// clientOptions maps configuration onto monday client options.
func clientOptions() []monday.Option {
	opts := []monday.Option{monday.WithLogger(logger)}
	if cfg.Monday.Endpoint != "" {
		opts = append(opts, monday.WithEndpoint(cfg.Monday.Endpoint))
	}
	if cfg.Monday.FileEndpoint != "" {
		opts = append(opts, monday.WithFileEndpoint(cfg.Monday.FileEndpoint))
	}
	if cfg.Monday.APIVersion != "" {
		opts = append(opts, monday.WithAPIVersion(cfg.Monday.APIVersion))
	}
	if cfg.Monday.Timeout > 0 {
		opts = append(opts, monday.WithTimeout(cfg.Monday.Timeout))
	}
	return opts
}

// openHistory opens the filing history, or returns nil when disabled or
// unavailable. History is never required to file a bug.
func openHistory() *history.Store {
	if cfg.History.Path == "" {
		return nil
	}
	h, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.Warn("history disabled", zap.String("path", cfg.History.Path), zap.Error(err))
		return nil
	}
	return h
}

// newDispatcher builds the dispatcher the one-shot commands share with serve.
// A missing token is left for the dispatcher to report.
func newDispatcher(h *history.Store) *bridge.Dispatcher {
	defaults := bridge.Defaults{BoardID: cfg.Board.ID, GroupID: cfg.Board.GroupID}
	if cred, err := credential(); err == nil {
		defaults.Token = cred.Token()
	}

	opts := []bridge.Option{
		bridge.WithDefaults(defaults),
		bridge.WithLogger(logger),
	}
	if h != nil {
		opts = append(opts, bridge.WithRecorder(h))
	}
	return bridge.NewDispatcher(bridge.MondayClients(clientOptions()...), opts...)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if groupFlag != "" && boardFlag == "" {
		return fmt.Errorf("--group requires --board to be specified")
	}

	cred, err := credential()
	if err != nil {
		return err
	}

	settings, err := config.OpenSettings(cfg.Path)
	if err != nil {
		return err
	}

	// Fall back to the saved selection when no flags are given.
	boardID, groupID := boardFlag, groupFlag
	if boardID == "" {
		boardID, groupID = cfg.Board.ID, cfg.Board.GroupID
	}

	h := openHistory()
	if h != nil {
		defer h.Close()
	}

	opts := tui.Options{
		BoardID: boardID,
		GroupID: groupID,
		Logger:  logger,
		OnSelect: func(boardID, groupID string) error {
			if err := settings.SetSelection(boardID, groupID); err != nil {
				return err
			}
			return settings.Save()
		},
	}
	if h != nil {
		opts.Recorder = h
	}

	client := monday.New(cred, clientOptions()...)
	app := tui.NewAppModel(client, store.New(), cmd.Context(), opts)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// respond prints a failed envelope as JSON when requested and turns it into
// an error for the exit status.
func respond(w io.Writer, resp bridge.Response) error {
	if resp.Success {
		return nil
	}
	if jsonOutput {
		if err := printJSON(w, resp); err != nil {
			return err
		}
	}
	return fmt.Errorf("%s", resp.Error)
}
