package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/h0rv/bugdrop/internal/bridge"
	"github.com/h0rv/bugdrop/internal/bugs"
	"github.com/h0rv/bugdrop/internal/domain"
	"github.com/h0rv/bugdrop/internal/history"
	"github.com/h0rv/bugdrop/internal/store"
	"github.com/spf13/cobra"
)

func newFileCmd() *cobra.Command {
	var (
		report      domain.BugReport
		attachPaths []string
	)

	cmd := &cobra.Command{
		Use:   "file",
		Short: "File a bug report",
		Long: `File a bug report as a new item in the selected board group.

The description becomes the item name; every other field goes into a
details update on the item. Attachments are uploaded to a second update.

The command fails only when the item itself cannot be created. Problems
with the details update or attachments are reported but do not change the
exit status.`,
		Example: `  bugdrop file --description "Crash on save" --platform iOS --steps "Tap save"
  bugdrop file -d "Broken layout" --attach shot.png --attach console.log --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			attachments, err := bugs.ReadAttachments(attachPaths)
			if err != nil {
				return err
			}

			h := openHistory()
			if h != nil {
				defer h.Close()
			}

			resp := newDispatcher(h).Handle(cmd.Context(), bridge.Request{
				Action:      bridge.ActionCreateBug,
				BoardID:     boardFlag,
				GroupID:     groupFlag,
				Bug:         &report,
				Attachments: attachments,
			})
			if err := respond(cmd.OutOrStdout(), resp); err != nil {
				return err
			}

			result := resp.Data.(*bugs.Result)
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&report.Description, "description", "d", "", "What went wrong (becomes the item name)")
	f.StringVar(&report.Platform, "platform", "", "Platform, e.g. iOS, Android, Web")
	f.StringVar(&report.Environment, "env", "", "Environment, e.g. production")
	f.StringVar(&report.Version, "version", "", "App version")
	f.StringVar(&report.StepsToReproduce, "steps", "", "Steps to reproduce")
	f.StringVar(&report.ActualResult, "actual", "", "Actual result")
	f.StringVar(&report.ExpectedResult, "expected", "", "Expected result")
	f.StringArrayVar(&attachPaths, "attach", nil, "File to attach (repeatable)")
	f.StringVar(&boardFlag, "board", "", "Board ID (default: saved selection)")
	f.StringVar(&groupFlag, "group", "", "Group ID (default: saved selection)")

	return cmd
}

// printResult describes a filed bug for humans.
func printResult(w io.Writer, result *bugs.Result) {
	fmt.Fprintf(w, "Filed %s\n%s\n", result.Item.Name, result.Item.URL)
	if n := len(result.Attachments); n > 0 {
		uploaded := 0
		for _, o := range result.Attachments {
			if o.OK() {
				uploaded++
			}
		}
		fmt.Fprintf(w, "%d of %d attachments uploaded\n", uploaded, n)
	}
	for _, d := range result.Diagnostics {
		fmt.Fprintf(w, "warning: %s\n", bridge.DiagnosticText(d))
	}
}

func newBoardsCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "boards",
		Short: "List boards and their groups by workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := newDispatcher(nil).Handle(cmd.Context(), bridge.Request{Action: bridge.ActionFetchWorkspaces})
			if err := respond(cmd.OutOrStdout(), resp); err != nil {
				return err
			}

			s := store.New()
			s.SetBoards(resp.Data.([]domain.Board))
			boards := s.FilterBoards(filter)

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), boards)
			}

			w := cmd.OutOrStdout()
			for _, ws := range store.GroupByWorkspace(boards) {
				fmt.Fprintln(w, ws.Workspace)
				for _, b := range ws.Boards {
					fmt.Fprintf(w, "  %s  %s\n", b.ID, b.Name)
					for _, g := range b.Groups {
						fmt.Fprintf(w, "      %s  %s\n", g.ID, g.Title)
					}
				}
			}
			fmt.Fprintln(w, store.BoardCountLabel(len(boards), len(s.Boards())))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only boards whose name or workspace contains this")
	return cmd
}

func newRecentCmd() *cobra.Command {
	var (
		limit  int
		filter string
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the latest bugs in the selected group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := newDispatcher(nil).Handle(cmd.Context(), bridge.Request{
				Action:  bridge.ActionFetchRecentBugs,
				BoardID: boardFlag,
				GroupID: groupFlag,
				Limit:   limit,
			})
			if err := respond(cmd.OutOrStdout(), resp); err != nil {
				return err
			}

			s := store.New()
			s.SetItems(resp.Data.([]domain.ItemSummary))
			items := s.FilterItems(filter)

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), items)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Name, store.StatusLabel(it), store.DateLabel(it.CreatedAt))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if label := store.CountLabel(len(items), len(s.Items()), "bug"); label != "" {
				fmt.Fprintln(cmd.OutOrStdout(), label)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&limit, "limit", 0, "Maximum bugs to fetch (default 10)")
	f.StringVar(&filter, "filter", "", "Only bugs whose name, status or date contains this")
	f.StringVar(&boardFlag, "board", "", "Board ID (default: saved selection)")
	f.StringVar(&groupFlag, "group", "", "Group ID (default: saved selection)")
	return cmd
}

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the token against monday.com",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := newDispatcher(nil).Handle(cmd.Context(), bridge.Request{Action: bridge.ActionTestConnection})
			if err := respond(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), resp)
			}

			info := resp.Data.(bridge.ConnectionInfo)
			fmt.Fprintf(cmd.OutOrStdout(), "Connected as %s <%s>, %d boards visible\n",
				info.User.Name, info.User.Email, len(info.Workspaces))
			fmt.Fprintln(cmd.OutOrStdout(), store.ConnectionState(true, cfg.Board.ID, cfg.Board.GroupID))
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show bugs filed from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.History.Path == "" {
				return fmt.Errorf("history is disabled (history.path is empty)")
			}
			h, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer h.Close()

			entries, err := h.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), entries)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Name, e.URL)
				for _, d := range e.Diagnostics {
					fmt.Fprintf(tw, "\t  warning: %s\t\n", d)
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", history.DefaultLimit, "Maximum entries to show")
	return cmd
}
