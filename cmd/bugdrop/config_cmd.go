package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/h0rv/bugdrop/internal/bridge"
	"github.com/h0rv/bugdrop/internal/config"
	"github.com/h0rv/bugdrop/internal/domain"
	"github.com/h0rv/bugdrop/internal/logging"
	"github.com/h0rv/bugdrop/internal/store"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change saved settings",
	}
	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigSetTokenCmd(),
		newConfigSelectCmd(),
		newConfigClearCmd(),
	)
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved settings with the token masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.OpenSettings(cfg.Path)
			if err != nil {
				return err
			}

			values := settings.All()
			if token, ok := values["monday.token"].(string); ok {
				values["monday.token"] = logging.MaskSensitive(token)
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), values)
			}

			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# %s\n", settings.Path())
			for _, k := range keys {
				fmt.Fprintf(w, "%s: %v\n", k, values[k])
			}
			boardID, groupID := settings.Selection()
			fmt.Fprintln(w, store.ConnectionState(settings.MondayToken() != "", boardID, groupID))
			return nil
		},
	}
}

func newConfigSetTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-token <token>",
		Short: "Save a monday.com personal API token",
		Long: `Save a monday.com personal API token to the settings file.

Changing the token clears the saved board and group, since boards belong
to an account.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(args[0])
			if token == "" {
				return errors.New("token must not be empty")
			}

			settings, err := config.OpenSettings(cfg.Path)
			if err != nil {
				return err
			}
			if err := settings.SetToken(token); err != nil {
				return err
			}
			if err := settings.Save(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Token %s saved to %s\n", logging.MaskSensitive(token), settings.Path())
			return nil
		},
	}
}

func newConfigSelectCmd() *cobra.Command {
	var boardID, groupID string

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Save the board and group bugs are filed into",
		Long: `Save the board and group bugs are filed into.

Both ids are checked against the boards visible to the token before they
are saved. Run 'bugdrop boards' to list them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if boardID == "" || groupID == "" {
				return errors.New("both --board and --group are required")
			}

			resp := newDispatcher(nil).Handle(cmd.Context(), bridge.Request{Action: bridge.ActionFetchWorkspaces})
			if err := respond(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			s := store.New()
			s.SetBoards(resp.Data.([]domain.Board))
			board, err := s.Board(boardID)
			if err != nil {
				return fmt.Errorf("board %s: %w", boardID, err)
			}
			group, err := s.Group(boardID, groupID)
			if err != nil {
				return fmt.Errorf("group %s on board %s: %w", groupID, boardID, err)
			}

			settings, err := config.OpenSettings(cfg.Path)
			if err != nil {
				return err
			}
			if err := settings.SetSelection(board.ID, group.ID); err != nil {
				return err
			}
			if err := settings.Save(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Filing into %s / %s\n", board.Name, group.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&boardID, "board", "", "Board ID")
	cmd.Flags().StringVar(&groupID, "group", "", "Group ID")
	return cmd
}

func newConfigClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.OpenSettings(cfg.Path)
			if err != nil {
				return err
			}
			if err := settings.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", settings.Path())
			return nil
		},
	}
}
