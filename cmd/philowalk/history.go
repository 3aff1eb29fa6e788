package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/philowalk/internal/config"
	"github.com/nao1215/philowalk/internal/database"
	"github.com/nao1215/philowalk/internal/report"
)

// NewHistoryCmd creates the history command.
// This command shows sessions stored in the database by earlier walks.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or show saved walk sessions",
		Long: `History lists the sessions saved by 'philowalk walk', newest first.
With --id it prints the full report of one session, including every walk.

Examples:
  # List saved sessions
  philowalk history

  # Show one session as Markdown
  philowalk history --id 6c1f0a9e-... --markdown

  # Remove a session
  philowalk history --id 6c1f0a9e-... --delete`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("id", "i", "",
		"Session ID to show (use the listing to see available IDs)")
	cmd.Flags().Bool("delete", false,
		"Delete the session given with --id")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (used for the database directory)")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	id, err := flags.GetString("id")
	if err != nil {
		return err
	}
	deleteSession, err := flags.GetBool("delete")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}
	if deleteSession && id == "" {
		return errors.New("--delete requires --id")
	}

	dbDir, err := historyDBDir(cmd)
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if deleteSession {
		removed, err := db.DeleteSession(ctx, id)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("session not found: %s", id)
		}
		fmt.Fprintf(out, "Deleted session %s\n", id)
		return nil
	}

	w, err := report.NewWriter(reportFormat(jsonOutput, markdownOutput), out, true)
	if err != nil {
		return err
	}

	if id != "" {
		sessionReport, err := db.GetSession(ctx, id)
		if err != nil {
			return err
		}
		if sessionReport == nil {
			return fmt.Errorf("session not found: %s", id)
		}
		_, err = w.Write(sessionReport)
		return err
	}

	sessions, err := db.ListSessions(ctx)
	if err != nil {
		return err
	}
	_, err = w.WriteList(sessions)
	return err
}

// historyDBDir resolves the database directory: --db-dir, then the
// configuration file, then the XDG default.
func historyDBDir(cmd *cobra.Command) (string, error) {
	flags := cmd.Flags()
	if flags.Changed("db-dir") {
		return flags.GetString("db-dir")
	}

	cfg := config.NewConfig()
	var err error
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return "", err
	}
	if err := applyConfigFile(cfg); err != nil {
		return "", err
	}
	return cfg.DBDir, nil
}
