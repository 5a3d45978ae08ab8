package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/vocabecho/internal/config"
	"github.com/hammamikhairi/vocabecho/internal/conversation"
	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
	"github.com/hammamikhairi/vocabecho/internal/storage"
	"github.com/hammamikhairi/vocabecho/internal/wordsource"
)

func newManifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest <dir>",
		Short: "Write manifest.json listing the CSV vocabularies in dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := wordsource.WriteManifest(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wrote %s with %d files\n", wordsource.ManifestName, len(m.Files))
			for _, name := range m.Files {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
}

func newListsCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "Print your FrDic study lists for the practice language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := setup(f)
			if err != nil {
				return err
			}
			defer closeLog()

			store, err := storage.OpenSQLite(cfg.DBPath, log)
			if err != nil {
				return err
			}
			defer store.Close()

			client, err := newFrDic(cmd.Context(), cfg, store, log)
			if err != nil {
				return err
			}
			cats, err := client.Categories(cmd.Context(), cfg.Language)
			if err != nil {
				return err
			}
			printCategories(cmd.OutOrStdout(), cats)
			return nil
		},
	}
}

func newHistoryCmd(f *flags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent practice runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, closeLog, err := setup(f)
			if err != nil {
				return err
			}
			defer closeLog()

			store, err := storage.OpenSQLite(cfg.DBPath, log)
			if err != nil {
				return err
			}
			defer store.Close()

			return printHistory(cmd.Context(), cmd.OutOrStdout(), store, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}

// newFrDic builds an API client from the configured token, falling back
// to the stored one.
func newFrDic(ctx context.Context, cfg *config.Config, creds domain.CredentialStore, log *logger.Logger) (*wordsource.FrDic, error) {
	token := cfg.API.Token
	if token == "" {
		stored, err := creds.LoadToken(ctx)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		token = stored
	}
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	return wordsource.NewFrDic(token, log.With("component", "frdic"),
		wordsource.WithBaseURL(cfg.API.BaseURL),
		wordsource.WithPageSize(cfg.API.PageSize),
		wordsource.WithHTTPClient(newHTTPClient(cfg.API.Timeout)),
	), nil
}

func printCategories(out io.Writer, cats []wordsource.Category) {
	if len(cats) == 0 {
		fmt.Fprintln(out, "no study lists")
		return
	}
	for _, c := range cats {
		mark := "?"
		if c.HasWords != nil {
			mark = "empty"
			if *c.HasWords {
				mark = "words"
			}
		}
		fmt.Fprintf(out, "%-12s %-6s %s\n", c.ID, mark, c.Name)
	}
}

func printHistory(ctx context.Context, out io.Writer, runs domain.RunStore, limit int) error {
	list, err := runs.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "no runs yet")
		return nil
	}
	for _, r := range list {
		fmt.Fprintln(out, conversation.FormatRun(r))
	}
	return nil
}
