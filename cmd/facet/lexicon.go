package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/facet/pkg/facet/lexicon"
)

func newLexiconCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Manage SQLite lexical resources",
	}
	cmd.AddCommand(newLexiconImportCmd(), newLexiconListCmd())
	return cmd
}

func newLexiconImportCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "import FILE.yaml...",
		Short: "Load YAML stop-word and stop-label files into a SQLite database",
		Long: `Each file replaces the stored resources of the language it names
(or the language given by its file name, e.g. en.yaml).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := lexicon.OpenSQLite(ctx, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			for _, file := range args {
				data, err := lexicon.LoadFromYAML(file)
				if err != nil {
					return fmt.Errorf("load %s: %w", file, err)
				}
				if err := db.Replace(ctx, data); err != nil {
					return err
				}
				stats := data.Stats()
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d stop words, %d stop labels\n",
					data.Language(), stats.StopWords, stats.StopLabels)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (required)")
	cmd.MarkFlagRequired("db")
	return cmd
}

func newLexiconListCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the languages stored in a SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := lexicon.OpenSQLite(ctx, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			langs, err := db.Languages(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(langs, "\n"))
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (required)")
	cmd.MarkFlagRequired("db")
	return cmd
}
