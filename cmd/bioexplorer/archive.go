// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bioexplorer/internal/archive"
	"github.com/pdiddy/bioexplorer/internal/search"
	"github.com/pdiddy/bioexplorer/pkg/types"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Keep studies in a local SQLite archive for offline search",
	Long: `The archive stores studies from saved query files in a SQLite database
with a full-text index over title, abstract and keywords. The database path
is archive.path in the config file.`,
}

var archiveImportCmd = &cobra.Command{
	Use:   "import <query-file>...",
	Short: "Add the studies of saved query files to the archive",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runArchiveImport,
}

var archiveSearchCmd = &cobra.Command{
	Use:   "search [fts-query...]",
	Short: "Search archived studies",
	Long: `Search matches archived studies by full-text query and filters.

Examples:
  bioexplorer archive search radiation
  bioexplorer archive search --species "Mus musculus" --year-from 2020`,
	RunE: runArchiveSearch,
}

var archiveGetCmd = &cobra.Command{
	Use:   "get <study-id>",
	Short: "Show one archived study",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveGet,
}

func init() {
	f := archiveSearchCmd.Flags()
	f.String("mission", "", "filter by mission")
	f.StringSlice("species", nil, "filter by organism, repeatable")
	f.Int("year-from", 0, "earliest publication year")
	f.Int("year-to", 0, "latest publication year")
	f.Int("max-results", archive.DefaultMaxResults, "maximum number of results")
	f.Bool("json", false, "output as JSON")

	archiveGetCmd.Flags().Bool("json", false, "output as JSON")

	archiveCmd.AddCommand(archiveImportCmd, archiveSearchCmd, archiveGetCmd)
	rootCmd.AddCommand(archiveCmd)
}

func openArchive() (*archive.Store, error) {
	cfg := explorerConfig(viper.GetViper())
	return archive.Open(cfg.Archive.Path)
}

func runArchiveImport(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	for _, path := range args {
		qf, err := search.ReadQueryFile(path)
		if err != nil {
			return err
		}
		sum, err := store.Save(cmd.Context(), qf.Filters.Query, qf.Studies)
		if err != nil {
			return fmt.Errorf("archiving %s: %w", path, err)
		}
		fmt.Fprintf(os.Stdout, "%s: %d inserted, %d updated, %d skipped\n",
			path, sum.Inserted, sum.Updated, sum.Skipped)
	}

	n, err := store.Count(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Archive holds %d studies\n", n)
	return nil
}

func runArchiveSearch(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	opts := archive.SearchOptions{Query: strings.Join(args, " ")}
	opts.Mission, _ = flags.GetString("mission")
	opts.Species, _ = flags.GetStringSlice("species")
	opts.YearFrom, _ = flags.GetInt("year-from")
	opts.YearTo, _ = flags.GetInt("year-to")
	opts.MaxResults, _ = flags.GetInt("max-results")

	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	studies, err := store.Search(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if asJSON, _ := flags.GetBool("json"); asJSON {
		if studies == nil {
			studies = []types.Study{}
		}
		return search.FormatJSON(studies, os.Stdout)
	}
	search.FormatTable(&types.SearchResponse{
		Studies:  studies,
		Total:    len(studies),
		Page:     1,
		PageSize: len(studies),
		Mode:     types.ModeStructured,
	}, os.Stdout)
	return nil
}

func runArchiveGet(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	d := &types.StudyDetail{Study: st, Related: []types.Study{}, Source: types.DetailFromCache}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return search.FormatJSON(d, os.Stdout)
	}
	search.FormatDetail(d, os.Stdout)
	return nil
}
