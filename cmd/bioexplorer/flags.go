// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

// addFilterFlags registers the facet flags shared by search, ask and export.
func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("year-from", 0, "earliest publication year")
	f.Int("year-to", 0, "latest publication year")
	f.String("mission", "", "mission or environment, e.g. ISS")
	f.StringSlice("species", nil, "organism(s), repeatable")
	f.StringSlice("outcome", nil, "outcome type(s): positive, negative, mixed, inconclusive")
}

// filtersFromFlags builds search filters from the facet flags and the
// positional query words. Zero years are left unset.
func filtersFromFlags(cmd *cobra.Command, args []string) (types.SearchFilters, error) {
	f := types.DefaultSearchFilters()
	f.Query = strings.Join(args, " ")

	flags := cmd.Flags()
	if v, _ := flags.GetInt("year-from"); v > 0 {
		f.YearFrom = types.IntPtr(v)
	}
	if v, _ := flags.GetInt("year-to"); v > 0 {
		f.YearTo = types.IntPtr(v)
	}
	f.Mission, _ = flags.GetString("mission")
	f.Species, _ = flags.GetStringSlice("species")

	outcomes, _ := flags.GetStringSlice("outcome")
	for _, o := range outcomes {
		ot := types.OutcomeType(strings.ToLower(strings.TrimSpace(o)))
		if !ot.Valid() {
			return f, fmt.Errorf("invalid outcome %q (want positive, negative, mixed or inconclusive)", o)
		}
		f.Outcome = append(f.Outcome, ot)
	}

	if flags.Lookup("page") != nil {
		f.Page, _ = flags.GetInt("page")
		if flags.Changed("page-size") {
			f.PageSize, _ = flags.GetInt("page-size")
		} else {
			f.PageSize = 0
		}
	}
	return f, nil
}
