package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/apix/packages/history"
	"github.com/abdul-hamid-achik/apix/packages/output"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded requests",
		Long: heredoc.Docf(`
			Every executed request is recorded in %s inside the configuration
			directory. Disable recording with --no-history or
			"apix config set history false".`, history.FileName),
	}
	cmd.AddCommand(
		newHistoryListCmd(a),
		newHistoryStatsCmd(a),
		newHistoryClearCmd(a),
	)
	return cmd
}

// withStore opens the history database for the duration of fn.
func withStore(a *app, fn func(*history.Store) error) error {
	store, err := history.OpenDir(a.cfg.Dir())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCmd(a *app) *cobra.Command {
	var (
		name   string
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded requests, newest first",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(a, func(store *history.Store) error {
				entries, err := store.List(cmd.Context(), limit, name)
				if err != nil {
					return err
				}
				if asJSON {
					if entries == nil {
						entries = []history.Entry{}
					}
					return output.WriteJSON(cmd.OutOrStdout(), entries)
				}
				if len(entries) == 0 {
					a.console.Info("no requests recorded")
					return nil
				}

				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					status := strconv.Itoa(e.StatusCode)
					if e.Error != "" {
						status = "error"
					}
					rows = append(rows, []string{
						humanize.Time(e.CreatedAt),
						e.Name,
						e.Method,
						e.URL,
						status,
						e.Duration.Round(time.Millisecond).String(),
						humanize.Bytes(uint64(max(e.Bytes, 0))),
					})
				}
				return output.WriteTable(cmd.OutOrStdout(),
					[]string{"WHEN", "NAME", "METHOD", "URL", "STATUS", "DURATION", "SIZE"}, rows)
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Only requests with this name (adhoc for ad-hoc requests)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of entries, 0 for all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func newHistoryStatsCmd(a *app) *cobra.Command {
	var (
		name   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show latency percentiles of recorded requests",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(a, func(store *history.Store) error {
				stats, err := store.Stats(cmd.Context(), name)
				if err != nil {
					return err
				}
				if asJSON {
					return output.WriteJSON(cmd.OutOrStdout(), stats)
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Requests: %d (%d failed, %.1f%%)\n", stats.Count, stats.Errors, stats.ErrorRate()*100)
				if stats.Count == stats.Errors {
					return nil
				}
				return output.WriteTable(w, []string{"MIN", "MEAN", "P50", "P95", "P99", "MAX"}, [][]string{{
					roundLatency(stats.Min),
					roundLatency(stats.Mean),
					roundLatency(stats.P50),
					roundLatency(stats.P95),
					roundLatency(stats.P99),
					roundLatency(stats.Max),
				}})
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Only requests with this name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print statistics as JSON")
	return cmd
}

func newHistoryClearCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete recorded requests",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(a, func(store *history.Store) error {
				n, err := store.Clear(cmd.Context(), name)
				if err != nil {
					return err
				}
				a.console.Success("Deleted %d %s", n, pluralize(n, "entry", "entries"))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Only requests with this name")
	return cmd
}

func roundLatency(d time.Duration) string {
	return d.Round(100 * time.Microsecond).String()
}

func pluralize(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
