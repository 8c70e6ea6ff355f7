package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
	"github.com/kailas-cloud/datadesk/internal/domain/scale"
	"github.com/kailas-cloud/datadesk/internal/domain/search/filter"
	"github.com/kailas-cloud/datadesk/internal/domain/search/suggestion"
	"github.com/kailas-cloud/datadesk/internal/domain/search/tab"
	aggregateuc "github.com/kailas-cloud/datadesk/internal/usecase/aggregate"
	searchuc "github.com/kailas-cloud/datadesk/internal/usecase/search"
)

func suggestCmd(f *rootFlags) *cobra.Command {
	var (
		history []string
		remote  []string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "suggest [partial]",
		Short: "Compute autocomplete suggestions for a partial query",
		Example: `  datadeskctl suggest mar -f assets.json
  datadeskctl suggest sal -f assets.json --history "sales q3" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := f.loadRecords()
			if err != nil {
				return err
			}
			rs := make([]suggestion.Suggestion, 0, len(remote))
			for _, t := range remote {
				rs = append(rs, suggestion.New(t, suggestion.SourceServer))
			}
			got := searchuc.ComputeSuggestions(args[0], history, rs, recs, limit)

			if f.json {
				type item struct {
					Text   string `json:"text"`
					Source string `json:"source"`
				}
				out := make([]item, 0, len(got))
				for _, s := range got {
					out = append(out, item{Text: s.Text(), Source: string(s.Source())})
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}
			for _, s := range got {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t(%s)\n", s.Text(), s.Source())
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&history, "history", nil, "recent search terms, most recent first")
	cmd.Flags().StringSliceVar(&remote, "remote", nil, "suggestions as returned by the record service")
	cmd.Flags().IntVarP(&limit, "limit", "n", suggestion.MaxResults, "maximum suggestions")
	return cmd
}

func filterCmd(f *rootFlags) *cobra.Command {
	var (
		query   string
		tabName string
		starred []string
		values  = map[filter.Dimension]*[]string{}
	)
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter records by query, dimension values and tab",
		Example: `  datadeskctl filter -f assets.json -q marketing
  datadeskctl filter -f assets.json --type Dataset --type Report --tab pending_certification`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := f.loadRecords()
			if err != nil {
				return err
			}
			raw := make(map[filter.Dimension][]string, len(values))
			for dim, v := range values {
				if len(*v) > 0 {
					raw[dim] = *v
				}
			}
			sel, err := filter.NewSelection(raw)
			if err != nil {
				return err
			}
			t := tab.Tab(tabName)
			if !t.IsValid() {
				return fmt.Errorf("invalid tab %q", tabName)
			}
			stars := make(map[string]struct{}, len(starred))
			for _, id := range starred {
				stars[id] = struct{}{}
			}

			got := searchuc.FilterRecords(recs, searchuc.Criteria{
				Query:     query,
				Selection: sel,
				Tab:       t,
				Starred:   stars,
				Now:       time.Now(),
			})
			return printRecords(cmd, f.json, got)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "free-text query")
	cmd.Flags().StringVar(&tabName, "tab", string(tab.All), "all, recently_modified, favorites, pending_certification")
	cmd.Flags().StringSliceVar(&starred, "starred", nil, "favorite record ids")
	for _, dim := range filter.Dimensions {
		v := &[]string{}
		values[dim] = v
		cmd.Flags().StringArrayVar(v, string(dim), nil, "keep records whose "+string(dim)+" is one of these (repeatable)")
	}
	return cmd
}

func printRecords(cmd *cobra.Command, asJSON bool, recs []record.Record) error {
	if asJSON {
		type row struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Type   string `json:"type"`
			Domain string `json:"domain"`
			Owner  string `json:"owner"`
			Status string `json:"status"`
		}
		out := make([]row, 0, len(recs))
		for i := range recs {
			r := &recs[i]
			out = append(out, row{r.ID(), r.Name(), r.Type(), r.Domain(), r.OwnerOrDefault(), r.Status()})
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tDOMAIN\tOWNER\tSTATUS")
	for i := range recs {
		r := &recs[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID(), r.Name(), r.Type(), r.Domain(), r.OwnerOrDefault(), r.Status())
	}
	fmt.Fprintf(tw, "\n%d record(s)\n", len(recs))
	return tw.Flush() //nolint:wrapcheck // writer error is the only output
}

func summaryCmd(f *rootFlags) *cobra.Command {
	var boundaries []int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize application records for the dashboard",
		Example: `  datadeskctl summary -k application -f applications.json
  datadeskctl summary -k application -f applications.json --boundaries 7,14,28 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := f.loadRecords()
			if err != nil {
				return err
			}
			if len(boundaries) == 0 {
				boundaries = aggregateuc.DefaultAgeBoundaries
			}
			sum, err := aggregateuc.Summarize(recs, boundaries, time.Now().UTC())
			if err != nil {
				return err
			}
			if f.json {
				return writeJSON(cmd.OutOrStdout(), sum)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Applications: %d\n", sum.Total)
			fmt.Fprintf(out, "Backlog:      %d (%.1f%%)\n", sum.Backlog, sum.BacklogRatio*100)
			fmt.Fprintf(out, "Avg days:     %.1f\n", sum.AvgProcessingDays)
			fmt.Fprintln(out, "\nAge")
			for _, b := range sum.AgeBuckets {
				fmt.Fprintf(out, "  %-8s %d\n", b.Label, b.Count)
			}
			fmt.Fprintln(out, "\nBy type")
			for _, e := range sum.ByType.Entries() {
				fmt.Fprintf(out, "  %-24s %d\n", e.Key, e.Count)
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&boundaries, "boundaries", nil, "ascending day boundaries of the age histogram")
	return cmd
}

func classifyCmd(_ *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "classify [scale] [value]",
		Short:   "Classify a metric value on a named scale (quality, utilization, compliance, risk)",
		Example: "  datadeskctl classify risk 72",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, ok := scale.ByName(args[0])
			if !ok {
				return fmt.Errorf("unknown scale %q", args[0])
			}
			label := scale.NoData
			if v, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64); err == nil {
				label = sc.ClassifyValue(v)
			}
			fmt.Fprintln(cmd.OutOrStdout(), label)
			return nil
		},
	}
}
