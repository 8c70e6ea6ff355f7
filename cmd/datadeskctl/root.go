package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/datadesk/internal/domain/record"
	logpkg "github.com/kailas-cloud/datadesk/internal/logger"
	"github.com/kailas-cloud/datadesk/internal/version"
)

type rootFlags struct {
	file string
	kind string
	json bool
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "datadeskctl",
		Short:         "Search, suggest and summarize exported catalog records",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&f.file, "file", "f", "", "JSON export of records (array, or object with records/data)")
	root.PersistentFlags().StringVarP(&f.kind, "kind", "k", string(record.KindAsset), "record kind: asset, application, timeline")
	root.PersistentFlags().BoolVar(&f.json, "json", false, "output as JSON")

	root.AddCommand(
		suggestCmd(f),
		filterCmd(f),
		summaryCmd(f),
		classifyCmd(f),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "datadeskctl", version.String())
		},
	}
}

// loadRecords reads and normalizes a record export. Repairs are logged, not fatal.
func (f *rootFlags) loadRecords() ([]record.Record, error) {
	kind := record.Kind(f.kind)
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown kind %q", f.kind)
	}
	if f.file == "" {
		return nil, fmt.Errorf("--file is required")
	}

	data, err := os.ReadFile(filepath.Clean(f.file))
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	raws, err := decodeExport(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.file, err)
	}

	recs, repaired := record.NormalizeAll(raws, kind)
	if len(repaired) > 0 {
		log, lerr := logpkg.NewLogger("cli")
		if lerr == nil {
			log.Warn("repaired malformed record fields",
				zap.String("file", f.file),
				zap.Int("count", len(repaired)),
				zap.Strings("fields", repaired),
			)
			_ = log.Sync()
		}
	}
	return recs, nil
}

func decodeExport(data []byte) ([]any, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		for _, key := range []string{"records", "data"} {
			if list, ok := v[key].([]any); ok {
				return list, nil
			}
		}
	}
	return nil, fmt.Errorf("expected a JSON array or an object with records")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
