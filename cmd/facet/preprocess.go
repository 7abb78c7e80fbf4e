package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cognicore/facet/internal/jsonl"
	"github.com/cognicore/facet/pkg/facet"
	"github.com/cognicore/facet/pkg/facet/analysis"
	"github.com/cognicore/facet/pkg/facet/document"
	"github.com/cognicore/facet/pkg/facet/metrics"
	"github.com/cognicore/facet/pkg/facet/preprocess"
)

type preprocessFlags struct {
	input      string
	query      string
	language   string
	format     string
	limit      int
	metricsOut string
}

func newPreprocessCmd() *cobra.Command {
	var f preprocessFlags
	cmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Extract label candidates from a JSONL batch",
		Long: `Reads documents (one JSON object per line, "-" for stdin), runs the
preprocessing pipeline and prints the label candidates with their
document frequencies and assigned documents.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreprocess(cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.input, "input", "i", "-", "Input JSONL file")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "Search query the documents were retrieved for")
	cmd.Flags().StringVarP(&f.language, "language", "l", "", "Language override ("+supportedLanguages()+")")
	cmd.Flags().StringVar(&f.format, "format", "table", "Output format (table, json)")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 0, "Print at most n labels (0 = all)")
	cmd.Flags().StringVar(&f.metricsOut, "metrics-out", "", "Write Prometheus metrics to this file")
	return cmd
}

func supportedLanguages() string {
	var names []string
	for _, lang := range analysis.Supported() {
		names = append(names, string(lang))
	}
	return strings.Join(names, ", ")
}

func runPreprocess(cmd *cobra.Command, f preprocessFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if f.language != "" {
		cfg.Language = f.language
	}
	if f.format != "table" && f.format != "json" {
		return fmt.Errorf("unknown format %q", f.format)
	}

	var docs []document.Document
	if f.input == "-" {
		docs, err = jsonl.Load(cmd.InOrStdin())
	} else {
		docs, err = jsonl.LoadFile(f.input)
	}
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	ctx := cmd.Context()
	p, err := facet.New(ctx, facet.Options{Config: cfg, Metrics: metrics.New(reg)})
	if err != nil {
		return err
	}
	defer p.Close()

	frozen, err := p.Preprocess(ctx, docs, f.query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.format == "json" {
		err = writeJSON(out, frozen, f.limit)
	} else {
		err = writeTable(out, cmd.ErrOrStderr(), frozen, f.limit)
	}
	if err != nil {
		return err
	}

	if f.metricsOut != "" {
		if err := prometheus.WriteToTextfile(f.metricsOut, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

// labelRow is the printed form of a label candidate
type labelRow struct {
	Text      string   `json:"text"`
	Kind      string   `json:"kind"`
	DF        int      `json:"df"`
	TF        int      `json:"tf"`
	Documents []string `json:"documents"`
}

func rows(frozen *preprocess.Frozen, limit int) []labelRow {
	labels := frozen.Labels()
	if limit > 0 && len(labels) > limit {
		labels = labels[:limit]
	}
	out := make([]labelRow, 0, len(labels))
	for _, l := range labels {
		row := labelRow{Text: l.Text, Kind: l.Kind.String(), DF: l.DF, TF: l.TF}
		it := l.Docs.Iterator()
		for it.HasNext() {
			row.Documents = append(row.Documents, documentName(frozen.Document(int(it.Next()))))
		}
		out = append(out, row)
	}
	return out
}

// documentName prefers the external ID and falls back to the batch index
func documentName(d document.Document) string {
	if d.ID != "" {
		return d.ID
	}
	return fmt.Sprintf("#%d", d.Index)
}

func writeTable(w, errW io.Writer, frozen *preprocess.Frozen, limit int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tKIND\tDF\tTF\tDOCUMENTS")
	for _, r := range rows(frozen, limit) {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", r.Text, r.Kind, r.DF, r.TF, strings.Join(r.Documents, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, warn := range frozen.Warnings() {
		fmt.Fprintf(errW, "skipped document %d: %s\n", warn.DocIndex, warn.Reason)
	}
	return nil
}

func writeJSON(w io.Writer, frozen *preprocess.Frozen, limit int) error {
	type warning struct {
		Document int    `json:"document"`
		Reason   string `json:"reason"`
	}
	result := struct {
		Run       string         `json:"run"`
		Language  string         `json:"language"`
		Documents int            `json:"documents"`
		Labels    []labelRow     `json:"labels"`
		Rejected  map[string]int `json:"rejected,omitempty"`
		Warnings  []warning      `json:"warnings,omitempty"`
	}{
		Run:       frozen.RunID(),
		Language:  string(frozen.Language()),
		Documents: frozen.DocumentCount(),
		Labels:    rows(frozen, limit),
		Rejected:  frozen.Rejections(),
	}
	for _, warn := range frozen.Warnings() {
		result.Warnings = append(result.Warnings, warning{Document: warn.DocIndex, Reason: warn.Reason})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
