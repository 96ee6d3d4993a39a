package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/soundclusters/internal/config"
)

var evaluateJSON bool // Print the report as JSON

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Print cluster sizes and the silhouette and Davies-Bouldin indices",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd, os.Getenv)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if err := evaluate(cmd.Context(), cfg, evaluateJSON, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Evaluation failed: %v", err)
		}
	},
}

type evaluationReport struct {
	Tracks        int         `json:"tracks"`
	ClusterSizes  map[int]int `json:"cluster_sizes"`
	Silhouette    float64     `json:"silhouette"`
	DaviesBouldin float64     `json:"davies_bouldin"`
}

func evaluate(ctx context.Context, cfg config.Config, asJSON bool, out io.Writer) error {
	cfg.Storage.Driver = config.DriverNone
	svc, closeCatalog, err := buildDashboard(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCatalog()

	ev, err := svc.Evaluate(ctx)
	if err != nil {
		return err
	}
	ds := svc.Artifacts().Dataset
	report := evaluationReport{
		Tracks:        ds.Len(),
		ClusterSizes:  ds.ClusterSizes(),
		Silhouette:    ev.Silhouette,
		DaviesBouldin: ev.DaviesBouldin,
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(out, "tracks:          %d\n", report.Tracks)
	for _, id := range ds.ClusterIDs() {
		fmt.Fprintf(out, "cluster %d:       %d tracks\n", id, report.ClusterSizes[id])
	}
	fmt.Fprintf(out, "silhouette:      %.4f (higher is better)\n", report.Silhouette)
	fmt.Fprintf(out, "davies-bouldin:  %.4f (lower is better)\n", report.DaviesBouldin)
	return nil
}

func init() {
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "Print the report as JSON")
}
