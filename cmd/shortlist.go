package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/recruit-matcher/internal/recruit"
	"github.com/spigell/recruit-matcher/internal/shortlist"
)

var shortlistCmd = &cobra.Command{
	Use:   "shortlist",
	Short: "Inspect and edit per-job shortlists",
}

var shortlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List or export the shortlist of a job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetString("job")
		format, _ := cmd.Flags().GetString("format")
		return withDeps(cmd, func(ctx context.Context, d *deps) error {
			return printShortlist(ctx, cmd.OutOrStdout(), d, jobID, format)
		})
	},
}

var shortlistRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a candidate from the shortlist of a job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetString("job")
		candidateID, _ := cmd.Flags().GetString("candidate")
		return withDeps(cmd, func(ctx context.Context, d *deps) error {
			if err := d.shortlist.Remove(ctx, jobID, candidateID); err != nil {
				return err
			}
			d.logger.Info("removed from shortlist", zap.String("job_id", jobID), zap.String("candidate_id", candidateID))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(shortlistCmd)
	shortlistCmd.AddCommand(shortlistListCmd, shortlistRemoveCmd)

	shortlistCmd.PersistentFlags().String("job", "", "job id (required)")
	_ = shortlistCmd.MarkPersistentFlagRequired("job")
	shortlistListCmd.Flags().String("format", formatTable, "output format: table or json")
	shortlistRemoveCmd.Flags().String("candidate", "", "candidate id (required)")
	_ = shortlistRemoveCmd.MarkFlagRequired("candidate")
}

func withDeps(cmd *cobra.Command, fn func(context.Context, *deps) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := newDeps(ctx, false)
	if err != nil {
		return err
	}
	defer d.Close()

	return fn(ctx, d)
}

const (
	formatTable = "table"
	formatJSON  = "json"
)

type shortlistExport struct {
	JobID   string            `json:"job_id"`
	Entries []shortlist.Entry `json:"entries"`
}

func printShortlist(ctx context.Context, w io.Writer, d *deps, jobID, format string) error {
	switch format {
	case "", formatTable, formatJSON:
	default:
		return recruit.Invalid("format", "must be %s or %s, got %q", formatTable, formatJSON, format)
	}

	entries, err := d.shortlist.List(ctx, jobID)
	if err != nil {
		return err
	}

	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(shortlistExport{JobID: jobID, Entries: entries})
	}

	if len(entries) == 0 {
		fmt.Fprintf(w, "shortlist of job %s is empty\n", jobID)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CANDIDATE\tNAME\tDECIDED AT")
	for _, e := range entries {
		name := ""
		if d.dataset != nil {
			if c := d.dataset.Candidates.FindByID(e.CandidateID); c != nil {
				name = c.Name
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.CandidateID, name, e.DecidedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}
