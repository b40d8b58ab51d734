package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/recruit-matcher/internal/filtering"
	"github.com/spigell/recruit-matcher/internal/recruit"
	"github.com/spigell/recruit-matcher/internal/scoring"
	"github.com/spigell/recruit-matcher/internal/session"
)

const (
	PromptSelect    = "Select or deselect candidates"
	PromptFilter    = "Filter by name, role or skill"
	PromptConfirm   = "Confirm selection to the shortlist"
	PromptShortlist = "Show the shortlist of this job"
	PromptExit      = "Exit"
	PromptBack      = "back"
)

var errExit = errors.New("exit requested")

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score the candidate pool against a job",
	Run: func(cmd *cobra.Command, _ []string) {
		if err := runMatch(cmd); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("job", "", "id of the job to match against (required)")
	matchCmd.Flags().StringSlice("candidates", nil, "restrict the pool to these candidate ids")
	matchCmd.Flags().StringP("query", "q", "", "only show candidates whose name, role or skills contain the text")
	matchCmd.Flags().Int("min-score", 0, "only show candidates scoring at least this much")
	matchCmd.Flags().StringSlice("skills", nil, "only show candidates having all of these skills")
	matchCmd.Flags().StringSlice("select", nil, "candidate ids to select")
	matchCmd.Flags().Int("auto-select-above", -1, "preselect candidates scoring at least this much (overrides session.auto-select-above)")
	matchCmd.Flags().BoolP("auto-approve", "y", false, "confirm the selection to the shortlist without asking")
	matchCmd.Flags().BoolP("interactive", "i", false, "select, filter and confirm candidates interactively")
	matchCmd.Flags().Bool("explain", false, "annotate the top results with AI key points")

	_ = matchCmd.MarkFlagRequired("job")
}

func runMatch(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := newDeps(ctx, true)
	if err != nil {
		return err
	}
	defer d.Close()

	flags := cmd.Flags()
	jobID, _ := flags.GetString("job")
	ids, _ := flags.GetStringSlice("candidates")

	job, err := d.dataset.Jobs.Get(jobID)
	if err != nil {
		d.logger.Error("job not found", zap.String("job_id", jobID), zap.Strings("existing jobs", d.dataset.Jobs.Titles()))
		return err
	}

	pool, err := d.dataset.Candidates.Pool(ids...)
	if err != nil {
		d.logger.Error("candidate not found", zap.Strings("existing candidates", d.dataset.Candidates.IDs()))
		return err
	}

	opts := d.sessionOptions()
	if v, _ := flags.GetInt("auto-select-above"); v >= 0 {
		opts.AutoSelectAbove = v
	}

	sess, err := score(ctx, d, *job, pool, opts)
	if err != nil {
		return err
	}

	if explain, _ := flags.GetBool("explain"); explain {
		cfg := d.config.AI
		if cfg == nil {
			cfg = &AIConfig{}
		}
		cfg.Enabled = true
		explainer, err := newExplainer(ctx, cfg, d.logger)
		if err != nil {
			d.logger.Warn("skipping explanations", zap.Error(err))
		} else if _, err := sess.Explain(ctx, explainer, cfg.ExplainTop, d.logger); err != nil {
			return err
		}
	}

	selected, _ := flags.GetStringSlice("select")
	for _, id := range selected {
		if err := sess.Select(id); err != nil {
			return err
		}
	}

	query, _ := flags.GetString("query")
	minScore, _ := flags.GetInt("min-score")
	skills, _ := flags.GetStringSlice("skills")

	pipeline := filtering.New([]filtering.Filter{
		filtering.NewQuery(query),
		filtering.NewMinScore(minScore),
		filtering.NewSkills(skills),
	}, d.logger)

	for _, status := range pipeline.Describe() {
		d.logger.Debug("filter configured",
			zap.String("filter", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	results, _, err := pipeline.RunFilters(ctx, sess.Results())
	if err != nil {
		return err
	}

	printResults(os.Stdout, sess, results)

	if interactive, _ := flags.GetBool("interactive"); interactive {
		return interact(ctx, d, sess, results)
	}

	if approve, _ := flags.GetBool("auto-approve"); approve && len(sess.Selected()) > 0 {
		return confirm(ctx, d, sess)
	}

	return nil
}

// score runs the session start in the background so an interrupt abandons it.
func score(ctx context.Context, d *deps, job recruit.Job, pool []recruit.Candidate, opts session.Options) (*session.Session, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pending := session.StartAsync(ctx, d.engine, job, pool, opts)
	sess, err := pending.Wait(ctx)
	if err != nil {
		pending.Cancel()
		d.logger.Warn("scoring interrupted", zap.String("job_id", job.ID), zap.Error(err))
		return nil, err
	}
	return sess, nil
}

func printResults(w io.Writer, sess *session.Session, results []scoring.Ranked) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tNAME\tROLE\tSCORE\tSTARS\tSKILLS\tEXPERIENCE\tEDUCATION\tSELECTED")
	for _, r := range results {
		mark := ""
		if sess.IsSelected(r.CandidateID) {
			mark = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%.1f\t%.0f\t%.0f\t%.0f\t%s\n",
			r.Rank, r.CandidateID, r.Candidate.Name, r.Candidate.Role,
			r.Score, r.Stars(), r.Skills, r.Experience, r.Education, mark,
		)
		for _, point := range r.KeyPoints {
			fmt.Fprintf(tw, "\t\t  - %s\t\t\t\t\t\t\t\n", point)
		}
	}
	_ = tw.Flush()

	for _, s := range sess.Skipped() {
		fmt.Fprintf(w, "skipped %s: %s\n", s.CandidateID, s.Reason)
	}
}

// interact starts from the results already filtered by the command line flags.
func interact(ctx context.Context, d *deps, sess *session.Session, visible []scoring.Ranked) error {
	prompt := promptui.Select{
		Label: fmt.Sprintf("%s: what next?", sess.Job().Title),
		Items: []string{PromptSelect, PromptFilter, PromptConfirm, PromptShortlist, PromptExit},
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		switch action {
		case PromptSelect:
			err = selectLoop(sess, visible)
		case PromptFilter:
			visible, err = filterPrompt(sess)
			if err == nil {
				printResults(os.Stdout, sess, visible)
			}
		case PromptConfirm:
			if err = confirm(ctx, d, sess); errors.Is(err, recruit.ErrInvalidInput) {
				d.logger.Warn("nothing to confirm", zap.Error(err))
				err = nil
			}
		case PromptShortlist:
			err = printShortlist(ctx, os.Stdout, d, sess.JobID(), formatTable)
		case PromptExit:
			err = errExit
		default:
			err = fmt.Errorf("invalid action: %s", action)
		}

		if errors.Is(err, errExit) {
			d.logger.Info("exiting", zap.Int("selected", len(sess.Selected())))
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func selectLoop(sess *session.Session, visible []scoring.Ranked) error {
	for {
		candidatePrompt := promptui.Select{
			Label: "Choose a candidate and press ENTER to toggle",
			Items: selectItems(sess, visible),
			Size:  10,
		}

		idx, choice, err := candidatePrompt.Run()
		if err != nil {
			return err
		}
		if choice == PromptBack {
			return nil
		}

		if _, err := sess.Toggle(visible[idx].CandidateID); err != nil {
			return err
		}
	}
}

// selectItems lists the visible results with their selection mark, followed by PromptBack.
func selectItems(sess *session.Session, visible []scoring.Ranked) []string {
	items := make([]string, 0, len(visible)+1)
	for _, r := range visible {
		mark := "[ ]"
		if sess.IsSelected(r.CandidateID) {
			mark = "[x]"
		}
		items = append(items, fmt.Sprintf("%s %s %s / %s / %d", mark, r.CandidateID, r.Candidate.Name, r.Candidate.Role, r.Score))
	}
	return append(items, PromptBack)
}

func filterPrompt(sess *session.Session) ([]scoring.Ranked, error) {
	textPrompt := promptui.Prompt{Label: "Search (empty shows everyone)"}
	text, err := textPrompt.Run()
	if err != nil {
		return nil, err
	}
	return sess.Filter(strings.TrimSpace(text)), nil
}

func confirm(ctx context.Context, d *deps, sess *session.Session) error {
	entries, err := d.shortlist.Confirm(ctx, sess, sess.Selected())
	if err != nil {
		return err
	}
	d.logger.Info("candidates shortlisted", zap.String("job_id", sess.JobID()), zap.Int("count", len(entries)))
	return nil
}
