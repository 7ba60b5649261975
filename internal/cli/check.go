package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/andywolf/langloc/internal/stimuli"
	"github.com/andywolf/langloc/internal/trial"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that stimulus sets load",
	Long: `Load every selected stimulus set, build its run sequence and report the
sentence counts per condition and the run length. Fails on the first set
that is missing or has a malformed row.

Example:
  langloc check --runs 1-2 --sets 1-4
  langloc check --runs 1 --sets 1,3`,
	RunE: checkSets,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringSlice("runs", []string{"1-2"}, "Runs to check (e.g., 1-2 or 1,2)")
	checkCmd.Flags().StringSlice("sets", []string{"1"}, "Stimulus sets to check (e.g., 1-4)")
	checkCmd.Flags().String("stimuli", "", "Stimulus directory (default from settings)")
}

func checkSets(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	runFlags, _ := cmd.Flags().GetStringSlice("runs")
	setFlags, _ := cmd.Flags().GetStringSlice("sets")
	runs, err := ExpandRanges(runFlags)
	if err != nil {
		return fmt.Errorf("invalid --runs value: %w", err)
	}
	sets, err := ExpandRanges(setFlags)
	if err != nil {
		return fmt.Errorf("invalid --sets value: %w", err)
	}
	if len(runs) == 0 || len(sets) == 0 {
		return fmt.Errorf("at least one run and one set are required")
	}

	dir := cfg.Localizer.Stimuli.Dir
	if cmd.Flags().Changed("stimuli") {
		dir, _ = cmd.Flags().GetString("stimuli")
	}
	params, err := cfg.TrialParams()
	if err != nil {
		return err
	}

	loaded, loadErr := stimuli.LoadSets(dir, runs, sets)
	if err := writeCheckReport(cmd.OutOrStdout(), loaded, params, cfg.Window.FrameRate); err != nil {
		return err
	}
	return loadErr
}

func writeCheckReport(w io.Writer, sets []stimuli.Set, params trial.Params, rate float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSET\tSENTENCES\tS\tN\tWORDS\tTRIALS\tDURATION")
	for _, s := range sets {
		seq := trial.Build(s.Sentences, params)
		c := seq.Counts()
		duration, err := seq.Duration(rate)
		if err != nil {
			return fmt.Errorf("run %d set %d: %w", s.Run, s.Set, err)
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			s.Run, s.Set, c.Sentence,
			c.ByCondition[trial.ConditionWords], c.ByCondition[trial.ConditionNonwords],
			c.Words, len(seq), duration)
	}
	return tw.Flush()
}
