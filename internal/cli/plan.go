package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/andywolf/langloc/internal/stimuli"
	"github.com/andywolf/langloc/internal/trial"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the trial sequence of a run without presenting it",
	Long: `Build the run sequence for a stimulus set and print every trial with
its phases and the number of frames each phase is shown for.

Example:
  langloc plan --run 1 --set 1
  langloc plan --run 1 --set 1 --frame-rate 120 --format yaml`,
	RunE: planRun,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().Int("run", 1, "Run number")
	planCmd.Flags().Int("set", 1, "Stimulus set number")
	planCmd.Flags().Float64("frame-rate", 0, "Frame rate in Hz (default from settings)")
	planCmd.Flags().String("stimuli", "", "Stimulus directory (default from settings)")
	planCmd.Flags().String("format", "text", "Output format: text, yaml or json")
}

// plannedPhase is one phase with its frame count at the planned frame rate.
type plannedPhase struct {
	Name     string  `json:"name" yaml:"name"`
	Duration float64 `json:"duration" yaml:"duration"`
	Frames   int     `json:"frames" yaml:"frames"`
}

type plannedTrial struct {
	Index     int            `json:"index" yaml:"index"`
	Kind      trial.Kind     `json:"kind" yaml:"kind"`
	Unit      trial.Unit     `json:"unit" yaml:"unit"`
	Condition string         `json:"condition,omitempty" yaml:"condition,omitempty"`
	Words     []string       `json:"words,omitempty" yaml:"words,omitempty"`
	Phases    []plannedPhase `json:"phases" yaml:"phases"`
}

type runPlan struct {
	FrameRate   float64        `json:"frame_rate" yaml:"frame_rate"`
	TotalFrames int            `json:"total_frames" yaml:"total_frames"`
	Duration    string         `json:"duration" yaml:"duration"`
	Trials      []plannedTrial `json:"trials" yaml:"trials"`
}

func planRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	run, _ := cmd.Flags().GetInt("run")
	set, _ := cmd.Flags().GetInt("set")
	format, _ := cmd.Flags().GetString("format")

	rate := cfg.Window.FrameRate
	if cmd.Flags().Changed("frame-rate") {
		rate, _ = cmd.Flags().GetFloat64("frame-rate")
	}
	dir := cfg.Localizer.Stimuli.Dir
	if cmd.Flags().Changed("stimuli") {
		dir, _ = cmd.Flags().GetString("stimuli")
	}

	sentences, err := stimuli.Load(stimuli.Path(dir, run, set))
	if err != nil {
		return err
	}
	params, err := cfg.TrialParams()
	if err != nil {
		return err
	}

	plan, err := buildPlan(trial.Build(sentences, params), rate)
	if err != nil {
		return err
	}
	return writePlan(cmd.OutOrStdout(), plan, format)
}

func buildPlan(seq trial.RunSequence, rate float64) (*runPlan, error) {
	total, err := seq.Frames(rate)
	if err != nil {
		return nil, err
	}
	duration, err := seq.Duration(rate)
	if err != nil {
		return nil, err
	}

	plan := &runPlan{
		FrameRate:   rate,
		TotalFrames: total,
		Duration:    duration.String(),
		Trials:      make([]plannedTrial, 0, len(seq)),
	}
	for _, d := range seq {
		frames, err := d.Plan.Frames(rate)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", d.Index, err)
		}
		pt := plannedTrial{
			Index:     d.Index,
			Kind:      d.Kind,
			Unit:      d.Plan.Unit,
			Condition: d.Condition,
			Words:     d.Words,
			Phases:    make([]plannedPhase, len(d.Plan.Phases)),
		}
		for i, ph := range d.Plan.Phases {
			pt.Phases[i] = plannedPhase{Name: ph.Name, Duration: ph.Duration, Frames: frames[i]}
		}
		plan.Trials = append(plan.Trials, pt)
	}
	return plan, nil
}

func writePlan(w io.Writer, plan *runPlan, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plan); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return writePlanText(w, plan)
	default:
		return fmt.Errorf("unknown format %q (want text, yaml or json)", format)
	}
}

func writePlanText(w io.Writer, plan *runPlan) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tKIND\tCOND\tFRAMES\tPHASES")
	for _, t := range plan.Trials {
		phases := make([]string, len(t.Phases))
		sum := 0
		for i, ph := range t.Phases {
			phases[i] = fmt.Sprintf("%s=%d", ph.Name, ph.Frames)
			sum += ph.Frames
		}
		cond := t.Condition
		if cond == "" {
			cond = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", t.Index, t.Kind, cond, sum, strings.Join(phases, " "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d trials, %d frames at %.2f Hz (%s)\n",
		len(plan.Trials), plan.TotalFrames, plan.FrameRate, plan.Duration)
	return err
}
