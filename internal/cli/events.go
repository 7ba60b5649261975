package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/andywolf/langloc/internal/archive"
	"github.com/andywolf/langloc/internal/events"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events <log>",
	Short: "Show the events of a session log",
	Long: `Read a session event log and print its events. Compressed logs
(` + "`*.jsonl.zst`" + `) are expanded next to the archive first.

Example:
  langloc events data/language_localizer_7_1_2_20240101T120000_events.jsonl
  langloc events run.jsonl.zst --type response --trial 12
  langloc events run.jsonl --type trial_start,trial_end --format json`,
	Args: cobra.ExactArgs(1),
	RunE: showEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().StringSlice("type", nil, "Only show these event types")
	eventsCmd.Flags().Int("trial", -1, "Only show events of this trial index")
	eventsCmd.Flags().String("format", "text", "Output format: text or json")
}

func showEvents(cmd *cobra.Command, args []string) error {
	typeFlags, _ := cmd.Flags().GetStringSlice("type")
	trialIndex, _ := cmd.Flags().GetInt("trial")
	format, _ := cmd.Flags().GetString("format")

	types, err := parseEventTypes(typeFlags)
	if err != nil {
		return err
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}

	path := args[0]
	if strings.HasSuffix(path, archive.Extension) {
		expanded, err := archive.Decompress(path)
		if err != nil {
			return fmt.Errorf("failed to expand %s: %w", path, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Expanded %s to %s\n", path, expanded)
		path = expanded
	}

	evts, err := events.ReadEvents(path)
	if err != nil {
		return err
	}
	evts = events.FilterByTrial(events.FilterByType(evts, types...), trialIndex)

	if format == "json" {
		return writeEventsJSON(cmd.OutOrStdout(), evts)
	}
	return writeEventsTable(cmd.OutOrStdout(), evts)
}

func parseEventTypes(names []string) ([]events.EventType, error) {
	types := make([]events.EventType, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if !events.IsValidEventType(name) {
			valid := make([]string, 0, len(events.ValidEventTypes()))
			for _, t := range events.ValidEventTypes() {
				valid = append(valid, string(t))
			}
			return nil, fmt.Errorf("unknown event type %q (valid: %s)", name, strings.Join(valid, ", "))
		}
		types = append(types, events.EventType(name))
	}
	return types, nil
}

func writeEventsTable(w io.Writer, evts []events.Event) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FRAME\tTRIAL\tTYPE\tKIND\tPHASE\tDETAIL")
	for _, e := range evts {
		phase := "-"
		if e.Type == events.EventPhaseStart || e.Type == events.EventResponse {
			phase = fmt.Sprintf("%d", e.Phase)
			if e.PhaseName != "" {
				phase += " " + e.PhaseName
			}
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
			e.Frame, e.TrialIndex, e.Type, orDash(e.Kind), phase, eventDetail(e))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d events\n", len(evts))
	return nil
}

func eventDetail(e events.Event) string {
	switch {
	case e.Key != "":
		return "key=" + e.Key
	case e.Type == events.EventPhaseStart:
		return fmt.Sprintf("frames=%d", e.Frames)
	case e.Message != "":
		return e.Message
	}
	return "-"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeEventsJSON(w io.Writer, evts []events.Event) error {
	enc := json.NewEncoder(w)
	for _, e := range evts {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}
