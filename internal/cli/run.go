package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/andywolf/langloc/internal/cli/wizard"
	"github.com/andywolf/langloc/internal/config"
	"github.com/andywolf/langloc/internal/display"
	"github.com/andywolf/langloc/internal/logging"
	"github.com/andywolf/langloc/internal/session"
	"github.com/andywolf/langloc/internal/trial"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a localizer session",
	Long: `Run one localizer run for a participant.

The session shows the instruction screens, waits for the scanner trigger and
presents every trial of the selected stimulus set. Press the escape key to
end the run after the current trial. Subject, run and set are asked for
interactively when they are not given and stdin is a terminal.

Example:
  langloc run --subject 1 --run 1 --set 1
  langloc run --subject 1 --run 2 --set 1 --eyetracker
  langloc run --subject 1 --run 1 --set 1 --dry-run`,
	RunE: runSession,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("subject", 0, "Subject number")
	runCmd.Flags().Int("run", 0, "Run number")
	runCmd.Flags().Int("set", 0, "Stimulus set number")
	runCmd.Flags().String("stimuli", "", "Stimulus directory (overrides settings)")
	runCmd.Flags().String("output", "", "Output directory for event logs (overrides settings)")
	runCmd.Flags().Bool("eyetracker", false, "Enable the eye tracker")
	runCmd.Flags().Float64("frame-rate", 0, "Display frame rate in Hz (overrides settings)")
	runCmd.Flags().Bool("compress", false, "Compress the event log when the run ends")
	runCmd.Flags().Bool("dry-run", false, "Present to a simulated display that answers every prompt")

	_ = viper.BindPFlag("language_localizer.stimuli.dir", runCmd.Flags().Lookup("stimuli"))
	_ = viper.BindPFlag("output.dir", runCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("eyetracker.enabled", runCmd.Flags().Lookup("eyetracker"))
	_ = viper.BindPFlag("window.frame_rate", runCmd.Flags().Lookup("frame-rate"))
	_ = viper.BindPFlag("output.compress", runCmd.Flags().Lookup("compress"))
}

func runSession(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, ending run after the current trial...")
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	p, err := participantFromFlags(cmd)
	if err != nil {
		return err
	}
	if !p.Complete() {
		if !stdinIsTerminal() {
			return fmt.Errorf("--subject, --run and --set are required when stdin is not a terminal")
		}
		ok, promptErr := wizard.PromptParticipant(&p)
		if promptErr != nil {
			return promptErr
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Session not started.")
			return nil
		}
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun && !cmd.Flags().Changed("output") {
		dir, tmpErr := os.MkdirTemp("", "langloc-dry-run-")
		if tmpErr != nil {
			return fmt.Errorf("failed to create dry-run output dir: %w", tmpErr)
		}
		cfg.Output.Dir = dir
	}

	return executeSession(ctx, cmd.OutOrStdout(), cfg, p, dryRun)
}

func executeSession(ctx context.Context, out io.Writer, cfg *config.Config, p wizard.Participant, dryRun bool) error {
	id := uuid.New().String()
	logger := log.New(os.Stderr, "[langloc] ", log.LstdFlags)

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	diagPath := filepath.Join(cfg.Output.Dir, "langloc_"+id+"_diagnostics.jsonl")
	diagFile, err := os.OpenFile(diagPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open diagnostics log: %w", err)
	}
	structured := logging.NewJSONLogger(diagFile, id, logging.WithLabels(map[string]string{
		"subject": fmt.Sprint(p.SubjectID),
		"run":     fmt.Sprint(p.Run),
		"set":     fmt.Sprint(p.Set),
	}))
	defer func() {
		if closeErr := structured.Close(); closeErr != nil {
			logger.Printf("Warning: failed to close diagnostics log: %v", closeErr)
		}
		_ = diagFile.Close()
	}()

	presenter := newPresenter(cfg, dryRun)

	meta := trial.Meta{SubjectID: p.SubjectID, RunID: p.Run, SetID: p.Set}
	s, err := session.New(cfg, meta, presenter,
		session.WithID(id),
		session.WithLogger(logger),
		session.WithStructuredLogger(structured),
	)
	if err != nil {
		_ = presenter.Close()
		return err
	}

	summary, err := s.Run(ctx)
	if summary != nil {
		printSummary(out, summary)
	}
	return err
}

func newPresenter(cfg *config.Config, dryRun bool) display.Presenter {
	if dryRun {
		return display.NewSimulated(cfg.Window.FrameRate)
	}
	return display.NewTerminal(os.Stdin, os.Stdout, display.TerminalOptions{
		FrameRate:  cfg.Window.FrameRate,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Background: display.Gray,
	})
}

func participantFromFlags(cmd *cobra.Command) (wizard.Participant, error) {
	var p wizard.Participant
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"subject", &p.SubjectID},
		{"run", &p.Run},
		{"set", &p.Set},
	} {
		v, _ := cmd.Flags().GetInt(f.name)
		if cmd.Flags().Changed(f.name) && v < 1 {
			return p, fmt.Errorf("--%s must be at least 1, got %d", f.name, v)
		}
		*f.dst = v
	}
	return p, nil
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func printSummary(w io.Writer, s *session.Summary) {
	status := "completed"
	switch {
	case s.Aborted:
		status = "aborted"
	case !s.Completed:
		status = "failed"
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Session %s %s\n", s.SessionID, status)
	fmt.Fprintf(w, "  Trials:           %d/%d\n", s.TrialsRun, s.TotalTrials)
	fmt.Fprintf(w, "  Frames:           %d\n", s.Frames)
	fmt.Fprintf(w, "  Responses:        %d\n", s.Responses)
	fmt.Fprintf(w, "  Attention checks: %d/%d\n", s.AttentionHits, s.AttentionChecks)
	if s.EventsPath != "" {
		fmt.Fprintf(w, "  Event log:        %s\n", s.EventsPath)
	}
}
