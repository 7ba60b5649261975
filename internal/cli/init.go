package cli

import (
	"fmt"

	"github.com/andywolf/langloc/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default settings file",
	Long: `Write a settings file with the timings of the original localizer:
100 ms blank, 450 ms per word, 400 ms attention image and 1400 ms fixation.

Example:
  langloc init
  langloc init --path lab-settings.yml --force`,
	RunE: initSettings,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("path", "settings.yml", "Where to write the settings file")
	initCmd.Flags().Bool("force", false, "Overwrite an existing settings file")
}

func initSettings(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("path")
	force, _ := cmd.Flags().GetBool("force")

	if err := config.WriteDefault(path, force); err != nil {
		return err
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("written settings do not validate: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n\n", path)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Set the response keys and scanner sync key for your site")
	fmt.Fprintln(out, "  2. Put the stimulus sets (langloc_fmri_run<R>_stim_set<S>.csv) in the stimuli directory")
	fmt.Fprintln(out, "  3. Run 'langloc check --runs 1-2 --sets 1-4' to verify them")
	fmt.Fprintln(out, "  4. Run 'langloc run --subject 1 --run 1 --set 1' to start a session")

	return nil
}
