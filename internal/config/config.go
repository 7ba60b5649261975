package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/andywolf/langloc/internal/template"
	"github.com/andywolf/langloc/internal/trial"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the full localizer settings file
type Config struct {
	Localizer  LocalizerConfig  `mapstructure:"language_localizer" yaml:"language_localizer"`
	MRI        MRIConfig        `mapstructure:"mri" yaml:"mri"`
	Window     WindowConfig     `mapstructure:"window" yaml:"window"`
	EyeTracker EyeTrackerConfig `mapstructure:"eyetracker" yaml:"eyetracker"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
}

// LocalizerConfig contains the task settings
type LocalizerConfig struct {
	Responses ResponsesConfig `mapstructure:"responses" yaml:"responses"`
	Stimuli   StimuliConfig   `mapstructure:"stimuli" yaml:"stimuli"`
	// Instructions replaces the built-in instruction screens. Screens may
	// use the {{attention_key}}, {{escape_key}} and {{sync_key}} placeholders.
	Instructions []string `mapstructure:"instructions" yaml:"instructions,omitempty"`
}

// ResponsesConfig contains the response keys
type ResponsesConfig struct {
	Escape         string `mapstructure:"escape" yaml:"escape"`
	AttentionCheck string `mapstructure:"attention_check" yaml:"attention_check"`
}

// StimuliConfig contains phase names, durations, timing units and colors
type StimuliConfig struct {
	Dir            string `mapstructure:"dir" yaml:"dir"`
	AttentionImage string `mapstructure:"attention_image" yaml:"attention_image,omitempty"`

	PhaseNameBlank     string `mapstructure:"phase_name_blank" yaml:"phase_name_blank"`
	PhaseNameWord      string `mapstructure:"phase_name_word" yaml:"phase_name_word"`
	PhaseNameAttention string `mapstructure:"phase_name_attention" yaml:"phase_name_attention"`
	PhaseNameFix       string `mapstructure:"phase_name_fix" yaml:"phase_name_fix"`

	PhaseDurationBlank     float64 `mapstructure:"phase_duration_blank" yaml:"phase_duration_blank"`
	PhaseDurationWord      float64 `mapstructure:"phase_duration_word" yaml:"phase_duration_word"`
	PhaseDurationAttention float64 `mapstructure:"phase_duration_attention" yaml:"phase_duration_attention"`
	PhaseDurationFix       float64 `mapstructure:"phase_duration_fix" yaml:"phase_duration_fix"`

	TimingSentenceTrial  string `mapstructure:"timing_sentence_trial" yaml:"timing_sentence_trial"`
	TimingAttentionTrial string `mapstructure:"timing_attention_trial" yaml:"timing_attention_trial"`
	TimingFixationTrial  string `mapstructure:"timing_fixation_trial" yaml:"timing_fixation_trial"`

	TextColor []float64 `mapstructure:"text_color" yaml:"text_color,flow"`
	FixColor  []float64 `mapstructure:"fix_color" yaml:"fix_color,flow"`
}

// MRIConfig contains scanner synchronisation settings
type MRIConfig struct {
	Sync string `mapstructure:"sync" yaml:"sync"`
}

// WindowConfig contains display settings. FrameRate is used when the
// presenter cannot measure the refresh rate itself.
type WindowConfig struct {
	FrameRate float64 `mapstructure:"frame_rate" yaml:"frame_rate"`
	Width     int     `mapstructure:"width" yaml:"width"`
	Height    int     `mapstructure:"height" yaml:"height"`
}

// EyeTrackerConfig contains eye-tracker settings
type EyeTrackerConfig struct {
	Enabled               bool `mapstructure:"enabled" yaml:"enabled"`
	CalibrateFirstRunOnly bool `mapstructure:"calibrate_first_run_only" yaml:"calibrate_first_run_only"`
}

// OutputConfig contains log output settings
type OutputConfig struct {
	Dir      string `mapstructure:"dir" yaml:"dir"`
	Compress bool   `mapstructure:"compress" yaml:"compress"`
}

// Default returns a complete settings set with the original localizer values
func Default() *Config {
	p := trial.DefaultParams()
	return &Config{
		Localizer: LocalizerConfig{
			Responses: ResponsesConfig{
				Escape:         "escape",
				AttentionCheck: "space",
			},
			Stimuli: StimuliConfig{
				Dir:                    "stimuli",
				PhaseNameBlank:         p.BlankName,
				PhaseNameWord:          p.WordName,
				PhaseNameAttention:     p.AttentionName,
				PhaseNameFix:           p.FixationName,
				PhaseDurationBlank:     p.BlankDuration,
				PhaseDurationWord:      p.WordDuration,
				PhaseDurationAttention: p.AttentionDuration,
				PhaseDurationFix:       p.FixationDuration,
				TimingSentenceTrial:    string(p.SentenceUnit),
				TimingAttentionTrial:   string(p.AttentionUnit),
				TimingFixationTrial:    string(p.FixationUnit),
				TextColor:              []float64{-1, -1, -1},
				FixColor:               []float64{-1, -1, -1},
			},
		},
		MRI: MRIConfig{Sync: "t"},
		Window: WindowConfig{
			FrameRate: 60,
			Width:     80,
			Height:    24,
		},
		EyeTracker: EyeTrackerConfig{CalibrateFirstRunOnly: true},
		Output:     OutputConfig{Dir: "logs"},
	}
}

// Load loads configuration from the global viper instance
func Load() (*Config, error) {
	return load(viper.GetViper())
}

// LoadFile loads configuration from a single settings file
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills optional settings only. Task settings under
// language_localizer and mri must come from the settings file.
func applyDefaults(cfg *Config) {
	if cfg.Localizer.Stimuli.Dir == "" {
		cfg.Localizer.Stimuli.Dir = "stimuli"
	}

	if cfg.Window.FrameRate == 0 {
		cfg.Window.FrameRate = 60
	}

	if cfg.Window.Width == 0 {
		cfg.Window.Width = 80
	}

	if cfg.Window.Height == 0 {
		cfg.Window.Height = 24
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "logs"
	}
}

// RequiredKeys lists the settings that must be present before trials are built
var RequiredKeys = []string{
	"language_localizer.responses.attention_check",
	"language_localizer.responses.escape",
	"language_localizer.stimuli.phase_name_blank",
	"language_localizer.stimuli.phase_name_word",
	"language_localizer.stimuli.phase_name_attention",
	"language_localizer.stimuli.phase_name_fix",
	"language_localizer.stimuli.phase_duration_blank",
	"language_localizer.stimuli.phase_duration_word",
	"language_localizer.stimuli.phase_duration_attention",
	"language_localizer.stimuli.phase_duration_fix",
	"language_localizer.stimuli.timing_attention_trial",
	"language_localizer.stimuli.timing_sentence_trial",
	"language_localizer.stimuli.timing_fixation_trial",
	"language_localizer.stimuli.text_color",
	"language_localizer.stimuli.fix_color",
	"mri.sync",
}

func (c *Config) present() map[string]bool {
	s := c.Localizer.Stimuli
	checks := []struct {
		key string
		ok  bool
	}{
		{"language_localizer.responses.attention_check", c.Localizer.Responses.AttentionCheck != ""},
		{"language_localizer.responses.escape", c.Localizer.Responses.Escape != ""},
		{"language_localizer.stimuli.phase_name_blank", s.PhaseNameBlank != ""},
		{"language_localizer.stimuli.phase_name_word", s.PhaseNameWord != ""},
		{"language_localizer.stimuli.phase_name_attention", s.PhaseNameAttention != ""},
		{"language_localizer.stimuli.phase_name_fix", s.PhaseNameFix != ""},
		{"language_localizer.stimuli.phase_duration_blank", s.PhaseDurationBlank != 0},
		{"language_localizer.stimuli.phase_duration_word", s.PhaseDurationWord != 0},
		{"language_localizer.stimuli.phase_duration_attention", s.PhaseDurationAttention != 0},
		{"language_localizer.stimuli.phase_duration_fix", s.PhaseDurationFix != 0},
		{"language_localizer.stimuli.timing_attention_trial", s.TimingAttentionTrial != ""},
		{"language_localizer.stimuli.timing_sentence_trial", s.TimingSentenceTrial != ""},
		{"language_localizer.stimuli.timing_fixation_trial", s.TimingFixationTrial != ""},
		{"language_localizer.stimuli.text_color", len(s.TextColor) > 0},
		{"language_localizer.stimuli.fix_color", len(s.FixColor) > 0},
		{"mri.sync", c.MRI.Sync != ""},
	}

	present := make(map[string]bool, len(checks))
	for _, check := range checks {
		present[check.key] = check.ok
	}
	return present
}

// Validate validates the configuration
func (c *Config) Validate() error {
	present := c.present()
	var missing []string
	for _, key := range RequiredKeys {
		if !present[key] {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	s := c.Localizer.Stimuli
	for _, d := range []struct {
		name  string
		value float64
	}{
		{"phase_duration_blank", s.PhaseDurationBlank},
		{"phase_duration_word", s.PhaseDurationWord},
		{"phase_duration_attention", s.PhaseDurationAttention},
		{"phase_duration_fix", s.PhaseDurationFix},
	} {
		if d.value < 0 {
			return fmt.Errorf("invalid %s: %v (must be positive)", d.name, d.value)
		}
	}

	if _, err := c.TrialParams(); err != nil {
		return err
	}

	if err := validateColor("text_color", s.TextColor); err != nil {
		return err
	}
	if err := validateColor("fix_color", s.FixColor); err != nil {
		return err
	}

	if c.Localizer.Responses.Escape == c.Localizer.Responses.AttentionCheck {
		return fmt.Errorf("escape and attention_check responses must differ (both %q)", c.Localizer.Responses.Escape)
	}

	keys := c.InstructionKeys()
	for i, screen := range c.Localizer.Instructions {
		if unknown := template.Unknown(screen, keys); len(unknown) > 0 {
			return fmt.Errorf("instructions[%d]: unknown placeholders: %s", i, strings.Join(unknown, ", "))
		}
	}

	if c.Window.FrameRate < 0 {
		return fmt.Errorf("invalid window.frame_rate: %v", c.Window.FrameRate)
	}

	return nil
}

// InstructionKeys returns the placeholder values for instruction screens.
func (c *Config) InstructionKeys() map[string]string {
	r := c.Localizer.Responses
	return template.Keys(r.AttentionCheck, r.Escape, c.MRI.Sync)
}

func validateColor(name string, rgb []float64) error {
	if len(rgb) != 3 {
		return fmt.Errorf("invalid %s: need 3 components, got %d", name, len(rgb))
	}
	for _, v := range rgb {
		if v < -1 || v > 1 {
			return fmt.Errorf("invalid %s: component %v outside [-1, 1]", name, v)
		}
	}
	return nil
}

// TrialParams maps the stimulus settings onto trial construction parameters
func (c *Config) TrialParams() (trial.Params, error) {
	s := c.Localizer.Stimuli

	sentenceUnit, err := trial.ParseUnit(s.TimingSentenceTrial)
	if err != nil {
		return trial.Params{}, fmt.Errorf("invalid timing_sentence_trial: %w", err)
	}
	attentionUnit, err := trial.ParseUnit(s.TimingAttentionTrial)
	if err != nil {
		return trial.Params{}, fmt.Errorf("invalid timing_attention_trial: %w", err)
	}
	fixationUnit, err := trial.ParseUnit(s.TimingFixationTrial)
	if err != nil {
		return trial.Params{}, fmt.Errorf("invalid timing_fixation_trial: %w", err)
	}

	return trial.Params{
		BlankName:         s.PhaseNameBlank,
		WordName:          s.PhaseNameWord,
		AttentionName:     s.PhaseNameAttention,
		FixationName:      s.PhaseNameFix,
		BlankDuration:     s.PhaseDurationBlank,
		WordDuration:      s.PhaseDurationWord,
		AttentionDuration: s.PhaseDurationAttention,
		FixationDuration:  s.PhaseDurationFix,
		SentenceUnit:      sentenceUnit,
		AttentionUnit:     attentionUnit,
		FixationUnit:      fixationUnit,
	}, nil
}

const defaultHeader = `# Language localizer settings
# Durations are in the unit given by the matching timing_* key
# (milliseconds, seconds or frames). Colors are RGB in [-1, 1].

`

// WriteDefault writes the default settings to path
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("settings file already exists at %s (use --force to overwrite)", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(defaultHeader), data...), 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
