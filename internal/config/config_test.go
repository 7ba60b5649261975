package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andywolf/langloc/internal/trial"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "missing escape key",
			modify: func(c *Config) {
				c.Localizer.Responses.Escape = ""
			},
			wantErr: true,
			errMsg:  "language_localizer.responses.escape",
		},
		{
			name: "missing mri sync",
			modify: func(c *Config) {
				c.MRI.Sync = ""
			},
			wantErr: true,
			errMsg:  "mri.sync",
		},
		{
			name: "missing word duration",
			modify: func(c *Config) {
				c.Localizer.Stimuli.PhaseDurationWord = 0
			},
			wantErr: true,
			errMsg:  "phase_duration_word",
		},
		{
			name: "negative blank duration",
			modify: func(c *Config) {
				c.Localizer.Stimuli.PhaseDurationBlank = -100
			},
			wantErr: true,
			errMsg:  "invalid phase_duration_blank",
		},
		{
			name: "unknown timing unit",
			modify: func(c *Config) {
				c.Localizer.Stimuli.TimingSentenceTrial = "ms"
			},
			wantErr: true,
			errMsg:  "invalid timing_sentence_trial",
		},
		{
			name: "short color",
			modify: func(c *Config) {
				c.Localizer.Stimuli.TextColor = []float64{1, 1}
			},
			wantErr: true,
			errMsg:  "invalid text_color",
		},
		{
			name: "color out of range",
			modify: func(c *Config) {
				c.Localizer.Stimuli.FixColor = []float64{0, 255, 0}
			},
			wantErr: true,
			errMsg:  "invalid fix_color",
		},
		{
			name: "same escape and attention key",
			modify: func(c *Config) {
				c.Localizer.Responses.Escape = "space"
			},
			wantErr: true,
			errMsg:  "must differ",
		},
		{
			name: "seconds timing",
			modify: func(c *Config) {
				c.Localizer.Stimuli.TimingFixationTrial = "seconds"
				c.Localizer.Stimuli.PhaseDurationFix = 14
			},
			wantErr: false,
		},
		{
			name: "custom instructions",
			modify: func(c *Config) {
				c.Localizer.Instructions = []string{"Press {{attention_key}} when you see the hand", "Press {{sync_key}}"}
			},
			wantErr: false,
		},
		{
			name: "unknown instruction placeholder",
			modify: func(c *Config) {
				c.Localizer.Instructions = []string{"ok", "Hello {{subject}}"}
			},
			wantErr: true,
			errMsg:  "instructions[1]: unknown placeholders: subject",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.errMsg)
					return
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %q, want error containing %q", err.Error(), tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestConfig_ValidateListsAllMissingKeys(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for empty config")
	}
	for _, key := range RequiredKeys {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error does not mention %s", key)
		}
	}
}

func TestConfig_TrialParams(t *testing.T) {
	params, err := Default().TrialParams()
	if err != nil {
		t.Fatalf("TrialParams() error = %v", err)
	}
	if params != trial.DefaultParams() {
		t.Errorf("TrialParams() = %+v, want %+v", params, trial.DefaultParams())
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.Window.FrameRate != 60 {
		t.Errorf("FrameRate = %v, want 60", cfg.Window.FrameRate)
	}
	if cfg.Output.Dir != "logs" {
		t.Errorf("Output.Dir = %q, want logs", cfg.Output.Dir)
	}
	if cfg.Localizer.Stimuli.Dir != "stimuli" {
		t.Errorf("Stimuli.Dir = %q, want stimuli", cfg.Localizer.Stimuli.Dir)
	}
	if cfg.Localizer.Responses.Escape != "" {
		t.Errorf("required key Escape should not be defaulted, got %q", cfg.Localizer.Responses.Escape)
	}
}

func TestWriteDefaultAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")

	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("round-tripped default config invalid: %v", err)
	}
	if cfg.Localizer.Stimuli.PhaseDurationWord != 450 {
		t.Errorf("PhaseDurationWord = %v, want 450", cfg.Localizer.Stimuli.PhaseDurationWord)
	}
	if len(cfg.Localizer.Stimuli.TextColor) != 3 {
		t.Errorf("TextColor = %v, want 3 components", cfg.Localizer.Stimuli.TextColor)
	}

	if err := WriteDefault(path, false); err == nil {
		t.Error("expected error when settings file exists without force")
	}
	if err := WriteDefault(path, true); err != nil {
		t.Errorf("WriteDefault(force) error = %v", err)
	}
}

func TestLoadFile_OriginalLayout(t *testing.T) {
	content := `language_localizer:
  responses:
    escape: q
    attention_check: b
  stimuli:
    phase_name_blank: blank
    phase_name_word: word
    phase_name_attention: hand
    phase_name_fix: fix
    phase_duration_blank: 100
    phase_duration_word: 450
    phase_duration_attention: 400
    phase_duration_fix: 14000
    timing_sentence_trial: milliseconds
    timing_attention_trial: milliseconds
    timing_fixation_trial: milliseconds
    text_color: [1, 1, 1]
    fix_color: [0.5, -0.5, 0]
mri:
  sync: "5"
`
	path := filepath.Join(t.TempDir(), "settings.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.MRI.Sync != "5" {
		t.Errorf("MRI.Sync = %q, want 5", cfg.MRI.Sync)
	}
	if cfg.Localizer.Stimuli.FixColor[0] != 0.5 {
		t.Errorf("FixColor = %v", cfg.Localizer.Stimuli.FixColor)
	}
	if cfg.Window.FrameRate != 60 {
		t.Errorf("FrameRate default = %v, want 60", cfg.Window.FrameRate)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected error for missing settings file")
	}
}
