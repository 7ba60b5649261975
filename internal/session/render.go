package session

import (
	"github.com/andywolf/langloc/internal/display"
	"github.com/andywolf/langloc/internal/trial"
)

// stimulus returns what phase of d shows on screen.
func (s *Session) stimulus(d trial.Descriptor, phase int) display.Stimulus {
	switch d.Kind {
	case trial.KindFixation:
		return display.Stimulus{Kind: display.Text, Text: "+", Color: s.fixColor}
	case trial.KindAttentionCheck:
		if phase == 0 {
			return display.Stimulus{Kind: display.Image, Image: s.attentionImage}
		}
	case trial.KindSentence:
		if phase > 0 && phase-1 < len(d.Words) {
			return display.Stimulus{Kind: display.Text, Text: d.Words[phase-1], Color: s.textColor}
		}
	}
	return display.Stimulus{Kind: display.Blank}
}
