package session

import "github.com/andywolf/langloc/internal/template"

// defaultInstructions are shown before the scanner trigger, each
// acknowledged with the attention-check key.
var defaultInstructions = []string{
	"In this task, you will read sentences or sequences of word-like nonwords (like \"blicket\" or \"florp\").\n\n" +
		"The materials will be shown one word/nonword at a time.\n\n" +
		"Your task is to read the materials attentively as they appear.\n\n\n" +
		"(Press {{attention_key}} to continue)",
	"Please read silently to yourself, as you would when reading a book.\n\n" +
		"Don't be stressed if the words/nonwords seem to be appearing too quickly at first - " +
		"you will get used to the presentation speed after a few trials.\n\n\n" +
		"(Press {{attention_key}} to continue)",
	"At the end of each sentence / nonword sequence, you'll see a picture of a finger pressing a button;\n\n" +
		"whenever you see that picture, please press {{attention_key}}.\n\n\n" +
		"(Press {{attention_key}} to continue)",
	"This task is included to help you stay alert throughout the task.\n\n" +
		"Your main task is to read attentively.\n\n\n" +
		"(Press {{attention_key}} to start the experiment)",
}

const waitingForScanner = "Waiting for scanner ..."

// instructions returns the instruction screens with the response keys filled in.
func (s *Session) instructions() []string {
	screens := s.cfg.Localizer.Instructions
	if len(screens) == 0 {
		screens = defaultInstructions
	}
	keys := s.cfg.InstructionKeys()
	rendered := make([]string, len(screens))
	for i, screen := range screens {
		rendered[i] = template.Render(screen, keys)
	}
	return rendered
}
