package trial

import "fmt"

// Params holds the phase names, durations and timing units used to build
// each kind of trial.
type Params struct {
	BlankName     string
	WordName      string
	AttentionName string
	FixationName  string

	BlankDuration     float64
	WordDuration      float64
	AttentionDuration float64
	FixationDuration  float64

	SentenceUnit  Unit
	AttentionUnit Unit
	FixationUnit  Unit
}

// DefaultParams returns the timings of the original Fedorenko et al. (2010)
// localizer.
func DefaultParams() Params {
	return Params{
		BlankName:         "ll_blank",
		WordName:          "ll_word",
		AttentionName:     "ll_attention",
		FixationName:      "ll_fix",
		BlankDuration:     100,
		WordDuration:      450,
		AttentionDuration: 400,
		FixationDuration:  1400,
		SentenceUnit:      Milliseconds,
		AttentionUnit:     Milliseconds,
		FixationUnit:      Milliseconds,
	}
}

// Build derives the run sequence from the sentence records: a leading
// fixation, a sentence and attention-check pair per record, and an extra
// fixation after every FixationEvery sentences. Build does not inspect word
// content or condition values and never mutates its input.
func Build(sentences []SentenceRecord, p Params) RunSequence {
	seq := make(RunSequence, 0, 1+2*len(sentences)+len(sentences)/FixationEvery)
	seq = append(seq, p.fixation(0))

	index := 1
	for n, s := range sentences {
		seq = append(seq, p.sentence(index, s), p.attention(index+1))
		index += 2

		if (n+1)%FixationEvery == 0 {
			seq = append(seq, p.fixation(index))
			index++
		}
	}
	return seq
}

func (p Params) fixation(index int) Descriptor {
	return Descriptor{
		Kind:  KindFixation,
		Index: index,
		Plan: PhasePlan{
			Unit:   p.FixationUnit,
			Phases: []Phase{{Name: p.FixationName, Duration: p.FixationDuration}},
		},
	}
}

func (p Params) attention(index int) Descriptor {
	return Descriptor{
		Kind:  KindAttentionCheck,
		Index: index,
		Plan: PhasePlan{
			Unit: p.AttentionUnit,
			Phases: []Phase{
				{Name: p.AttentionName, Duration: p.AttentionDuration},
				{Name: p.BlankName, Duration: p.BlankDuration},
			},
		},
	}
}

func (p Params) sentence(index int, s SentenceRecord) Descriptor {
	phases := make([]Phase, 0, 1+len(s.Words))
	phases = append(phases, Phase{Name: p.BlankName, Duration: p.BlankDuration})
	for i := range s.Words {
		phases = append(phases, Phase{
			Name:     fmt.Sprintf("%s_%d", p.WordName, i),
			Duration: p.WordDuration,
		})
	}

	words := make([]string, len(s.Words))
	copy(words, s.Words)

	return Descriptor{
		Kind:      KindSentence,
		Index:     index,
		Plan:      PhasePlan{Unit: p.SentenceUnit, Phases: phases},
		Words:     words,
		Condition: s.Condition,
	}
}
