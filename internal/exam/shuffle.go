package exam

import (
	"fmt"
	"math/rand/v2"

	"github.com/jinzhu/copier"
)

// Shuffler permutes n elements through swap. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// NewSnapshot deep-copies the exam's questions and applies the exam's
// randomization toggles. Choice shuffling moves authored indices rather than
// matching on text, so duplicate choice texts keep the right answer.
func NewSnapshot(ex Exam, rng Shuffler) ([]Question, error) {
	if rng == nil {
		rng = globalShuffler{}
	}
	var qs []Question
	if err := copier.CopyWithOption(&qs, &ex.Questions, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("copy questions: %w", err)
	}
	if qs == nil {
		qs = []Question{}
	}
	for i := range qs {
		qs[i].ChoiceOrder = nil // deep copy turns nil into empty
	}

	if ex.RandomizeQuestions {
		rng.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
	}
	if ex.RandomizeChoices {
		for i := range qs {
			shuffleChoices(&qs[i], rng)
		}
	}
	return qs, nil
}

func shuffleChoices(q *Question, rng Shuffler) {
	order := make([]int, len(q.Choices))
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	authored := q.Choices
	choices := make([]string, len(order))
	answer := -1
	for pos, from := range order {
		choices[pos] = authored[from]
		if from == q.AnswerIndex {
			answer = pos
		}
	}
	q.Choices = choices
	q.ChoiceOrder = order
	q.AnswerIndex = answer
}
