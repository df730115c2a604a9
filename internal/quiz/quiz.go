// Package quiz provides the AMR knowledge-assessment question bank and
// grading.
package quiz

import (
	"fmt"

	"github.com/google/uuid"
)

// Question is one multiple-choice question. Correct indexes into Options.
type Question struct {
	ID          int      `json:"id"`
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	Correct     int      `json:"-"`
	Explanation string   `json:"-"`
}

// QuestionResult is the graded outcome for one question, including the
// explanation shown after answering.
type QuestionResult struct {
	ID            int    `json:"id"`
	Correct       bool   `json:"correct"`
	CorrectOption string `json:"correct_option"`
	Explanation   string `json:"explanation"`
}

// Attempt is a fully graded quiz attempt.
type Attempt struct {
	AttemptID  string           `json:"attempt_id"`
	Results    []QuestionResult `json:"results"`
	Score      int              `json:"score"`
	Total      int              `json:"total"`
	Percentage float64          `json:"percentage"`
	Verdict    string           `json:"verdict"`
}

// Verdict bands.
const (
	VerdictExcellent = "excellent"
	VerdictGood      = "good"
	VerdictReview    = "review"
)

var questionBank = []Question{
	{
		ID:     1,
		Prompt: "What is the primary mechanism of methicillin-resistant Staphylococcus aureus (MRSA)?",
		Options: []string{
			"Efflux pumps",
			"Target site modification",
			"Enzymatic degradation",
			"Plasma membrane changes",
		},
		Correct:     1,
		Explanation: "MRSA develops resistance through altered penicillin-binding proteins (PBP2a) in the bacterial cell wall.",
	},
	{
		ID:     2,
		Prompt: "Which antibiotic class is considered 'last resort' for carbapenem-resistant infections?",
		Options: []string{
			"Tetracyclines",
			"Colistin (polymyxin)",
			"Trimethoprim-sulfamethoxazole",
			"Nitrofurantoin",
		},
		Correct:     1,
		Explanation: "Colistin (polymyxin) is considered a last resort antibiotic due to its toxicity and limited alternatives.",
	},
	{
		ID:     3,
		Prompt: "What WHO strategy phase are we currently in for antimicrobial resistance?",
		Options: []string{
			"Awareness",
			"Action",
			"Containment",
			"Prevention",
		},
		Correct:     1,
		Explanation: "The WHO Global Action Plan has three phases: Awareness (2015-2020), Action (2021-2025), and Containment (2026-2030).",
	},
	{
		ID:     4,
		Prompt: "Which surveillance statistic weights each record's contribution by its isolate count?",
		Options: []string{
			"Median resistance",
			"Sample-size-weighted mean",
			"Mode of resistance rates",
			"Geometric mean",
		},
		Correct:     1,
		Explanation: "Pooled resistance rates weight each record by its sample size so large studies dominate small ones.",
	},
	{
		ID:     5,
		Prompt: "In a transmission network, what does a small pairwise genetic distance between two isolates suggest?",
		Options: []string{
			"Unrelated acquisition",
			"A likely recent transmission link",
			"Laboratory contamination only",
			"Different pathogen species",
		},
		Correct:     1,
		Explanation: "Isolates within a few mutations of each other are plausibly linked by recent transmission.",
	},
}

// Questions returns the question bank with answers and explanations withheld
// from serialization.
func Questions() []Question {
	out := make([]Question, len(questionBank))
	copy(out, questionBank)
	return out
}

// Grade scores a set of answers keyed by question ID (values index into the
// question's options). Unanswered questions count as wrong; an answer to an
// unknown question ID is an error.
func Grade(answers map[int]int) (Attempt, error) {
	byID := make(map[int]Question, len(questionBank))
	for _, q := range questionBank {
		byID[q.ID] = q
	}
	for id := range answers {
		if _, ok := byID[id]; !ok {
			return Attempt{}, fmt.Errorf("answer references unknown question %d", id)
		}
	}

	attempt := Attempt{
		AttemptID: uuid.NewString(),
		Total:     len(questionBank),
	}

	for _, q := range questionBank {
		answer, answered := answers[q.ID]
		correct := answered && answer == q.Correct
		if correct {
			attempt.Score++
		}
		attempt.Results = append(attempt.Results, QuestionResult{
			ID:            q.ID,
			Correct:       correct,
			CorrectOption: q.Options[q.Correct],
			Explanation:   q.Explanation,
		})
	}

	attempt.Percentage = float64(attempt.Score) / float64(attempt.Total) * 100
	switch {
	case attempt.Percentage >= 80:
		attempt.Verdict = VerdictExcellent
	case attempt.Percentage >= 60:
		attempt.Verdict = VerdictGood
	default:
		attempt.Verdict = VerdictReview
	}

	return attempt, nil
}
