package app

import (
	"fmt"
	"strings"

	"santa-agent-service/internal/domain"
	"santa-agent-service/internal/session"
)

// RemediationCard pairs a flash card created from a missed question with its
// wire index.
type RemediationCard struct {
	Card  *domain.FlashCard
	Index int
}

// GradeReport is the outcome of grading one submission.
type GradeReport struct {
	CorrectCount int
	TotalCount   int
	Feedback     []string
	// NewCards are the flash cards synthesized from missed questions, in
	// question order.
	NewCards []RemediationCard
}

// Summary renders the spoken grading response: the tally followed by one
// feedback block per question.
func (r *GradeReport) Summary() string {
	tally := fmt.Sprintf("You got %d out of %d questions correct.", r.CorrectCount, r.TotalCount)
	if len(r.Feedback) == 0 {
		return tally
	}
	return tally + "\n\n" + strings.Join(r.Feedback, "\n\n")
}

// Grader turns submissions into feedback and grows the flash card deck from
// wrong answers. That cross-entity side effect is the spaced-repetition
// mechanism: every miss becomes study material.
type Grader struct{}

// Grade checks the submission against the quiz. It returns nil when the quiz
// id is unknown.
func (Grader) Grade(state *session.State, quizID string, answers map[string]string) *GradeReport {
	results := state.CheckQuizAnswers(quizID, answers)
	if len(results) == 0 {
		return nil
	}

	report := &GradeReport{TotalCount: len(results)}
	for _, result := range results {
		if result.IsCorrect {
			report.CorrectCount++
			report.Feedback = append(report.Feedback, fmt.Sprintf(
				"Question: %s\nYour answer: %s ✓ Correct!",
				result.Question.Text, result.Selected.Text,
			))
			continue
		}

		selectedText := "None"
		if result.Selected != nil {
			selectedText = result.Selected.Text
		}
		correctText := ""
		if result.Correct != nil {
			correctText = result.Correct.Text
		}
		report.Feedback = append(report.Feedback, fmt.Sprintf(
			"Question: %s\nYour answer: %s ✗ Incorrect. The correct answer is: %s",
			result.Question.Text, selectedText, correctText,
		))

		if result.Correct != nil {
			card := state.AddFlashCard(result.Question.Text, result.Correct.Text)
			report.NewCards = append(report.NewCards, RemediationCard{
				Card:  card,
				Index: state.FlashCardCount() - 1,
			})
		}
	}
	return report
}
