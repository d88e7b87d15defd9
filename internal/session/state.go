// Package session holds the canonical per-session state: flash cards,
// quizzes, the wishlist and the letter. State is volatile and lives only as
// long as the session.
package session

import (
	"time"

	"github.com/google/uuid"

	"santa-agent-service/internal/domain"
)

// State is the entity store for one session. It is not safe for concurrent
// use on its own; Session serializes access to it.
type State struct {
	now   func() time.Time
	newID func() string

	flashCards []*domain.FlashCard
	quizzes    []*domain.Quiz
	wishlist   []domain.Product
	letter     *domain.Letter
}

func NewState() *State {
	return newStateWithClock(time.Now)
}

// newStateWithClock allows deterministic timestamps in tests.
func newStateWithClock(now func() time.Time) *State {
	return &State{
		now:   now,
		newID: uuid.NewString,
	}
}

// AddFlashCard appends a fresh, unflipped card and returns it.
func (s *State) AddFlashCard(question, answer string) *domain.FlashCard {
	card := &domain.FlashCard{
		ID:       s.newID(),
		Question: question,
		Answer:   answer,
	}
	s.flashCards = append(s.flashCards, card)
	return card
}

// GetFlashCard returns the card with the given id, or nil.
func (s *State) GetFlashCard(id string) *domain.FlashCard {
	for _, card := range s.flashCards {
		if card.ID == id {
			return card
		}
	}
	return nil
}

// FlipFlashCard toggles the card if it exists, else returns nil.
func (s *State) FlipFlashCard(id string) *domain.FlashCard {
	card := s.GetFlashCard(id)
	if card == nil {
		return nil
	}
	card.IsFlipped = !card.IsFlipped
	return card
}

// FlashCardCount reports how many cards exist; the wire index of the newest
// card is FlashCardCount()-1.
func (s *State) FlashCardCount() int {
	return len(s.flashCards)
}

// AddQuiz deep-materializes the input with fresh ids for the quiz, every
// question and every answer, preserving order.
func (s *State) AddQuiz(questions []domain.QuestionInput) *domain.Quiz {
	quiz := &domain.Quiz{ID: s.newID()}
	for _, q := range questions {
		question := domain.QuizQuestion{
			ID:   s.newID(),
			Text: q.Text,
		}
		for _, a := range q.Answers {
			question.Answers = append(question.Answers, domain.QuizAnswer{
				ID:        s.newID(),
				Text:      a.Text,
				IsCorrect: a.IsCorrect,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	s.quizzes = append(s.quizzes, quiz)
	return quiz
}

// GetQuiz returns the quiz with the given id, or nil.
func (s *State) GetQuiz(id string) *domain.Quiz {
	for _, quiz := range s.quizzes {
		if quiz.ID == id {
			return quiz
		}
	}
	return nil
}

// CheckQuizAnswers grades the submitted answers against the quiz, one result
// per question in original order. An unknown quiz id yields an empty result,
// not an error. The first answer flagged correct is canonical even when the
// data marks several.
func (s *State) CheckQuizAnswers(quizID string, answersByQuestion map[string]string) []domain.QuizResult {
	quiz := s.GetQuiz(quizID)
	if quiz == nil {
		return nil
	}

	results := make([]domain.QuizResult, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		selectedID := answersByQuestion[question.ID]

		var selected, correct *domain.QuizAnswer
		for i := range question.Answers {
			answer := &question.Answers[i]
			if answer.ID == selectedID {
				selected = answer
			}
			if answer.IsCorrect && correct == nil {
				correct = answer
			}
		}

		results = append(results, domain.QuizResult{
			Question:  question,
			Selected:  selected,
			Correct:   correct,
			IsCorrect: selected != nil && selected.IsCorrect,
		})
	}
	return results
}

// AddProduct maps a raw catalog record into a fresh wishlist product.
// Missing fields default to their zero values; the image falls back from the
// thumbnail to the first list image.
func (s *State) AddProduct(raw domain.CatalogProduct) domain.Product {
	product := domain.Product{
		ID:          s.newID(),
		Title:       raw.Title,
		Description: raw.Description,
		Price:       raw.Price,
		Image:       raw.Image(),
		Category:    raw.Category,
	}
	s.wishlist = append(s.wishlist, product)
	return product
}

// Wishlist returns the insertion-ordered wishlist.
func (s *State) Wishlist() []domain.Product {
	return s.wishlist
}

// Letter returns the session letter, or nil if none was composed yet.
func (s *State) Letter() *domain.Letter {
	return s.letter
}

// SetLetter creates the singleton letter on first call; later calls mutate
// recipient and content in place, preserving id and creation time.
func (s *State) SetLetter(recipient, content string) *domain.Letter {
	if s.letter != nil {
		s.letter.Recipient = recipient
		s.letter.Content = content
		return s.letter
	}
	s.letter = &domain.Letter{
		ID:        s.newID(),
		Recipient: recipient,
		Content:   content,
		CreatedAt: s.now(),
	}
	return s.letter
}

// Reset clears the wishlist and the letter. Flash cards and quizzes survive
// a reset so study material outlives the transient shopping state.
func (s *State) Reset() {
	s.wishlist = nil
	s.letter = nil
}
