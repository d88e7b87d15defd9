package app

import "santa-agent-service/internal/domain"

// Outbound RPC method names; the client registers a handler per method.
const (
	MethodFlashCard         = "client.flashcard"
	MethodQuiz              = "client.quiz"
	MethodAddToWishlist     = "client.addToWishlist"
	MethodShowLetter        = "client.showLetter"
	MethodDownloadLetterPDF = "client.downloadLetterPDF"
	MethodRecommendations   = "client.showRecommendations"
	MethodRockPaperScissors = "client.showRockPaperScissors"
)

// Inbound RPC method names invoked by the client.
const (
	MethodFlipFlashCard = "agent.flipFlashCard"
	MethodSubmitQuiz    = "agent.submitQuiz"
	MethodGameChoice    = "agent.gameChoice"
)

type flashCardPayload struct {
	Action   string `json:"action"`
	ID       string `json:"id"`
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Index    *int   `json:"index,omitempty"`
}

func showFlashCardPayload(card *domain.FlashCard, index int) flashCardPayload {
	return flashCardPayload{
		Action:   "show",
		ID:       card.ID,
		Question: card.Question,
		Answer:   card.Answer,
		Index:    &index,
	}
}

func flipFlashCardPayload(card *domain.FlashCard) flashCardPayload {
	return flashCardPayload{Action: "flip", ID: card.ID}
}

// quizPayload withholds answer correctness from the client.
type quizPayload struct {
	Action    string             `json:"action"`
	ID        string             `json:"id"`
	Questions []quizQuestionView `json:"questions"`
}

type quizQuestionView struct {
	ID      string           `json:"id"`
	Text    string           `json:"text"`
	Answers []quizAnswerView `json:"answers"`
}

type quizAnswerView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func showQuizPayload(quiz *domain.Quiz) quizPayload {
	payload := quizPayload{Action: "show", ID: quiz.ID}
	for _, q := range quiz.Questions {
		view := quizQuestionView{ID: q.ID, Text: q.Text}
		for _, a := range q.Answers {
			view.Answers = append(view.Answers, quizAnswerView{ID: a.ID, Text: a.Text})
		}
		payload.Questions = append(payload.Questions, view)
	}
	return payload
}

type wishlistPayload struct {
	Action  string             `json:"action"`
	Product domain.ProductView `json:"product"`
}

type letterPayload struct {
	Action string     `json:"action"`
	Letter letterView `json:"letter"`
}

type letterView struct {
	ID        string               `json:"id"`
	Recipient string               `json:"recipient"`
	Content   string               `json:"content"`
	Products  []domain.ProductView `json:"products"`
}

func showLetterPayload(action string, l *domain.Letter, wishlist []domain.Product) letterPayload {
	views := make([]domain.ProductView, 0, len(wishlist))
	for _, p := range wishlist {
		views = append(views, domain.NewProductView(p))
	}
	return letterPayload{
		Action: action,
		Letter: letterView{
			ID:        l.ID,
			Recipient: l.Recipient,
			Content:   l.Content,
			Products:  views,
		},
	}
}

type downloadPDFPayload struct {
	Action string `json:"action"`
}

type recommendationsPayload struct {
	Action   string               `json:"action"`
	Products []domain.ProductView `json:"products"`
}

type gamePayload struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}
