// Package httpapi exposes the agent operations over REST so the
// conversational runtime can invoke them as tool calls.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"santa-agent-service/internal/app"
	"santa-agent-service/internal/domain"
)

type Handler struct {
	service *app.AgentService
	log     *zap.Logger
}

func NewHandler(service *app.AgentService, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// NewRouter mounts the agent API and the websocket endpoint on one handler.
func NewRouter(h *Handler, ws http.HandlerFunc, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws", ws)

	r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
		r.Post("/flashcards", h.createFlashCard)
		r.Post("/flashcards/{cardID}/flip", h.flipFlashCard)
		r.Post("/quizzes", h.createQuiz)
		r.Post("/quizzes/bank/{bankID}", h.createQuizFromBank)
		r.Post("/wishlist", h.addToWishlist)
		r.Post("/letter", h.createLetter)
		r.Patch("/letter", h.editLetter)
		r.Post("/letter/pdf", h.downloadLetterPDF)
		r.Post("/recommendations", h.recommend)
		r.Post("/game", h.startGame)
		r.Post("/reset", h.reset)
	})

	return r
}

type replyResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) respond(w http.ResponseWriter, reply string, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("operation failed", zap.Error(err))
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(replyResponse{Reply: reply})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrFlashCardNotFound),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrQuizBankNotFound),
		errors.Is(err, domain.ErrNoLetter),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyWishlist), errors.Is(err, domain.ErrNoMatch):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCatalogUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (h *Handler) createFlashCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if !decode(w, r, &req) {
		return
	}
	reply, err := h.service.CreateFlashCard(r.Context(), chi.URLParam(r, "sessionID"), req.Question, req.Answer)
	h.respond(w, reply, err)
}

func (h *Handler) flipFlashCard(w http.ResponseWriter, r *http.Request) {
	reply, err := h.service.FlipFlashCard(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "cardID"))
	h.respond(w, reply, err)
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Questions []domain.QuestionInput `json:"questions"`
	}
	if !decode(w, r, &req) {
		return
	}
	if len(req.Questions) == 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "quiz needs at least one question"})
		return
	}
	reply, err := h.service.CreateQuiz(r.Context(), chi.URLParam(r, "sessionID"), req.Questions)
	h.respond(w, reply, err)
}

func (h *Handler) createQuizFromBank(w http.ResponseWriter, r *http.Request) {
	reply, err := h.service.CreateQuizFromBank(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "bankID"))
	h.respond(w, reply, err)
}

func (h *Handler) addToWishlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Gift string `json:"gift"`
	}
	if !decode(w, r, &req) {
		return
	}
	reply, err := h.service.AddGiftToWishlist(r.Context(), chi.URLParam(r, "sessionID"), req.Gift)
	h.respond(w, reply, err)
}

func (h *Handler) createLetter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Recipient string `json:"recipient"`
		Message   string `json:"message"`
	}
	if !decode(w, r, &req) {
		return
	}
	reply, err := h.service.CreateLetter(r.Context(), chi.URLParam(r, "sessionID"), req.Recipient, req.Message)
	h.respond(w, reply, err)
}

func (h *Handler) editLetter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Instructions string `json:"instructions"`
	}
	if !decode(w, r, &req) {
		return
	}
	reply, err := h.service.EditLetter(r.Context(), chi.URLParam(r, "sessionID"), req.Instructions)
	h.respond(w, reply, err)
}

func (h *Handler) downloadLetterPDF(w http.ResponseWriter, r *http.Request) {
	reply, err := h.service.DownloadLetterPDF(r.Context(), chi.URLParam(r, "sessionID"))
	h.respond(w, reply, err)
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request) {
	reply, err := h.service.RecommendProducts(r.Context(), chi.URLParam(r, "sessionID"))
	h.respond(w, reply, err)
}

func (h *Handler) startGame(w http.ResponseWriter, r *http.Request) {
	reply, err := h.service.StartRockPaperScissors(r.Context(), chi.URLParam(r, "sessionID"))
	h.respond(w, reply, err)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	reply, err := h.service.Reset(r.Context(), chi.URLParam(r, "sessionID"))
	h.respond(w, reply, err)
}
