package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"santa-agent-service/internal/catalog"
	"santa-agent-service/internal/domain"
	"santa-agent-service/internal/infra/memory"
	"santa-agent-service/internal/letter"
	"santa-agent-service/internal/session"
)

type capturedCall struct {
	method  string
	payload any
}

type recordingPeer struct {
	calls []capturedCall
	err   error
}

func (p *recordingPeer) Identity() string { return "client-1" }

func (p *recordingPeer) Push(_ context.Context, method string, payload any) error {
	p.calls = append(p.calls, capturedCall{method: method, payload: payload})
	return p.err
}

func (p *recordingPeer) lastCall(t *testing.T) capturedCall {
	t.Helper()
	require.NotEmpty(t, p.calls, "expected at least one push")
	return p.calls[len(p.calls)-1]
}

type recordingSpeaker struct {
	lines []string
}

func (s *recordingSpeaker) Speak(_ context.Context, text string) {
	s.lines = append(s.lines, text)
}

func defaultCatalogHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		products := []domain.CatalogProduct{
			{
				Title:       "Gaming Laptop Pro",
				Description: "A powerful laptop for gaming and work",
				Price:       1299.99,
				Thumbnail:   "laptop.png",
				Category:    "laptops",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"products": products}); err != nil {
			t.Fatalf("encode: %v", err)
		}
	})
}

func newTestService(t *testing.T, handler http.Handler) (*AgentService, *recordingSpeaker) {
	t.Helper()
	if handler == nil {
		handler = defaultCatalogHandler(t)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := zap.NewNop()
	client := catalog.NewClient(server.URL, time.Second)
	resolver := catalog.NewResolver(client, log)
	bank := memory.NewStaticQuizBank(map[string][]domain.QuestionInput{
		"roman-empire": {
			{
				Text: "Who was the last Western emperor?",
				Answers: []domain.AnswerInput{
					{Text: "Romulus Augustulus", IsCorrect: true},
					{Text: "Julius Caesar"},
				},
			},
		},
	})
	speaker := &recordingSpeaker{}
	svc := NewAgentService(
		session.NewStore(),
		resolver,
		client,
		letter.NewComposer(letter.KeywordReviser{}),
		bank,
		speaker,
		log,
	)
	return svc, speaker
}

func attachPeer(svc *AgentService, sessionID string) *recordingPeer {
	peer := &recordingPeer{}
	svc.Sessions().GetOrCreate(sessionID).AttachPeer(peer)
	return peer
}

func TestCreateFlashCardPushesShow(t *testing.T) {
	svc, _ := newTestService(t, nil)
	peer := attachPeer(svc, "s1")

	reply, err := svc.CreateFlashCard(context.Background(), "s1", "Who sacked Rome?", "The Visigoths")
	require.NoError(t, err)
	assert.Contains(t, reply, "Who sacked Rome?")

	call := peer.lastCall(t)
	assert.Equal(t, MethodFlashCard, call.method)
	payload := call.payload.(flashCardPayload)
	assert.Equal(t, "show", payload.Action)
	assert.Equal(t, "The Visigoths", payload.Answer)
	require.NotNil(t, payload.Index)
	assert.Equal(t, 0, *payload.Index)
}

func TestCreateFlashCardWithoutPeerStillCommits(t *testing.T) {
	svc, _ := newTestService(t, nil)

	reply, err := svc.CreateFlashCard(context.Background(), "s1", "q", "a")
	require.NoError(t, err)
	assert.Contains(t, reply, "no one is connected")

	// The card exists even though nothing was pushed.
	sess, ok := svc.Sessions().Get("s1")
	require.True(t, ok)
	_ = sess.Exec(func(state *session.State, _ session.Peer) error {
		assert.Equal(t, 1, state.FlashCardCount())
		return nil
	})
}

func TestPushFailureDoesNotRollBack(t *testing.T) {
	svc, _ := newTestService(t, nil)
	peer := attachPeer(svc, "s1")
	peer.err = errors.New("transport down")

	reply, err := svc.CreateFlashCard(context.Background(), "s1", "q", "a")
	require.NoError(t, err)
	assert.Contains(t, reply, "I've created a flash card")

	sess, _ := svc.Sessions().Get("s1")
	_ = sess.Exec(func(state *session.State, _ session.Peer) error {
		assert.Equal(t, 1, state.FlashCardCount())
		return nil
	})
}

func TestFlipFlashCardUnknown(t *testing.T) {
	svc, _ := newTestService(t, nil)
	attachPeer(svc, "s1")

	_, err := svc.FlipFlashCard(context.Background(), "s1", "missing")
	assert.ErrorIs(t, err, domain.ErrFlashCardNotFound)
}

func TestCreateQuizWithholdsCorrectness(t *testing.T) {
	svc, _ := newTestService(t, nil)
	peer := attachPeer(svc, "s1")

	_, err := svc.CreateQuiz(context.Background(), "s1", []domain.QuestionInput{
		{
			Text: "What is 2+2?",
			Answers: []domain.AnswerInput{
				{Text: "3"},
				{Text: "4", IsCorrect: true},
			},
		},
	})
	require.NoError(t, err)

	payload := peer.lastCall(t).payload.(quizPayload)
	assert.Equal(t, "show", payload.Action)
	require.Len(t, payload.Questions, 1)
	require.Len(t, payload.Questions[0].Answers, 2)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "isCorrect", "correctness must not cross the wire")
}

func TestCreateQuizFromBank(t *testing.T) {
	svc, _ := newTestService(t, nil)
	peer := attachPeer(svc, "s1")

	reply, err := svc.CreateQuizFromBank(context.Background(), "s1", "roman-empire")
	require.NoError(t, err)
	assert.Contains(t, reply, "1 questions")
	assert.Equal(t, MethodQuiz, peer.lastCall(t).method)

	_, err = svc.CreateQuizFromBank(context.Background(), "s1", "missing")
	assert.ErrorIs(t, err, domain.ErrQuizBankNotFound)
}

func TestAddGiftToWishlist(t *testing.T) {
	svc, _ := newTestService(t, nil)
	peer := attachPeer(svc, "s1")

	reply, err := svc.AddGiftToWishlist(context.Background(), "s1", "laptop")
	require.NoError(t, err)
	assert.Contains(t, reply, "Gaming Laptop Pro")
	assert.Contains(t, reply, "1 item in your wishlist")

	payload := peer.lastCall(t).payload.(wishlistPayload)
	assert.Equal(t, "add", payload.Action)
	assert.Equal(t, "laptop.png", payload.Product.Image)
	assert.NotEmpty(t, payload.Product.ID)

	reply, err = svc.AddGiftToWishlist(context.Background(), "s1", "laptop")
	require.NoError(t, err)
	assert.Contains(t, reply, "2 items", "plural form after the second gift")
}

func TestAddGiftCatalogUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := catalog.NewClient(server.URL, 200*time.Millisecond)
	svc := NewAgentService(
		session.NewStore(),
		catalog.NewResolver(client, zap.NewNop()),
		client,
		letter.NewComposer(letter.KeywordReviser{}),
		nil,
		&recordingSpeaker{},
		zap.NewNop(),
	)

	_, err := svc.AddGiftToWishlist(context.Background(), "s1", "laptop")
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestLetterLifecycle(t *testing.T) {
	svc, _ := newTestService(t, nil)
	peer := attachPeer(svc, "s1")
	ctx := context.Background()

	_, err := svc.EditLetter(ctx, "s1", "add something")
	assert.ErrorIs(t, err, domain.ErrNoLetter)

	_, err = svc.DownloadLetterPDF(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNoLetter)

	_, err = svc.CreateLetter(ctx, "s1", "my dad", "I love you very much.")
	require.NoError(t, err)
	show := peer.lastCall(t).payload.(letterPayload)
	assert.Equal(t, "show", show.Action)
	assert.Equal(t, "my dad", show.Letter.Recipient)
	assert.NotContains(t, show.Letter.Content, letter.ProductsMarker, "no marker while the wishlist is empty")

	_, err = svc.AddGiftToWishlist(ctx, "s1", "laptop")
	require.NoError(t, err)

	// A gift-keyword edit refreshes the products section without touching
	// the message.
	_, err = svc.EditLetter(ctx, "s1", "include all my gifts in the letter")
	require.NoError(t, err)
	update := peer.lastCall(t).payload.(letterPayload)
	assert.Equal(t, "update", update.Action)
	assert.Equal(t, show.Letter.ID, update.Letter.ID, "letter id survives edits")
	assert.Contains(t, update.Letter.Content, letter.ProductsMarker)
	assert.Equal(t, "I love you very much.", letter.ExtractMessage(update.Letter.Content))
	require.Len(t, update.Letter.Products, 1)
	assert.Equal(t, "Gaming Laptop Pro", update.Letter.Products[0].Title)

	reply, err := svc.DownloadLetterPDF(ctx, "s1")
	require.NoError(t, err)
	assert.Contains(t, reply, "PDF")
	pdf := peer.lastCall(t).payload.(downloadPDFPayload)
	assert.Equal(t, "download_pdf", pdf.Action)
}

func TestRecommendProducts(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var products []domain.CatalogProduct
		switch r.URL.Path {
		case "/products/search":
			products = []domain.CatalogProduct{{Title: "Gaming Laptop Pro", Category: "laptops"}}
		case "/products/category/laptops":
			products = []domain.CatalogProduct{
				{Title: "Gaming Laptop Pro", Category: "laptops"}, // already wishlisted
				{Title: "Ultrabook Air", Category: "laptops"},
			}
		default:
			products = []domain.CatalogProduct{{Title: "Mechanical Keyboard", Category: "accessories"}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"products": products})
	})
	svc, _ := newTestService(t, handler)
	peer := attachPeer(svc, "s1")
	ctx := context.Background()

	_, err := svc.RecommendProducts(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrEmptyWishlist)

	_, err = svc.AddGiftToWishlist(ctx, "s1", "laptop")
	require.NoError(t, err)

	reply, err := svc.RecommendProducts(ctx, "s1")
	require.NoError(t, err)
	assert.Contains(t, reply, "Ultrabook Air")

	payload := peer.lastCall(t).payload.(recommendationsPayload)
	assert.Equal(t, "show_recommendations", payload.Action)
	titles := make([]string, 0, len(payload.Products))
	for _, view := range payload.Products {
		assert.True(t, view.IsRecommendation)
		assert.NotEmpty(t, view.ID)
		titles = append(titles, view.Title)
	}
	assert.Contains(t, titles, "Ultrabook Air")
	assert.NotContains(t, titles, "Gaming Laptop Pro", "wishlisted items are filtered out")
}

func TestStartRockPaperScissors(t *testing.T) {
	svc, _ := newTestService(t, nil)
	peer := attachPeer(svc, "s1")

	reply, err := svc.StartRockPaperScissors(context.Background(), "s1")
	require.NoError(t, err)
	assert.Contains(t, reply, "rock, paper, or scissors")

	payload := peer.lastCall(t).payload.(gamePayload)
	assert.Equal(t, "show", payload.Action)
	assert.NotEmpty(t, payload.Message)
}

func TestResetKeepsStudyMaterial(t *testing.T) {
	svc, _ := newTestService(t, nil)
	attachPeer(svc, "s1")
	ctx := context.Background()

	_, err := svc.CreateFlashCard(ctx, "s1", "q", "a")
	require.NoError(t, err)
	_, err = svc.AddGiftToWishlist(ctx, "s1", "laptop")
	require.NoError(t, err)
	_, err = svc.CreateLetter(ctx, "s1", "Dad", "hi")
	require.NoError(t, err)

	_, err = svc.Reset(ctx, "s1")
	require.NoError(t, err)

	sess, _ := svc.Sessions().Get("s1")
	_ = sess.Exec(func(state *session.State, _ session.Peer) error {
		assert.Equal(t, 1, state.FlashCardCount())
		assert.Empty(t, state.Wishlist())
		assert.Nil(t, state.Letter())
		return nil
	})
}
