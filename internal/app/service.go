// Package app implements the agent-facing operations and the sync protocol
// between session state and the connected client.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"santa-agent-service/internal/catalog"
	"santa-agent-service/internal/domain"
	"santa-agent-service/internal/letter"
	"santa-agent-service/internal/session"
)

// QuizBank serves pre-authored question sets by id.
type QuizBank interface {
	Load(ctx context.Context, bankID string) ([]domain.QuestionInput, error)
}

const maxRecommendations = 6

// AgentService contains the operations the conversational runtime invokes.
// Every operation commits its state mutation first and then pushes the delta
// to the connected peer; pushes are best-effort and never undo a mutation.
type AgentService struct {
	sessions *session.Store
	resolver catalog.Source
	catalog  *catalog.Client
	composer *letter.Composer
	bank     QuizBank
	grader   Grader
	speaker  Speaker
	log      *zap.Logger
}

func NewAgentService(
	sessions *session.Store,
	resolver catalog.Source,
	client *catalog.Client,
	composer *letter.Composer,
	bank QuizBank,
	speaker Speaker,
	log *zap.Logger,
) *AgentService {
	return &AgentService{
		sessions: sessions,
		resolver: resolver,
		catalog:  client,
		composer: composer,
		bank:     bank,
		speaker:  speaker,
		log:      log,
	}
}

// Sessions exposes the registry to the transport layers.
func (s *AgentService) Sessions() *session.Store {
	return s.sessions
}

// pushTo sends one outbound RPC call. It reports whether a peer was
// connected at all; a transport failure on a connected peer is logged and
// otherwise ignored, because the mutation it announces is already committed.
func (s *AgentService) pushTo(ctx context.Context, peer session.Peer, method string, payload any) bool {
	if peer == nil {
		s.log.Info("no participant connected, skipping push", zap.String("method", method))
		return false
	}
	if err := peer.Push(ctx, method, payload); err != nil {
		s.log.Warn("rpc push failed",
			zap.String("method", method),
			zap.String("peer", peer.Identity()),
			zap.Error(err))
	}
	return true
}

// CreateFlashCard adds a card and shows it to the client.
func (s *AgentService) CreateFlashCard(ctx context.Context, sessionID, question, answer string) (string, error) {
	sess := s.sessions.GetOrCreate(sessionID)
	var reply string
	err := sess.Exec(func(state *session.State, peer session.Peer) error {
		card := state.AddFlashCard(question, answer)
		if s.pushTo(ctx, peer, MethodFlashCard, showFlashCardPayload(card, state.FlashCardCount()-1)) {
			reply = fmt.Sprintf("I've created a flash card with the question: '%s'", question)
		} else {
			reply = "Created a flash card, but no one is connected to see it yet."
		}
		return nil
	})
	return reply, err
}

// FlipFlashCard toggles a card and tells the client which side to show.
func (s *AgentService) FlipFlashCard(ctx context.Context, sessionID, cardID string) (string, error) {
	sess := s.sessions.GetOrCreate(sessionID)
	var reply string
	err := sess.Exec(func(state *session.State, peer session.Peer) error {
		card := state.FlipFlashCard(cardID)
		if card == nil {
			return fmt.Errorf("flip card %s: %w", cardID, domain.ErrFlashCardNotFound)
		}
		side := "question"
		if card.IsFlipped {
			side = "answer"
		}
		if s.pushTo(ctx, peer, MethodFlashCard, flipFlashCardPayload(card)) {
			reply = fmt.Sprintf("I've flipped the flash card to show the %s", side)
		} else {
			reply = "Flipped the flash card, but no one is connected to see it."
		}
		return nil
	})
	return reply, err
}

// CreateQuiz materializes a quiz and displays it, with answer correctness
// withheld from the client.
func (s *AgentService) CreateQuiz(ctx context.Context, sessionID string, questions []domain.QuestionInput) (string, error) {
	sess := s.sessions.GetOrCreate(sessionID)
	var reply string
	err := sess.Exec(func(state *session.State, peer session.Peer) error {
		quiz := state.AddQuiz(questions)
		if s.pushTo(ctx, peer, MethodQuiz, showQuizPayload(quiz)) {
			reply = fmt.Sprintf("I've created a quiz with %d questions. Please answer them when you're ready.", len(quiz.Questions))
		} else {
			reply = "Created a quiz, but no one is connected to take it yet."
		}
		return nil
	})
	return reply, err
}

// CreateQuizFromBank starts a quiz from pre-authored content.
func (s *AgentService) CreateQuizFromBank(ctx context.Context, sessionID, bankID string) (string, error) {
	if s.bank == nil {
		return "", fmt.Errorf("bank %s: %w", bankID, domain.ErrQuizBankNotFound)
	}
	questions, err := s.bank.Load(ctx, bankID)
	if err != nil {
		return "", fmt.Errorf("bank %s: %w", bankID, err)
	}
	return s.CreateQuiz(ctx, sessionID, questions)
}

// AddGiftToWishlist resolves a free-text gift phrase against the catalog and
// appends the result to the wishlist. Resolution runs outside the session
// lock; it may take several seconds across the fallback tiers.
func (s *AgentService) AddGiftToWishlist(ctx context.Context, sessionID, gift string) (string, error) {
	raw, err := s.resolver.Resolve(ctx, gift)
	if err != nil {
		return "", fmt.Errorf("resolve gift %q: %w", gift, err)
	}

	sess := s.sessions.GetOrCreate(sessionID)
	var reply string
	execErr := sess.Exec(func(state *session.State, peer session.Peer) error {
		product := state.AddProduct(raw)
		total := len(state.Wishlist())
		s.pushTo(ctx, peer, MethodAddToWishlist, wishlistPayload{Action: "add", Product: domain.NewProductView(product)})

		plural := ""
		if total > 1 {
			plural = "s"
		}
		reply = fmt.Sprintf("I've added %s to your wishlist! Ho ho ho! You now have %d item%s in your wishlist.", product.Title, total, plural)
		return nil
	})
	return reply, execErr
}

// CreateLetter composes the letter, embedding the products marker whenever
// the wishlist is non-empty.
func (s *AgentService) CreateLetter(ctx context.Context, sessionID, recipient, message string) (string, error) {
	sess := s.sessions.GetOrCreate(sessionID)
	var reply string
	err := sess.Exec(func(state *session.State, peer session.Peer) error {
		wishlist := state.Wishlist()
		content := s.composer.Compose(recipient, message, len(wishlist) > 0)
		l := state.SetLetter(recipient, content)
		s.pushTo(ctx, peer, MethodShowLetter, showLetterPayload("show", l, wishlist))
		reply = fmt.Sprintf("I've created a beautiful letter for %s! Ho ho ho! You can see it on the right side of the screen.", recipient)
		return nil
	})
	return reply, err
}

// EditLetter applies the revision heuristic to the existing letter and
// re-renders it against the live wishlist.
func (s *AgentService) EditLetter(ctx context.Context, sessionID, instructions string) (string, error) {
	sess := s.sessions.GetOrCreate(sessionID)
	var reply string
	err := sess.Exec(func(state *session.State, peer session.Peer) error {
		current := state.Letter()
		if current == nil {
			return fmt.Errorf("edit letter: %w", domain.ErrNoLetter)
		}
		wishlist := state.Wishlist()
		content := s.composer.Edit(current.Recipient, current.Content, instructions, len(wishlist) > 0)
		l := state.SetLetter(current.Recipient, content)
		s.pushTo(ctx, peer, MethodShowLetter, showLetterPayload("update", l, wishlist))
		reply = "I've updated the letter! Ho ho ho! The changes are now visible on the right side."
		return nil
	})
	return reply, err
}

// DownloadLetterPDF asks the client to export the letter.
func (s *AgentService) DownloadLetterPDF(ctx context.Context, sessionID string) (string, error) {
	sess := s.sessions.GetOrCreate(sessionID)
	var reply string
	err := sess.Exec(func(state *session.State, peer session.Peer) error {
		if state.Letter() == nil {
			return fmt.Errorf("download letter: %w", domain.ErrNoLetter)
		}
		if s.pushTo(ctx, peer, MethodDownloadLetterPDF, downloadPDFPayload{Action: "download_pdf"}) {
			reply = "I've started downloading your letter as a PDF! Ho ho ho! It should start downloading in a moment."
		} else {
			reply = "The letter is ready, but no one is connected to receive the download."
		}
		return nil
	})
	return reply, err
}

// RecommendProducts suggests catalog items similar to the current wishlist.
// Recommendations are pushed to the client but never stored.
func (s *AgentService) RecommendProducts(ctx context.Context, sessionID string) (string, error) {
	sess := s.sessions.GetOrCreate(sessionID)

	var wishlist []domain.Product
	_ = sess.Exec(func(state *session.State, _ session.Peer) error {
		wishlist = append(wishlist, state.Wishlist()...)
		return nil
	})
	if len(wishlist) == 0 {
		return "", fmt.Errorf("recommend products: %w", domain.ErrEmptyWishlist)
	}

	recommended := s.collectRecommendations(ctx, wishlist)
	if len(recommended) == 0 {
		return "", fmt.Errorf("recommend products: %w", domain.ErrNoMatch)
	}

	views := make([]domain.ProductView, 0, len(recommended))
	names := make([]string, 0, 3)
	for _, raw := range recommended {
		d1, d2, d3 := domain.SplitDescription(raw.Description)
		views = append(views, domain.ProductView{
			ID:               uuid.NewString(),
			Title:            raw.Title,
			Description1:     d1,
			Description2:     d2,
			Description3:     d3,
			Image:            raw.Image(),
			Price:            raw.Price,
			Category:         raw.Category,
			IsRecommendation: true,
		})
		if len(names) < 3 {
			names = append(names, raw.Title)
		}
	}

	_ = sess.Exec(func(_ *session.State, peer session.Peer) error {
		s.pushTo(ctx, peer, MethodRecommendations, recommendationsPayload{
			Action:   "show_recommendations",
			Products: views,
		})
		return nil
	})

	return fmt.Sprintf(
		"Ho ho ho! I found %d similar products you might like! For example: %s. You can see all my recommendations below your wishlist.",
		len(recommended), strings.Join(names, ", "),
	), nil
}

// collectRecommendations gathers up to maxRecommendations candidates from
// wishlist categories, topping up from a general listing. Items whose title
// is already wishlisted are skipped.
func (s *AgentService) collectRecommendations(ctx context.Context, wishlist []domain.Product) []domain.CatalogProduct {
	existing := make(map[string]bool, len(wishlist))
	var categories []string
	seenCategory := make(map[string]bool)
	for _, p := range wishlist {
		existing[strings.ToLower(p.Title)] = true
		if p.Category != "" && !seenCategory[p.Category] {
			seenCategory[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	if len(categories) > 3 {
		categories = categories[:3]
	}

	var recommended []domain.CatalogProduct
	add := func(products []domain.CatalogProduct) {
		for _, product := range products {
			if len(recommended) >= maxRecommendations {
				return
			}
			if existing[strings.ToLower(product.Title)] {
				continue
			}
			recommended = append(recommended, product)
		}
	}

	for _, category := range categories {
		if len(recommended) >= maxRecommendations {
			break
		}
		products, err := s.catalog.Category(ctx, category, 5)
		if err != nil {
			s.log.Warn("recommendation category fetch failed", zap.String("category", category), zap.Error(err))
			continue
		}
		add(products)
	}

	if len(recommended) < maxRecommendations {
		products, err := s.catalog.List(ctx, 30)
		if err != nil {
			s.log.Warn("recommendation listing fetch failed", zap.Error(err))
		} else {
			add(products)
		}
	}
	return recommended
}

// StartRockPaperScissors opens the game modal on the client.
func (s *AgentService) StartRockPaperScissors(ctx context.Context, sessionID string) (string, error) {
	sess := s.sessions.GetOrCreate(sessionID)
	var reply string
	err := sess.Exec(func(_ *session.State, peer session.Peer) error {
		payload := gamePayload{
			Action:  "show",
			Message: "Ho ho ho! Let's play Rock, Paper, Scissors! Choose your move!",
		}
		if s.pushTo(ctx, peer, MethodRockPaperScissors, payload) {
			reply = "Ho ho ho! The game is ready! Choose rock, paper, or scissors on the left side!"
		} else {
			reply = "Started the game, but no one is connected to play it."
		}
		return nil
	})
	return reply, err
}

// Reset clears the transient session state while keeping study material.
func (s *AgentService) Reset(_ context.Context, sessionID string) (string, error) {
	sess := s.sessions.GetOrCreate(sessionID)
	var reply string
	err := sess.Exec(func(state *session.State, _ session.Peer) error {
		state.Reset()
		reply = "I've cleared your wishlist and letter. Your flash cards and quizzes are safe with me!"
		return nil
	})
	return reply, err
}
