package app

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"santa-agent-service/internal/session"
)

// InboundHandler processes one client-initiated RPC call. The payload is the
// raw JSON string from the wire; the return value is the RPC response string
// ("success" or "error: <detail>"). Handlers never panic across the channel
// boundary: malformed input comes back as an error string.
type InboundHandler func(ctx context.Context, sess *session.Session, payload string) string

// InboundHandlers is the dispatch table from method name to handler.
func (s *AgentService) InboundHandlers() map[string]InboundHandler {
	return map[string]InboundHandler{
		MethodFlipFlashCard: s.handleFlipFlashCard,
		MethodSubmitQuiz:    s.handleSubmitQuiz,
		MethodGameChoice:    s.handleGameChoice,
	}
}

// DispatchInbound routes one inbound call to its handler. Calls for a given
// session arrive in order from the single peer connection and are serialized
// by the session itself.
func (s *AgentService) DispatchInbound(ctx context.Context, sessionID, method, payload string) string {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		s.log.Warn("inbound call for unknown session", zap.String("session", sessionID), zap.String("method", method))
		return "error: unknown session"
	}
	handler, ok := s.InboundHandlers()[method]
	if !ok {
		s.log.Warn("unsupported inbound method", zap.String("method", method))
		return "error: unsupported method " + method
	}
	return handler(ctx, sess, payload)
}

func (s *AgentService) handleFlipFlashCard(_ context.Context, sess *session.Session, payload string) string {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		s.log.Error("malformed flip payload", zap.String("payload", payload), zap.Error(err))
		return "error: " + err.Error()
	}
	if req.ID == "" {
		s.log.Error("flip payload missing card id", zap.String("payload", payload))
		return "error: no card id in payload"
	}

	result := "error: flash card not found"
	_ = sess.Exec(func(state *session.State, _ session.Peer) error {
		if card := state.FlipFlashCard(req.ID); card != nil {
			s.log.Info("flipped flash card",
				zap.String("card", card.ID),
				zap.Bool("isFlipped", card.IsFlipped))
			result = "success"
		}
		return nil
	})
	return result
}

func (s *AgentService) handleSubmitQuiz(ctx context.Context, sess *session.Session, payload string) string {
	var req struct {
		ID      string            `json:"id"`
		Answers map[string]string `json:"answers"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		s.log.Error("malformed quiz submission", zap.String("payload", payload), zap.Error(err))
		return "error: " + err.Error()
	}
	if req.ID == "" {
		s.log.Error("quiz submission missing quiz id", zap.String("payload", payload))
		return "error: no quiz id in payload"
	}

	var report *GradeReport
	_ = sess.Exec(func(state *session.State, peer session.Peer) error {
		report = s.grader.Grade(state, req.ID, req.Answers)
		if report == nil {
			return nil
		}
		// Missed questions become flash cards; show each one right away.
		for _, remediation := range report.NewCards {
			s.pushTo(ctx, peer, MethodFlashCard, showFlashCardPayload(remediation.Card, remediation.Index))
		}
		return nil
	})
	if report == nil {
		s.log.Error("quiz submission for unknown quiz", zap.String("quiz", req.ID))
		return "error: quiz not found"
	}

	s.speaker.Speak(ctx, report.Summary())
	return "success"
}

var gameChoiceRemarks = map[string]string{
	"rock":     "Rock! A solid choice! Ho ho ho!",
	"paper":    "Paper! Very clever!",
	"scissors": "Scissors! Sharp thinking! Ho ho ho!",
}

// gameResultRemarks are keyed by the result from the client's perspective.
var gameResultRemarks = map[string]string{
	"win":  "Oh no! You beat me! Well played! Ho ho ho!",
	"lose": "Ho ho ho! I won this round! Great game though!",
	"tie":  "It's a tie! What a coincidence! Let's play again!",
}

func (s *AgentService) handleGameChoice(ctx context.Context, sess *session.Session, payload string) string {
	var req struct {
		Choice      string `json:"choice"`
		SantaChoice string `json:"santaChoice"`
		Result      string `json:"result"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		s.log.Error("malformed game choice", zap.String("payload", payload), zap.Error(err))
		return "error: " + err.Error()
	}
	if req.Choice == "" {
		s.log.Error("game choice payload missing choice", zap.String("payload", payload))
		return "error: no choice in payload"
	}

	remark, ok := gameChoiceRemarks[req.Choice]
	if !ok {
		remark = "Great choice! Let's see who wins!"
	}
	s.speaker.Speak(ctx, remark)
	s.log.Info("game choice received", zap.String("choice", req.Choice), zap.String("result", req.Result))

	if req.Result != "" && req.SantaChoice != "" {
		resultRemark, ok := gameResultRemarks[req.Result]
		if !ok {
			resultRemark = "Great game!"
		}
		s.speaker.Speak(ctx, resultRemark)
		_ = sess.Exec(func(_ *session.State, peer session.Peer) error {
			s.pushTo(ctx, peer, MethodRockPaperScissors, gamePayload{
				Action:  "update_message",
				Message: resultRemark,
			})
			return nil
		})
	}
	return "success"
}
