package app

import (
	"context"

	"go.uber.org/zap"
)

// Speaker is the text-to-speech boundary. The provider itself lives outside
// this service; delivery is best-effort like every other push.
type Speaker interface {
	Speak(ctx context.Context, text string)
}

// LogSpeaker records spoken lines instead of voicing them. It is the default
// when no speech provider is wired.
type LogSpeaker struct {
	log *zap.Logger
}

func NewLogSpeaker(log *zap.Logger) *LogSpeaker {
	return &LogSpeaker{log: log}
}

func (s *LogSpeaker) Speak(_ context.Context, text string) {
	s.log.Info("speaking", zap.String("text", text))
}
