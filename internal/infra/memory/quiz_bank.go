// Package memory provides in-memory infrastructure fallbacks used when no
// backing services are configured.
package memory

import (
	"context"

	"santa-agent-service/internal/domain"
)

// StaticQuizBank serves authored quiz content from an in-memory map, useful
// for demos and tests.
type StaticQuizBank struct {
	entries map[string][]domain.QuestionInput
}

func NewStaticQuizBank(entries map[string][]domain.QuestionInput) *StaticQuizBank {
	return &StaticQuizBank{entries: entries}
}

func (b *StaticQuizBank) Load(_ context.Context, bankID string) ([]domain.QuestionInput, error) {
	if questions, ok := b.entries[bankID]; ok {
		return questions, nil
	}
	return nil, domain.ErrQuizBankNotFound
}
