// Package postgres loads authored quiz-bank content from Postgres JSONB.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"santa-agent-service/internal/domain"
)

// QuizBank reads question sets from the quiz_bank table.
type QuizBank struct {
	pool *pgxpool.Pool
}

func NewQuizBank(pool *pgxpool.Pool) *QuizBank {
	return &QuizBank{pool: pool}
}

func (b *QuizBank) Load(ctx context.Context, bankID string) ([]domain.QuestionInput, error) {
	var raw []byte
	err := b.pool.QueryRow(ctx, `SELECT questions FROM quiz_bank WHERE id=$1`, bankID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrQuizBankNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load quiz bank entry: %w", err)
	}
	var questions []domain.QuestionInput
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal quiz bank entry: %w", err)
	}
	return questions, nil
}
