package repository

import (
	"context"

	"chargeslot/internal/infra"
	"chargeslot/internal/infra/db"

	"github.com/google/uuid"
)

// ConversationRepository backs the conversation registry contract: ensure a
// direct channel exists between a driver and a charger owner. Called outside
// the reservation transaction, best-effort only.
type ConversationRepository struct {
	db db.DBTX
}

func NewConversationRepository(pool db.DBTX) *ConversationRepository {
	return &ConversationRepository{db: pool}
}

// FindOrCreate returns the conversation id for the pair, creating the row on
// first contact. The pair is stored ordered so (a,b) and (b,a) hit the same
// unique key.
func (r *ConversationRepository) FindOrCreate(ctx context.Context, userA, userB uuid.UUID) (uuid.UUID, error) {
	lo, hi := orderPair(userA, userB)

	const insert = `
		INSERT INTO conversations (id, user_a, user_b)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_a, user_b) DO NOTHING`

	if _, err := r.db.Exec(ctx, insert, uuid.New(), lo, hi); err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create conversation", err)
	}

	const query = `SELECT id FROM conversations WHERE user_a = $1 AND user_b = $2`

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, lo, hi).Scan(&id); err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to find conversation", err)
	}
	return id, nil
}

func orderPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() < b.String() {
		return a, b
	}
	return b, a
}
