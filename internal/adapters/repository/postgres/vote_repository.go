package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vncsmyrnk/voice/internal/core/domain"
	"github.com/vncsmyrnk/voice/internal/core/ports"
)

const uniqueViolation = "23505"

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Vote, error) {
	query := `
		SELECT user_id, choice_1, choice_2, is_no_opinion, created_at
		FROM votes
		WHERE user_id = $1
	`
	vote, err := scanVote(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return vote, nil
}

func (r *voteRepository) Insert(ctx context.Context, vote *domain.Vote) error {
	query := `
		INSERT INTO votes (user_id, choice_1, choice_2, is_no_opinion)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	var choice2 sql.NullInt64
	if vote.Choice2 != nil {
		choice2 = sql.NullInt64{Int64: int64(*vote.Choice2), Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, vote.UserID, vote.Choice1, choice2, vote.IsNoOpinion).Scan(&vote.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateVote
		}
		return fmt.Errorf("failed to save vote: %w", err)
	}
	return nil
}

func (r *voteRepository) ListVotedUsers(ctx context.Context) ([]*domain.VotedUser, error) {
	query := `
		SELECT user_id, email, full_name, choice_1, choice_2, is_no_opinion, created_at
		FROM voted_users
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list voted users: %w", err)
	}
	defer rows.Close()

	var users []*domain.VotedUser
	for rows.Next() {
		var u domain.VotedUser
		var choice2 sql.NullInt64
		if err := rows.Scan(&u.UserID, &u.Email, &u.FullName, &u.Choice1, &choice2, &u.IsNoOpinion, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan voted user: %w", err)
		}
		u.Choice2 = nullableChoice(choice2)
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating voted users: %w", err)
	}
	return users, nil
}

func scanVote(row *sql.Row) (*domain.Vote, error) {
	var vote domain.Vote
	var choice2 sql.NullInt64
	if err := row.Scan(&vote.UserID, &vote.Choice1, &choice2, &vote.IsNoOpinion, &vote.CreatedAt); err != nil {
		return nil, err
	}
	vote.Choice2 = nullableChoice(choice2)
	return &vote, nil
}

func nullableChoice(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	choice := int(n.Int64)
	return &choice
}
