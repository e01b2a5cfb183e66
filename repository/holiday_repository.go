package repository

import (
	"context"
	"fmt"

	"plugbot/database"
	"plugbot/models"

	"github.com/jackc/pgx/v5"
)

// HolidayRepository tracks seasonal event currency and giveaway tickets
type HolidayRepository struct {
	db *database.DB
	q  queryable
}

// NewHolidayRepository creates a new holiday repository
func NewHolidayRepository(db *database.DB) *HolidayRepository {
	return &HolidayRepository{db: db, q: db.Pool}
}

// AddCurrency credits event currency to a user, creating the account if needed
func (r *HolidayRepository) AddCurrency(ctx context.Context, userID int64, amount int64) error {
	query := `
		INSERT INTO holiday_accounts (user_id, currency)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET currency = holiday_accounts.currency + EXCLUDED.currency, updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, userID, amount); err != nil {
		return fmt.Errorf("failed to add currency for user %d: %w", userID, err)
	}

	return nil
}

// GetTicketHolders returns all accounts holding a giveaway ticket
func (r *HolidayRepository) GetTicketHolders(ctx context.Context) ([]*models.HolidayAccount, error) {
	query := `
		SELECT user_id, username, currency, ticket, created_at, updated_at
		FROM holiday_accounts
		WHERE ticket
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket holders: %w", err)
	}
	defer rows.Close()

	var accounts []*models.HolidayAccount
	for rows.Next() {
		var account models.HolidayAccount
		err := rows.Scan(
			&account.UserID,
			&account.Username,
			&account.Currency,
			&account.Ticket,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holiday account: %w", err)
		}
		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holiday accounts: %w", err)
	}

	return accounts, nil
}

// ConsumeTickets clears the tickets of a drawn set of winners in one
// transaction, so a failure mid-batch never leaves some winners eligible for
// the next draw.
func (r *HolidayRepository) ConsumeTickets(ctx context.Context, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, userID := range userIDs {
			_, err := tx.Exec(ctx, `
				UPDATE holiday_accounts
				SET ticket = FALSE, updated_at = NOW()
				WHERE user_id = $1
			`, userID)
			if err != nil {
				return fmt.Errorf("failed to consume ticket for user %d: %w", userID, err)
			}
		}
		return nil
	})
}

// SetTicket grants or clears a user's giveaway ticket
func (r *HolidayRepository) SetTicket(ctx context.Context, userID int64, username string, held bool) error {
	query := `
		INSERT INTO holiday_accounts (user_id, username, ticket)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET ticket = EXCLUDED.ticket,
			username = COALESCE(NULLIF(EXCLUDED.username, ''), holiday_accounts.username),
			updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, userID, username, held); err != nil {
		return fmt.Errorf("failed to set ticket for user %d: %w", userID, err)
	}

	return nil
}
