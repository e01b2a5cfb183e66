package models

import "time"

// HolidayAccount tracks event currency and giveaway tickets per user. Weekend
// roulette wins and seasonal events pay into it; giveaways draw from it.
type HolidayAccount struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Currency  int64     `db:"currency"`
	Ticket    bool      `db:"ticket"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
