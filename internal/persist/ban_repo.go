package persist

import (
	"context"
	"time"
)

// BanRepo answers ban queries for the periodic enforcement sweep.
type BanRepo struct {
	db *DB
}

func NewBanRepo(db *DB) *BanRepo {
	return &BanRepo{db: db}
}

// BannedAccounts returns the names of accounts whose bans are active now.
// Expired timed bans are cleared as a side effect.
func (r *BanRepo) BannedAccounts(ctx context.Context) ([]string, error) {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE accounts SET banned = FALSE, banned_until = NULL
		 WHERE banned AND banned_until IS NOT NULL AND banned_until <= NOW()`,
	)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx, `SELECT name FROM accounts WHERE banned`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Ban marks an account banned, optionally until a given time.
func (r *BanRepo) Ban(ctx context.Context, name string, until *time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE accounts SET banned = TRUE, banned_until = $2 WHERE name = $1`,
		name, until,
	)
	return err
}
