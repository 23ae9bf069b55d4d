package persist

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PlayerRow mirrors one row of the players table plus its bank items.
type PlayerRow struct {
	ID          int32
	AccountName string
	ShardID     int16
	Name        string
	Level       int16
	X           int32
	Y           int32

	// Current stat values.
	Hitpoints int32
	Accuracy  int32
	Strength  int32
	Defense   int32
	Magic     int32
	Ranged    int32

	// Base stat values.
	BaseHitpoints int32
	BaseAccuracy  int32
	BaseStrength  int32
	BaseDefense   int32
	BaseMagic     int32
	BaseRanged    int32

	TreasureStage int32
	Bank          []BankItemRow
}

// BankItemRow is one stored bank slot.
type BankItemRow struct {
	Slot   int16
	ItemID int32
	Amount int32
	Noted  bool
}

type PlayerRepo struct {
	db    *DB
	title cases.Caser
}

func NewPlayerRepo(db *DB) *PlayerRepo {
	return &PlayerRepo{db: db, title: cases.Title(language.English)}
}

// Load fetches a player for an account on one shard. Returns nil when the
// account has no player there.
func (r *PlayerRepo) Load(ctx context.Context, accountName string, shardID int16) (*PlayerRow, error) {
	row := &PlayerRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, account_name, shard_id, name, level, x, y,
		        hitpoints, accuracy, strength, defense, magic, ranged,
		        base_hitpoints, base_accuracy, base_strength, base_defense, base_magic, base_ranged,
		        treasure_stage
		 FROM players WHERE account_name = $1 AND shard_id = $2`,
		accountName, shardID,
	).Scan(
		&row.ID, &row.AccountName, &row.ShardID, &row.Name, &row.Level, &row.X, &row.Y,
		&row.Hitpoints, &row.Accuracy, &row.Strength, &row.Defense, &row.Magic, &row.Ranged,
		&row.BaseHitpoints, &row.BaseAccuracy, &row.BaseStrength, &row.BaseDefense, &row.BaseMagic, &row.BaseRanged,
		&row.TreasureStage,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Display names are stored lowercase; present them title-cased.
	row.Name = r.title.String(row.Name)

	bank, err := r.loadBank(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	row.Bank = bank
	return row, nil
}

// Create inserts a fresh player row and returns it with the assigned id.
func (r *PlayerRepo) Create(ctx context.Context, row *PlayerRow) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO players (
			account_name, shard_id, name, level, x, y,
			hitpoints, accuracy, strength, defense, magic, ranged,
			base_hitpoints, base_accuracy, base_strength, base_defense, base_magic, base_ranged,
			treasure_stage
		) VALUES (
			$1,$2,$3,$4,$5,$6,
			$7,$8,$9,$10,$11,$12,
			$13,$14,$15,$16,$17,$18,$19
		) RETURNING id`,
		row.AccountName, row.ShardID, row.Name, row.Level, row.X, row.Y,
		row.Hitpoints, row.Accuracy, row.Strength, row.Defense, row.Magic, row.Ranged,
		row.BaseHitpoints, row.BaseAccuracy, row.BaseStrength, row.BaseDefense, row.BaseMagic, row.BaseRanged,
		row.TreasureStage,
	).Scan(&row.ID)
}

// Save writes position, stats, progress, and the bank in one transaction.
// Safe to retry: the statement set is idempotent for a given snapshot.
func (r *PlayerRepo) Save(ctx context.Context, row *PlayerRow) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE players SET
			level = $2, x = $3, y = $4,
			hitpoints = $5, accuracy = $6, strength = $7, defense = $8, magic = $9, ranged = $10,
			base_hitpoints = $11, base_accuracy = $12, base_strength = $13,
			base_defense = $14, base_magic = $15, base_ranged = $16,
			treasure_stage = $17, updated_at = NOW()
		 WHERE id = $1`,
		row.ID, row.Level, row.X, row.Y,
		row.Hitpoints, row.Accuracy, row.Strength, row.Defense, row.Magic, row.Ranged,
		row.BaseHitpoints, row.BaseAccuracy, row.BaseStrength,
		row.BaseDefense, row.BaseMagic, row.BaseRanged,
		row.TreasureStage,
	)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM bank_items WHERE player_id = $1`, row.ID); err != nil {
		return err
	}
	for _, it := range row.Bank {
		_, err := tx.Exec(ctx,
			`INSERT INTO bank_items (player_id, slot, item_id, amount, noted)
			 VALUES ($1, $2, $3, $4, $5)`,
			row.ID, it.Slot, it.ItemID, it.Amount, it.Noted,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PlayerRepo) loadBank(ctx context.Context, playerID int32) ([]BankItemRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT slot, item_id, amount, noted
		 FROM bank_items WHERE player_id = $1 ORDER BY slot`, playerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bank []BankItemRow
	for rows.Next() {
		var it BankItemRow
		if err := rows.Scan(&it.Slot, &it.ItemID, &it.Amount, &it.Noted); err != nil {
			return nil, err
		}
		bank = append(bank, it)
	}
	return bank, rows.Err()
}
