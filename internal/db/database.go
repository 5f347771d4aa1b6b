package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"blackjack-server/internal/config"
	"blackjack-server/internal/game"
)

// Database is the sqlx-backed persistence layer. It supports postgres
// (DSN) and sqlite (file path) so the server can run against a real
// database or a local file.
type Database struct {
	db *sqlx.DB
}

// New opens the configured database, applies pool settings and creates
// the schema if needed.
func New(cfg config.Database) (*Database, error) {
	var driver, dsn string
	switch cfg.Driver {
	case "sqlite", "sqlite3":
		driver = "sqlite3"
		dsn = cfg.Path
	case "postgres", "":
		driver = "postgres"
		dsn = cfg.DSN
	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeSec) * time.Second)

	d := &Database{db: db}
	if err := d.initSchema(driver); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

func (d *Database) initSchema(driver string) error {
	historyID := "id SERIAL PRIMARY KEY"
	if driver == "sqlite3" {
		historyID = "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			chips NUMERIC NOT NULL DEFAULT 1000,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS game_history (
			` + historyID + `,
			player_id TEXT NOT NULL,
			username TEXT NOT NULL,
			bet_amount NUMERIC NOT NULL,
			player_hand TEXT NOT NULL,
			dealer_hand TEXT NOT NULL,
			player_score INTEGER NOT NULL,
			dealer_score INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			chips_change NUMERIC NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_game_history_player
			ON game_history (player_id, created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := d.db.Exec(stmt); err != nil {
			return errors.Wrap(err, "initializing schema")
		}
	}
	return nil
}

// Close closes the underlying connection pool.
func (d *Database) Close() error {
	return d.db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func (d *Database) CreatePlayer(ctx context.Context, username string, chips decimal.Decimal) (*game.Player, error) {
	p := &game.Player{
		ID:        uuid.New().String(),
		Username:  username,
		Chips:     chips,
		CreatedAt: time.Now().UTC(),
	}

	query := d.db.Rebind(`INSERT INTO players (id, username, chips, created_at) VALUES (?, ?, ?, ?)`)
	_, err := d.db.ExecContext(ctx, query, p.ID, p.Username, p.Chips, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, game.ErrUsernameTaken
		}
		return nil, errors.Wrap(err, "creating player")
	}
	return p, nil
}

func (d *Database) GetPlayerByID(ctx context.Context, id string) (*game.Player, error) {
	var p game.Player
	query := d.db.Rebind(`SELECT id, username, chips, created_at FROM players WHERE id = ?`)
	if err := d.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, game.ErrPlayerNotFound
		}
		return nil, errors.Wrap(err, "fetching player")
	}
	return &p, nil
}

func (d *Database) GetPlayerByUsername(ctx context.Context, username string) (*game.Player, error) {
	var p game.Player
	query := d.db.Rebind(`SELECT id, username, chips, created_at FROM players WHERE username = ?`)
	if err := d.db.GetContext(ctx, &p, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, game.ErrPlayerNotFound
		}
		return nil, errors.Wrap(err, "fetching player by username")
	}
	return &p, nil
}

func (d *Database) ListPlayers(ctx context.Context) ([]*game.Player, error) {
	players := []*game.Player{}
	query := `SELECT id, username, chips, created_at FROM players ORDER BY created_at`
	if err := d.db.SelectContext(ctx, &players, query); err != nil {
		return nil, errors.Wrap(err, "listing players")
	}
	return players, nil
}

func (d *Database) SetChips(ctx context.Context, username string, chips decimal.Decimal) (*game.Player, error) {
	query := d.db.Rebind(`UPDATE players SET chips = ? WHERE username = ?`)
	res, err := d.db.ExecContext(ctx, query, chips, username)
	if err != nil {
		return nil, errors.Wrap(err, "updating chips")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, game.ErrPlayerNotFound
	}
	return d.GetPlayerByUsername(ctx, username)
}

func (d *Database) DeletePlayer(ctx context.Context, username string) (*game.Player, error) {
	p, err := d.GetPlayerByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	query := d.db.Rebind(`DELETE FROM players WHERE username = ?`)
	if _, err := d.db.ExecContext(ctx, query, username); err != nil {
		return nil, errors.Wrap(err, "deleting player")
	}
	return p, nil
}

func (d *Database) LookupPlayer(ctx context.Context, id string) (string, decimal.Decimal, error) {
	p, err := d.GetPlayerByID(ctx, id)
	if err != nil {
		return "", decimal.Zero, err
	}
	return p.Username, p.Chips, nil
}

func (d *Database) AdjustChips(ctx context.Context, id string, delta decimal.Decimal) error {
	query := d.db.Rebind(`UPDATE players SET chips = chips + ? WHERE id = ?`)
	res, err := d.db.ExecContext(ctx, query, delta, id)
	if err != nil {
		return errors.Wrap(err, "adjusting chips")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return game.ErrPlayerNotFound
	}
	return nil
}

func (d *Database) AppendResult(ctx context.Context, res *game.Result) error {
	playerHand, err := json.Marshal(res.PlayerHand)
	if err != nil {
		return errors.Wrap(err, "encoding player hand")
	}
	dealerHand, err := json.Marshal(res.DealerHand)
	if err != nil {
		return errors.Wrap(err, "encoding dealer hand")
	}

	query := d.db.Rebind(`INSERT INTO game_history
		(player_id, username, bet_amount, player_hand, dealer_hand,
		 player_score, dealer_score, outcome, chips_change, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = d.db.ExecContext(ctx, query,
		res.PlayerID, res.Username, res.BetAmount, playerHand, dealerHand,
		res.PlayerScore, res.DealerScore, string(res.Outcome), res.ChipsChange, time.Now().UTC())
	return errors.Wrap(err, "appending game history")
}

type historyRow struct {
	ID          int64           `db:"id"`
	PlayerID    string          `db:"player_id"`
	Username    string          `db:"username"`
	BetAmount   decimal.Decimal `db:"bet_amount"`
	PlayerHand  []byte          `db:"player_hand"`
	DealerHand  []byte          `db:"dealer_hand"`
	PlayerScore int             `db:"player_score"`
	DealerScore int             `db:"dealer_score"`
	Outcome     string          `db:"outcome"`
	ChipsChange decimal.Decimal `db:"chips_change"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (d *Database) PlayerHistory(ctx context.Context, playerID string, limit int) ([]*game.HistoryRecord, error) {
	rows := []historyRow{}
	query := d.db.Rebind(`SELECT id, player_id, username, bet_amount, player_hand, dealer_hand,
			player_score, dealer_score, outcome, chips_change, created_at
		FROM game_history
		WHERE player_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)
	if err := d.db.SelectContext(ctx, &rows, query, playerID, limit); err != nil {
		return nil, errors.Wrap(err, "querying game history")
	}

	records := make([]*game.HistoryRecord, 0, len(rows))
	for _, row := range rows {
		rec := &game.HistoryRecord{
			ID:          row.ID,
			PlayerID:    row.PlayerID,
			Username:    row.Username,
			BetAmount:   row.BetAmount,
			PlayerScore: row.PlayerScore,
			DealerScore: row.DealerScore,
			Outcome:     game.Status(row.Outcome),
			ChipsChange: row.ChipsChange,
			Timestamp:   row.CreatedAt,
		}
		if err := json.Unmarshal(row.PlayerHand, &rec.PlayerHand); err != nil {
			return nil, errors.Wrap(err, "decoding player hand")
		}
		if err := json.Unmarshal(row.DealerHand, &rec.DealerHand); err != nil {
			return nil, errors.Wrap(err, "decoding dealer hand")
		}
		records = append(records, rec)
	}
	return records, nil
}
