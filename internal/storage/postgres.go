package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-backtest/internal/engine"
)

// PostgresStorage implements Storage using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage creates a new PostgreSQL storage.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStorage{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// StoreRun persists the run's capital history and executed trades inside
// a single transaction, so a crash mid-write never leaves a partial run.
func (p *PostgresStorage) StoreRun(ctx context.Context, result *engine.Result) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, t := range result.ExecutedTrades {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO backtest_trades (
				run_id, trade_id, condition_id, category, neg_risk_group,
				timestamp, resolve_ts, price, execution_price, shares,
				notional, q_hat, q_lower, ev_lower, total_cost, payout, pnl
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
			)`,
			result.RunID, t.TradeID, t.ConditionID, t.Category, t.NegRiskGroup,
			t.Timestamp, t.ResolveTS, t.Price, t.ExecutionPrice, t.Shares,
			t.Notional, t.QHat, t.QLower, t.EVLower, t.TotalCost, t.Payout, t.PnL,
		)
		if err != nil {
			return fmt.Errorf("insert trade %s: %w", t.TradeID, err)
		}
	}

	for _, c := range result.CapitalHistory {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO backtest_capital_history (run_id, timestamp, capital)
			VALUES ($1, $2, $3)`,
			result.RunID, c.Timestamp, c.Capital,
		)
		if err != nil {
			return fmt.Errorf("insert capital history point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", result.RunID, err)
	}

	p.logger.Info("run-stored",
		zap.String("run-id", result.RunID),
		zap.Int("trade-count", len(result.ExecutedTrades)),
		zap.Float64("ending-capital", result.EndingCapital))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
