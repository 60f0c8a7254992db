package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	userDomain "github.com/rmarben/usergraph/internal/user/domain"
)

// AuthAuditRepo persiste el rastro de intentos de login en ClickHouse.
type AuthAuditRepo struct {
	db *sql.DB
}

// NewAuthAuditRepo es el constructor.
func NewAuthAuditRepo(addr string, dbName string) (*AuthAuditRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &AuthAuditRepo{db: conn}, nil
}

// LogBatch inserta un lote de intentos. ClickHouse funciona mejor con
// inserciones en lotes, por eso el Recorder acumula antes de volcar.
func (r *AuthAuditRepo) LogBatch(ctx context.Context, attempts []userDomain.LoginAttempt) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO login_attempts (user_id, email, success, remote_addr, event_time)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, attempt := range attempts {
		if _, err := stmt.ExecContext(
			ctx,
			attempt.UserID,
			attempt.Email,
			attempt.Success,
			attempt.RemoteAddr,
			attempt.At,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to exec statement for login of %s: %w", attempt.Email, err)
		}
	}

	return tx.Commit()
}

// GetDailyLogins devuelve la serie diaria de intentos correctos y fallidos.
func (r *AuthAuditRepo) GetDailyLogins(ctx context.Context, start, end time.Time) ([]userDomain.DailyLoginStats, error) {
	query := `
		SELECT
			toStartOfDay(event_time) AS day,
			countIf(success) AS succeeded,
			countIf(NOT success) AS failed
		FROM login_attempts
		WHERE event_time BETWEEN ? AND ?
		GROUP BY day
		ORDER BY day
	`
	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []userDomain.DailyLoginStats
	for rows.Next() {
		var s userDomain.DailyLoginStats
		if err := rows.Scan(&s.Day, &s.Succeeded, &s.Failed); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
