package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertCycleSQL = `INSERT INTO turbine_cycles (
        cycle_ts,
        wind_speed,
        rotor_speed,
        active_power,
        reactive_power,
        blade_pitch_1,
        blade_pitch_2,
        blade_pitch_3,
        torque,
        gearbox_temp,
        status_bits,
        alerts
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
    )
    ON CONFLICT (cycle_ts) DO UPDATE
    SET
        wind_speed     = EXCLUDED.wind_speed,
        rotor_speed    = EXCLUDED.rotor_speed,
        active_power   = EXCLUDED.active_power,
        reactive_power = EXCLUDED.reactive_power,
        blade_pitch_1  = EXCLUDED.blade_pitch_1,
        blade_pitch_2  = EXCLUDED.blade_pitch_2,
        blade_pitch_3  = EXCLUDED.blade_pitch_3,
        torque         = EXCLUDED.torque,
        gearbox_temp   = EXCLUDED.gearbox_temp,
        status_bits    = EXCLUDED.status_bits,
        alerts         = EXCLUDED.alerts;`

	cycleColumns = `cycle_ts,
        wind_speed,
        rotor_speed,
        active_power,
        reactive_power,
        blade_pitch_1,
        blade_pitch_2,
        blade_pitch_3,
        torque,
        gearbox_temp,
        status_bits,
        alerts,
        created_at`

	listRecentCyclesSQL = `SELECT ` + cycleColumns + `
    FROM turbine_cycles
    ORDER BY cycle_ts DESC
    LIMIT $1;`

	listCyclesBetweenSQL = `SELECT ` + cycleColumns + `
    FROM turbine_cycles
    WHERE cycle_ts >= $1
      AND cycle_ts < $2
    ORDER BY cycle_ts;`

	insertAlertSQL = `INSERT INTO ids_alerts (
        cycle_ts,
        message
    ) VALUES (
        $1,$2
    );`

	listRecentAlertsSQL = `SELECT
        id,
        cycle_ts,
        message,
        created_at
    FROM ids_alerts
    ORDER BY created_at DESC
    LIMIT $1;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// Store is the PostgreSQL-backed cycle archive.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps a connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InsertCycle archives one poll cycle, upserting on the cycle timestamp.
func (s *Store) InsertCycle(ctx context.Context, record CycleRecord) error {
	if s.pool == nil {
		return ErrNotConfigured
	}

	_, err := s.pool.Exec(ctx, insertCycleSQL,
		record.Time,
		record.WindSpeed,
		record.RotorSpeed,
		record.ActivePower,
		record.ReactivePower,
		record.BladePitch1,
		record.BladePitch2,
		record.BladePitch3,
		record.Torque,
		record.GearboxTemp,
		record.StatusBits,
		record.Alerts,
	)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}
	return nil
}

// ListRecentCycles returns the newest cycles first.
func (s *Store) ListRecentCycles(ctx context.Context, limit int) ([]CycleRecord, error) {
	if s.pool == nil {
		return nil, ErrNotConfigured
	}

	rows, err := s.pool.Query(ctx, listRecentCyclesSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent cycles: %w", err)
	}
	defer rows.Close()

	return scanCycles(rows)
}

// ListCyclesBetween returns cycles in [from, to), oldest first.
func (s *Store) ListCyclesBetween(ctx context.Context, from, to time.Time) ([]CycleRecord, error) {
	if s.pool == nil {
		return nil, ErrNotConfigured
	}

	rows, err := s.pool.Query(ctx, listCyclesBetweenSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("list cycles between: %w", err)
	}
	defer rows.Close()

	return scanCycles(rows)
}

func scanCycles(rows pgx.Rows) ([]CycleRecord, error) {
	var records []CycleRecord
	for rows.Next() {
		var rec CycleRecord
		if err := rows.Scan(
			&rec.Time,
			&rec.WindSpeed,
			&rec.RotorSpeed,
			&rec.ActivePower,
			&rec.ReactivePower,
			&rec.BladePitch1,
			&rec.BladePitch2,
			&rec.BladePitch3,
			&rec.Torque,
			&rec.GearboxTemp,
			&rec.StatusBits,
			&rec.Alerts,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// InsertAlerts archives a cycle's alert messages.
func (s *Store) InsertAlerts(ctx context.Context, cycleTS time.Time, messages []string) error {
	if s.pool == nil {
		return ErrNotConfigured
	}

	for _, msg := range messages {
		if _, err := s.pool.Exec(ctx, insertAlertSQL, cycleTS, msg); err != nil {
			return fmt.Errorf("insert alert: %w", err)
		}
	}
	return nil
}

// ListRecentAlerts returns the newest alerts first.
func (s *Store) ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error) {
	if s.pool == nil {
		return nil, ErrNotConfigured
	}

	rows, err := s.pool.Query(ctx, listRecentAlertsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent alerts: %w", err)
	}
	defer rows.Close()

	var records []AlertRecord
	for rows.Next() {
		var rec AlertRecord
		if err := rows.Scan(&rec.ID, &rec.CycleTS, &rec.Message, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// TryAdvisoryLock grabs a session advisory lock; only one monitor instance
// should sample a given HMI.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	if s.pool == nil {
		return nil, false, ErrNotConfigured
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		_, _ = conn.Exec(context.Background(), advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

var _ CycleStore = (*Store)(nil)
var _ AlertStore = (*Store)(nil)
var _ AdvisoryLocker = (*Store)(nil)
