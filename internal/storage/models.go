package storage

import (
	"context"
	"time"
)

// CycleRecord is one archived poll cycle.
type CycleRecord struct {
	Time          time.Time
	WindSpeed     float64
	RotorSpeed    float64
	ActivePower   float64
	ReactivePower float64
	BladePitch1   float64
	BladePitch2   float64
	BladePitch3   float64
	Torque        float64
	GearboxTemp   *float64
	StatusBits    int32
	Alerts        []string
	CreatedAt     time.Time
}

// CycleStore persists archived cycles.
type CycleStore interface {
	InsertCycle(ctx context.Context, record CycleRecord) error
	ListRecentCycles(ctx context.Context, limit int) ([]CycleRecord, error)
	ListCyclesBetween(ctx context.Context, from, to time.Time) ([]CycleRecord, error)
}

// AlertRecord is one archived IDS alert message.
type AlertRecord struct {
	ID        int64
	CycleTS   time.Time
	Message   string
	CreatedAt time.Time
}

// AlertStore persists emitted alerts for auditing.
type AlertStore interface {
	InsertAlerts(ctx context.Context, cycleTS time.Time, messages []string) error
	ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error)
}

// AdvisoryLocker guards against two monitors sampling the same HMI.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}
