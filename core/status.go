package core

import "context"

// SectionGlobal the whole system
const SectionGlobal = "global"

// PoolSection section of one pool
func PoolSection(poolID string) string {
	return "pool:" + poolID
}

// SystemStatus circuit breaker
type SystemStatus interface {
	IsSuspended(ctx context.Context, section string) (bool, error)
}

// StatusService suspend and resume sections
type StatusService interface {
	SystemStatus
	Suspend(ctx context.Context, section, reason string) error
	Resume(ctx context.Context, section string) error
}

// Transactor runs fn as one all-or-nothing unit of work. Stores read the
// running transaction from ctx.
type Transactor interface {
	Tx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PropertyStore string key/value settings. Backed by the property table.
type PropertyStore interface {
	// Get returns "" when the key is not set
	Get(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
}
