package store

import (
	"context"
)

// Slot names for the durable session state. Kept stable so existing
// conversation history survives client upgrades.
const (
	HistoryKey = "portfolio_chat_history"
	ModeKey    = "portfolio_chat_mode"
)

// Store is a named durable key-value slot for serialized session state.
// Implementations can be file-based or Redis-backed; callers treat any
// failure as non-fatal and fall back to memory-only operation.
type Store interface {
	// Load returns the stored value and whether the key was present.
	Load(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key string, value string) error
	Clear(ctx context.Context, key string) error
}
