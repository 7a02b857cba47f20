// Package sync drains the device's pending queue against the server's sync
// endpoints and tracks the user-visible sync state.
package sync

import "sync"

// State is the user-visible sync label. Offline wins over syncing, syncing
// over online.
type State string

const (
	StateOffline State = "offline"
	StateSyncing State = "syncing"
	StateOnline  State = "online"
)

// Snapshot is the derived, non-persisted view of the two status signals.
type Snapshot struct {
	Online       bool
	PendingCount int
	State        State
}

// StatusModel combines network reachability and the pending-item count.
// It is purely observational; nothing blocks on it.
type StatusModel struct {
	mu       sync.Mutex
	online   bool
	pending  int
	onChange func(Snapshot)
}

func NewStatusModel() *StatusModel {
	return &StatusModel{}
}

// OnChange registers a callback invoked after every signal update.
func (m *StatusModel) OnChange(fn func(Snapshot)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// SetOnline records a connectivity change.
func (m *StatusModel) SetOnline(online bool) {
	m.mu.Lock()
	m.online = online
	snap, fn := m.snapshotLocked()
	m.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

// SetPendingCount records the current number of queued items.
func (m *StatusModel) SetPendingCount(count int) {
	m.mu.Lock()
	m.pending = count
	snap, fn := m.snapshotLocked()
	m.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

// Snapshot returns the current derived status.
func (m *StatusModel) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, _ := m.snapshotLocked()
	return snap
}

func (m *StatusModel) snapshotLocked() (Snapshot, func(Snapshot)) {
	state := StateOnline
	switch {
	case !m.online:
		state = StateOffline
	case m.pending > 0:
		state = StateSyncing
	}
	return Snapshot{Online: m.online, PendingCount: m.pending, State: state}, m.onChange
}
