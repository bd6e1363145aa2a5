// Package observability hosts the shared, mutex-protected state snapshot and
// the metrics/tracing/HTTP plumbing the three reconcile loops report into.
package observability

import (
	"sync"
	"time"
)

// KindStatus records the last reconcile of one CR instance.
type KindStatus struct {
	Name               string    `json:"name"`
	Namespace          string    `json:"namespace"`
	ObservedGeneration int64     `json:"observedGeneration"`
	LastError          string    `json:"lastError,omitempty"`
	LastReconciledAt   time.Time `json:"lastReconciledAt"`
}

// Snapshot is the only shared mutable datum the reconcile loops write to. It
// is read by the HTTP surface's "/" endpoint. Each kind tracks one entry per
// namespaced name, since many Garage/Bucket/AccessKey resources can exist
// at once.
type Snapshot struct {
	mu      sync.Mutex
	started time.Time
	perKind map[string]map[string]KindStatus
}

// NewSnapshot creates an empty snapshot stamped with the process start
// instant.
func NewSnapshot(started time.Time) *Snapshot {
	return &Snapshot{
		started: started,
		perKind: make(map[string]map[string]KindStatus),
	}
}

// Record updates the last-reconciled status for one namespaced instance of
// kind.
func (s *Snapshot) Record(kind string, status KindStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.perKind[kind] == nil {
		s.perKind[kind] = make(map[string]KindStatus)
	}
	s.perKind[kind][status.Namespace+"/"+status.Name] = status
}

// View is spec.md §6's documented `GET /` snapshot contract: a top-level
// array per CR kind, lowercase-keyed.
type View struct {
	StartedAt time.Time    `json:"startedAt"`
	Garage    []KindStatus `json:"garage"`
	Bucket    []KindStatus `json:"bucket"`
	AccessKey []KindStatus `json:"accesskey"`
}

// View takes a consistent point-in-time copy of the snapshot.
func (s *Snapshot) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		StartedAt: s.started,
		Garage:    entriesFor(s.perKind["Garage"]),
		Bucket:    entriesFor(s.perKind["Bucket"]),
		AccessKey: entriesFor(s.perKind["AccessKey"]),
	}
}

// entriesFor returns a stable, non-nil slice of the recorded statuses for
// one kind so the JSON output always has an array (never null) per key.
func entriesFor(byName map[string]KindStatus) []KindStatus {
	entries := make([]KindStatus, 0, len(byName))
	for _, status := range byName {
		entries = append(entries, status)
	}
	return entries
}
