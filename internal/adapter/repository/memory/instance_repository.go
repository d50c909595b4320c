package memory

import (
	"sync"

	"github.com/chuckeytang/wix-server/internal/domain"
)

// InstanceRepository implements domain.InstanceRepository with an in-process
// map guarded by a read-write mutex. State lives for the process lifetime
// only; the table is rebuilt from fresh webhooks after a restart.
type InstanceRepository struct {
	mu        sync.RWMutex
	instances map[string]domain.Instance
}

// NewInstanceRepository creates an empty instance table.
func NewInstanceRepository() *InstanceRepository {
	return &InstanceRepository{
		instances: make(map[string]domain.Instance),
	}
}

// Upsert creates or overwrites the record for inst.InstanceID.
func (r *InstanceRepository) Upsert(inst domain.Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[inst.InstanceID] = inst
}

// Get returns the record for the given instance id, if present.
func (r *InstanceRepository) Get(instanceID string) (domain.Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[instanceID]
	return inst, ok
}

// All returns a snapshot copy of every record. Callers may iterate the result
// without holding any lock; concurrent upserts are not observed.
func (r *InstanceRepository) All() []domain.Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]domain.Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		snapshot = append(snapshot, inst)
	}
	return snapshot
}

// Len returns the number of admitted instances.
func (r *InstanceRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}
