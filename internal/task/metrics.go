package task

import (
	"context"
	"errors"
	"time"

	"taskflow/internal/event/metrics"
)

// MetricsStore records the duration and outcome of every store operation.
// ErrNotFound is not counted as a failure.
type MetricsStore struct {
	store    Store
	registry *metrics.Registry
}

func NewMetricsStore(store Store, registry *metrics.Registry) *MetricsStore {
	return &MetricsStore{
		store:    store,
		registry: registry,
	}
}

func (m *MetricsStore) Insert(ctx context.Context, t Task) error {
	start := time.Now()
	err := m.store.Insert(ctx, t)
	m.record("insert", start, err)
	return err
}

func (m *MetricsStore) Get(ctx context.Context, id string) (Task, error) {
	start := time.Now()
	t, err := m.store.Get(ctx, id)
	m.record("get", start, err)
	return t, err
}

func (m *MetricsStore) List(ctx context.Context, filter Filter) ([]Task, error) {
	start := time.Now()
	tasks, err := m.store.List(ctx, filter)
	m.record("list", start, err)
	return tasks, err
}

func (m *MetricsStore) Update(ctx context.Context, id string, mutate func(*Task) error) (Task, error) {
	start := time.Now()
	t, err := m.store.Update(ctx, id, mutate)
	m.record("update", start, err)
	return t, err
}

func (m *MetricsStore) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := m.store.Delete(ctx, id)
	m.record("delete", start, err)
	return err
}

func (m *MetricsStore) record(op string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	m.registry.RecordDatabaseOperation(op, time.Since(start), err)
}
