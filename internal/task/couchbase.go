package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchbase/gocb/v2"

	"taskflow/internal/couchbase"
)

// CollectionName is the Couchbase collection tasks are stored in.
const CollectionName = "tasks"

// CouchbaseStore persists tasks as JSON documents keyed by task id.
type CouchbaseStore struct {
	tasks        *couchbase.Couchbase[Task]
	transactions *couchbase.Transactions
}

func NewCouchbaseStore(cluster *gocb.Cluster, bucket *gocb.Bucket, scope string) (*CouchbaseStore, error) {
	collection := bucket.Scope(scope).Collection(CollectionName)
	tasks, err := couchbase.NewCouchbase[Task](cluster, bucket, collection)
	if err != nil {
		return nil, err
	}

	transactions, err := couchbase.NewTransactions(cluster)
	if err != nil {
		return nil, err
	}

	return &CouchbaseStore{
		tasks:        tasks,
		transactions: transactions,
	}, nil
}

func Key(id string) string {
	return "task::" + id
}

func (s *CouchbaseStore) Insert(ctx context.Context, t Task) error {
	return s.tasks.Insert(ctx, Key(t.ID), t, nil)
}

func (s *CouchbaseStore) Get(ctx context.Context, id string) (Task, error) {
	t, err := s.tasks.Get(ctx, Key(id), nil)
	if errors.Is(err, gocb.ErrDocumentNotFound) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, err
	}

	return *t, nil
}

func (s *CouchbaseStore) List(ctx context.Context, filter Filter) ([]Task, error) {
	query := fmt.Sprintf(`
		SELECT RAW t
		FROM %s t
		WHERE ($status = "" OR t.status = $status)
		AND ($priority = "" OR t.priority = $priority)
		AND ($category = "" OR t.category = $category)
		ORDER BY t.created_at ASC`,
		s.tasks.Keyspace(),
	)

	tasks, err := s.tasks.Query(ctx, query, &gocb.QueryOptions{
		NamedParameters: map[string]any{
			"status":   string(filter.Status),
			"priority": string(filter.Priority),
			"category": string(filter.Category),
		},
		ScanConsistency: gocb.QueryScanConsistencyRequestPlus,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	if tasks == nil {
		tasks = []Task{}
	}

	return tasks, nil
}

// Update runs mutate inside a Couchbase transaction so concurrent updates to
// the same task are serialized.
func (s *CouchbaseStore) Update(ctx context.Context, id string, mutate func(*Task) error) (Task, error) {
	var (
		updated   Task
		notFound  bool
		mutateErr error
	)

	_, err := s.transactions.Transaction(func(tx couchbase.TransactionRunner) error {
		doc, err := tx.Get(s.tasks, Key(id))
		if errors.Is(err, gocb.ErrDocumentNotFound) {
			notFound = true
			return err
		}
		if err != nil {
			return fmt.Errorf("failed to get task: %w", err)
		}

		var t Task
		if err := doc.Content(&t); err != nil {
			return fmt.Errorf("failed to parse task: %w", err)
		}
		if err := mutate(&t); err != nil {
			mutateErr = err
			return err
		}
		if _, err := tx.Replace(doc, t); err != nil {
			return fmt.Errorf("failed to replace task: %w", err)
		}
		updated = t

		return nil
	})
	switch {
	case notFound:
		return Task{}, ErrNotFound
	case mutateErr != nil:
		return Task{}, mutateErr
	case err != nil:
		return Task{}, err
	}

	return updated, nil
}

func (s *CouchbaseStore) Delete(ctx context.Context, id string) error {
	err := s.tasks.Remove(ctx, Key(id), nil)
	if errors.Is(err, gocb.ErrDocumentNotFound) {
		return ErrNotFound
	}

	return err
}
