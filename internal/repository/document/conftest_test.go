package document

import (
	"context"
	"testing"
	"time"

	"github.com/opencrvs/crvs-search/internal/domain/event"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn   func(ctx context.Context, key, path string, data []byte) error
	jsonSetNXFn func(ctx context.Context, key, path string, data []byte) (bool, error)
	jsonGetFn   func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delFn       func(ctx context.Context, key string) (bool, error)
	scanFn      func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error) {
	if m.jsonSetNXFn != nil {
		return m.jsonSetNXFn(ctx, key, path, data)
	}
	return true, nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, nil
}

func (m *mockStore) Del(ctx context.Context, key string) (bool, error) {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "test:"), ms
}

func testDocument(t *testing.T) event.Document {
	t.Helper()
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	doc, err := event.NewDocument("doc-1", "birth", []event.Action{
		{ID: "a1", Type: event.ActionCreate, CreatedAt: at},
		{ID: "a2", Type: event.ActionDeclare, CreatedAt: at, CreatedBy: "user-1", Declaration: event.State{
			"child.name": map[string]any{"firstname": "Nina", "surname": "Roy"},
		}},
	})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	return doc
}
