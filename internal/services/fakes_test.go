package services

import (
	"context"
	"sync"
	"testing"

	"studywai-backend/internal/repository"
)

// fakeGenerator returns a canned reply and records every prompt.
type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	hook    func(ctx context.Context)
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.hook != nil {
		f.hook(ctx)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func newTestStore(t *testing.T) repository.RecordStore {
	t.Helper()
	store, err := repository.NewCSVStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCSVStore: %v", err)
	}
	if err := repository.InitCollections(context.Background(), store); err != nil {
		t.Fatalf("InitCollections: %v", err)
	}
	return store
}
