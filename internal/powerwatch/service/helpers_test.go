package service_test

import (
	"context"
	"sync"

	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store/memory"
)

type sentMessage struct {
	ChatID int64
	Text   string
}

// fakeReporter records every SendTo and optionally fails.
type fakeReporter struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeReporter) SendTo(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (f *fakeReporter) Sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

// failingSetKV reads from the wrapped memory store but refuses writes.
type failingSetKV struct {
	*memory.Store
	err error
}

func (k failingSetKV) Set(context.Context, string, string) error { return k.err }
