package handlers

import (
	"context"
	"sync"
)

type redirectKey struct{}

// redirectSlot receives the navigation target chosen while a request is handled
type redirectSlot struct {
	mu   sync.Mutex
	path string
}

func withRedirectSlot(ctx context.Context) (context.Context, *redirectSlot) {
	slot := &redirectSlot{}
	return context.WithValue(ctx, redirectKey{}, slot), slot
}

func (s *redirectSlot) target() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// RequestNavigator turns view navigation into an HTTP redirect of the request being handled.
// Navigation outside of a handled request is dropped.
type RequestNavigator struct{}

// Navigate records path as the redirect target of the request carried by ctx
func (RequestNavigator) Navigate(ctx context.Context, path string) {
	slot, ok := ctx.Value(redirectKey{}).(*redirectSlot)
	if !ok {
		return
	}
	slot.mu.Lock()
	slot.path = path
	slot.mu.Unlock()
}
