package application

import (
	"testing"
	"time"
)

func TestLockMatchDropsIdleEntries(t *testing.T) {
	s := &MatchRecalculationService{matchLocks: make(map[string]*matchLock)}

	unlock := s.lockMatch("m1")
	s.mu.Lock()
	if len(s.matchLocks) != 1 {
		t.Fatalf("expected 1 held lock, got %d", len(s.matchLocks))
	}
	s.mu.Unlock()

	unlock()
	s.mu.Lock()
	if len(s.matchLocks) != 0 {
		t.Fatalf("expected lock table emptied after release, got %d entries", len(s.matchLocks))
	}
	s.mu.Unlock()
}

func TestLockMatchSurvivesContendedRelease(t *testing.T) {
	s := &MatchRecalculationService{matchLocks: make(map[string]*matchLock)}

	first := s.lockMatch("m1")

	acquired := make(chan func(), 1)
	go func() {
		acquired <- s.lockMatch("m1")
	}()

	// Give the waiter time to register before the first holder releases.
	deadline := time.After(time.Second)
	for {
		s.mu.Lock()
		entry := s.matchLocks["m1"]
		refs := 0
		if entry != nil {
			refs = entry.refs
		}
		s.mu.Unlock()
		if refs == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("waiter never registered, refs=%d", refs)
		case <-time.After(time.Millisecond):
		}
	}

	first()
	second := <-acquired

	s.mu.Lock()
	if len(s.matchLocks) != 1 {
		t.Fatalf("entry dropped while a waiter still held it, %d entries", len(s.matchLocks))
	}
	s.mu.Unlock()

	second()
	s.mu.Lock()
	if len(s.matchLocks) != 0 {
		t.Fatalf("expected lock table emptied after last release, got %d entries", len(s.matchLocks))
	}
	s.mu.Unlock()
}
