package flow

import (
	"errors"
	"sync"
	"testing"
)

func TestSessionsIsolation(t *testing.T) {
	s := NewSessions()

	err := s.With(1, func(sess *Session) error {
		sess.Flow = FlowAdd
		sess.Collection = "words"
		sess.Data["name"] = "fever"
		return nil
	})
	if err != nil {
		t.Fatalf("with: %v", err)
	}

	// Snapshots are copies; mutating one must not touch stored state.
	snap := s.Get(1)
	snap.Data["name"] = "mutated"
	if got := s.Get(1).Data["name"]; got != "fever" {
		t.Fatalf("stored data mutated through snapshot: %q", got)
	}

	if !s.Get(1).Active() {
		t.Fatal("session with a flow must report active")
	}
	if s.Get(2).Active() {
		t.Fatal("fresh user has an active session")
	}
}

func TestWithCommitsOnError(t *testing.T) {
	s := NewSessions()
	sentinel := errors.New("boom")

	err := s.With(1, func(sess *Session) error {
		sess.Flow = FlowDelete
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v", err)
	}
	// An error return is a handled outcome; the transition still commits.
	if got := s.Get(1).Flow; got != FlowDelete {
		t.Fatalf("flow = %q, want delete", got)
	}
}

func TestWithRollsBackOnPanic(t *testing.T) {
	s := NewSessions()

	_ = s.With(1, func(sess *Session) error {
		sess.Flow = FlowAdd
		return nil
	})

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = s.With(1, func(sess *Session) error {
			sess.Flow = FlowDelete
			sess.Data["half"] = "written"
			panic("handler bug")
		})
	}()

	sess := s.Get(1)
	if sess.Flow != FlowAdd {
		t.Fatalf("flow = %q, want pre-panic add", sess.Flow)
	}
	if _, ok := sess.Data["half"]; ok {
		t.Fatal("half-written data survived the panic")
	}

	// The user's lock must be released after the panic.
	if err := s.With(1, func(sess *Session) error { return nil }); err != nil {
		t.Fatalf("with after panic: %v", err)
	}
}

func TestWithSerializesPerUser(t *testing.T) {
	s := NewSessions()
	const rounds = 200

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				_ = s.With(1, func(sess *Session) error {
					sess.Cursor++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	if got := s.Get(1).Cursor; got != 4*rounds {
		t.Fatalf("cursor = %d, want %d", got, 4*rounds)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	s := NewSessions()
	_ = s.With(1, func(sess *Session) error {
		sess.Flow = FlowSearch
		return nil
	})
	s.Clear(1)
	s.Clear(1)
	if s.Get(1).Active() {
		t.Fatal("session still active after clear")
	}
	s.Clear(99)
}
