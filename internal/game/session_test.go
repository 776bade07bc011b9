package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingPersister struct {
	mu    sync.Mutex
	saves int
	last  State
}

func (p *recordingPersister) Save(_ context.Context, s State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	p.last = s
	return nil
}

func (p *recordingPersister) snapshot() (State, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.saves
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []EventType
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func startSession(t *testing.T, interval time.Duration, persister Persister, publisher Publisher) (*Session, func()) {
	t.Helper()
	s := NewSession(NewEngine(testCatalog()), SessionConfig{
		TickInterval: interval,
		Persister:    persister,
		Publisher:    publisher,
		Logger:       discardLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(stopped)
	}()

	return s, func() {
		cancel()
		<-stopped
	}
}

func TestSessionDoAppliesIntentsSerially(t *testing.T) {
	pub := &recordingPublisher{}
	s, stop := startSession(t, time.Hour, nil, pub)
	defer stop()
	ctx := context.Background()

	if _, err := s.Do(ctx, func(e *Engine) { e.SetAccepted(true) }); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Do(ctx, (*Engine).Click); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	v, err := s.View(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v.Player.Points != 50 {
		t.Fatalf("points = %v after 50 concurrent clicks, want 50", v.Player.Points)
	}

	v, err = s.Do(ctx, func(e *Engine) { e.BuyBuilding("farm") })
	if err != nil {
		t.Fatal(err)
	}
	if v.Player.Points != 40 || v.Buildings[1].Owned != 1 {
		t.Fatalf("view after buy = %+v", v.Player)
	}

	types := pub.types()
	if len(types) != 2 || types[0] != EventAccepted || types[1] != EventPurchase {
		t.Fatalf("published %v, want [accepted purchase]", types)
	}
}

func TestSessionTicksAndWritesThrough(t *testing.T) {
	persister := &recordingPersister{}
	s, stop := startSession(t, 5*time.Millisecond, persister, nil)
	ctx := context.Background()

	_, err := s.Do(ctx, func(e *Engine) {
		e.SetAccepted(true)
		e.state.Player.Points = 10
		e.BuyBuilding("farm")
	})
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		v, err := s.View(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if v.Player.Points > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("scheduler never accrued points")
		}
		time.Sleep(5 * time.Millisecond)
	}

	stop()

	last, saves := persister.snapshot()
	if saves == 0 {
		t.Fatal("nothing was persisted")
	}
	if last.Buildings["farm"].Owned != 1 || !last.Player.HasAccepted || last.Player.Points <= 0 {
		t.Fatalf("final snapshot = %+v", last)
	}
}

func TestSessionDoAfterStop(t *testing.T) {
	s, stop := startSession(t, time.Hour, nil, nil)
	stop()

	if _, err := s.View(context.Background()); !errors.Is(err, ErrSessionStopped) {
		t.Fatalf("err = %v, want ErrSessionStopped", err)
	}
}

func TestSessionDoHonoursContext(t *testing.T) {
	s := NewSession(NewEngine(testCatalog()), SessionConfig{Logger: discardLogger()})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// Run was never started, so nothing takes the intent.
	if _, err := s.View(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
}
