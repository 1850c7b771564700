package strategy

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/exascience/strataboot"
	"github.com/exascience/strataboot/pool"
)

func allStrategies(t *testing.T) []Strategy {
	p, err := pool.New(3)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(p.Close)
	var strategies []Strategy
	for _, name := range Names() {
		s, err := New(name, 3, p)
		if err != nil {
			t.Fatal(err)
		}
		if s.Name() != name {
			t.Errorf("expected name %s, got %s", name, s.Name())
		}
		strategies = append(strategies, s)
	}
	return strategies
}

func TestExecuteFillsEverySlot(t *testing.T) {
	for _, s := range allStrategies(t) {
		for _, n := range []int{0, 1, 2, 17} {
			slots := make([]int, n)
			var calls int32
			err := s.Execute(context.Background(), n, func(_ context.Context, i int) error {
				atomic.AddInt32(&calls, 1)
				// Later jobs finish first.
				time.Sleep(time.Duration(n-i) * 100 * time.Microsecond)
				slots[i] = i * 10
				return nil
			})
			if err != nil {
				t.Fatalf("%s: %v", s.Name(), err)
			}
			if int(calls) != n {
				t.Errorf("%s: %d calls for %d jobs", s.Name(), calls, n)
			}
			for i, v := range slots {
				if v != i*10 {
					t.Errorf("%s: slot %d holds %d", s.Name(), i, v)
				}
			}
		}
	}
}

func TestExecuteFailsFast(t *testing.T) {
	boom := errors.New("boom")
	for _, s := range allStrategies(t) {
		err := s.Execute(context.Background(), 20, func(ctx context.Context, i int) error {
			if i == 4 {
				return boom
			}
			return nil
		})
		if err != boom {
			t.Errorf("%s: expected %v, got %v", s.Name(), boom, err)
		}
	}
}

func TestSequentialStopsAtFirstFailure(t *testing.T) {
	var calls int32
	err := Sequential{}.Execute(context.Background(), 10, func(_ context.Context, i int) error {
		atomic.AddInt32(&calls, 1)
		if i == 2 {
			return errors.New("stop")
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestExecuteRecoversPanics(t *testing.T) {
	for _, s := range allStrategies(t) {
		err := s.Execute(context.Background(), 5, func(_ context.Context, i int) error {
			if i == 3 {
				panic("worker failure")
			}
			return nil
		})
		var perr *strataboot.PanicError
		if !errors.As(err, &perr) {
			t.Errorf("%s: expected a PanicError, got %v", s.Name(), err)
		}
	}
}

func TestExecuteHonorsDeadline(t *testing.T) {
	for _, s := range allStrategies(t) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		err := s.Execute(ctx, 8, func(ctx context.Context, i int) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
				return nil
			}
		})
		cancel()
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("%s: expected context.DeadlineExceeded, got %v", s.Name(), err)
		}
	}
}

func TestPoolStrategyOnClosedPool(t *testing.T) {
	p, _ := pool.New(1)
	p.Close()
	err := Pool{Pool: p}.Execute(context.Background(), 3, func(context.Context, int) error { return nil })
	if !errors.Is(err, pool.ErrClosed) {
		t.Errorf("expected pool.ErrClosed, got %v", err)
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New("threads", 2, nil); !errors.Is(err, strataboot.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
	if _, err := New(SequentialName, 0, nil); !errors.Is(err, strataboot.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
	s, err := New(" Pool ", 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name() != PoolName {
		t.Errorf("expected %s, got %s", PoolName, s.Name())
	}
}

func TestNewPoolUsesSharedPoolOfWorkers(t *testing.T) {
	s, err := New(PoolName, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	shared, err := pool.Shared(2)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.(Pool).Pool; got != shared {
		t.Errorf("expected the shared pool of 2 workers, got one with %d", got.Workers())
	}
	own, _ := pool.New(4)
	defer own.Close()
	s, err = New(PoolName, 2, own)
	if err != nil {
		t.Fatal(err)
	}
	if s.(Pool).Pool != own {
		t.Error("expected the given pool to be used")
	}
}

func TestParseName(t *testing.T) {
	if name, err := ParseName(" ForkJoin"); err != nil || name != ForkJoinName {
		t.Errorf("ParseName(ForkJoin) = %q, %v", name, err)
	}
	if _, err := ParseName("threads"); !errors.Is(err, strataboot.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}
