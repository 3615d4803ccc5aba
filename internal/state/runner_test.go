package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"zns/internal/events"
	"zns/internal/events/mocks"
	"zns/internal/events/publishers/memory"
	"zns/internal/platform/metrics"
	dErrors "zns/pkg/domain-errors"
	"zns/pkg/platform/sentinel"
)

// =============================================================================
// Runner Test Suite
// =============================================================================
// Justification: the runner is the atomicity and serialization boundary of
// every operation. Tests verify all-or-nothing commits, event delivery only
// after commit, nesting, and the guard against finished units of work.

type RunnerSuite struct {
	suite.Suite
	ctx      context.Context
	store    *MemoryStore
	recorder *memory.Recorder
	runner   *Runner
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerSuite))
}

func (s *RunnerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewMemoryStore()
	s.recorder = memory.NewRecorder(0)
	var err error
	s.runner, err = NewRunner(s.store,
		WithPublisher(s.recorder),
		WithMetrics(metrics.New(prometheus.NewRegistry())),
	)
	s.Require().NoError(err)
}

func (s *RunnerSuite) event(typ events.Type) events.Event {
	evt, err := events.New(s.ctx, "test", typ, common.Hash{}, struct{}{})
	s.Require().NoError(err)
	return evt
}

func (s *RunnerSuite) read(key string) ([]byte, error) {
	var out []byte
	err := s.runner.View(s.ctx, func(ctx context.Context) error {
		v, err := Get(ctx, []byte(key))
		out = v
		return err
	})
	return out, err
}

func (s *RunnerSuite) TestNewRunner() {
	s.Run("nil store returns error", func() {
		_, err := NewRunner(nil)
		s.Require().Error(err)
		s.Contains(err.Error(), "state store is required")
	})
}

func (s *RunnerSuite) TestCommit() {
	s.Run("successful unit of work is visible afterwards", func() {
		err := s.runner.Run(s.ctx, "put", func(ctx context.Context) error {
			return Put(ctx, []byte("a"), []byte("1"))
		})
		s.Require().NoError(err)

		v, err := s.read("a")
		s.Require().NoError(err)
		s.Equal([]byte("1"), v)
	})

	s.Run("failed unit of work leaves no trace", func() {
		boom := errors.New("boom")
		err := s.runner.Run(s.ctx, "put", func(ctx context.Context) error {
			s.Require().NoError(Put(ctx, []byte("b"), []byte("1")))
			s.Require().NoError(Emit(ctx, s.event("Never")))
			return boom
		})
		s.Require().ErrorIs(err, boom)

		_, err = s.read("b")
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.Empty(s.recorder.ByType("Never"))
	})

	s.Run("reads observe own buffered writes and deletes", func() {
		s.Require().NoError(s.runner.Run(s.ctx, "seed", func(ctx context.Context) error {
			return Put(ctx, []byte("c"), []byte("old"))
		}))

		err := s.runner.Run(s.ctx, "rewrite", func(ctx context.Context) error {
			s.Require().NoError(Put(ctx, []byte("c"), []byte("new")))
			v, err := Get(ctx, []byte("c"))
			s.Require().NoError(err)
			s.Equal([]byte("new"), v)

			s.Require().NoError(Delete(ctx, []byte("c")))
			ok, err := Has(ctx, []byte("c"))
			s.Require().NoError(err)
			s.False(ok)
			return nil
		})
		s.Require().NoError(err)

		_, err = s.read("c")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("json helpers round-trip", func() {
		type rec struct{ Owner string }
		s.Require().NoError(s.runner.Run(s.ctx, "json", func(ctx context.Context) error {
			return PutJSON(ctx, []byte("j"), rec{Owner: "x"})
		}))
		s.Require().NoError(s.runner.View(s.ctx, func(ctx context.Context) error {
			var got rec
			ok, err := GetJSON(ctx, []byte("j"), &got)
			s.Require().NoError(err)
			s.True(ok)
			s.Equal("x", got.Owner)

			ok, err = GetJSON(ctx, []byte("missing"), &got)
			s.Require().NoError(err)
			s.False(ok)
			return nil
		}))
	})
}

func (s *RunnerSuite) TestEvents() {
	s.Run("events are published once after commit in order", func() {
		s.recorder.Reset()
		err := s.runner.Run(s.ctx, "emit", func(ctx context.Context) error {
			s.Require().NoError(Emit(ctx, s.event("First")))
			s.Equal(0, s.recorder.Len(), "nothing is published before commit")
			return Emit(ctx, s.event("Second"))
		})
		s.Require().NoError(err)

		got := s.recorder.Events()
		s.Require().Len(got, 2)
		s.Equal(events.Type("First"), got[0].Type)
		s.Equal(events.Type("Second"), got[1].Type)
	})

	s.Run("publisher failure does not undo the commit", func() {
		ctrl := gomock.NewController(s.T())
		pub := mocks.NewMockPublisher(ctrl)
		pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

		runner, err := NewRunner(s.store, WithPublisher(pub))
		s.Require().NoError(err)

		err = runner.Run(s.ctx, "emit", func(ctx context.Context) error {
			s.Require().NoError(Put(ctx, []byte("p"), []byte("1")))
			return Emit(ctx, s.event("X"))
		})
		s.Require().NoError(err)

		_, err = s.read("p")
		s.NoError(err)
	})
}

func (s *RunnerSuite) TestNesting() {
	s.Run("nested run joins the enclosing unit of work", func() {
		boom := errors.New("outer failed")
		err := s.runner.Run(s.ctx, "outer", func(ctx context.Context) error {
			inner := s.runner.Run(ctx, "inner", func(ctx context.Context) error {
				return Put(ctx, []byte("nested"), []byte("1"))
			})
			s.Require().NoError(inner)
			return boom
		})
		s.Require().ErrorIs(err, boom)

		_, err = s.read("nested")
		s.ErrorIs(err, sentinel.ErrNotFound, "inner writes roll back with the outer unit")
	})

	s.Run("finished unit of work cannot be re-entered", func() {
		var captured context.Context
		s.Require().NoError(s.runner.Run(s.ctx, "capture", func(ctx context.Context) error {
			captured = ctx
			return nil
		}))

		err := s.runner.Run(captured, "late", func(ctx context.Context) error {
			return Put(ctx, []byte("late"), []byte("1"))
		})
		s.True(dErrors.HasCode(err, dErrors.CodeReentrantCall))

		err = s.runner.View(captured, func(ctx context.Context) error { return nil })
		s.True(dErrors.HasCode(err, dErrors.CodeReentrantCall))
	})

	s.Run("writes inside a view are rejected", func() {
		err := s.runner.View(s.ctx, func(ctx context.Context) error {
			s.ErrorIs(Put(ctx, []byte("v"), []byte("1")), sentinel.ErrReadOnly)
			return s.runner.Run(ctx, "write-in-view", func(context.Context) error { return nil })
		})
		s.True(dErrors.HasCode(err, dErrors.CodeReentrantCall))
	})

	s.Run("state access without a unit of work fails", func() {
		_, err := Get(s.ctx, []byte("x"))
		s.ErrorIs(err, sentinel.ErrInvalidState)
		s.ErrorIs(Put(s.ctx, []byte("x"), nil), sentinel.ErrInvalidState)
	})
}

func (s *RunnerSuite) TestAfterCommit() {
	s.Run("hooks run after commit and may start new operations", func() {
		var seen []byte
		err := s.runner.Run(s.ctx, "outer", func(ctx context.Context) error {
			s.Require().NoError(Put(ctx, []byte("h"), []byte("committed")))
			return AfterCommit(ctx, func(hookCtx context.Context) {
				s.False(Active(hookCtx))
				s.Require().NoError(s.runner.Run(hookCtx, "hook", func(ctx context.Context) error {
					v, err := Get(ctx, []byte("h"))
					seen = v
					return err
				}))
			})
		})
		s.Require().NoError(err)
		s.Equal([]byte("committed"), seen)
	})

	s.Run("hooks are dropped on rollback", func() {
		called := false
		_ = s.runner.Run(s.ctx, "outer", func(ctx context.Context) error {
			s.Require().NoError(AfterCommit(ctx, func(context.Context) { called = true }))
			return errors.New("rollback")
		})
		s.False(called)
	})
}

func (s *RunnerSuite) TestCancellation() {
	s.Run("cancelled context never starts", func() {
		ctx, cancel := context.WithCancel(s.ctx)
		cancel()
		ran := false
		err := s.runner.Run(ctx, "cancelled", func(context.Context) error {
			ran = true
			return nil
		})
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
		s.False(ran)
	})

	s.Run("deadline passing mid-operation aborts the commit", func() {
		ctx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
		defer cancel()
		err := s.runner.Run(ctx, "slow", func(ctx context.Context) error {
			s.Require().NoError(Put(ctx, []byte("slow"), []byte("1")))
			<-ctx.Done()
			return nil
		})
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
		_, err = s.read("slow")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *RunnerSuite) TestSerialization() {
	const goroutines = 50
	key := []byte("counter")

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.runner.Run(s.ctx, "increment", func(ctx context.Context) error {
				var n int
				if _, err := GetJSON(ctx, key, &n); err != nil {
					return err
				}
				return PutJSON(ctx, key, n+1)
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	var n int
	s.Require().NoError(s.runner.View(s.ctx, func(ctx context.Context) error {
		_, err := GetJSON(ctx, key, &n)
		return err
	}))
	s.Equal(goroutines, n, "read-modify-write never interleaves")
}
