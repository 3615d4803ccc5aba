package memory

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	"zns/internal/events"
)

type RecorderSuite struct {
	suite.Suite
	ctx context.Context
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *RecorderSuite) newEvent(typ events.Type) events.Event {
	evt, err := events.New(s.ctx, "test", typ, common.Hash{1}, map[string]string{"k": "v"})
	s.Require().NoError(err)
	return evt
}

func (s *RecorderSuite) TestPublish() {
	s.Run("keeps events in order", func() {
		r := NewRecorder(0)
		a, b := s.newEvent("A"), s.newEvent("B")
		s.Require().NoError(r.Publish(s.ctx, a, b))

		got := r.Events()
		s.Require().Len(got, 2)
		s.Equal(a.ID, got[0].ID)
		s.Equal(b.ID, got[1].ID)
	})

	s.Run("filters by type and finds last", func() {
		r := NewRecorder(0)
		first := s.newEvent("A")
		s.Require().NoError(r.Publish(s.ctx, first, s.newEvent("B")))
		second := s.newEvent("A")
		s.Require().NoError(r.Publish(s.ctx, second))

		s.Len(r.ByType("A"), 2)
		last, ok := r.Last("A")
		s.True(ok)
		s.Equal(second.ID, last.ID)

		_, ok = r.Last("C")
		s.False(ok)
	})

	s.Run("drops oldest beyond capacity", func() {
		r := NewRecorder(2)
		s.Require().NoError(r.Publish(s.ctx, s.newEvent("A"), s.newEvent("B"), s.newEvent("C")))

		s.Equal(2, r.Len())
		s.Equal(int64(1), r.Dropped())
		s.Equal(events.Type("B"), r.Events()[0].Type)
	})

	s.Run("reset clears everything", func() {
		r := NewRecorder(0)
		s.Require().NoError(r.Publish(s.ctx, s.newEvent("A")))
		r.Reset()
		s.Equal(0, r.Len())
	})
}
