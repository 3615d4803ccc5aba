package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"zns/internal/events"
	eventmocks "zns/internal/events/mocks"
	outbox "zns/internal/events/store/postgres"
	"zns/internal/events/worker/mocks"
	"zns/pkg/platform/circuit"
	"zns/pkg/requestcontext"
)

// =============================================================================
// Relay Test Suite
// =============================================================================
// Justification: the relay decides when an outbox entry counts as delivered.
// Tests verify entries are only marked after a successful publish.

type RelaySuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	source    *mocks.MockSource
	publisher *eventmocks.MockPublisher
	relay     *Relay
	ctx       context.Context
	now       time.Time
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.source = mocks.NewMockSource(s.ctrl)
	s.publisher = eventmocks.NewMockPublisher(s.ctrl)
	s.relay = NewRelay(s.source, s.publisher, WithBatchSize(2))
	s.now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *RelaySuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *RelaySuite) entry(seq int64) outbox.Entry {
	evt, err := events.New(s.ctx, "test", "DomainRegistered", common.Hash{byte(seq)}, struct{}{})
	s.Require().NoError(err)
	return outbox.Entry{Seq: seq, Event: evt}
}

func (s *RelaySuite) TestRelayOnce() {
	s.Run("empty outbox publishes nothing", func() {
		s.source.EXPECT().Pending(gomock.Any(), 2).Return(nil, nil)

		n, err := s.relay.RelayOnce(s.ctx)
		s.Require().NoError(err)
		s.Zero(n)
	})

	s.Run("publishes in order then marks up to last seq", func() {
		a, b := s.entry(7), s.entry(8)
		gomock.InOrder(
			s.source.EXPECT().Pending(gomock.Any(), 2).Return([]outbox.Entry{a, b}, nil),
			s.publisher.EXPECT().Publish(gomock.Any(), a.Event, b.Event).Return(nil),
			s.source.EXPECT().MarkPublished(gomock.Any(), int64(8), s.now).Return(nil),
		)

		n, err := s.relay.RelayOnce(s.ctx)
		s.Require().NoError(err)
		s.Equal(2, n)
	})

	s.Run("publish failure leaves entries pending", func() {
		a := s.entry(9)
		s.source.EXPECT().Pending(gomock.Any(), 2).Return([]outbox.Entry{a}, nil)
		s.publisher.EXPECT().Publish(gomock.Any(), a.Event).Return(errors.New("broker down"))

		_, err := s.relay.RelayOnce(s.ctx)
		s.Require().Error(err)
	})

	s.Run("source failure is returned", func() {
		s.source.EXPECT().Pending(gomock.Any(), 2).Return(nil, errors.New("db down"))

		_, err := s.relay.RelayOnce(s.ctx)
		s.Require().Error(err)
	})
}

func (s *RelaySuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(s.ctx)
	s.source.EXPECT().Pending(gomock.Any(), 2).DoAndReturn(func(context.Context, int) ([]outbox.Entry, error) {
		cancel()
		return nil, nil
	})

	err := NewRelay(s.source, s.publisher, WithBatchSize(2), WithInterval(time.Hour)).Run(ctx)
	s.ErrorIs(err, context.Canceled)
}

func (s *RelaySuite) TestBreakerTracksPublishOutcomes() {
	breaker := circuit.New("kafka", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))
	relay := NewRelay(s.source, s.publisher, WithBatchSize(2), WithBreaker(breaker))
	a := s.entry(1)

	s.source.EXPECT().Pending(gomock.Any(), 2).Return([]outbox.Entry{a}, nil).Times(3)
	s.publisher.EXPECT().Publish(gomock.Any(), a.Event).Return(errors.New("broker down")).Times(2)

	for range 2 {
		_, err := relay.RelayOnce(s.ctx)
		s.Require().Error(err)
	}
	s.Require().Error(relay.Ready(s.ctx))

	s.publisher.EXPECT().Publish(gomock.Any(), a.Event).Return(nil)
	s.source.EXPECT().MarkPublished(gomock.Any(), int64(1), s.now).Return(nil)

	n, err := relay.RelayOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
	s.NoError(relay.Ready(s.ctx))
}
