//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"zns/internal/events"
	"zns/internal/platform/config"
	kafkaplatform "zns/internal/platform/kafka"
	"zns/pkg/domain"
	"zns/pkg/testutil/containers"
)

type PublisherIntegrationSuite struct {
	suite.Suite
	ctx    context.Context
	cfg    config.KafkaConfig
	client *kgo.Client
}

func TestPublisherIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PublisherIntegrationSuite))
}

func (s *PublisherIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	broker := containers.GetManager().GetRedpanda(s.T())
	s.cfg = config.KafkaConfig{
		Brokers:           broker.Brokers,
		Topic:             "zns.events.test",
		Partitions:        3,
		ReplicationFactor: 1,
	}

	client, err := kafkaplatform.New(s.ctx, s.cfg)
	s.Require().NoError(err)
	s.client = client
	s.Require().NoError(kafkaplatform.EnsureTopic(s.ctx, s.client, s.cfg))
}

func (s *PublisherIntegrationSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *PublisherIntegrationSuite) TestEnsureTopicIsIdempotent() {
	s.NoError(kafkaplatform.EnsureTopic(s.ctx, s.client, s.cfg))
}

func (s *PublisherIntegrationSuite) TestPublishedEventsAreConsumable() {
	wilder := domain.HashPath("wilder")
	first, err := events.New(s.ctx, "registrar", "DomainRegistered", wilder, map[string]string{"label": "wilder"})
	s.Require().NoError(err)
	second, err := events.New(s.ctx, "resolver", "AddressSet", wilder, map[string]string{"address": "0xa11ce"})
	s.Require().NoError(err)

	s.Require().NoError(New(s.client, s.cfg.Topic).Publish(s.ctx, first, second))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.cfg.Brokers...),
		kgo.ConsumeTopics(s.cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	ctx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()

	var got []events.Event
	for len(got) < 2 {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(ctx.Err(), "timed out waiting for records")
		fetches.EachRecord(func(r *kgo.Record) {
			var evt events.Event
			s.Require().NoError(json.Unmarshal(r.Value, &evt))
			s.Equal(wilder.Bytes(), r.Key)
			got = append(got, evt)
		})
	}

	// One key, one partition: order is preserved.
	s.Equal(first.ID, got[0].ID)
	s.Equal(second.ID, got[1].ID)
}
