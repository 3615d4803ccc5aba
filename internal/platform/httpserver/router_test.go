package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"zns/pkg/platform/httputil"
	"zns/pkg/platform/middleware/metadata"
	"zns/pkg/requestcontext"
	"zns/pkg/testutil"
)

type RouterSuite struct {
	suite.Suite
	registry *prometheus.Registry
	kafkaErr error
	router   chi.Router
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.registry = prometheus.NewRegistry()
	s.kafkaErr = nil
	probes := prometheus.NewCounter(prometheus.CounterOpts{Name: "zns_test_probes_total", Help: "test"})
	s.registry.MustRegister(probes)
	probes.Inc()

	s.router = NewRouter(RouterConfig{
		Gatherer: s.registry,
		Checks: map[string]Check{
			"store": func(context.Context) error { return nil },
			"kafka": func(context.Context) error { return s.kafkaErr },
		},
	}, func(r chi.Router) {
		r.Get("/echo", func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteJSON(w, http.StatusOK, map[string]string{
				"request_id": requestcontext.RequestID(r.Context()),
				"client_ip":  metadata.GetClientIP(r.Context()),
			})
		})
	})
}

func (s *RouterSuite) get(path string) *http.Request {
	return testutil.NewRequest(s.T(), http.MethodGet, path)
}

func (s *RouterSuite) TestHealthz() {
	rec := testutil.DoRequest(s.router, s.get("/healthz"))
	testutil.AssertStatus(s.T(), rec, http.StatusOK)
	body := testutil.UnmarshalResponse[map[string]string](s.T(), rec)
	s.Equal("ok", (*body)["status"])
}

func (s *RouterSuite) TestReadyz() {
	s.Run("all checks pass", func() {
		rec := testutil.DoRequest(s.router, s.get("/readyz"))
		testutil.AssertStatus(s.T(), rec, http.StatusOK)
	})

	s.Run("a failing check reports 503 with the reason", func() {
		s.kafkaErr = errors.New("broker down")
		rec := testutil.DoRequest(s.router, s.get("/readyz"))
		testutil.AssertStatus(s.T(), rec, http.StatusServiceUnavailable)
		body := testutil.UnmarshalResponse[map[string]string](s.T(), rec)
		s.Equal("broker down", (*body)["kafka"])
		s.Equal("ok", (*body)["store"])
	})
}

func (s *RouterSuite) TestMetricsExposeGatherer() {
	rec := testutil.DoRequest(s.router, s.get("/metrics"))
	testutil.AssertStatus(s.T(), rec, http.StatusOK)
	s.True(strings.Contains(string(testutil.ReadBody(s.T(), rec)), "zns_test_probes_total 1"))
}

func (s *RouterSuite) TestRequestMetadataReachesHandlers() {
	req := s.get("/echo")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	rec := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rec, http.StatusOK)

	body := testutil.UnmarshalResponse[map[string]string](s.T(), rec)
	s.NotEmpty((*body)["request_id"])
	s.Equal("203.0.113.7", (*body)["client_ip"])
}
