package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"zns/internal/system"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
	"zns/pkg/testutil"
)

type stubService struct {
	views  map[common.Hash]system.DomainView
	quoted []string
}

func (s *stubService) Lookup(_ context.Context, hash common.Hash) (system.DomainView, error) {
	view, ok := s.views[hash]
	if !ok {
		return system.DomainView{}, dErrors.New(dErrors.CodeNotFound, "no such domain")
	}
	return view, nil
}

func (s *stubService) Quote(_ context.Context, parent common.Hash, label string) (system.Quote, error) {
	if err := domain.ValidateLabel(label); err != nil {
		return system.Quote{}, err
	}
	s.quoted = append(s.quoted, parent.Hex()+"/"+label)
	return system.Quote{Parent: parent, Label: label, Total: "42"}, nil
}

type HandlerSuite struct {
	suite.Suite
	service *stubService
	router  chi.Router
	owner   common.Address
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.owner = common.HexToAddress("0xa11ce")
	s.service = &stubService{views: map[common.Hash]system.DomainView{
		domain.HashPath("wilder", "cat"): {Hash: domain.HashPath("wilder", "cat"), Owner: s.owner},
	}}
	s.router = chi.NewRouter()
	New(s.service, nil).Register(s.router)
}

func (s *HandlerSuite) get(path string) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, path))
}

func (s *HandlerSuite) TestDomainLookup() {
	s.Run("by hash", func() {
		rec := s.get("/v1/domains/" + domain.HashPath("wilder", "cat").Hex())
		testutil.AssertStatus(s.T(), rec, http.StatusOK)
		view := testutil.UnmarshalResponse[system.DomainView](s.T(), rec)
		s.Equal(s.owner, view.Owner)
	})

	s.Run("by name", func() {
		rec := s.get("/v1/names/wilder.cat")
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("unknown domain", func() {
		rec := s.get("/v1/names/wilder.dog")
		testutil.AssertStatusAndError(s.T(), rec, http.StatusNotFound, string(dErrors.CodeNotFound))
	})

	s.Run("malformed input", func() {
		rec := s.get("/v1/domains/0x1234")
		testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, string(dErrors.CodeValidation))

		rec = s.get("/v1/names/wilder..cat")
		testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, string(dErrors.CodeInvalidLength))
	})
}

func (s *HandlerSuite) TestQuote() {
	s.Run("top-level by default", func() {
		rec := s.get("/v1/quote?label=wilder")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal([]string{domain.Root.Hex() + "/wilder"}, s.service.quoted)
	})

	s.Run("under a parent", func() {
		parent := domain.HashPath("wilder")
		rec := s.get("/v1/quote?label=cat&parent=" + parent.Hex())
		testutil.AssertStatus(s.T(), rec, http.StatusOK)
		q := testutil.UnmarshalResponse[system.Quote](s.T(), rec)
		s.Equal(parent, q.Parent)
		s.Equal("42", q.Total)
	})

	s.Run("bad label", func() {
		rec := s.get("/v1/quote?label=Cat")
		testutil.AssertStatusAndError(s.T(), rec, http.StatusBadRequest, string(dErrors.CodeInvalidLabel))
	})
}
