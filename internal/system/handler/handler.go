// Package handler serves read-only domain lookups and price quotes.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"

	"zns/internal/system"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
	"zns/pkg/platform/httputil"
	"zns/pkg/requestcontext"
)

// Service is the read side of the system.
type Service interface {
	Lookup(ctx context.Context, hash common.Hash) (system.DomainView, error)
	Quote(ctx context.Context, parent common.Hash, label string) (system.Quote, error)
}

// Handler wires lookup endpoints to the system.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a handler. logger may be nil.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/domains/{hash}", h.HandleDomain)
	r.Get("/v1/names/{name}", h.HandleName)
	r.Get("/v1/quote", h.HandleQuote)
}

// HandleDomain handles GET /v1/domains/{hash}.
func (h *Handler) HandleDomain(w http.ResponseWriter, r *http.Request) {
	hash, err := parseHash(chi.URLParam(r, "hash"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.lookup(w, r, hash)
}

// HandleName handles GET /v1/names/{name}, where name lists labels from the
// top-level domain down, dot separated.
func (h *Handler) HandleName(w http.ResponseWriter, r *http.Request) {
	labels := strings.Split(chi.URLParam(r, "name"), ".")
	for _, label := range labels {
		if err := domain.ValidateLabel(label); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	h.lookup(w, r, domain.HashPath(labels...))
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, hash common.Hash) {
	ctx := r.Context()
	view, err := h.service.Lookup(ctx, hash)
	if err != nil {
		h.logFailure(ctx, "domain lookup failed", err, "domain", hash.Hex())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleQuote handles GET /v1/quote?parent=0x..&label=... An absent parent
// quotes a top-level domain.
func (h *Handler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	parent := domain.Root
	if raw := r.URL.Query().Get("parent"); raw != "" {
		var err error
		if parent, err = parseHash(raw); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	label := r.URL.Query().Get("label")
	quote, err := h.service.Quote(ctx, parent, label)
	if err != nil {
		h.logFailure(ctx, "quote failed", err, "parent", parent.Hex(), "label", label)
		httputil.WriteError(w, err)
		return
	}
	if h.logger != nil {
		h.logger.DebugContext(ctx, "quote served",
			"request_id", requestcontext.RequestID(ctx),
			"parent", parent.Hex(),
			"label", label,
			"total", quote.Total,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	httputil.WriteJSON(w, http.StatusOK, quote)
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error, args ...any) {
	if h.logger == nil || dErrors.IsDomain(err) {
		return
	}
	args = append(args, "request_id", requestcontext.RequestID(ctx), "error", err)
	h.logger.ErrorContext(ctx, msg, args...)
}

func parseHash(raw string) (common.Hash, error) {
	b, err := hexutil.Decode(raw)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, dErrors.Newf(dErrors.CodeValidation, "%q is not a 32-byte hex hash", raw)
	}
	return common.BytesToHash(b), nil
}
