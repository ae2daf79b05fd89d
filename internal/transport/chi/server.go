package chi

import (
	"errors"
	"net/http"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/bazaarmkt/bazaarmkt/internal/domain"
	domprod "github.com/bazaarmkt/bazaarmkt/internal/domain/product"
	"github.com/bazaarmkt/bazaarmkt/internal/domain/search/request"
	batchuc "github.com/bazaarmkt/bazaarmkt/internal/usecase/batch"
	healthuc "github.com/bazaarmkt/bazaarmkt/internal/usecase/health"
	productuc "github.com/bazaarmkt/bazaarmkt/internal/usecase/product"
	searchuc "github.com/bazaarmkt/bazaarmkt/internal/usecase/search"
	"github.com/bazaarmkt/bazaarmkt/internal/validation"
	"github.com/bazaarmkt/bazaarmkt/internal/version"
)

// maxBodyBytes caps request bodies; a full batch of products fits comfortably.
const maxBodyBytes = 4 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the product API.
type Server struct {
	search            *searchuc.Service
	products          *productuc.Service
	batch             *batchuc.Service
	health            *healthuc.Service
	logger            *zap.Logger
	limits            request.Limits
	enhancedByDefault bool
	errorHandlers     []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	products *productuc.Service,
	batch *batchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:   search,
		products: products,
		batch:    batch,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrProductNotFound, http.StatusNotFound, codeProductNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidProduct, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
	}
	return s
}

// WithSearchLimits sets pagination and radius bounds for search requests.
func (s *Server) WithSearchLimits(l request.Limits) *Server {
	s.limits = l
	return s
}

// WithEnhancedByDefault sets enhancedRanking for requests that omit it.
func (s *Server) WithEnhancedByDefault(on bool) *Server {
	s.enhancedByDefault = on
	return s
}

// SearchProducts handles GET /api/v1/products/search.
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q, err := bindSearchQuery(r)
	if err != nil {
		s.handleBindError(w, err)
		return
	}
	s.rankedSearch(w, r, &q)
}

// ListProducts handles GET /api/v1/products. The default order is the ranked
// one; sort=newest lists active products by creation time instead.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := bindSearchQuery(r)
	if err != nil {
		s.handleBindError(w, err)
		return
	}
	if q.sort() != sortNewest {
		s.rankedSearch(w, r, &q)
		return
	}

	products, total, err := s.products.List(r.Context(), productuc.ListParams{
		Category: deref(q.Category),
		Offset:   deref(q.Offset),
		Limit:    deref(q.Limit),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]productResponse, len(products))
	for i := range products {
		items[i] = productToResponse(&products[i])
	}
	s.respond(w, http.StatusOK, listResponse{
		Products: items,
		Count:    len(items),
		Total:    total,
		Offset:   deref(q.Offset),
		Sort:     sortNewest,
	})
}

func (s *Server) rankedSearch(w http.ResponseWriter, r *http.Request, q *searchQuery) {
	req, err := request.New(q.toParams(s.enhancedByDefault), s.limits)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	page, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	s.respond(w, http.StatusOK, pageToResponse(&page))
}

// GetProduct handles GET /api/v1/products/{id}.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.products.Get(r.Context(), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.respond(w, http.StatusOK, productToResponse(&p))
}

// CreateProduct handles POST /api/v1/products.
func (s *Server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var body productBody
	if !s.decodeBody(w, r, &body) {
		return
	}

	p := body.toDomain("")
	created, err := s.products.Create(r.Context(), &p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/products/"+created.ID)
	s.respond(w, http.StatusCreated, productToResponse(&created))
}

// UpsertProduct handles PUT /api/v1/products/{id}.
func (s *Server) UpsertProduct(w http.ResponseWriter, r *http.Request) {
	var body productBody
	if !s.decodeBody(w, r, &body) {
		return
	}

	p := body.toDomain(gochi.URLParam(r, "id"))
	created, err := s.products.Upsert(r.Context(), p.ID, &p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.respond(w, status, productToResponse(&p))
}

// DeleteProduct handles DELETE /api/v1/products/{id}.
func (s *Server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.products.Delete(r.Context(), gochi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BatchUpsert handles POST /api/v1/products/batch.
func (s *Server) BatchUpsert(w http.ResponseWriter, r *http.Request) {
	var req batchUpsertRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	items := make([]domprod.Product, len(req.Products))
	for i := range req.Products {
		items[i] = req.Products[i].toDomain(req.Products[i].ID)
	}

	results := s.batch.Upsert(r.Context(), items)
	s.respond(w, http.StatusOK, batchResultsToResponse(results))
}

// BatchDelete handles POST /api/v1/products/batch-delete.
func (s *Server) BatchDelete(w http.ResponseWriter, r *http.Request) {
	var req batchDeleteRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	results := s.batch.Delete(r.Context(), req.IDs)
	s.respond(w, http.StatusOK, batchResultsToResponse(results))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	s.respond(w, httpStatus, healthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

// decodeBody reads and validates a JSON body into dst. It writes the error
// response itself and returns false on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := validation.Struct(dst); err != nil {
		s.handleBindError(w, err)
		return false
	}
	return true
}

func (s *Server) handleBindError(w http.ResponseWriter, err error) {
	var pe *paramError
	if errors.As(err, &pe) {
		writeError(w, http.StatusBadRequest, codeBadRequest, pe.Error())
		return
	}
	s.handleDomainError(w, err)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, codeNotFound, "route not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
}

// respond encodes v before committing status, so a payload that cannot be
// encoded becomes a logged 500 instead of a truncated success.
func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", zap.Error(err), zap.Int("status", status))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	writeBody(w, status, data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		data, status = []byte(`{"code":"`+codeInternalError+`","message":"internal error"}`), http.StatusInternalServerError
	}
	writeBody(w, status, data)
}

func writeBody(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// clientErrors describe bad input; their detail is safe to return.
var clientErrors = []error{
	domain.ErrInvalidProduct,
	domain.ErrInvalidRequest,
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range clientErrors {
		if !errors.Is(err, s) {
			continue
		}
		// drop the operation prefixes added on the way up
		msg := err.Error()
		if i := strings.Index(msg, s.Error()); i >= 0 {
			return msg[i:]
		}
		return s.Error()
	}

	sentinels := []error{
		domain.ErrProductNotFound,
		domain.ErrNotFound,
		domain.ErrRateLimited,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler reports every failed field of a validator error.
func validationHandler(w http.ResponseWriter, err error, _ string) bool {
	var ve *validation.Error
	if !errors.As(err, &ve) {
		return false
	}
	fields := make([]fieldError, len(ve.Fields()))
	for i, f := range ve.Fields() {
		fields[i] = fieldError{Field: f.Field, Message: f.Message}
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    codeValidationFailed,
		Message: ve.Error(),
		Fields:  fields,
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func batchErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidProduct), errors.Is(err, domain.ErrInvalidRequest):
		return codeValidationFailed
	case errors.Is(err, domain.ErrProductNotFound):
		return codeProductNotFound
	case errors.Is(err, domain.ErrStoreUnavailable):
		return codeStoreUnavailable
	case errors.Is(err, domain.ErrRateLimited):
		return codeRateLimited
	default:
		return codeInternalError
	}
}
