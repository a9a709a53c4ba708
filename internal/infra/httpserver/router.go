package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appdocs "github.com/bryanwahyu/agentic-rag/internal/application/documents"
	apppipe "github.com/bryanwahyu/agentic-rag/internal/application/pipeline"
	docdomain "github.com/bryanwahyu/agentic-rag/internal/domain/documents"
	pipedomain "github.com/bryanwahyu/agentic-rag/internal/domain/pipeline"
	"github.com/bryanwahyu/agentic-rag/internal/middleware"
)

type Router struct {
	docsSvc *appdocs.Service
	coord   *apppipe.Coordinator
}

func NewRouter(docsSvc *appdocs.Service, coord *apppipe.Coordinator, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{docsSvc: docsSvc, coord: coord}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/documents", r.wrap(r.handleAddDocument))
		rt.Get("/documents", r.wrap(r.handleSearch))
		rt.Get("/documents/{id}", r.wrap(r.handleGetDocument))
		rt.Get("/documents/{id}/reference", r.wrap(r.handleGetReference))
		rt.Post("/query", r.wrap(r.handleQuery))
		rt.Get("/metrics", middleware.MetricsHandler(r.coord.Monitor.Summary))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks a client input error so wrap can map it to 400.
type badRequest struct{ err error }

func (b badRequest) Error() string { return b.err.Error() }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := middleware.ValidateTenantID(chi.URLParam(req, "tenant")); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := h(w, req); err != nil {
			var bad badRequest
			if errors.As(err, &bad) {
				http.Error(w, bad.Error(), http.StatusBadRequest)
				return
			}
			if errors.Is(err, docdomain.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, pipedomain.ErrQuotaExceeded) {
				http.Error(w, "nlp quota exceeded", http.StatusTooManyRequests)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/{tenant}/documents
// Body: {"content": "<base64>", "filename": "...", "content_type": "...", "tags": [...], "attributes": {...}}
func (r *Router) handleAddDocument(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Content     []byte         `json:"content"`
		Filename    string         `json:"filename"`
		ContentType string         `json:"content_type"`
		Tags        []string       `json:"tags"`
		Attributes  map[string]any `json:"attributes"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{err}
	}
	if err := middleware.ValidateFilename(body.Filename); err != nil {
		return badRequest{err}
	}
	if err := middleware.ValidateContentType(body.ContentType); err != nil {
		return badRequest{err}
	}
	if err := middleware.ValidateTags(body.Tags); err != nil {
		return badRequest{err}
	}

	ref, err := r.docsSvc.StoreDocument(req.Context(), appdocs.StoreDocumentCommand{
		Content:     body.Content,
		Filename:    middleware.SanitizeString(body.Filename),
		ContentType: body.ContentType,
		Tags:        body.Tags,
		Attributes:  body.Attributes,
	})
	if err != nil {
		return err
	}
	middleware.IncrementDocumentsStored()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(ref)
}

// GET /v1/{tenant}/documents/{id}
func (r *Router) handleGetDocument(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateDocID(id); err != nil {
		return badRequest{err}
	}

	content, err := r.docsSvc.RetrieveDocument(req.Context(), docdomain.DocID(id))
	if err != nil {
		return err
	}

	contentType := "application/octet-stream"
	if ref, err := r.docsSvc.GetReference(req.Context(), docdomain.DocID(id)); err == nil {
		contentType = ref.Metadata.ContentType
	}
	w.Header().Set("Content-Type", contentType)
	_, err = w.Write(content)
	return err
}

// GET /v1/{tenant}/documents/{id}/reference
func (r *Router) handleGetReference(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateDocID(id); err != nil {
		return badRequest{err}
	}

	ref, err := r.docsSvc.GetReference(req.Context(), docdomain.DocID(id))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(ref)
}

// GET /v1/{tenant}/documents?tags=a,b&attr.domain=climate
func (r *Router) handleSearch(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()

	var tags []string
	if raw := q.Get("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	attrs := map[string]any{}
	for key, vals := range q {
		if after, ok := strings.CutPrefix(key, "attr."); ok && len(vals) > 0 {
			attrs[after] = vals[0]
		}
	}

	refs, err := r.docsSvc.Search(req.Context(), tags, attrs)
	if err != nil {
		return err
	}
	if refs == nil {
		refs = []*docdomain.Reference{}
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(refs)
}

// POST /v1/{tenant}/query
// Body: {"query": "..."}
func (r *Router) handleQuery(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{err}
	}
	if err := middleware.ValidateQuery(body.Query); err != nil {
		return badRequest{err}
	}

	middleware.IncrementQueries()
	result := r.coord.ProcessQuery(req.Context(), body.Query)
	if result.Status == pipedomain.StatusFailed {
		middleware.IncrementQueriesFailed()
	}

	// A failed envelope carries no confidence/sources; keep the response
	// shape stable instead of serializing nulls.
	confidence, _ := result.Metadata["confidence"].(float64)
	sources, ok := result.Metadata["sources"]
	if !ok {
		sources = []string{}
	}
	resp := map[string]any{
		"status":     result.Status,
		"response":   result.Data,
		"confidence": confidence,
		"sources":    sources,
		"metadata":   result.Metadata,
	}
	if result.Error != "" {
		resp["error"] = result.Error
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}
