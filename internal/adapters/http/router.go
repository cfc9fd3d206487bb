package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/policyatlas/evidence-engine/internal/core/domain"
	"github.com/policyatlas/evidence-engine/internal/core/ports"
	"github.com/policyatlas/evidence-engine/internal/observability/metrics"
)

const serviceName = "evidence-api"

type TrafficControl struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
}

type Router struct {
	retriever ports.EvidenceRetriever
	reviews   ports.ReviewService
	metrics   *metrics.HTTPServerMetrics
	traffic   TrafficControl
	logger    *slog.Logger
}

func NewRouter(
	retriever ports.EvidenceRetriever,
	reviews ports.ReviewService,
	serverMetrics *metrics.HTTPServerMetrics,
	traffic TrafficControl,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		retriever: retriever,
		reviews:   reviews,
		metrics:   serverMetrics,
		traffic:   traffic,
		logger:    logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/evidence/query", rt.queryEvidence)
	mux.HandleFunc("/v1/reviews", rt.submitReview)
	mux.HandleFunc("/v1/reviews/", rt.getReviewByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.traffic.MaxInFlight, 100*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.traffic.RateLimitRPS, rt.traffic.RateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) queryEvidence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		QuestionID string `json:"question_id"`
		Question   string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}
	if req.QuestionID == "" {
		req.QuestionID = "q1"
	}

	start := time.Now()
	result := rt.retriever.Retrieve(r.Context(), domain.Question{ID: req.QuestionID, Text: req.Question})
	if rt.metrics != nil {
		rt.metrics.RecordQuestionResolved(
			serviceName,
			string(result.Tier),
			result.HasEvidence,
			len(result.Chunks),
			len(result.PackedContext),
			time.Since(start),
		)
	}

	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) submitReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Name      string `json:"name"`
		Questions []struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"questions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	questions := make([]domain.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, domain.Question{ID: q.ID, Text: q.Text})
	}

	review, err := rt.reviews.Submit(r.Context(), req.Name, questions)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, review)
}

func (rt *Router) getReviewByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/reviews/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "review id is required"})
		return
	}

	review, questions, err := rt.reviews.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"review":    review,
		"questions": questions,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
