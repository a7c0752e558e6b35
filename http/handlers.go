package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"diseasepredict/db"
	"diseasepredict/monitoring"
	"diseasepredict/predictor"
)

const SessionHeader = "X-Session-ID"

// API serves the predictor over HTTP.
type API struct {
	predictor *predictor.Predictor
	sessions  *SessionStore
	history   db.HistoryStore
	hub       *monitoring.Hub
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// APIOptions holds the optional collaborators of an API. Nil History and Hub
// disable the history endpoint and the prediction feed.
type APIOptions struct {
	Sessions *SessionStore
	History  db.HistoryStore
	Hub      *monitoring.Hub
	Metrics  *monitoring.Metrics
	Logger   *zap.Logger
}

func NewAPI(p *predictor.Predictor, opts APIOptions) *API {
	if opts.Sessions == nil {
		opts.Sessions = NewSessionStore(p, 0, 30*time.Minute)
	}
	if opts.Metrics == nil {
		opts.Metrics = monitoring.NewMetrics()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &API{
		predictor: p,
		sessions:  opts.Sessions,
		history:   opts.History,
		hub:       opts.Hub,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/symptoms", a.handleSymptoms)
	mux.HandleFunc("GET /api/diseases", a.handleDiseases)
	mux.HandleFunc("GET /api/model", a.handleModel)
	mux.HandleFunc("GET /api/metrics", a.handleMetrics)
	mux.HandleFunc("POST /api/sessions", a.handleCreateSession)
	mux.HandleFunc("POST /api/predict", a.handlePredict)
	mux.HandleFunc("GET /api/describe/{disease}", a.handleDescribe)
	mux.HandleFunc("GET /api/precautions/{disease}", a.handlePrecautions)
	mux.HandleFunc("GET /api/sessions/{id}/describe", a.handleDescribeLast)
	mux.HandleFunc("GET /api/sessions/{id}/precautions", a.handlePrecautionsLast)
	mux.HandleFunc("GET /api/history", a.handleHistory)
	if a.hub != nil {
		mux.HandleFunc("GET /api/ws/predictions", a.hub.HandleWebSocket)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *API) handleSymptoms(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{"symptoms": a.predictor.Symptoms()})
}

func (a *API) handleDiseases(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{"diseases": a.predictor.Diseases()})
}

func (a *API) handleModel(w http.ResponseWriter, r *http.Request) {
	holder := a.predictor.Model()
	model := holder.Load()
	if model == nil {
		writeError(w, http.StatusServiceUnavailable, predictor.ErrNoModel.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"classes":   model.NumClasses(),
		"features":  model.NumFeatures(),
		"loaded_at": holder.LoadedAt(),
	})
}

func (a *API) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "json" {
		respondJSON(w, http.StatusOK, a.metrics.Snapshot())
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	if err := a.metrics.ExportPrometheus(w); err != nil {
		a.logger.Warn("failed to export metrics", zap.Error(err))
	}
}

func (a *API) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := a.sessions.Create()
	w.Header().Set(SessionHeader, session.ID())
	respondJSON(w, http.StatusCreated, map[string]string{"session_id": session.ID()})
}

type predictRequest struct {
	Symptoms []string `json:"symptoms"`
}

type predictResponse struct {
	SessionID   string                       `json:"session_id"`
	Disease     string                       `json:"disease"`
	Probability float64                      `json:"probability"`
	Ranked      []predictor.RankedDisease    `json:"ranked"`
	Matched     []string                     `json:"matched"`
	Unknown     []string                     `json:"unknown"`
	Description *predictor.DescriptionResult `json:"description,omitempty"`
	Precautions *predictor.PrecautionsResult `json:"precautions,omitempty"`
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Symptoms) == 0 {
		writeError(w, http.StatusBadRequest, "at least one symptom is required")
		return
	}

	var session *predictor.Session
	if id := r.Header.Get(SessionHeader); id != "" {
		var ok bool
		if session, ok = a.sessions.Get(id); !ok {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
	} else {
		session = a.sessions.Create()
	}
	w.Header().Set(SessionHeader, session.ID())

	start := time.Now()
	pred, enc, err := session.PredictSymptoms(r.Context(), req.Symptoms)
	if err != nil {
		a.metrics.RecordFailure()
		a.logger.Error("prediction failed", zap.String("session", session.ID()), zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}
	a.metrics.RecordPrediction(pred.Disease, len(enc.Unknown), time.Since(start))
	if len(enc.Unknown) > 0 {
		a.logger.Info("unknown symptoms ignored", zap.Strings("symptoms", enc.Unknown))
	}

	resp := predictResponse{
		SessionID:   session.ID(),
		Disease:     pred.Disease,
		Probability: pred.Probability,
		Ranked:      pred.Ranked,
		Matched:     nonNil(enc.Matched),
		Unknown:     nonNil(enc.Unknown),
	}
	if desc, err := a.predictor.Describe(pred.Disease); err == nil {
		resp.Description = &desc
	} else {
		a.logger.Warn("description lookup failed", zap.String("disease", pred.Disease), zap.Error(err))
	}
	if prec, err := a.predictor.Precautions(pred.Disease); err == nil {
		resp.Precautions = &prec
	} else {
		a.logger.Warn("precaution lookup failed", zap.String("disease", pred.Disease), zap.Error(err))
	}

	a.record(r.Context(), session.ID(), pred)
	respondJSON(w, http.StatusOK, resp)
}

// record saves history and publishes the feed event. Neither may fail the
// request.
func (a *API) record(ctx context.Context, sessionID string, pred predictor.Prediction) {
	if a.history != nil {
		err := a.history.SavePrediction(ctx, db.Record{
			SessionID:   sessionID,
			Symptoms:    pred.Symptoms,
			Disease:     pred.Disease,
			Probability: pred.Probability,
			CreatedAt:   pred.At,
		})
		if err != nil {
			a.logger.Warn("failed to save prediction history", zap.Error(err))
		}
	}
	if a.hub != nil {
		err := a.hub.Publish(monitoring.PredictionEvent, monitoring.PredictionMessage{
			SessionID:   sessionID,
			Disease:     pred.Disease,
			Probability: pred.Probability,
			Symptoms:    nonNil(pred.Symptoms),
			Timestamp:   pred.At,
		})
		if err != nil {
			a.logger.Warn("failed to publish prediction", zap.Error(err))
		}
	}
}

func (a *API) handleDescribe(w http.ResponseWriter, r *http.Request) {
	result, err := a.predictor.Describe(r.PathValue("disease"))
	a.respondLookup(w, result, err)
}

func (a *API) handlePrecautions(w http.ResponseWriter, r *http.Request) {
	result, err := a.predictor.Precautions(r.PathValue("disease"))
	a.respondLookup(w, result, err)
}

func (a *API) handleDescribeLast(w http.ResponseWriter, r *http.Request) {
	session, ok := a.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	result, err := session.DescribeLast()
	a.respondLookup(w, result, err)
}

func (a *API) handlePrecautionsLast(w http.ResponseWriter, r *http.Request) {
	session, ok := a.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	result, err := session.PrecautionsLast()
	a.respondLookup(w, result, err)
}

func (a *API) respondLookup(w http.ResponseWriter, result interface{}, err error) {
	if err != nil {
		a.logger.Error("reference lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	if a.history == nil {
		writeError(w, http.StatusServiceUnavailable, "prediction history is disabled")
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	records, err := a.history.RecentPredictions(r.Context(), limit)
	if err != nil {
		a.logger.Error("failed to query history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"predictions": records})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
