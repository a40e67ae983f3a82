package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/ghlink/internal/application"
	"github.com/ericfisherdev/ghlink/internal/domain/model"
	"github.com/ericfisherdev/ghlink/internal/domain/port/driven"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler is the HTTP driving adapter that serves the GitHub integration API.
type Handler struct {
	integrations *application.IntegrationService
	relay        *application.RelayService
	store        Pinger
	logger       *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	integrations *application.IntegrationService,
	relay *application.RelayService,
	store Pinger,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		integrations: integrations,
		relay:        relay,
		store:        store,
		logger:       logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with recovery, logging and CORS middleware.
func NewServeMux(h *Handler, logger *slog.Logger, corsOrigins []string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/github/connect", h.Connect)
	mux.HandleFunc("GET /api/github/callback", h.Callback)
	mux.HandleFunc("GET /api/github/accessToken", h.Callback)
	mux.HandleFunc("GET /api/github/fetch-data", h.FetchData)
	mux.HandleFunc("DELETE /api/github/remove", h.Remove)

	mux.HandleFunc("GET /api/github/organizations", h.relayHandler(model.ResourceOrganizations))
	mux.HandleFunc("GET /api/github/organizations/repos", h.relayHandler(model.ResourceRepositories))
	mux.HandleFunc("GET /api/github/organizations/repos/commits", h.relayHandler(model.ResourceCommits))
	mux.HandleFunc("GET /api/github/organizations/repos/pulls", h.relayHandler(model.ResourcePullRequests))
	mux.HandleFunc("GET /api/github/organizations/repos/issues", h.relayHandler(model.ResourceIssues))
	mux.HandleFunc("GET /api/github/organizations/repos/issues/changelogs", h.relayHandler(model.ResourceChangelogs))
	mux.HandleFunc("GET /api/github/organizations/users", h.relayHandler(model.ResourceMembers))

	mux.HandleFunc("GET /api/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = corsMiddleware(corsOrigins, wrapped)

	return wrapped
}

// Connect returns the GitHub authorization URL the client should open.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	url := h.integrations.Authorize(r.URL.Query().Get("redirect_uri"))
	writeJSON(w, http.StatusOK, ConnectResponse{URL: url})
}

// Callback completes the OAuth flow for the code GitHub redirected back with.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	integration, err := h.integrations.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.writeServiceError(w, "github callback", err)
		return
	}

	writeJSON(w, http.StatusOK, CallbackResponse{
		Message:     "integration successful",
		Integration: toIntegrationResponse(*integration),
	})
}

// FetchData returns every stored integration.
func (h *Handler) FetchData(w http.ResponseWriter, r *http.Request) {
	integrations, err := h.integrations.ListIntegrations(r.Context())
	if err != nil {
		h.writeServiceError(w, "list integrations", err)
		return
	}

	resp := make([]IntegrationResponse, 0, len(integrations))
	for _, in := range integrations {
		resp = append(resp, toIntegrationResponse(in))
	}

	writeJSON(w, http.StatusOK, ListIntegrationsResponse{
		Message:      "integrations fetched",
		Integrations: resp,
	})
}

// Remove revokes and deletes the integration named in the request body.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	var req RemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.integrations.RemoveIntegration(r.Context(), req.UserID); err != nil {
		h.writeServiceError(w, "remove integration", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "integration removed"})
}

// relayHandler returns a handler that relays resource with the caller's token.
func (h *Handler) relayHandler(resource model.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := model.RelayParams{
			Org:   requestParam(r, "org"),
			Owner: requestParam(r, "owner"),
			Repo:  requestParam(r, "repo"),
		}

		body, err := h.relay.Fetch(r.Context(), resource, bearerToken(r), params)
		if err != nil {
			h.writeServiceError(w, "relay "+string(resource), err)
			return
		}

		writeRawJSON(w, http.StatusOK, body)
	}
}

// Health reports the service status and whether the store is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			h.logger.Error("health check failed", "error", err)
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, HealthResponse{
		Status: status,
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeServiceError maps application and store errors to HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, application.ErrMissingCode),
		errors.Is(err, application.ErrMissingUserID),
		errors.Is(err, application.ErrMissingParameter),
		errors.Is(err, application.ErrInvalidParameter):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, driven.ErrIntegrationNotFound):
		writeError(w, http.StatusNotFound, "integration not found")
	case errors.Is(err, driven.ErrIntegrationExists):
		writeError(w, http.StatusConflict, "github account already connected")
	case errors.Is(err, application.ErrNotImplemented):
		writeError(w, http.StatusNotImplemented, "not implemented")
	case errors.Is(err, application.ErrUpstream):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error("request failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// bearerToken extracts the caller's GitHub token from the Authorization
// header, falling back to the legacy accesstoken header.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get("accesstoken"))
}

// requestParam reads name from the query string, then from a header of the
// same name.
func requestParam(r *http.Request, name string) string {
	if v := strings.TrimSpace(r.URL.Query().Get(name)); v != "" {
		return v
	}
	return strings.TrimSpace(r.Header.Get(name))
}
