package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/ghlink/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	writeRawJSON(w, status, data)
}

// writeRawJSON writes already-encoded JSON as is.
func writeRawJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ConnectResponse carries the GitHub authorization URL.
type ConnectResponse struct {
	URL string `json:"url"`
}

// IntegrationResponse is the JSON representation of a stored integration.
// The access token is returned to the caller that owns it.
type IntegrationResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
	ConnectedAt string `json:"connected_at"`
}

// CallbackResponse is returned when the OAuth flow completes.
type CallbackResponse struct {
	Message     string              `json:"message"`
	Integration IntegrationResponse `json:"integration"`
}

// ListIntegrationsResponse is returned by the fetch-data endpoint.
type ListIntegrationsResponse struct {
	Message      string                `json:"message"`
	Integrations []IntegrationResponse `json:"integrations"`
}

// RemoveRequest is the JSON body for the remove endpoint.
type RemoveRequest struct {
	UserID string `json:"userId"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toIntegrationResponse converts a domain Integration to its JSON representation.
func toIntegrationResponse(in model.Integration) IntegrationResponse {
	return IntegrationResponse{
		ID:          in.ID,
		UserID:      in.UserID,
		Username:    in.Username,
		AccessToken: in.AccessToken,
		ConnectedAt: in.ConnectedAt.UTC().Format(time.RFC3339),
	}
}
