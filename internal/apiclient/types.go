package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ConnectionState is owned by a Monitor. Readers get copies.
type ConnectionState struct {
	IsBackendAvailable   bool `json:"isBackendAvailable"`
	ReconnectAttempts    int  `json:"reconnectAttempts"`
	MaxReconnectAttempts int  `json:"maxReconnectAttempts"`
}

// ConnectionStatus is the UI badge view of a ConnectionState.
type ConnectionStatus struct {
	IsConnected bool `json:"isConnected"`
	IsDemoMode  bool `json:"isDemoMode"`
}

// Status derives the badge view.
func (s ConnectionState) Status() ConnectionStatus {
	return ConnectionStatus{IsConnected: s.IsBackendAvailable, IsDemoMode: !s.IsBackendAvailable}
}

// StateSource is anything that can report the current connection state.
type StateSource interface {
	State() ConnectionState
}

// Response is the result of every façade call. Data holds the JSON payload,
// live or synthesized; IsDemo tells which.
type Response struct {
	Data      json.RawMessage `json:"data,omitempty"`
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
	IsDemo    bool            `json:"isDemo"`
	Timestamp string          `json:"timestamp"`
}

// Typed is a Response with Data decoded into T.
type Typed[T any] struct {
	Data      T      `json:"data"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	IsDemo    bool   `json:"isDemo"`
	Timestamp string `json:"timestamp"`
}

// Decode unmarshals r.Data into T.
func Decode[T any](r Response) (Typed[T], error) {
	out := Typed[T]{Success: r.Success, Error: r.Error, IsDemo: r.IsDemo, Timestamp: r.Timestamp}
	if len(r.Data) == 0 {
		return out, fmt.Errorf("decode: empty data")
	}
	if err := json.Unmarshal(r.Data, &out.Data); err != nil {
		return out, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}

// StatusError is returned for non-2xx backend responses.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}
