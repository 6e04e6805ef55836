package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/quantora_dash/internal/apiclient"
)

type responseOutput struct {
	Body apiclient.Response
}

type typedOutput[T any] struct {
	Body apiclient.Typed[T]
}

func registerDataHandlers(api huma.API, deps Deps) {
	type healthOutput struct {
		Body struct {
			Status  string                     `json:"status"`
			Backend apiclient.ConnectionStatus `json:"backend"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Gateway health", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			out.Body.Backend = deps.Client.ConnectionStatus()
			return out, nil
		})

	type connectionOutput struct {
		Body struct {
			IsBackendAvailable   bool `json:"isBackendAvailable"`
			ReconnectAttempts    int  `json:"reconnectAttempts"`
			MaxReconnectAttempts int  `json:"maxReconnectAttempts"`
			IsConnected          bool `json:"isConnected"`
			IsDemoMode           bool `json:"isDemoMode"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "get-connection", Method: http.MethodGet, Path: "/api/v1/connection", Summary: "Backend connection state", Tags: []string{"Connection"}},
		func(ctx context.Context, input *struct{}) (*connectionOutput, error) {
			st := deps.State.State()
			out := &connectionOutput{}
			out.Body.IsBackendAvailable = st.IsBackendAvailable
			out.Body.ReconnectAttempts = st.ReconnectAttempts
			out.Body.MaxReconnectAttempts = st.MaxReconnectAttempts
			out.Body.IsConnected = st.Status().IsConnected
			out.Body.IsDemoMode = st.Status().IsDemoMode
			return out, nil
		})

	type getDataInput struct {
		Endpoint string `query:"endpoint" required:"true" doc:"Backend endpoint path, e.g. /patterns/live"`
	}
	huma.Register(api, huma.Operation{OperationID: "get-data", Method: http.MethodGet, Path: "/api/v1/data", Summary: "Fetch any backend endpoint, live or demo", Tags: []string{"Data"}},
		func(ctx context.Context, input *getDataInput) (*responseOutput, error) {
			if input.Endpoint == "" {
				return nil, huma.Error400BadRequest("endpoint is required")
			}
			return &responseOutput{Body: deps.Client.Get(ctx, input.Endpoint)}, nil
		})

	type postDataInput struct {
		Body struct {
			Endpoint string `json:"endpoint" doc:"Backend endpoint path"`
			Payload  any    `json:"payload,omitempty" doc:"JSON body forwarded to the backend"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "post-data", Method: http.MethodPost, Path: "/api/v1/data", Summary: "Post to any backend endpoint, live or demo", Tags: []string{"Data"}},
		func(ctx context.Context, input *postDataInput) (*responseOutput, error) {
			if input.Body.Endpoint == "" {
				return nil, huma.Error400BadRequest("endpoint is required")
			}
			return &responseOutput{Body: deps.Client.Post(ctx, input.Body.Endpoint, input.Body.Payload)}, nil
		})

	registerTyped(api, "get-system-status", "/api/v1/system/status", "System status", deps.Client.GetSystemStatus)
	registerTyped(api, "get-live-patterns", "/api/v1/patterns/live", "Live patterns", deps.Client.GetLivePatterns)
	registerTyped(api, "get-tournament", "/api/v1/patterns/tournament", "Pattern tournament", deps.Client.GetTournamentData)
	registerTyped(api, "get-evolution", "/api/v1/evolution/status", "Evolution status", deps.Client.GetEvolutionStatus)
	registerTyped(api, "get-ai-engines", "/api/v1/ai/engines", "AI engines", deps.Client.GetAIEngines)
	registerTyped(api, "get-live-alerts", "/api/v1/alerts/live", "Live alerts", deps.Client.GetLiveAlerts)
}

func registerTyped[T any](api huma.API, id, path, summary string, get func(context.Context) apiclient.Typed[T]) {
	huma.Register(api, huma.Operation{OperationID: id, Method: http.MethodGet, Path: path, Summary: summary, Tags: []string{"Dashboard"}},
		func(ctx context.Context, input *struct{}) (*typedOutput[T], error) {
			return &typedOutput[T]{Body: get(ctx)}, nil
		})
}
