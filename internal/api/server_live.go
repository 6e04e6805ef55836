package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/quantora_dash/internal/live"
)

type liveInfoOutput struct {
	Body live.Info
}

func registerLiveHandlers(api huma.API, deps Deps) {
	huma.Register(api, huma.Operation{OperationID: "get-live-status", Method: http.MethodGet, Path: "/api/v1/live/status", Summary: "Live stream status", Tags: []string{"Live"}},
		func(ctx context.Context, input *struct{}) (*liveInfoOutput, error) {
			return &liveInfoOutput{Body: deps.Live.Info()}, nil
		})

	type logOutput struct {
		Body struct {
			Entries []live.LogEntry `json:"entries"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "get-live-log", Method: http.MethodGet, Path: "/api/v1/live/log", Summary: "Live stream activity log", Tags: []string{"Live"}},
		func(ctx context.Context, input *struct{}) (*logOutput, error) {
			out := &logOutput{}
			out.Body.Entries = deps.Live.Log()
			return out, nil
		})

	type sendInput struct {
		Body struct {
			Type    string `json:"type,omitempty" enum:"message,ping,request_status" default:"message" doc:"Message kind"`
			Content string `json:"content,omitempty" doc:"Text for type=message"`
		}
	}
	type sendOutput struct {
		Body struct {
			Status string `json:"status"`
			Type   string `json:"type"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "live-send", Method: http.MethodPost, Path: "/api/v1/live/send", Summary: "Send a message on the live stream", Tags: []string{"Live"}},
		func(ctx context.Context, input *sendInput) (*sendOutput, error) {
			kind := input.Body.Type
			if kind == "" {
				kind = "message"
			}
			var err error
			switch kind {
			case "message":
				content := strings.TrimSpace(input.Body.Content)
				if content == "" {
					return nil, huma.Error400BadRequest("content is required for type=message")
				}
				err = deps.Live.SendText(content)
			case "ping":
				err = deps.Live.Ping()
			case "request_status":
				err = deps.Live.RequestStatus()
			default:
				return nil, huma.Error400BadRequest("unknown message type: " + kind)
			}
			if err != nil {
				return nil, mapErr(err)
			}
			out := &sendOutput{}
			out.Body.Status = "sent"
			out.Body.Type = kind
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "live-toggle", Method: http.MethodPost, Path: "/api/v1/live/toggle", Summary: "Connect or disconnect the live stream", Tags: []string{"Live"}},
		func(ctx context.Context, input *struct{}) (*liveInfoOutput, error) {
			deps.Live.Toggle()
			return &liveInfoOutput{Body: deps.Live.Info()}, nil
		})
}
