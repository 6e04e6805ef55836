package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/quantora_dash/internal/poller"
)

func registerSurfaceHandlers(api huma.API, deps Deps) {
	type surfacesOutput struct {
		Body struct {
			Surfaces []poller.Entry `json:"surfaces"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-surfaces", Method: http.MethodGet, Path: "/api/v1/surfaces", Summary: "Latest data for every polled surface", Tags: []string{"Surfaces"}},
		func(ctx context.Context, input *struct{}) (*surfacesOutput, error) {
			out := &surfacesOutput{}
			out.Body.Surfaces = deps.Surfaces.All()
			return out, nil
		})

	type refreshInput struct {
		Name string `path:"name" doc:"Surface name from the surfaces config"`
	}
	type refreshOutput struct {
		Body poller.Entry
	}
	huma.Register(api, huma.Operation{OperationID: "refresh-surface", Method: http.MethodPost, Path: "/api/v1/surfaces/{name}/refresh", Summary: "Refetch one surface now", Tags: []string{"Surfaces"}},
		func(ctx context.Context, input *refreshInput) (*refreshOutput, error) {
			entry, err := deps.Surfaces.Refresh(ctx, input.Name)
			if err != nil {
				return nil, mapErr(err)
			}
			return &refreshOutput{Body: entry}, nil
		})

	type metricsOutput struct {
		Body map[string]any
	}
	huma.Register(api, huma.Operation{OperationID: "get-metrics", Method: http.MethodGet, Path: "/api/v1/metrics", Summary: "Process counters", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*metricsOutput, error) {
			snap := deps.Metrics.Snapshot()
			if deps.Broker != nil {
				snap["sse"] = map[string]any{
					"clients": deps.Broker.ClientCount(),
					"dropped": deps.Broker.Dropped(),
				}
			}
			return &metricsOutput{Body: snap}, nil
		})
}
