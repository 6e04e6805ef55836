package main

import (
	"strings"
	"testing"

	"github.com/dgnsrekt/quantora_dash/internal/config"
	"github.com/dgnsrekt/quantora_dash/internal/demo"
)

func TestKnownEndpointsCoversRegistryAndSurfaces(t *testing.T) {
	surfaces := []config.Surface{
		{Name: "system", Endpoint: demo.EndpointSystem},
		{Name: "custom", Endpoint: "/custom/feed"},
	}
	got := knownEndpoints(demo.NewRegistry(), surfaces)

	want := []string{
		demo.EndpointEngines,
		demo.EndpointAlerts,
		demo.EndpointEvolution,
		demo.EndpointHealth,
		demo.EndpointPatterns,
		demo.EndpointTournament,
		demo.EndpointSystem,
		"/custom/feed",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("knownEndpoints() = %v; want %v", got, want)
	}
}
