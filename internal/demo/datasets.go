package demo

import (
	"time"

	"github.com/dgnsrekt/quantora_dash/internal/types"
)

func Health() types.Health {
	return types.Health{
		Status:    "demo",
		Message:   "Revolutionary AI Demo Mode Active",
		Version:   "2.0.0",
		AIEngines: 3,
	}
}

func LivePatterns() types.LivePatterns {
	return types.LivePatterns{
		Patterns: []types.Pattern{
			{
				ID:              "1",
				Name:            "Meta Whale Activity Intelligence",
				SuccessRate:     88.5,
				SharpeRatio:     1.89,
				MaxDrawdown:     3.2,
				Level:           2,
				Status:          types.PatternChampion,
				Category:        "OnChain + Network",
				AICreator:       "Llama-70B",
				CreatedAt:       "2025-06-11T10:30:00Z",
				LastUpdated:     "2025-06-14T14:22:00Z",
				ValidationScore: 94.7,
				TotalTrades:     247,
				WinStreak:       23,
			},
			{
				ID:              "2",
				Name:            "Active Network Flow Pattern",
				SuccessRate:     86.3,
				SharpeRatio:     1.67,
				MaxDrawdown:     4.1,
				Level:           1,
				Status:          types.PatternLive,
				Category:        "Network Activity",
				AICreator:       "Llama-30B",
				CreatedAt:       "2025-06-10T15:45:00Z",
				LastUpdated:     "2025-06-14T13:15:00Z",
				ValidationScore: 91.2,
				TotalTrades:     189,
				WinStreak:       12,
			},
			{
				ID:              "3",
				Name:            "Exchange Flow RSI Confluence",
				SuccessRate:     84.9,
				SharpeRatio:     1.73,
				MaxDrawdown:     3.8,
				Level:           1,
				Status:          types.PatternLive,
				Category:        "Technical + Flow",
				AICreator:       "Claude-3.5",
				CreatedAt:       "2025-06-09T09:20:00Z",
				LastUpdated:     "2025-06-14T12:45:00Z",
				ValidationScore: 89.4,
				TotalTrades:     156,
				WinStreak:       8,
			},
		},
		TotalCount:    50,
		ActiveCount:   47,
		ChampionCount: 1,
	}
}

func Tournament() types.Tournament {
	return types.Tournament{
		CurrentChampion:  "Meta Whale Activity Intelligence",
		BattlesCompleted: 247,
		NextBattle:       "2025-06-14T16:00:00Z",
		Leaderboard: []types.LeaderboardEntry{
			{Rank: 1, PatternID: "1", Points: 2340, Wins: 189, Losses: 8},
			{Rank: 2, PatternID: "2", Points: 2156, Wins: 167, Losses: 22},
			{Rank: 3, PatternID: "3", Points: 2089, Wins: 145, Losses: 11},
		},
	}
}

func Evolution() types.Evolution {
	return types.Evolution{
		Level0:               types.EvolutionLevel{Count: 8, Active: 8, Description: "Atomic Parameters"},
		Level1:               types.EvolutionLevel{Count: 24, Active: 18, AvgSuccessRate: 78.39},
		Level2:               types.EvolutionLevel{Count: 29, Active: 26, AvgSuccessRate: 84.43},
		Level3:               types.EvolutionLevel{Count: 3, Active: 3, AvgSuccessRate: 84.59},
		TotalPatternsCreated: 56,
		ApprovedForLive:      50,
		ApprovalRate:         89.3,
	}
}

func AIEngines() types.AIEngines {
	return types.AIEngines{
		Engines: []types.AIEngine{
			{
				ID:                "llama-70b",
				Name:              "Llama-70B Deep Discovery",
				Performance:       94.2,
				PatternsGenerated: 247,
				SuccessRate:       85.7,
				InnovationScore:   92.3,
				Status:            "active",
				ResourceUsage:     types.ResourceUsage{CPU: 78, Memory: 87, GPU: 92},
			},
			{
				ID:                "llama-30b",
				Name:              "Llama-30B Rapid Response",
				Performance:       91.8,
				PatternsGenerated: 189,
				SuccessRate:       82.4,
				InnovationScore:   88.9,
				Status:            "active",
				ResourceUsage:     types.ResourceUsage{CPU: 65, Memory: 71, GPU: 84},
			},
			{
				ID:                "claude-35",
				Name:              "Claude-3.5 Validation Logic",
				Performance:       96.4,
				PatternsGenerated: 0,
				SuccessRate:       94.1,
				InnovationScore:   97.2,
				Status:            "active",
				ResourceUsage:     types.ResourceUsage{CPU: 12, Memory: 8, GPU: 0},
			},
		},
	}
}

// SystemStatus reports the fixed demo figures plus the caller's current
// connection flags.
func SystemStatus(now time.Time, connected bool) types.SystemStatus {
	return types.SystemStatus{
		AIEnginesActive: 3,
		PatternsLive:    50,
		PeakSuccessRate: 88.5,
		AvgSuccessRate:  75.23,
		TotalTrades:     1247,
		SystemUptime:    99.94,
		IsConnected:     connected,
		IsDemoMode:      !connected,
		LastUpdate:      now.UTC().Format(TimestampLayout),
	}
}

// LiveAlerts returns three alerts aged 2, 15 and 30 minutes relative to now.
func LiveAlerts(now time.Time) types.LiveAlerts {
	alerts := []types.Alert{
		{
			ID:        "1",
			Type:      "discovery",
			Title:     "Revolutionary Pattern Discovered",
			Message:   "AI synthesized Meta Whale Activity pattern achieving 88.5% success rate",
			Timestamp: now.Add(-2 * time.Minute).UTC(),
			IsNew:     true,
			Priority:  "high",
			Source:    "Llama-70B",
		},
		{
			ID:        "2",
			Type:      "success",
			Title:     "Tournament Victory",
			Message:   "Meta Whale Activity maintains championship for 23rd consecutive battle",
			Timestamp: now.Add(-15 * time.Minute).UTC(),
			Priority:  "medium",
			Source:    "Tournament System",
		},
		{
			ID:        "3",
			Type:      "info",
			Title:     "AI Performance Update",
			Message:   "All 3 AI engines operating at 94%+ performance efficiency",
			Timestamp: now.Add(-30 * time.Minute).UTC(),
			Priority:  "low",
			Source:    "System Monitor",
		},
	}
	return types.LiveAlerts{Alerts: alerts, TotalCount: len(alerts)}
}
