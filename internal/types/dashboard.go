package types

import "time"

// Pattern status values.
const (
	PatternLive     = "LIVE"
	PatternTesting  = "TESTING"
	PatternChampion = "CHAMPION"
	PatternRetired  = "RETIRED"
)

// Pattern is a discovered trading pattern as listed on /patterns/live.
type Pattern struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	SuccessRate     float64 `json:"successRate"`
	SharpeRatio     float64 `json:"sharpeRatio"`
	MaxDrawdown     float64 `json:"maxDrawdown"`
	Level           int     `json:"level"`
	Status          string  `json:"status"`
	Category        string  `json:"category"`
	AICreator       string  `json:"aiCreator"`
	CreatedAt       string  `json:"createdAt"`
	LastUpdated     string  `json:"lastUpdated"`
	ValidationScore float64 `json:"validationScore"`
	TotalTrades     int     `json:"totalTrades"`
	WinStreak       int     `json:"winStreak"`
}

// LivePatterns is the /patterns/live payload.
type LivePatterns struct {
	Patterns      []Pattern `json:"patterns"`
	TotalCount    int       `json:"totalCount"`
	ActiveCount   int       `json:"activeCount"`
	ChampionCount int       `json:"championCount"`
}

// ResourceUsage is per-engine utilisation in percent.
type ResourceUsage struct {
	CPU    float64 `json:"cpu"`
	Memory float64 `json:"memory"`
	GPU    float64 `json:"gpu"`
}

// AIEngine describes one pattern-generating model.
type AIEngine struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Performance       float64       `json:"performance"`
	PatternsGenerated int           `json:"patternsGenerated"`
	SuccessRate       float64       `json:"successRate"`
	InnovationScore   float64       `json:"innovationScore"`
	Status            string        `json:"status"`
	ResourceUsage     ResourceUsage `json:"resourceUsage"`
}

// AIEngines is the /ai/engines payload.
type AIEngines struct {
	Engines []AIEngine `json:"engines"`
}

// SystemStatus is the /system/status payload.
type SystemStatus struct {
	AIEnginesActive int     `json:"aiEnginesActive"`
	PatternsLive    int     `json:"patternsLive"`
	PeakSuccessRate float64 `json:"peakSuccessRate"`
	AvgSuccessRate  float64 `json:"avgSuccessRate"`
	TotalTrades     int     `json:"totalTrades"`
	SystemUptime    float64 `json:"systemUptime"`
	IsConnected     bool    `json:"isConnected"`
	IsDemoMode      bool    `json:"isDemoMode"`
	LastUpdate      string  `json:"lastUpdate"`
}

// Alert is a single dashboard notification.
type Alert struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	IsNew     bool      `json:"isNew,omitempty"`
	Priority  string    `json:"priority"`
	Source    string    `json:"source"`
}

// LiveAlerts is the /alerts/live payload.
type LiveAlerts struct {
	Alerts     []Alert `json:"alerts"`
	TotalCount int     `json:"totalCount"`
}

// LeaderboardEntry is one row of the tournament leaderboard.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	PatternID string `json:"patternId"`
	Points    int    `json:"points"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
}

// Tournament is the /patterns/tournament payload.
type Tournament struct {
	CurrentChampion  string             `json:"currentChampion"`
	BattlesCompleted int                `json:"battlesCompleted"`
	NextBattle       string             `json:"nextBattle"`
	Leaderboard      []LeaderboardEntry `json:"leaderboard"`
}

// EvolutionLevel summarises one level of the pattern hierarchy.
type EvolutionLevel struct {
	Count          int     `json:"count"`
	Active         int     `json:"active"`
	AvgSuccessRate float64 `json:"avgSuccessRate,omitempty"`
	Description    string  `json:"description,omitempty"`
}

// Evolution is the /evolution/status payload.
type Evolution struct {
	Level0               EvolutionLevel `json:"level0"`
	Level1               EvolutionLevel `json:"level1"`
	Level2               EvolutionLevel `json:"level2"`
	Level3               EvolutionLevel `json:"level3"`
	TotalPatternsCreated int            `json:"totalPatternsCreated"`
	ApprovedForLive      int            `json:"approvedForLive"`
	ApprovalRate         float64        `json:"approvalRate"`
}

// Health is the /health payload. Live backends add more fields.
type Health struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	Version   string `json:"version,omitempty"`
	AIEngines int    `json:"aiEngines,omitempty"`
}

// Generic is returned for endpoints without a dedicated dataset.
type Generic struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Endpoint  string `json:"endpoint"`
}
