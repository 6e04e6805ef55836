package types

// Live message type tags.
const (
	MsgConnectionEstablished = "connection_established"
	MsgPatternDiscovered     = "pattern_discovered"
	MsgAIPerformanceUpdate   = "ai_performance_update"
	MsgSystemHealthUpdate    = "system_health_update"
	MsgPong                  = "pong"
	MsgStatusResponse        = "status_response"
)

// Outgoing message type tags.
const (
	MsgText          = "message"
	MsgPing          = "ping"
	MsgRequestStatus = "request_status"
)

// StreamStatus is the summary sent with connection_established.
type StreamStatus struct {
	PatternsLive    int     `json:"patterns_live"`
	AIEnginesActive int     `json:"ai_engines_active"`
	SuccessRatePeak float64 `json:"success_rate_peak"`
	MagicLevel      string  `json:"magic_level,omitempty"`
}

// ConnectionEstablished greets a new stream subscriber.
type ConnectionEstablished struct {
	Type         string       `json:"type"`
	Message      string       `json:"message"`
	ClientID     string       `json:"client_id"`
	SystemStatus StreamStatus `json:"system_status"`
	Timestamp    string       `json:"timestamp"`
}

// DiscoveredPattern is the pattern body of a discovery event.
type DiscoveredPattern struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Level                int      `json:"level"`
	PredictedSuccessRate float64  `json:"predicted_success_rate"`
	ConfidenceScore      float64  `json:"confidence_score"`
	CreatorAI            string   `json:"creator_ai"`
	AtomicParameters     []string `json:"atomic_parameters"`
	DiscoveryMethod      string   `json:"discovery_method"`
}

// PatternDiscovered announces a new pattern.
type PatternDiscovered struct {
	Type        string            `json:"type"`
	Pattern     DiscoveredPattern `json:"pattern"`
	Timestamp   string            `json:"timestamp"`
	MagicFactor string            `json:"magic_factor"`
}

// EnginePerformance is the body of an ai_performance_update.
type EnginePerformance struct {
	DiscoveryRate        float64 `json:"discovery_rate"`
	SuccessRateTrend     float64 `json:"success_rate_trend"`
	PatternsCreatedToday int     `json:"patterns_created_today"`
	InnovationScore      float64 `json:"innovation_score"`
	ResourceUtilization  float64 `json:"resource_utilization"`
}

// AIPerformanceUpdate reports engine throughput.
type AIPerformanceUpdate struct {
	Type        string            `json:"type"`
	AIEngine    string            `json:"ai_engine"`
	Performance EnginePerformance `json:"performance"`
	Timestamp   string            `json:"timestamp"`
}

// HealthPerformance holds backend latency and load figures.
type HealthPerformance struct {
	ResponseTimeAvg float64 `json:"response_time_avg"`
	ThroughputRPS   float64 `json:"throughput_rps"`
	MemoryUsage     float64 `json:"memory_usage"`
}

// HealthReport is the body of a system_health_update.
type HealthReport struct {
	OverallScore float64           `json:"overall_score"`
	Components   map[string]string `json:"components"`
	Performance  HealthPerformance `json:"performance"`
	Uptime       string            `json:"uptime"`
}

// SystemHealthUpdate is the periodic backend health broadcast.
type SystemHealthUpdate struct {
	Type      string       `json:"type"`
	Health    HealthReport `json:"health"`
	Timestamp string       `json:"timestamp"`
}

// OutgoingText is a free-form message typed by the user.
type OutgoingText struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Ping asks the backend for a pong with latency.
type Ping struct {
	Type      string  `json:"type"`
	Timestamp float64 `json:"timestamp"`
}
