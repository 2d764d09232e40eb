package types

// StatusResponse is the JSON body of GET /v1/status.
type StatusResponse struct {
	OK             bool   `json:"ok"`
	Known          bool   `json:"known"`
	PowerResumedAt string `json:"power_resumed_at,omitempty"`
	OnForSeconds   int64  `json:"on_for_seconds"`
	OnFor          string `json:"on_for"`
	ServerTime     string `json:"server_time"`
}

// HealthResponse is the JSON body of GET /healthz.
type HealthResponse struct {
	OK bool `json:"ok"`
}
