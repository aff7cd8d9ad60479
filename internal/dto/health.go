package dto

const (
	HealthStatusOK    = "ok"
	HealthStatusError = "error"

	IndicatorUp   = "up"
	IndicatorDown = "down"
)

type IndicatorStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type HealthResult struct {
	Status  string                     `json:"status"`
	Info    map[string]IndicatorStatus `json:"info"`
	Error   map[string]IndicatorStatus `json:"error"`
	Details map[string]IndicatorStatus `json:"details"`
}

func (h HealthResult) IsHealthy() bool {
	return h.Status == HealthStatusOK
}
