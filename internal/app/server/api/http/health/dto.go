package health

const (
	StatusOK   = "OK"
	StatusDown = "DOWN"
)

type Output struct {
	Body HealthResponse
}

type HealthResponse struct {
	Status string `json:"status" example:"OK" doc:"Overall status"`
	// Checks is omitted by the liveness probe.
	Checks map[string]string `json:"checks,omitempty" doc:"Status per dependency"`
}
