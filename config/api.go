package config

// APIConfig enables the HTTP API when Addr is set.
type APIConfig struct {
	Addr string `json:"addr"`
	// Token protects /api/trips with a bearer token when non-empty.
	Token string `json:"token"`
	// TripLog is the trip log served by /api/trips, usually the path of a
	// triplog metrics sink.
	TripLog string `json:"trip_log"`
}

// Validate checks mandatory fields.
func (c APIConfig) Validate() error {
	if c.TripLog != "" && c.Addr == "" {
		return invalid("api.trip_log requires api.addr")
	}
	return nil
}
