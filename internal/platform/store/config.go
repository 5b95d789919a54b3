package store

import "time"

// Config selects which history backends the api opens
// both are off unless SERVICE_PGSQL_ENABLED / SERVICE_CLICKHOUSE_ENABLED say otherwise
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures the detections history database
type PGConfig struct {
	Enabled   bool
	URL       string
	MaxConns  int32
	LogSQL    bool
	SlowQuery time.Duration

	// startup waits for the database; zero picks 20 pings of up to 3s each
	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures the detection_events sink
type CHConfig struct {
	Enabled bool
	URL     string

	// ClientName and ClientTag show up in system.query_log client info
	ClientName string
	ClientTag  string
}
