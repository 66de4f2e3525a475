package config

// Default values for bot configuration.
const (
	DefaultMessageDelayMS = 100
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultHTTPAddr       = "127.0.0.1:8080"
)
