package config

// Application info
const (
	AppName = "orderpulse"
)

// Build information, set with -ldflags "-X orderpulse/internal/config.Version=..."
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Data source formats
const (
	DataFormatCSV      = "csv"
	DataFormatXLSX     = "xlsx"
	DataFormatPostgres = "postgres"
)
