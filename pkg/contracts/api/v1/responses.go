package api

import (
	"time"

	"orderpulse/pkg/contracts/domain"
)

// TableResponse wraps a single aggregate table with its window and filter policy
type TableResponse struct {
	Table       string             `json:"table"`
	Window      domain.DateWindow  `json:"window"`
	FilterScope domain.FilterScope `json:"filter_scope"`
	Data        interface{}        `json:"data"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// BoundsResponse reports the dataset bounds and size
type BoundsResponse struct {
	Window        domain.DateWindow `json:"window"`
	RecencyAnchor domain.Date       `json:"recency_anchor"`
	Orders        int               `json:"orders"`
	Customers     int               `json:"customers"`
	Categories    int               `json:"categories"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// VersionResponse carries build information
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}
