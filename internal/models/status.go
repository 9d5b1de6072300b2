package models

// SyncStatus describes the backend's last scrape run.
type SyncStatus struct {
	LastRunTime  string `json:"lastRunTime"`
	Status       string `json:"status"`
	ProductCount int    `json:"productCount"`
	IsHealthy    bool   `json:"isHealthy"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// SystemStatus is the payload of GET /status.
type SystemStatus struct {
	Sync       SyncStatus `json:"sync"`
	ServerTime string     `json:"serverTime"`
}
