package domain

import "time"

// MonitorType enumerates the supported probe kinds.
type MonitorType string

const (
	MonitorHTTP  MonitorType = "http"
	MonitorHTTPS MonitorType = "https"
	MonitorTCP   MonitorType = "tcp"
	MonitorDNS   MonitorType = "dns"
)

// Default probe settings applied when a monitor leaves a field unset.
const (
	DefaultTimeoutSeconds  = 30
	DefaultExpectedStatus  = 200
	DefaultIntervalSeconds = 60
	DefaultDNSRecordType   = "A"
)

// Monitor describes a user-defined endpoint to probe. Target fields are
// populated according to Type: URL for http/https, Hostname+Port for tcp,
// Hostname+DNSRecordType for dns.
type Monitor struct {
	ID               string
	UserID           string
	Name             string
	Type             MonitorType
	URL              string
	Hostname         string
	Port             int
	Method           string
	ExpectedStatus   int
	DNSRecordType    string
	IntervalSeconds  int
	TimeoutSeconds   int
	Retries          int
	Active           bool
	MaintenanceStart *time.Time
	MaintenanceEnd   *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// InMaintenance reports whether now falls inside the configured maintenance
// window [start, end). Monitors without both bounds set are never in
// maintenance.
func (m Monitor) InMaintenance(now time.Time) bool {
	if m.MaintenanceStart == nil || m.MaintenanceEnd == nil {
		return false
	}
	return !now.Before(*m.MaintenanceStart) && now.Before(*m.MaintenanceEnd)
}

// Interval returns the check interval as a duration, applying the default
// when unset.
func (m Monitor) Interval() time.Duration {
	seconds := m.IntervalSeconds
	if seconds <= 0 {
		seconds = DefaultIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}

// Timeout returns the per-check timeout as a duration, applying the default
// when unset.
func (m Monitor) Timeout() time.Duration {
	seconds := m.TimeoutSeconds
	if seconds <= 0 {
		seconds = DefaultTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}
