package domain

import "time"

// HourlyStat stores the rollup of a monitor's heartbeats for one hour bucket,
// keyed by (MonitorID, BucketStart). Upserts replace values wholesale so the
// aggregation can be re-run for the same bucket.
type HourlyStat struct {
	MonitorID         string
	BucketStart       time.Time
	AvgResponseTimeMS *int64
	MinResponseTimeMS *int64
	MaxResponseTimeMS *int64
	UptimePercent     int
	CheckCount        int64
	UpCount           int64
	DownCount         int64
}
