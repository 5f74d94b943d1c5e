package scheduler

import (
	"math"
	"sort"
	"time"

	"github.com/heybeacon/beacon/internal/domain"
)

// hourBucket returns the start of the hour immediately preceding reference.
func hourBucket(reference time.Time) time.Time {
	return reference.UTC().Truncate(time.Hour).Add(-time.Hour)
}

type hourlyAccumulator struct {
	checkCount   int64
	upCount      int64
	downCount    int64
	latencySum   int64
	latencyCount int64
	latencyMin   int64
	latencyMax   int64
}

func (a *hourlyAccumulator) add(hb domain.Heartbeat) {
	a.checkCount++
	if hb.Status {
		a.upCount++
	} else {
		a.downCount++
	}
	if hb.ResponseTimeMS == nil {
		return
	}
	latency := *hb.ResponseTimeMS
	if a.latencyCount == 0 || latency < a.latencyMin {
		a.latencyMin = latency
	}
	if a.latencyCount == 0 || latency > a.latencyMax {
		a.latencyMax = latency
	}
	a.latencySum += latency
	a.latencyCount++
}

func (a *hourlyAccumulator) toStat(monitorID string, bucketStart time.Time) domain.HourlyStat {
	stat := domain.HourlyStat{
		MonitorID:   monitorID,
		BucketStart: bucketStart,
		CheckCount:  a.checkCount,
		UpCount:     a.upCount,
		DownCount:   a.downCount,
	}
	if a.checkCount > 0 {
		stat.UptimePercent = int(math.Round(float64(a.upCount) / float64(a.checkCount) * 100))
	}
	if a.latencyCount > 0 {
		avg := int64(math.Round(float64(a.latencySum) / float64(a.latencyCount)))
		min := a.latencyMin
		max := a.latencyMax
		stat.AvgResponseTimeMS = &avg
		stat.MinResponseTimeMS = &min
		stat.MaxResponseTimeMS = &max
	}
	return stat
}

// buildHourlyStats groups the bucket's heartbeats by monitor and computes
// the rollup rows. Heartbeats without a response time count toward check and
// status totals but are excluded from latency figures.
func buildHourlyStats(beats []domain.Heartbeat, bucketStart time.Time) []domain.HourlyStat {
	if len(beats) == 0 {
		return nil
	}
	byMonitor := make(map[string]*hourlyAccumulator)
	for _, hb := range beats {
		acc := byMonitor[hb.MonitorID]
		if acc == nil {
			acc = &hourlyAccumulator{}
			byMonitor[hb.MonitorID] = acc
		}
		acc.add(hb)
	}

	stats := make([]domain.HourlyStat, 0, len(byMonitor))
	for monitorID, acc := range byMonitor {
		stats = append(stats, acc.toStat(monitorID, bucketStart))
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].MonitorID < stats[j].MonitorID })
	return stats
}
