package api

import (
	"regexp"
	"sync"
	"time"
)

// RouteMetrics aggregates request counts and timing for one route
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"totalTime"`
	AvgTime     time.Duration `json:"avgTime"`
	MaxTime     time.Duration `json:"maxTime"`
	LastRequest time.Time     `json:"lastRequest"`
}

// MetricsCollector aggregates per-route request metrics. Collection is
// best effort and must never slow a request down.
type MetricsCollector struct {
	mu            sync.RWMutex
	routeMetrics  map[string]*RouteMetrics
	totalRequests int64
	totalErrors   int64
	startedAt     time.Time
}

var globalMetrics *MetricsCollector
var metricsOnce sync.Once

// GetMetrics returns the global metrics collector
func GetMetrics() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = &MetricsCollector{
			routeMetrics: make(map[string]*RouteMetrics),
			startedAt:    time.Now(),
		}
	})
	return globalMetrics
}

// Record folds one finished request into the per-route aggregates
func (mc *MetricsCollector) Record(method, path string, status int, duration time.Duration) {
	key := method + " " + normalizeRoutePath(path)

	mc.mu.Lock()
	defer mc.mu.Unlock()

	m, ok := mc.routeMetrics[key]
	if !ok {
		m = &RouteMetrics{Method: method, Path: normalizeRoutePath(path)}
		mc.routeMetrics[key] = m
	}

	m.Count++
	m.TotalTime += duration
	m.AvgTime = m.TotalTime / time.Duration(m.Count)
	m.LastRequest = time.Now()
	if duration > m.MaxTime {
		m.MaxTime = duration
	}

	mc.totalRequests++
	if status >= 400 {
		m.ErrorCount++
		mc.totalErrors++
	}
}

// GetRouteMetrics returns a copy of the aggregated metrics for all routes
func (mc *MetricsCollector) GetRouteMetrics() map[string]*RouteMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make(map[string]*RouteMetrics, len(mc.routeMetrics))
	for k, v := range mc.routeMetrics {
		m := *v
		result[k] = &m
	}
	return result
}

// GetSummary returns overall summary metrics
func (mc *MetricsCollector) GetSummary() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var errorRate float64
	if mc.totalRequests > 0 {
		errorRate = float64(mc.totalErrors) / float64(mc.totalRequests)
	}

	return map[string]interface{}{
		"totalRequests": mc.totalRequests,
		"totalErrors":   mc.totalErrors,
		"errorRate":     errorRate,
		"routeCount":    len(mc.routeMetrics),
		"since":         mc.startedAt,
	}
}

var objectIDPattern = regexp.MustCompile(`/[0-9a-fA-F]{24}(/|$)`)

// normalizeRoutePath groups dynamic id segments so /campaigns/<oid>/retry and
// /campaigns/<other oid>/retry land in the same bucket
func normalizeRoutePath(path string) string {
	return objectIDPattern.ReplaceAllString(path, "/{id}$1")
}
