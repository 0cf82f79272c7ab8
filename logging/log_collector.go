package logging

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultDiagnosticsTTL is how long captured logs are kept when no TTL is given.
const DefaultDiagnosticsTTL = 30 * time.Minute

// LogEntry represents a single log record with structured data.
type LogEntry struct {
	Time       time.Time      `json:"time"`
	Level      string         `json:"level"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes"`
}

// LogCollector keeps the log records of recent invocations, keyed by
// invocation id. Entries for an invocation expire ttl after its last record.
type LogCollector struct {
	mu   sync.Mutex
	ttl  time.Duration
	logs *cache.Cache
}

// NewLogCollector creates a LogCollector whose entries expire after ttl.
// A non-positive ttl selects DefaultDiagnosticsTTL.
func NewLogCollector(ttl time.Duration) *LogCollector {
	if ttl <= 0 {
		ttl = DefaultDiagnosticsTTL
	}
	return &LogCollector{
		ttl:  ttl,
		logs: cache.New(ttl, 2*ttl),
	}
}

// AddLog appends a log entry for the given invocation.
func (c *LogCollector) AddLog(invocationID string, entry LogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var entries []LogEntry
	if v, ok := c.logs.Get(invocationID); ok {
		entries = v.([]LogEntry)
	}
	c.logs.Set(invocationID, append(entries, entry), c.ttl)
}

// GetLogs returns a copy of the entries recorded for an invocation, or nil
// if there are none or they have expired.
func (c *LogCollector) GetLogs(invocationID string) []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.logs.Get(invocationID)
	if !ok {
		return nil
	}
	logs := v.([]LogEntry)
	result := make([]LogEntry, len(logs))
	copy(result, logs)
	return result
}

// GetAllLogs returns all unexpired logs grouped by invocation id.
func (c *LogCollector) GetAllLogs() map[string][]LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.logs.Items()
	result := make(map[string][]LogEntry, len(items))
	for id, item := range items {
		logs := item.Object.([]LogEntry)
		logsCopy := make([]LogEntry, len(logs))
		copy(logsCopy, logs)
		result[id] = logsCopy
	}
	return result
}

// Clear removes all stored logs.
func (c *LogCollector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logs.Flush()
}
