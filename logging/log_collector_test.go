package logging

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCollector_AddAndGet(t *testing.T) {
	c := NewLogCollector(time.Minute)

	c.AddLog("inv-1", LogEntry{Level: "INFO", Message: "operator resolved"})
	c.AddLog("inv-1", LogEntry{Level: "INFO", Message: "activity type resolved"})
	c.AddLog("inv-2", LogEntry{Level: "ERROR", Message: "write failed"})

	logs := c.GetLogs("inv-1")
	require.Len(t, logs, 2)
	assert.Equal(t, "operator resolved", logs[0].Message)
	assert.Equal(t, "activity type resolved", logs[1].Message)

	assert.Len(t, c.GetLogs("inv-2"), 1)
	assert.Nil(t, c.GetLogs("missing"))
}

func TestLogCollector_GetLogsReturnsCopy(t *testing.T) {
	c := NewLogCollector(time.Minute)
	c.AddLog("inv", LogEntry{Message: "original"})

	logs := c.GetLogs("inv")
	logs[0].Message = "modified"

	assert.Equal(t, "original", c.GetLogs("inv")[0].Message)
}

func TestLogCollector_GetAllLogs(t *testing.T) {
	c := NewLogCollector(time.Minute)
	c.AddLog("a", LogEntry{Message: "one"})
	c.AddLog("b", LogEntry{Message: "two"})
	c.AddLog("b", LogEntry{Message: "three"})

	all := c.GetAllLogs()
	require.Len(t, all, 2)
	assert.Len(t, all["a"], 1)
	assert.Len(t, all["b"], 2)

	all["a"][0].Message = "changed"
	assert.Equal(t, "one", c.GetLogs("a")[0].Message)
}

func TestLogCollector_Expiry(t *testing.T) {
	c := NewLogCollector(20 * time.Millisecond)
	c.AddLog("inv", LogEntry{Message: "short lived"})
	require.Len(t, c.GetLogs("inv"), 1)

	assert.Eventually(t, func() bool {
		return c.GetLogs("inv") == nil
	}, time.Second, 10*time.Millisecond)
	assert.Empty(t, c.GetAllLogs())
}

func TestLogCollector_DefaultTTL(t *testing.T) {
	c := NewLogCollector(0)
	assert.Equal(t, DefaultDiagnosticsTTL, c.ttl)
}

func TestLogCollector_Clear(t *testing.T) {
	c := NewLogCollector(time.Minute)
	c.AddLog("inv", LogEntry{Message: "x"})

	c.Clear()

	assert.Nil(t, c.GetLogs("inv"))
	assert.Empty(t, c.GetAllLogs())
}

func TestLogCollector_ConcurrentAdds(t *testing.T) {
	c := NewLogCollector(time.Minute)

	const workers, perWorker = 10, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				c.AddLog("shared", LogEntry{Message: fmt.Sprintf("%d-%d", w, i)})
			}
		}(w)
	}
	wg.Wait()

	assert.Len(t, c.GetLogs("shared"), workers*perWorker)
}
