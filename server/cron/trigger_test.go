package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noop(context.Context) error { return nil }

func TestNewCronTrigger(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "every fifteen minutes", spec: "*/15 * * * *"},
		{name: "daily at 2am", spec: "0 2 * * *"},
		{name: "every minute", spec: "* * * * *"},
		{name: "empty", spec: "", wantErr: true},
		{name: "wrong format", spec: "not a cron spec", wantErr: true},
		{name: "too few fields", spec: "0 2 *", wantErr: true},
		{name: "seconds field not accepted", spec: "0 0 2 * * *", wantErr: true},
		{name: "invalid value", spec: "60 2 * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger, err := NewCronTrigger(tt.spec, noop, quietLogger())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCronSpec)
				assert.Nil(t, trigger)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.spec, trigger.Spec())
		})
	}
}

func TestNewCronTrigger_RequiresJob(t *testing.T) {
	_, err := NewCronTrigger("* * * * *", nil, quietLogger())
	assert.Error(t, err)
}

func TestCronTrigger_NextRun(t *testing.T) {
	trigger, err := NewCronTrigger("*/15 * * * *", noop, quietLogger())
	require.NoError(t, err)
	trigger.now = func() time.Time { return time.Date(2026, 5, 1, 9, 7, 30, 0, time.UTC) }

	assert.Equal(t, time.Date(2026, 5, 1, 9, 15, 0, 0, time.UTC), trigger.NextRun())
}

func TestCronTrigger_Execute(t *testing.T) {
	var runs atomic.Int32
	trigger, err := NewCronTrigger("* * * * *", func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("crm unavailable")
	}, quietLogger())
	require.NoError(t, err)

	trigger.execute(context.Background())
	trigger.execute(context.Background())
	assert.Equal(t, int32(2), runs.Load())
}

func TestCronTrigger_RunsOnSchedule(t *testing.T) {
	ran := make(chan struct{}, 1)
	trigger, err := NewCronTrigger("* * * * *", func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}, quietLogger())
	require.NoError(t, err)

	// Pretend it is shortly before the next minute.
	base := time.Now()
	offset := base.Truncate(time.Minute).Add(time.Minute - 100*time.Millisecond).Sub(base)
	trigger.now = func() time.Time { return time.Now().Add(offset) }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trigger.Start(ctx)

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestCronTrigger_StopsOnCancel(t *testing.T) {
	var runs atomic.Int32
	trigger, err := NewCronTrigger("0 2 * * *", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		trigger.loop(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after cancel")
	}
	assert.Zero(t, runs.Load())
}
