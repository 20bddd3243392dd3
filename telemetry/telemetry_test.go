package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

// fakeClock advances by step every time it is read.
func fakeClock(step time.Duration) func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestFromContextReturnsNoOpWhenMissing(t *testing.T) {
	collector := FromContext(context.Background())
	assert.NotZero(t, collector)

	_, ok := collector.(noOpCollector)
	assert.True(t, ok, "expected noOpCollector, got %T", collector)

	timer := StartTimer(context.Background(), "ignored")
	timer.Child("child").End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Equal(t, 0, buf.Len())
}

func TestWithCollector(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)

	got, ok := FromContext(ctx).(*TimingCollector)
	assert.True(t, ok)
	assert.True(t, got == collector)
}

func TestTimingCollectorNesting(t *testing.T) {
	collector := NewTimingCollector()
	collector.now = fakeClock(time.Millisecond)
	ctx := WithCollector(context.Background(), collector)

	run := StartTimer(ctx, "run input.txt")
	load := StartTimer(ctx, "load input.txt")
	load.End()
	interpret := StartTimer(ctx, "interpret 3 commands")
	interpret.Child("BALANCE MARCH").End()
	interpret.End()
	run.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, 4, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "run input.txt: "))
	assert.True(t, strings.HasPrefix(lines[1], "├─ load input.txt: 1ms"))
	assert.True(t, strings.HasPrefix(lines[2], "└─ interpret 3 commands: "))
	assert.True(t, strings.HasPrefix(lines[3], "   └─ BALANCE MARCH: 1ms"))
}

func TestTimingCollectorEndTwice(t *testing.T) {
	collector := NewTimingCollector()
	collector.now = fakeClock(time.Millisecond)

	timer := collector.Start("once")
	timer.End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Equal(t, "once: 1ms\n", buf.String())
}

func TestTimingCollectorEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	NewTimingCollector().Report(&buf, nil)
	assert.Equal(t, 0, buf.Len())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{0, "0ms"},
		{1 * time.Millisecond, "1ms"},
		{999 * time.Millisecond, "999ms"},
		{1 * time.Second, "1.00s"},
		{1500 * time.Millisecond, "1.50s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.duration))
	}
}
