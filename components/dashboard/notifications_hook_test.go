package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifications struct {
	channels []string
	events   []DashboardEvent
	err      error
}

func (f *fakeNotifications) PublishDashboardEvent(_ context.Context, channel string, event DashboardEvent) error {
	f.channels = append(f.channels, channel)
	f.events = append(f.events, event)
	return f.err
}

func TestNotificationsHookForwards(t *testing.T) {
	client := &fakeNotifications{}
	hook := &NotificationsHook{Client: client, Channel: "insights"}
	require.NoError(t, hook.DashboardUpdated(context.Background(), DashboardEvent{Kind: EventSessionMounted}))
	assert.Equal(t, []string{"insights"}, client.channels)
}

func TestNotificationsHookFiltersKinds(t *testing.T) {
	client := &fakeNotifications{}
	hook := &NotificationsHook{Client: client, Channel: "insights", Kinds: []string{EventFetchFailed}}
	ctx := context.Background()
	require.NoError(t, hook.DashboardUpdated(ctx, DashboardEvent{Kind: EventMetricsUpdated}))
	require.NoError(t, hook.DashboardUpdated(ctx, DashboardEvent{Kind: EventFetchFailed}))
	require.Len(t, client.events, 1)
	assert.Equal(t, EventFetchFailed, client.events[0].Kind)
}

func TestNotificationsHookNilClient(t *testing.T) {
	var hook *NotificationsHook
	assert.NoError(t, hook.DashboardUpdated(context.Background(), DashboardEvent{}))
	assert.NoError(t, (&NotificationsHook{}).DashboardUpdated(context.Background(), DashboardEvent{}))
}

func TestMultiHookCallsEveryHook(t *testing.T) {
	first := &recordingHook{err: errors.New("first")}
	second := &recordingHook{err: errors.New("second")}
	hooks := MultiHook{first, nil, second}

	err := hooks.DashboardUpdated(context.Background(), DashboardEvent{Kind: EventSessionMounted})
	assert.EqualError(t, err, "first")
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
}

func TestLogTelemetryWritesDebugEntry(t *testing.T) {
	logger, logs := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	NewLogTelemetry(logger).Record(context.Background(), "dashboard.export", map[string]any{"table": "sales"})

	entry := logs.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "dashboard.export", entry.Data["event"])
	assert.Equal(t, "sales", entry.Data["table"])
}
