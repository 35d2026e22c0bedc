package dashboard

import "context"

// NotificationsClient defines the minimal interface needed from an external publisher
// (the MQTT client in pkg/mqttpub, for instance).
type NotificationsClient interface {
	PublishDashboardEvent(ctx context.Context, channel string, event DashboardEvent) error
}

// NotificationsHook forwards dashboard events to an external notifications client.
// Kinds, when set, limits forwarding to the listed event kinds.
type NotificationsHook struct {
	Client  NotificationsClient
	Channel string
	Kinds   []string
}

// DashboardUpdated publishes events to the configured notifications client.
func (h *NotificationsHook) DashboardUpdated(ctx context.Context, event DashboardEvent) error {
	if h == nil || h.Client == nil {
		return nil
	}
	if len(h.Kinds) > 0 && !containsString(h.Kinds, event.Kind) {
		return nil
	}
	return h.Client.PublishDashboardEvent(ctx, h.Channel, event)
}

// MultiHook fans one event out to several hooks, returning the first error after
// every hook has been called.
type MultiHook []RefreshHook

// DashboardUpdated implements RefreshHook.
func (m MultiHook) DashboardUpdated(ctx context.Context, event DashboardEvent) error {
	var first error
	for _, hook := range m {
		if hook == nil {
			continue
		}
		if err := hook.DashboardUpdated(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
