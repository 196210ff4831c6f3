package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/crn4/kr/internal/domain"
)

const (
	defaultBackoffBase = 250 * time.Millisecond
	defaultBackoffMax  = 2 * time.Second
)

// Manager owns one long-lived subscription per (kind, namespace) pair and
// funnels every normalized event into a single fan-in channel. It never
// touches the store; the event loop applies what it reads from Events.
type Manager struct {
	gateway domain.KubeGateway
	events  chan domain.WatchEvent
	base    time.Duration
	max     time.Duration
}

// NewManager builds a manager with the given backoff bounds; zero values
// pick the defaults.
func NewManager(gateway domain.KubeGateway, base, max time.Duration) *Manager {
	if base <= 0 {
		base = defaultBackoffBase
	}
	if max <= 0 {
		max = defaultBackoffMax
	}
	return &Manager{
		gateway: gateway,
		events:  make(chan domain.WatchEvent, 64),
		base:    base,
		max:     max,
	}
}

// Events is the fan-in channel all subscriptions emit into.
func (m *Manager) Events() <-chan domain.WatchEvent {
	return m.events
}

// Subscription is one live (kind, namespace) watch. Stop cancels the
// underlying stream promptly; Done closes once teardown finished. Late
// events are tagged with Epoch so consumers can discard them even if
// cancellation races.
type Subscription struct {
	Kind      domain.Kind
	Namespace string
	Epoch     int64
	cancel    context.CancelFunc
	done      chan struct{}
}

func (s *Subscription) Stop()                 { s.cancel() }
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Subscribe starts the list+watch loop for one (kind, namespace) pair.
// Every event it produces carries epoch.
func (m *Manager) Subscribe(ctx context.Context, kind domain.Kind, namespace string, epoch int64) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		Kind:      kind,
		Namespace: namespace,
		Epoch:     epoch,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go m.run(ctx, sub)
	return sub
}

// run performs the initial list (seeding the cursor), then watches from
// that cursor, resuming across stream drops. Permission errors are
// terminal until the caller re-subscribes; an expired cursor triggers a
// transparent relist; everything else backs off and retries.
func (m *Manager) run(ctx context.Context, sub *Subscription) {
	defer close(sub.done)
	backoff := m.base

listLoop:
	for {
		if !m.emit(ctx, m.stateEvent(sub, domain.StateConnecting, nil)) {
			return
		}
		items, cursor, err := m.list(ctx, sub)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if domain.IsForbidden(err) {
				slog.Warn("watch forbidden", "kind", sub.Kind, "namespace", sub.Namespace)
				m.emit(ctx, m.stateEvent(sub, domain.StateForbidden, err))
				return
			}
			if domain.TypeOf(err) == domain.ErrValidation {
				m.emit(ctx, m.stateEvent(sub, domain.StateClosed, err))
				return
			}
			m.emit(ctx, m.stateEvent(sub, domain.StateBackoff, err))
			if !sleepBackoff(ctx, &backoff, m.max) {
				return
			}
			continue
		}
		backoff = m.base
		if !m.emit(ctx, domain.WatchEvent{
			Epoch:   sub.Epoch,
			Kind:    sub.Kind,
			Type:    domain.WatchSynced,
			Items:   items,
			Version: cursor,
		}) {
			return
		}

		for {
			if !m.emit(ctx, m.stateEvent(sub, domain.StateStreaming, nil)) {
				return
			}
			last, err := m.consume(ctx, sub, cursor)
			if last != "" {
				cursor = last
			}
			if ctx.Err() != nil {
				return
			}
			switch {
			case err == nil:
				// Server closed the stream; resume from the cursor.
				continue
			case domain.IsForbidden(err):
				slog.Warn("watch forbidden", "kind", sub.Kind, "namespace", sub.Namespace)
				m.emit(ctx, m.stateEvent(sub, domain.StateForbidden, err))
				return
			case domain.IsStaleCursor(err):
				slog.Debug("watch cursor expired, relisting", "kind", sub.Kind, "namespace", sub.Namespace)
				continue listLoop
			default:
				slog.Debug("watch stream failed", "kind", sub.Kind, "namespace", sub.Namespace, "error", err)
				m.emit(ctx, m.stateEvent(sub, domain.StateBackoff, err))
				if !sleepBackoff(ctx, &backoff, m.max) {
					return
				}
			}
		}
	}
}

// consume forwards stream events until it ends, returning the last
// resourceVersion seen so the caller can resume without a relist.
func (m *Manager) consume(ctx context.Context, sub *Subscription, fromVersion string) (string, error) {
	ch, err := m.watch(ctx, sub, fromVersion)
	if err != nil {
		return "", err
	}
	last := ""
	for {
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				return last, nil
			}
			if ev.Type == domain.WatchError {
				return last, ev.Err
			}
			if ev.Item != nil {
				if rv := ev.Item.GetResourceVersion(); rv != "" {
					last = rv
				}
			}
			ev.Epoch = sub.Epoch
			ev.Kind = sub.Kind
			if !m.emit(ctx, ev) {
				return last, ctx.Err()
			}
		}
	}
}

func (m *Manager) list(ctx context.Context, sub *Subscription) ([]domain.Resource, string, error) {
	switch sub.Kind {
	case domain.KindPod:
		pods, rv, err := m.gateway.ListPods(ctx, sub.Namespace)
		return asResources(pods), rv, err
	case domain.KindDeployment:
		deps, rv, err := m.gateway.ListDeployments(ctx, sub.Namespace)
		return asResources(deps), rv, err
	case domain.KindSecret:
		secrets, rv, err := m.gateway.ListSecrets(ctx, sub.Namespace)
		return asResources(secrets), rv, err
	case domain.KindEvent:
		events, rv, err := m.gateway.ListEvents(ctx, sub.Namespace)
		return asResources(events), rv, err
	default:
		return nil, "", &domain.APIError{Type: domain.ErrValidation, Message: "kind is not watchable: " + string(sub.Kind)}
	}
}

func (m *Manager) watch(ctx context.Context, sub *Subscription, fromVersion string) (<-chan domain.WatchEvent, error) {
	switch sub.Kind {
	case domain.KindPod:
		return m.gateway.WatchPods(ctx, sub.Namespace, fromVersion)
	case domain.KindDeployment:
		return m.gateway.WatchDeployments(ctx, sub.Namespace, fromVersion)
	case domain.KindSecret:
		return m.gateway.WatchSecrets(ctx, sub.Namespace, fromVersion)
	case domain.KindEvent:
		return m.gateway.WatchEvents(ctx, sub.Namespace, fromVersion)
	default:
		return nil, &domain.APIError{Type: domain.ErrValidation, Message: "kind is not watchable: " + string(sub.Kind)}
	}
}

func (m *Manager) stateEvent(sub *Subscription, state domain.SubscriptionState, err error) domain.WatchEvent {
	return domain.WatchEvent{
		Epoch: sub.Epoch,
		Kind:  sub.Kind,
		Type:  domain.WatchState,
		State: state,
		Err:   err,
	}
}

// emit delivers ev unless the subscription is being torn down.
func (m *Manager) emit(ctx context.Context, ev domain.WatchEvent) bool {
	select {
	case m.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func sleepBackoff(ctx context.Context, backoff *time.Duration, max time.Duration) bool {
	t := time.NewTimer(*backoff)
	defer t.Stop()
	*backoff *= 2
	if *backoff > max {
		*backoff = max
	}
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func asResources[T domain.Resource](items []T) []domain.Resource {
	out := make([]domain.Resource, len(items))
	for i := range items {
		out[i] = items[i]
	}
	return out
}
