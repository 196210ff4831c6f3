package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/crn4/kr/internal/domain"
)

func (c *Client) ListEvents(ctx context.Context, namespace string) ([]domain.EventInfo, string, error) {
	ctx, cancel := requestContext(ctx)
	defer cancel()

	var events []domain.EventInfo
	var version string
	opts := metav1.ListOptions{Limit: listPageLimit}
	for {
		eventList, err := c.clientset.CoreV1().Events(namespace).List(ctx, opts)
		if err != nil {
			return nil, "", classifyError(err, c.serverURL)
		}
		for _, evt := range eventList.Items {
			events = append(events, eventToInfo(evt))
		}
		if version == "" {
			version = eventList.ResourceVersion
		}
		if eventList.Continue == "" {
			return events, version, nil
		}
		opts.Continue = eventList.Continue
	}
}

func (c *Client) WatchEvents(ctx context.Context, namespace, fromVersion string) (<-chan domain.WatchEvent, error) {
	watcher, err := c.clientset.CoreV1().Events(namespace).Watch(ctx, metav1.ListOptions{
		ResourceVersion: fromVersion,
	})
	if err != nil {
		return nil, classifyError(err, c.serverURL)
	}
	return c.relayWatch(ctx, watcher, domain.KindEvent, func(obj runtime.Object) (domain.Resource, bool) {
		evt, ok := obj.(*corev1.Event)
		if !ok {
			return nil, false
		}
		return eventToInfo(*evt), true
	}), nil
}

func eventToInfo(evt corev1.Event) domain.EventInfo {
	obj := fmt.Sprintf("%s/%s", evt.InvolvedObject.Kind, evt.InvolvedObject.Name)

	age := ""
	if !evt.LastTimestamp.IsZero() {
		age = formatAge(evt.LastTimestamp.Time)
	} else if !evt.EventTime.IsZero() {
		age = formatAge(evt.EventTime.Time)
	}

	createdAt := evt.LastTimestamp.Time
	if createdAt.IsZero() {
		createdAt = evt.EventTime.Time
	}

	return domain.EventInfo{
		Name:            evt.Name,
		Namespace:       evt.Namespace,
		Type:            evt.Type,
		Reason:          evt.Reason,
		Object:          obj,
		Message:         evt.Message,
		Count:           evt.Count,
		Age:             age,
		CreatedAt:       createdAt,
		ResourceVersion: evt.ResourceVersion,
	}
}
