package k8s

import (
	"context"

	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/watch"

	"github.com/crn4/kr/internal/domain"
)

// relayWatch forwards server watch events onto a domain channel until ctx
// is cancelled or the server closes the stream. Server-side failures
// arrive as ERROR events with a classified error; the channel closes on a
// clean end of stream.
func (c *Client) relayWatch(ctx context.Context, watcher watch.Interface, kind domain.Kind, convert func(runtime.Object) (domain.Resource, bool)) <-chan domain.WatchEvent {
	ch := make(chan domain.WatchEvent)
	go func() {
		defer close(ch)
		defer watcher.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.ResultChan():
				if !ok {
					return
				}
				out, ok := c.translate(event, kind, convert)
				if !ok {
					continue
				}
				select {
				case ch <- out:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch
}

func (c *Client) translate(event watch.Event, kind domain.Kind, convert func(runtime.Object) (domain.Resource, bool)) (domain.WatchEvent, bool) {
	switch event.Type {
	case watch.Error:
		err := k8serrors.FromObject(event.Object)
		return domain.WatchEvent{
			Kind: kind,
			Type: domain.WatchError,
			Err:  classifyError(err, c.serverURL),
		}, true
	case watch.Bookmark:
		return domain.WatchEvent{}, false
	}

	item, ok := convert(event.Object)
	if !ok {
		return domain.WatchEvent{}, false
	}
	return domain.WatchEvent{
		Kind: kind,
		Type: domain.WatchEventType(event.Type),
		Item: item,
	}, true
}
