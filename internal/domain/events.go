package domain

// WatchEventType mirrors the server change stream operations plus the
// synthetic types the watch manager produces itself.
type WatchEventType string

const (
	WatchAdded    WatchEventType = "ADDED"
	WatchModified WatchEventType = "MODIFIED"
	WatchDeleted  WatchEventType = "DELETED"
	// WatchSynced carries the complete item set after the initial list or a
	// relist. The store applies it as a reconciling full replace.
	WatchSynced WatchEventType = "SYNCED"
	// WatchState signals a subscription state change and carries no items.
	WatchState WatchEventType = "STATE"
	// WatchError is emitted by gateway adapters when the server stream
	// reports a failure. The watch manager translates it and never forwards
	// it to the store.
	WatchError WatchEventType = "ERROR"
)

// SubscriptionState tracks the health of one (kind, namespace) subscription.
type SubscriptionState int

const (
	StateConnecting SubscriptionState = iota
	StateStreaming
	StateBackoff
	StateForbidden
	StateClosed
)

func (s SubscriptionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateBackoff:
		return "backoff"
	case StateForbidden:
		return "forbidden"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// WatchEvent is the normalized unit flowing from the watch manager into the
// store. Epoch identifies the subscription generation that produced the
// event so consumers can drop leftovers from a torn-down scope.
type WatchEvent struct {
	Epoch int64
	Kind  Kind
	Type  WatchEventType

	// Item is set for ADDED, MODIFIED and DELETED.
	Item Resource
	// Items and Version (the collection resourceVersion the listing
	// reported) are set for SYNCED.
	Items   []Resource
	Version string
	// State and Err are set for STATE.
	State SubscriptionState
	Err   error
}
