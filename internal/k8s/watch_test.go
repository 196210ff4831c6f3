package k8s

import (
	"context"
	"testing"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/watch"
	fakeK8s "k8s.io/client-go/kubernetes/fake"
	k8sTesting "k8s.io/client-go/testing"

	"github.com/crn4/kr/internal/domain"
)

func newFakeClient(objects ...runtime.Object) (*Client, *fakeK8s.Clientset) {
	cs := fakeK8s.NewSimpleClientset(objects...)
	return &Client{
		clientset: cs,
		namespace: "default",
		serverURL: "https://fake:6443",
		shell:     "/bin/sh",
	}, cs
}

func recvEvent(t *testing.T, ch <-chan domain.WatchEvent) domain.WatchEvent {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return domain.WatchEvent{}
	}
}

func TestWatchPods_ReceivesAddedEvent(t *testing.T) {
	c, cs := newFakeClient()
	fakeWatcher := watch.NewFake()
	cs.PrependWatchReactor("pods", k8sTesting.DefaultWatchReactor(fakeWatcher, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.WatchPods(ctx, "default", "")
	if err != nil {
		t.Fatalf("WatchPods() error = %v", err)
	}

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "web-1", Namespace: "default", ResourceVersion: "42"},
		Status:     corev1.PodStatus{Phase: corev1.PodRunning},
	}
	go fakeWatcher.Add(pod)

	evt := recvEvent(t, ch)
	if evt.Type != domain.WatchAdded {
		t.Errorf("Type = %q, want %q", evt.Type, domain.WatchAdded)
	}
	if evt.Kind != domain.KindPod {
		t.Errorf("Kind = %q, want %q", evt.Kind, domain.KindPod)
	}
	info, ok := evt.Item.(domain.PodInfo)
	if !ok {
		t.Fatalf("Item is %T, want PodInfo", evt.Item)
	}
	if info.Name != "web-1" || info.GetResourceVersion() != "42" {
		t.Errorf("Item = %+v", info)
	}
}

func TestWatchPods_ReceivesModifiedAndDeleted(t *testing.T) {
	c, cs := newFakeClient()
	fakeWatcher := watch.NewFake()
	cs.PrependWatchReactor("pods", k8sTesting.DefaultWatchReactor(fakeWatcher, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.WatchPods(ctx, "default", "")
	if err != nil {
		t.Fatalf("WatchPods() error = %v", err)
	}

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "web-1", Namespace: "default"},
		Status:     corev1.PodStatus{Phase: corev1.PodFailed},
	}
	go func() {
		fakeWatcher.Modify(pod)
		fakeWatcher.Delete(pod)
	}()

	evt := recvEvent(t, ch)
	if evt.Type != domain.WatchModified {
		t.Errorf("Type = %q, want %q", evt.Type, domain.WatchModified)
	}
	if evt.Item.StatusText() != "Failed" {
		t.Errorf("StatusText() = %q, want %q", evt.Item.StatusText(), "Failed")
	}

	evt = recvEvent(t, ch)
	if evt.Type != domain.WatchDeleted {
		t.Errorf("Type = %q, want %q", evt.Type, domain.WatchDeleted)
	}
}

func TestWatchPods_PassesResumeVersion(t *testing.T) {
	c, cs := newFakeClient()
	fakeWatcher := watch.NewFake()
	var gotVersion string
	cs.PrependWatchReactor("pods", func(action k8sTesting.Action) (bool, watch.Interface, error) {
		gotVersion = action.(k8sTesting.WatchActionImpl).WatchRestrictions.ResourceVersion
		return true, fakeWatcher, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := c.WatchPods(ctx, "default", "8675"); err != nil {
		t.Fatalf("WatchPods() error = %v", err)
	}
	if gotVersion != "8675" {
		t.Errorf("watch resourceVersion = %q, want %q", gotVersion, "8675")
	}
}

func TestWatchPods_ServerErrorIsClassified(t *testing.T) {
	c, cs := newFakeClient()
	fakeWatcher := watch.NewFake()
	cs.PrependWatchReactor("pods", k8sTesting.DefaultWatchReactor(fakeWatcher, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.WatchPods(ctx, "default", "1")
	if err != nil {
		t.Fatalf("WatchPods() error = %v", err)
	}

	go fakeWatcher.Error(&metav1.Status{
		Code:    410,
		Reason:  metav1.StatusReasonExpired,
		Message: "too old resource version: 1 (500)",
	})

	evt := recvEvent(t, ch)
	if evt.Type != domain.WatchError {
		t.Fatalf("Type = %q, want %q", evt.Type, domain.WatchError)
	}
	if !domain.IsStaleCursor(evt.Err) {
		t.Errorf("Err = %v, want a stale cursor classification", evt.Err)
	}
}

func TestWatchPods_ContextCancelClosesChannel(t *testing.T) {
	c, cs := newFakeClient()
	fakeWatcher := watch.NewFake()
	cs.PrependWatchReactor("pods", k8sTesting.DefaultWatchReactor(fakeWatcher, nil))

	ctx, cancel := context.WithCancel(context.Background())

	ch, err := c.WatchPods(ctx, "default", "")
	if err != nil {
		t.Fatalf("WatchPods() error = %v", err)
	}

	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			_, ok = <-ch
		}
		if ok {
			t.Error("channel should be closed after context cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestWatchPods_ChannelClosedWhenWatcherStops(t *testing.T) {
	c, cs := newFakeClient()
	fakeWatcher := watch.NewFake()
	cs.PrependWatchReactor("pods", k8sTesting.DefaultWatchReactor(fakeWatcher, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.WatchPods(ctx, "default", "")
	if err != nil {
		t.Fatalf("WatchPods() error = %v", err)
	}

	fakeWatcher.Stop()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("channel should be closed when the watcher stops")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestWatchDeployments_ReceivesAddedEvent(t *testing.T) {
	c, cs := newFakeClient()
	fakeWatcher := watch.NewFake()
	cs.PrependWatchReactor("deployments", k8sTesting.DefaultWatchReactor(fakeWatcher, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.WatchDeployments(ctx, "default", "")
	if err != nil {
		t.Fatalf("WatchDeployments() error = %v", err)
	}

	replicas := int32(3)
	dep := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "api", Namespace: "default"},
		Spec:       appsv1.DeploymentSpec{Replicas: &replicas},
		Status:     appsv1.DeploymentStatus{ReadyReplicas: 2, AvailableReplicas: 2},
	}
	go fakeWatcher.Add(dep)

	evt := recvEvent(t, ch)
	if evt.Kind != domain.KindDeployment {
		t.Errorf("Kind = %q, want %q", evt.Kind, domain.KindDeployment)
	}
	info, ok := evt.Item.(domain.DeploymentInfo)
	if !ok {
		t.Fatalf("Item is %T, want DeploymentInfo", evt.Item)
	}
	if info.Name != "api" || info.Replicas != 3 || info.Ready != "2/3" {
		t.Errorf("Item = %+v", info)
	}
}

func TestWatchSecrets_ReceivesAddedEvent(t *testing.T) {
	c, cs := newFakeClient()
	fakeWatcher := watch.NewFake()
	cs.PrependWatchReactor("secrets", k8sTesting.DefaultWatchReactor(fakeWatcher, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.WatchSecrets(ctx, "default", "")
	if err != nil {
		t.Fatalf("WatchSecrets() error = %v", err)
	}

	sec := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "db-creds", Namespace: "default"},
		Type:       corev1.SecretTypeOpaque,
		Data:       map[string][]byte{"password": []byte("hunter2")},
	}
	go fakeWatcher.Add(sec)

	evt := recvEvent(t, ch)
	info, ok := evt.Item.(domain.SecretInfo)
	if !ok {
		t.Fatalf("Item is %T, want SecretInfo", evt.Item)
	}
	if info.Name != "db-creds" || info.Keys != 1 {
		t.Errorf("Item = %+v", info)
	}
	if string(info.Data["password"]) != "hunter2" {
		t.Error("secret data should ride along for the decode view")
	}
}

func TestWatchEvents_ReceivesAddedEvent(t *testing.T) {
	c, cs := newFakeClient()
	fakeWatcher := watch.NewFake()
	cs.PrependWatchReactor("events", k8sTesting.DefaultWatchReactor(fakeWatcher, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.WatchEvents(ctx, "default", "")
	if err != nil {
		t.Fatalf("WatchEvents() error = %v", err)
	}

	evt := &corev1.Event{
		ObjectMeta:     metav1.ObjectMeta{Name: "evt-1", Namespace: "default"},
		Type:           "Warning",
		Reason:         "BackOff",
		Message:        "Back-off restarting failed container",
		InvolvedObject: corev1.ObjectReference{Kind: "Pod", Name: "web-1"},
		Count:          12,
	}
	go fakeWatcher.Add(evt)

	got := recvEvent(t, ch)
	info, ok := got.Item.(domain.EventInfo)
	if !ok {
		t.Fatalf("Item is %T, want EventInfo", got.Item)
	}
	if info.Reason != "BackOff" || info.Count != 12 {
		t.Errorf("Item = %+v", info)
	}
	if info.Object != "Pod/web-1" {
		t.Errorf("Object = %q, want %q", info.Object, "Pod/web-1")
	}
}
