package k8s

import (
	"context"
	"fmt"
	"io"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/crn4/kr/internal/domain"
)

func (c *Client) ListPods(ctx context.Context, namespace string) ([]domain.PodInfo, string, error) {
	ctx, cancel := requestContext(ctx)
	defer cancel()

	var pods []domain.PodInfo
	var version string
	opts := metav1.ListOptions{Limit: listPageLimit}
	for {
		podList, err := c.clientset.CoreV1().Pods(namespace).List(ctx, opts)
		if err != nil {
			return nil, "", classifyError(err, c.serverURL)
		}
		for _, pod := range podList.Items {
			pods = append(pods, podToPodInfo(pod))
		}
		if version == "" {
			version = podList.ResourceVersion
		}
		if podList.Continue == "" {
			return pods, version, nil
		}
		opts.Continue = podList.Continue
	}
}

func (c *Client) WatchPods(ctx context.Context, namespace, fromVersion string) (<-chan domain.WatchEvent, error) {
	watcher, err := c.clientset.CoreV1().Pods(namespace).Watch(ctx, metav1.ListOptions{
		ResourceVersion: fromVersion,
	})
	if err != nil {
		return nil, classifyError(err, c.serverURL)
	}
	return c.relayWatch(ctx, watcher, domain.KindPod, func(obj runtime.Object) (domain.Resource, bool) {
		pod, ok := obj.(*corev1.Pod)
		if !ok {
			return nil, false
		}
		return podToPodInfo(*pod), true
	}), nil
}

func (c *Client) DeletePod(ctx context.Context, namespace, name string) error {
	ctx, cancel := requestContext(ctx)
	defer cancel()

	err := c.clientset.CoreV1().Pods(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	return classifyError(err, c.serverURL)
}

// StreamPodLogs follows the container log until ctx is cancelled or the
// server ends the stream. The returned reader must be closed.
func (c *Client) StreamPodLogs(ctx context.Context, namespace, pod, container string, tailLines int64) (io.ReadCloser, error) {
	opts := &corev1.PodLogOptions{
		Follow:    true,
		TailLines: &tailLines,
	}
	if container != "" {
		opts.Container = container
	}
	rc, err := c.clientset.CoreV1().Pods(namespace).GetLogs(pod, opts).Stream(ctx)
	if err != nil {
		return nil, classifyError(err, c.serverURL)
	}
	return rc, nil
}

// GetPodLogs fetches a one-shot tail, used to page log history backwards.
func (c *Client) GetPodLogs(ctx context.Context, namespace, pod, container string, tailLines int64) (string, error) {
	ctx, cancel := requestContext(ctx)
	defer cancel()

	opts := &corev1.PodLogOptions{
		TailLines: &tailLines,
	}
	if container != "" {
		opts.Container = container
	}
	raw, err := c.clientset.CoreV1().Pods(namespace).GetLogs(pod, opts).Do(ctx).Raw()
	if err != nil {
		return "", classifyError(err, c.serverURL)
	}
	return string(raw), nil
}

func podToPodInfo(pod corev1.Pod) domain.PodInfo {
	status := podStatus(pod)
	ready, total := podReadyCount(pod)
	var restarts int32
	for _, cs := range pod.Status.ContainerStatuses {
		restarts += cs.RestartCount
	}

	statusMap := make(map[string]corev1.ContainerStatus)
	for _, cs := range pod.Status.ContainerStatuses {
		statusMap[cs.Name] = cs
	}
	containers := make([]domain.ContainerInfo, 0, len(pod.Spec.Containers))
	for _, ctr := range pod.Spec.Containers {
		ci := domain.ContainerInfo{Name: ctr.Name}
		if cs, ok := statusMap[ctr.Name]; ok {
			ci.Ready = cs.Ready
			ci.Restarts = cs.RestartCount
		}
		containers = append(containers, ci)
	}

	return domain.PodInfo{
		Name:            pod.Name,
		Namespace:       pod.Namespace,
		Status:          status,
		Ready:           fmt.Sprintf("%d/%d", ready, total),
		Restarts:        restarts,
		Node:            pod.Spec.NodeName,
		Age:             formatAge(pod.CreationTimestamp.Time),
		Containers:      containers,
		CreatedAt:       pod.CreationTimestamp.Time,
		ResourceVersion: pod.ResourceVersion,
	}
}

func podStatus(pod corev1.Pod) string {
	if pod.DeletionTimestamp != nil {
		return "Terminating"
	}
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.State.Waiting != nil && cs.State.Waiting.Reason != "" {
			return cs.State.Waiting.Reason // CrashLoopBackOff, ImagePullBackOff, etc.
		}
		if cs.State.Terminated != nil && cs.State.Terminated.Reason != "" {
			return cs.State.Terminated.Reason
		}
	}
	for _, cs := range pod.Status.InitContainerStatuses {
		if cs.State.Waiting != nil && cs.State.Waiting.Reason != "" {
			return "Init:" + cs.State.Waiting.Reason
		}
		if cs.State.Terminated != nil && cs.State.Terminated.ExitCode != 0 {
			return "Init:Error"
		}
	}
	return string(pod.Status.Phase)
}

func podReadyCount(pod corev1.Pod) (int, int) {
	total := len(pod.Spec.Containers)
	ready := 0
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.Ready {
			ready++
		}
	}
	return ready, total
}

func formatAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days > 365 {
			return fmt.Sprintf("%dy%dd", days/365, days%365)
		}
		return fmt.Sprintf("%dd", days)
	}
}
