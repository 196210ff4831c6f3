package k8s

import (
	"context"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"

	"github.com/crn4/kr/internal/domain"
)

func (c *Client) ListDeployments(ctx context.Context, namespace string) ([]domain.DeploymentInfo, string, error) {
	ctx, cancel := requestContext(ctx)
	defer cancel()

	var deps []domain.DeploymentInfo
	var version string
	opts := metav1.ListOptions{Limit: listPageLimit}
	for {
		depList, err := c.clientset.AppsV1().Deployments(namespace).List(ctx, opts)
		if err != nil {
			return nil, "", classifyError(err, c.serverURL)
		}
		for _, dep := range depList.Items {
			deps = append(deps, deploymentToInfo(dep))
		}
		if version == "" {
			version = depList.ResourceVersion
		}
		if depList.Continue == "" {
			return deps, version, nil
		}
		opts.Continue = depList.Continue
	}
}

func (c *Client) WatchDeployments(ctx context.Context, namespace, fromVersion string) (<-chan domain.WatchEvent, error) {
	watcher, err := c.clientset.AppsV1().Deployments(namespace).Watch(ctx, metav1.ListOptions{
		ResourceVersion: fromVersion,
	})
	if err != nil {
		return nil, classifyError(err, c.serverURL)
	}
	return c.relayWatch(ctx, watcher, domain.KindDeployment, func(obj runtime.Object) (domain.Resource, bool) {
		dep, ok := obj.(*appsv1.Deployment)
		if !ok {
			return nil, false
		}
		return deploymentToInfo(*dep), true
	}), nil
}

func (c *Client) DeleteDeployment(ctx context.Context, namespace, name string) error {
	ctx, cancel := requestContext(ctx)
	defer cancel()

	err := c.clientset.AppsV1().Deployments(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	return classifyError(err, c.serverURL)
}

func (c *Client) ScaleDeployment(ctx context.Context, namespace, name string, replicas int32) error {
	if replicas < 0 {
		replicas = 0
	}
	ctx, cancel := requestContext(ctx)
	defer cancel()

	scale, err := c.clientset.AppsV1().Deployments(namespace).GetScale(ctx, name, metav1.GetOptions{})
	if err != nil {
		return classifyError(err, c.serverURL)
	}
	scale.Spec.Replicas = replicas
	_, err = c.clientset.AppsV1().Deployments(namespace).UpdateScale(ctx, name, scale, metav1.UpdateOptions{})
	return classifyError(err, c.serverURL)
}

// RestartDeployment triggers a rolling restart the same way kubectl does:
// bump the pod template's restartedAt annotation.
func (c *Client) RestartDeployment(ctx context.Context, namespace, name string) error {
	ctx, cancel := requestContext(ctx)
	defer cancel()

	patch := fmt.Sprintf(
		`{"spec":{"template":{"metadata":{"annotations":{"kubectl.kubernetes.io/restartedAt":%q}}}}}`,
		time.Now().Format(time.RFC3339),
	)
	_, err := c.clientset.AppsV1().Deployments(namespace).Patch(
		ctx, name, types.StrategicMergePatchType, []byte(patch),
		metav1.PatchOptions{FieldManager: "kr"},
	)
	return classifyError(err, c.serverURL)
}

func deploymentToInfo(dep appsv1.Deployment) domain.DeploymentInfo {
	var replicas int32
	if dep.Spec.Replicas != nil {
		replicas = *dep.Spec.Replicas
	}
	image := ""
	if len(dep.Spec.Template.Spec.Containers) > 0 {
		image = dep.Spec.Template.Spec.Containers[0].Image
	}
	return domain.DeploymentInfo{
		Name:            dep.Name,
		Namespace:       dep.Namespace,
		Ready:           fmt.Sprintf("%d/%d", dep.Status.ReadyReplicas, replicas),
		Replicas:        replicas,
		Available:       dep.Status.AvailableReplicas,
		Image:           image,
		Age:             formatAge(dep.CreationTimestamp.Time),
		CreatedAt:       dep.CreationTimestamp.Time,
		ResourceVersion: dep.ResourceVersion,
	}
}
