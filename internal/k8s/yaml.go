package k8s

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/crn4/kr/internal/domain"
)

// ResourceYAML renders the live manifest of a tracked resource, with the
// managedFields noise stripped.
func (c *Client) ResourceYAML(ctx context.Context, kind domain.Kind, namespace, name string) (string, error) {
	ctx, cancel := requestContext(ctx)
	defer cancel()

	var obj metav1.Object
	var err error
	switch kind {
	case domain.KindPod:
		obj, err = c.clientset.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
	case domain.KindDeployment:
		obj, err = c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	case domain.KindSecret:
		obj, err = c.clientset.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	case domain.KindEvent:
		obj, err = c.clientset.CoreV1().Events(namespace).Get(ctx, name, metav1.GetOptions{})
	case domain.KindNamespace:
		obj, err = c.clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	default:
		return "", &domain.APIError{
			Type:    domain.ErrValidation,
			Message: fmt.Sprintf("no manifest view for %s", kind),
		}
	}
	if err != nil {
		return "", classifyError(err, c.serverURL)
	}

	obj.SetManagedFields(nil)
	data, err := yaml.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
