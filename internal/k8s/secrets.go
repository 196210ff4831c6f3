package k8s

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/crn4/kr/internal/domain"
)

func (c *Client) ListSecrets(ctx context.Context, namespace string) ([]domain.SecretInfo, string, error) {
	ctx, cancel := requestContext(ctx)
	defer cancel()

	var secrets []domain.SecretInfo
	var version string
	opts := metav1.ListOptions{Limit: listPageLimit}
	for {
		secList, err := c.clientset.CoreV1().Secrets(namespace).List(ctx, opts)
		if err != nil {
			return nil, "", classifyError(err, c.serverURL)
		}
		for _, sec := range secList.Items {
			secrets = append(secrets, secretToInfo(sec))
		}
		if version == "" {
			version = secList.ResourceVersion
		}
		if secList.Continue == "" {
			return secrets, version, nil
		}
		opts.Continue = secList.Continue
	}
}

func (c *Client) WatchSecrets(ctx context.Context, namespace, fromVersion string) (<-chan domain.WatchEvent, error) {
	watcher, err := c.clientset.CoreV1().Secrets(namespace).Watch(ctx, metav1.ListOptions{
		ResourceVersion: fromVersion,
	})
	if err != nil {
		return nil, classifyError(err, c.serverURL)
	}
	return c.relayWatch(ctx, watcher, domain.KindSecret, func(obj runtime.Object) (domain.Resource, bool) {
		sec, ok := obj.(*corev1.Secret)
		if !ok {
			return nil, false
		}
		return secretToInfo(*sec), true
	}), nil
}

func secretToInfo(sec corev1.Secret) domain.SecretInfo {
	data := make(map[string][]byte, len(sec.Data))
	for k, v := range sec.Data {
		data[k] = v
	}
	return domain.SecretInfo{
		Name:            sec.Name,
		Namespace:       sec.Namespace,
		Type:            string(sec.Type),
		Keys:            len(sec.Data),
		Age:             formatAge(sec.CreationTimestamp.Time),
		Data:            data,
		CreatedAt:       sec.CreationTimestamp.Time,
		ResourceVersion: sec.ResourceVersion,
	}
}
