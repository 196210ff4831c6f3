package k8s

import (
	"context"
	"sort"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/crn4/kr/internal/domain"
)

func (c *Client) ListNamespaces(ctx context.Context) ([]domain.NamespaceInfo, error) {
	ctx, cancel := requestContext(ctx)
	defer cancel()

	var namespaces []domain.NamespaceInfo
	opts := metav1.ListOptions{Limit: listPageLimit}
	for {
		nsList, err := c.clientset.CoreV1().Namespaces().List(ctx, opts)
		if err != nil {
			return nil, classifyError(err, c.serverURL)
		}
		for _, ns := range nsList.Items {
			namespaces = append(namespaces, domain.NamespaceInfo{
				Name:            ns.Name,
				Status:          string(ns.Status.Phase),
				Age:             formatAge(ns.CreationTimestamp.Time),
				CreatedAt:       ns.CreationTimestamp.Time,
				ResourceVersion: ns.ResourceVersion,
			})
		}
		if nsList.Continue == "" {
			break
		}
		opts.Continue = nsList.Continue
	}
	sort.Slice(namespaces, func(i, j int) bool {
		return namespaces[i].Name < namespaces[j].Name
	})
	return namespaces, nil
}
