package tui

import (
	"sort"
	"strings"

	"github.com/crn4/kr/internal/domain"
)

// SortColumn identifies a column for sorting.
type SortColumn int

const (
	SortNone SortColumn = iota
	// Pods
	SortPodName
	SortPodStatus
	SortPodRestarts
	SortPodAge
	// Deployments
	SortDepName
	SortDepReady
	SortDepAge
	// Secrets
	SortSecName
	SortSecType
	SortSecKeys
	// Events
	SortEvtType
	SortEvtAge
	SortEvtCount
)

// SortState holds the current sort configuration for a view.
type SortState struct {
	Column    SortColumn
	Ascending bool
}

// Label returns the header label of the active sort column.
func (s SortState) Label() string {
	switch s.Column {
	case SortPodName, SortDepName, SortSecName:
		return "NAME"
	case SortPodStatus:
		return "STATUS"
	case SortPodRestarts:
		return "RESTARTS"
	case SortPodAge, SortDepAge, SortEvtAge:
		return "AGE"
	case SortDepReady:
		return "READY"
	case SortSecType:
		return "TYPE"
	case SortSecKeys:
		return "KEYS"
	case SortEvtType:
		return "TYPE"
	case SortEvtCount:
		return "COUNT"
	default:
		return ""
	}
}

// SortIndicator returns ▲ or ▼ for the active sort column header.
func SortIndicator(header string, state SortState) string {
	label := state.Label()
	if label == "" || !strings.EqualFold(header, label) {
		return header
	}
	if state.Ascending {
		return header + " ▲"
	}
	return header + " ▼"
}

// NextSort cycles the sort column for a kind: off, then each column in
// display order, then off again.
func NextSort(kind domain.Kind, current SortColumn) SortColumn {
	switch kind {
	case domain.KindPod:
		switch current {
		case SortNone:
			return SortPodName
		case SortPodName:
			return SortPodStatus
		case SortPodStatus:
			return SortPodRestarts
		case SortPodRestarts:
			return SortPodAge
		default:
			return SortNone
		}
	case domain.KindDeployment:
		switch current {
		case SortNone:
			return SortDepName
		case SortDepName:
			return SortDepReady
		case SortDepReady:
			return SortDepAge
		default:
			return SortNone
		}
	case domain.KindSecret:
		switch current {
		case SortNone:
			return SortSecName
		case SortSecName:
			return SortSecType
		case SortSecType:
			return SortSecKeys
		default:
			return SortNone
		}
	case domain.KindEvent:
		switch current {
		case SortNone:
			return SortEvtType
		case SortEvtType:
			return SortEvtAge
		case SortEvtAge:
			return SortEvtCount
		default:
			return SortNone
		}
	}
	return SortNone
}

// SortResources orders a query result for display. SortNone keeps the store
// order (namespace then name) except for events, which read newest first.
// The input slice is never mutated.
func SortResources(kind domain.Kind, items []domain.Resource, state SortState) []domain.Resource {
	if len(items) == 0 {
		return items
	}
	if state.Column == SortNone {
		if kind != domain.KindEvent {
			return items
		}
		sorted := make([]domain.Resource, len(items))
		copy(sorted, items)
		sort.SliceStable(sorted, func(i, j int) bool {
			return eventAt(sorted[i]).CreatedAt.After(eventAt(sorted[j]).CreatedAt)
		})
		return sorted
	}
	sorted := make([]domain.Resource, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		less := lessByColumn(sorted[i], sorted[j], state.Column)
		if !state.Ascending {
			return !less
		}
		return less
	})
	return sorted
}

func lessByColumn(a, b domain.Resource, col SortColumn) bool {
	switch col {
	case SortPodName, SortDepName, SortSecName:
		return strings.ToLower(a.GetName()) < strings.ToLower(b.GetName())
	case SortPodStatus:
		return strings.ToLower(a.StatusText()) < strings.ToLower(b.StatusText())
	case SortPodRestarts:
		return podAt(a).Restarts < podAt(b).Restarts
	case SortPodAge:
		return podAt(a).CreatedAt.After(podAt(b).CreatedAt) // newest first for ascending
	case SortDepReady:
		return depAt(a).Available < depAt(b).Available
	case SortDepAge:
		return depAt(a).CreatedAt.After(depAt(b).CreatedAt)
	case SortSecType:
		return secAt(a).Type < secAt(b).Type
	case SortSecKeys:
		return secAt(a).Keys < secAt(b).Keys
	case SortEvtType:
		return eventAt(a).Type < eventAt(b).Type
	case SortEvtAge:
		return eventAt(a).CreatedAt.After(eventAt(b).CreatedAt)
	case SortEvtCount:
		return eventAt(a).Count < eventAt(b).Count
	default:
		return false
	}
}

func podAt(r domain.Resource) domain.PodInfo {
	p, _ := r.(domain.PodInfo)
	return p
}

func depAt(r domain.Resource) domain.DeploymentInfo {
	d, _ := r.(domain.DeploymentInfo)
	return d
}

func secAt(r domain.Resource) domain.SecretInfo {
	s, _ := r.(domain.SecretInfo)
	return s
}

func eventAt(r domain.Resource) domain.EventInfo {
	e, _ := r.(domain.EventInfo)
	return e
}
