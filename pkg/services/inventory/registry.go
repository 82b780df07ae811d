package inventory

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/de-tools/tagwarden/pkg/models/domain"
)

var ErrNoScanners = errors.New("at least one scanner must be provided")

// Registry holds at most one scanner per resource type
type Registry struct {
	scanners map[domain.ResourceType]Scanner
}

func NewRegistry(scanners ...Scanner) (*Registry, error) {
	r := &Registry{
		scanners: make(map[domain.ResourceType]Scanner),
	}

	for _, s := range scanners {
		resourceType := s.GetResourceType()
		if _, exists := r.scanners[resourceType]; exists {
			return nil, fmt.Errorf("duplicate scanner for resource type: %s", resourceType)
		}
		r.scanners[resourceType] = s
	}

	if len(r.scanners) == 0 {
		return nil, ErrNoScanners
	}

	return r, nil
}

// GetSupportedResources returns the registered types, known types first in their canonical order
func (r *Registry) GetSupportedResources() []domain.ResourceType {
	resources := make([]domain.ResourceType, 0, len(r.scanners))
	for rt := range r.scanners {
		resources = append(resources, rt)
	}
	slices.SortFunc(resources, func(a, b domain.ResourceType) int {
		ia, ib := slices.Index(domain.ResourceTypes, a), slices.Index(domain.ResourceTypes, b)
		if ia == ib {
			return strings.Compare(string(a), string(b))
		}
		if ia < 0 {
			return 1
		}
		if ib < 0 {
			return -1
		}
		return ia - ib
	})
	return resources
}

func (r *Registry) Scanners() []Scanner {
	out := make([]Scanner, 0, len(r.scanners))
	for _, rt := range r.GetSupportedResources() {
		out = append(out, r.scanners[rt])
	}
	return out
}

func (r *Registry) GetScanner(resourceType domain.ResourceType) (Scanner, error) {
	s, exists := r.scanners[resourceType]
	if !exists {
		return nil, fmt.Errorf("unsupported resource type: %s", resourceType)
	}
	return s, nil
}

