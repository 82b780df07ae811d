package inventory

import (
	"context"
	"iter"
	"testing"

	"github.com/de-tools/tagwarden/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScanner struct {
	rt domain.ResourceType
}

func (s stubScanner) GetResourceType() domain.ResourceType { return s.rt }

func (s stubScanner) Scan(context.Context) iter.Seq2[domain.ResourceRecord, error] {
	return func(func(domain.ResourceRecord, error) bool) {}
}

func (s stubScanner) Delete(context.Context, domain.ResourceRecord) error { return nil }

func TestNewRegistry(t *testing.T) {
	t.Run("rejects empty set", func(t *testing.T) {
		_, err := NewRegistry()
		require.ErrorIs(t, err, ErrNoScanners)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := NewRegistry(stubScanner{domain.ResourceTypeEC2}, stubScanner{domain.ResourceTypeEC2})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate scanner for resource type: EC2")
	})

	t.Run("orders types canonically", func(t *testing.T) {
		r, err := NewRegistry(
			stubScanner{domain.ResourceTypeLambda},
			stubScanner{"Custom"},
			stubScanner{domain.ResourceTypeEC2},
			stubScanner{domain.ResourceTypeS3},
		)
		require.NoError(t, err)
		assert.Equal(t, []domain.ResourceType{
			domain.ResourceTypeEC2, domain.ResourceTypeS3, domain.ResourceTypeLambda, "Custom",
		}, r.GetSupportedResources())
		assert.Len(t, r.Scanners(), 4)
	})

	t.Run("unknown type lookup", func(t *testing.T) {
		r, err := NewRegistry(stubScanner{domain.ResourceTypeRDS})
		require.NoError(t, err)
		_, err = r.GetScanner(domain.ResourceTypeS3)
		require.Error(t, err)
		s, err := r.GetScanner(domain.ResourceTypeRDS)
		require.NoError(t, err)
		assert.Equal(t, domain.ResourceTypeRDS, s.GetResourceType())
	})
}
