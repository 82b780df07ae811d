package metrics

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/de-tools/tagwarden/pkg/models/domain"
	"github.com/de-tools/tagwarden/pkg/services/inventory"
	"github.com/de-tools/tagwarden/pkg/services/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticScanner struct {
	rt    domain.ResourceType
	items []scanResult
}

type scanResult struct {
	record domain.ResourceRecord
	err    error
}

func (s staticScanner) GetResourceType() domain.ResourceType { return s.rt }

func (s staticScanner) Scan(context.Context) iter.Seq2[domain.ResourceRecord, error] {
	return func(yield func(domain.ResourceRecord, error) bool) {
		for _, it := range s.items {
			if !yield(it.record, it.err) {
				return
			}
		}
	}
}

func (s staticScanner) Delete(context.Context, domain.ResourceRecord) error {
	return errors.New("metrics collection must not delete")
}

type mockCostProvider struct {
	mock.Mock
}

func (m *mockCostProvider) GetCostAndUsage(ctx context.Context, window domain.DateRange, dimension domain.CostDimension) ([]domain.CostEntry, error) {
	args := m.Called(ctx, window, dimension)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CostEntry), args.Error(1)
}

type recordingSink struct {
	mu     sync.Mutex
	points []domain.MetricPoint
	fail   func(domain.MetricPoint) bool
}

func (s *recordingSink) PutMetric(_ context.Context, p domain.MetricPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil && s.fail(p) {
		return errors.New("throttled")
	}
	s.points = append(s.points, p)
	return nil
}

func (s *recordingSink) find(namespace, name string, dims ...domain.MetricDimension) (domain.MetricPoint, bool) {
	for _, p := range s.points {
		if p.Namespace == namespace && p.Name == name && assert.ObjectsAreEqual(dims, p.Dimensions) {
			return p, true
		}
	}
	return domain.MetricPoint{}, false
}

var collectedAt = time.Date(2025, 6, 15, 6, 0, 0, 0, time.UTC)

func fullTags(extra ...domain.Tag) domain.Tags {
	tags := domain.Tags{
		{Key: "Owner", Value: "jo"},
		{Key: "Squad", Value: "Data"},
		{Key: "CostCenter", Value: "CC-1"},
		{Key: "Environment", Value: "dev"},
	}
	return append(tags, extra...)
}

func ok(rt domain.ResourceType, id string, tags domain.Tags, sizeClass string) scanResult {
	return scanResult{record: domain.ResourceRecord{Type: rt, ID: id, Tags: tags, SizeClass: sizeClass}}
}

func newTestAggregator(t *testing.T, costs CostProvider, sink Sink, scanners ...inventory.Scanner) *Aggregator {
	t.Helper()
	registry, err := inventory.NewRegistry(scanners...)
	require.NoError(t, err)
	a := NewAggregator(registry, policy.MustNew(policy.DefaultRequiredTags), costs, sink, nil, Options{Region: "eu-west-1"})
	a.now = func() time.Time { return collectedAt }
	return a
}

func TestAggregator_Collect(t *testing.T) {
	scanners := []inventory.Scanner{
		staticScanner{rt: domain.ResourceTypeEC2, items: []scanResult{
			ok(domain.ResourceTypeEC2, "i-1", fullTags(domain.Tag{Key: "AutoShutdown", Value: "true"}), "t3.medium"),
			ok(domain.ResourceTypeEC2, "i-2", domain.Tags{{Key: "Owner", Value: "jo"}}, "t3.micro"),
		}},
		staticScanner{rt: domain.ResourceTypeRDS, items: []scanResult{
			{err: &domain.TagLookupError{Type: domain.ResourceTypeRDS, ResourceID: "db-x", Err: errors.New("AccessDenied")}},
			ok(domain.ResourceTypeRDS, "db-1", fullTags(), "db.t3.micro"),
		}},
		staticScanner{rt: domain.ResourceTypeS3, items: []scanResult{
			ok(domain.ResourceTypeS3, "bucket", nil, ""),
		}},
		staticScanner{rt: domain.ResourceTypeLambda},
	}

	window := domain.DateRange{Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)}
	costs := new(mockCostProvider)
	costs.On("GetCostAndUsage", mock.Anything, window, domain.CostDimensionSquad).Return([]domain.CostEntry{
		{DimensionValue: "Squad$Data", Cost: 120.5, Currency: "USD"},
		{DimensionValue: "Squad$", Cost: 40},
	}, nil)
	costs.On("GetCostAndUsage", mock.Anything, window, domain.CostDimensionCostCenter).
		Return(nil, fmt.Errorf("tag CostCenter: %w", domain.ErrDimensionUnavailable))
	costs.On("GetCostAndUsage", mock.Anything, window, domain.CostDimensionService).Return([]domain.CostEntry{
		{DimensionValue: "Amazon Simple Storage Service", Cost: 3},
		{DimensionValue: "Amazon Elastic Compute Cloud - Compute", Cost: 90},
	}, nil)

	sink := &recordingSink{}
	report := newTestAggregator(t, costs, sink, scanners...).Collect(context.Background())

	assert.Equal(t, domain.ComplianceSummary{Total: 4, Compliant: 2, NonCompliant: 2, Percentage: 50.0}, report.Compliance)
	assert.Equal(t, map[domain.ResourceType]int{
		domain.ResourceTypeEC2: 2, domain.ResourceTypeRDS: 1, domain.ResourceTypeS3: 1, domain.ResourceTypeLambda: 0,
	}, report.Counts)
	assert.Equal(t, []domain.NonCompliantResource{
		{Type: domain.ResourceTypeEC2, ID: "i-2", Missing: []string{"Squad", "CostCenter", "Environment"}},
		{Type: domain.ResourceTypeS3, ID: "bucket", Missing: []string{"Owner", "Squad", "CostCenter", "Environment"}},
	}, report.NonCompliant)
	assert.Equal(t, 14.98, report.EstimatedSavings)
	assert.Equal(t, window, report.CostWindow)
	assert.Equal(t, []domain.CostDimension{domain.CostDimensionCostCenter}, report.UnavailableCosts)
	require.Len(t, report.Rollups, 2)
	assert.Equal(t, "Amazon Elastic Compute Cloud - Compute", report.Rollups[1].Entries[0].DimensionValue)

	require.Len(t, report.Errors, 1)
	assert.Equal(t, domain.ErrorKindTagLookup, report.Errors[0].Kind)
	assert.Equal(t, "db-x", report.Errors[0].ResourceID)

	// 4 compliance + 2 per resource + 4 counts + 1 savings + 1 squad + 2 services
	assert.Equal(t, 14, report.PublishedPoints)
	assert.Zero(t, report.FailedPublishes)
	assert.Len(t, sink.points, 14)

	p, found := sink.find("TagCompliance", "CompliancePercentage", dim("Scope", "Global"))
	require.True(t, found)
	assert.Equal(t, 50.0, p.Value)
	assert.Equal(t, domain.MetricUnitPercent, p.Unit)
	assert.Equal(t, collectedAt, p.Timestamp)

	p, found = sink.find("ResourceCount", "ResourcesByType", dim("ResourceType", "Lambda"))
	require.True(t, found)
	assert.Equal(t, 0.0, p.Value)

	_, found = sink.find("TagCompliance", "NonCompliantResources", dim("ResourceType", "S3"), dim("ResourceId", "bucket"))
	assert.True(t, found)

	p, found = sink.find("CostExplorer", "CostBySquad", dim("Squad", "Data"))
	require.True(t, found)
	assert.Equal(t, 120.5, p.Value)

	_, found = sink.find("AutoShutdown", "EstimatedSavings", dim("Period", "Monthly"))
	assert.True(t, found)
}

func TestAggregator_EmptyFleetIsFullyCompliant(t *testing.T) {
	sink := &recordingSink{}
	report := newTestAggregator(t, nil, sink, staticScanner{rt: domain.ResourceTypeEC2}).Collect(context.Background())

	assert.Equal(t, 100.0, report.Compliance.Percentage)
	assert.Equal(t, domain.CostDimensions, report.UnavailableCosts)
	assert.Empty(t, report.Rollups)
}

func TestAggregator_PublishFailuresAreCountedAndSkipped(t *testing.T) {
	sink := &recordingSink{fail: func(p domain.MetricPoint) bool {
		return p.Namespace == "ResourceCount"
	}}
	report := newTestAggregator(t, nil, sink, staticScanner{rt: domain.ResourceTypeEC2}).Collect(context.Background())

	assert.Equal(t, 4, report.FailedPublishes)
	assert.Equal(t, 5, report.PublishedPoints)
	_, found := sink.find("AutoShutdown", "EstimatedSavings", dim("Period", "Monthly"))
	assert.True(t, found)
}

func TestAggregator_NamespacePrefix(t *testing.T) {
	registry, err := inventory.NewRegistry(staticScanner{rt: domain.ResourceTypeS3})
	require.NoError(t, err)

	sink := &recordingSink{}
	a := NewAggregator(registry, policy.MustNew(policy.DefaultRequiredTags), nil, sink, nil, Options{NamespacePrefix: "Staging/"})
	a.Collect(context.Background())

	require.NotEmpty(t, sink.points)
	for _, p := range sink.points {
		assert.Contains(t, []string{"Staging/TagCompliance", "Staging/ResourceCount", "Staging/AutoShutdown"}, p.Namespace)
	}
}
