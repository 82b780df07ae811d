package governance

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/de-tools/tagwarden/pkg/models/domain"
	"github.com/stretchr/testify/mock"
)

type scanItem struct {
	record domain.ResourceRecord
	err    error
}

type fakeScanner struct {
	mock.Mock
	rt    domain.ResourceType
	items []scanItem
}

func newFakeScanner(rt domain.ResourceType, items ...scanItem) *fakeScanner {
	return &fakeScanner{rt: rt, items: items}
}

func (f *fakeScanner) GetResourceType() domain.ResourceType {
	return f.rt
}

func (f *fakeScanner) Scan(_ context.Context) iter.Seq2[domain.ResourceRecord, error] {
	return func(yield func(domain.ResourceRecord, error) bool) {
		for _, it := range f.items {
			if !yield(it.record, it.err) {
				return
			}
			var lookupErr *domain.TagLookupError
			if it.err != nil && !errors.As(it.err, &lookupErr) {
				return
			}
		}
	}
}

func (f *fakeScanner) Delete(_ context.Context, record domain.ResourceRecord) error {
	args := f.Called(record.ID)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Publish(ctx context.Context, run *domain.RunReport) error {
	return m.Called(ctx, run).Error(0)
}

type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) Add(ctx context.Context, summary domain.RunSummary) error {
	return m.Called(ctx, summary).Error(0)
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func createdAgo(d time.Duration) *time.Time {
	ts := fixedNow.Add(-d)
	return &ts
}

func compliantTags() domain.Tags {
	return domain.Tags{
		{Key: "Owner", Value: "jo"},
		{Key: "Squad", Value: "Data"},
		{Key: "CostCenter", Value: "CC-1"},
		{Key: "Environment", Value: "prod"},
	}
}

func record(rt domain.ResourceType, id string, tags domain.Tags, createdAt *time.Time) scanItem {
	return scanItem{record: domain.ResourceRecord{Type: rt, ID: id, Tags: tags, CreatedAt: createdAt}}
}

func failure(err error) scanItem {
	return scanItem{err: err}
}
