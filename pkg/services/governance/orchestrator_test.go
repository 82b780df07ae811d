package governance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/de-tools/tagwarden/pkg/models/domain"
	"github.com/de-tools/tagwarden/pkg/services/inventory"
	"github.com/de-tools/tagwarden/pkg/services/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(t *testing.T, mode domain.RunMode, scanners ...inventory.Scanner) *Orchestrator {
	t.Helper()
	registry, err := inventory.NewRegistry(scanners...)
	require.NoError(t, err)

	o := NewOrchestrator(registry, policy.MustNew(policy.DefaultRequiredTags), Options{
		Mode:              mode,
		GracePeriod:       24 * time.Hour,
		DeleteConcurrency: 4,
	}, nil, nil)
	o.now = func() time.Time { return fixedNow }
	return o
}

func TestOrchestrator_CompliantResourceIsLeftAlone(t *testing.T) {
	ec2 := newFakeScanner(domain.ResourceTypeEC2,
		record(domain.ResourceTypeEC2, "i-1", compliantTags(), createdAgo(48*time.Hour)),
	)

	run := newTestOrchestrator(t, domain.RunModeLive, ec2).Run(context.Background())

	assert.Equal(t, domain.TypeCounters{Scanned: 1}, run.Report.For(domain.ResourceTypeEC2))
	ec2.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestOrchestrator_GracePeriodProtectsInBothModes(t *testing.T) {
	for _, mode := range []domain.RunMode{domain.RunModeDryRun, domain.RunModeLive} {
		t.Run(string(mode), func(t *testing.T) {
			s3 := newFakeScanner(domain.ResourceTypeS3,
				record(domain.ResourceTypeS3, "fresh-bucket", domain.Tags{}, createdAgo(time.Hour)),
			)

			run := newTestOrchestrator(t, mode, s3).Run(context.Background())

			assert.Equal(t, domain.TypeCounters{Scanned: 1, NonCompliant: 1, InGracePeriod: 1}, run.Report.For(domain.ResourceTypeS3))
			s3.AssertNotCalled(t, "Delete", mock.Anything)
		})
	}
}

func TestOrchestrator_GraceBoundaryIsEligible(t *testing.T) {
	lambda := newFakeScanner(domain.ResourceTypeLambda,
		record(domain.ResourceTypeLambda, "exactly-24h", nil, createdAgo(24*time.Hour)),
		record(domain.ResourceTypeLambda, "unknown-age", nil, nil),
	)
	lambda.On("Delete", mock.Anything).Return(nil)

	run := newTestOrchestrator(t, domain.RunModeLive, lambda).Run(context.Background())

	assert.Equal(t, domain.TypeCounters{Scanned: 2, NonCompliant: 2, Deleted: 2}, run.Report.For(domain.ResourceTypeLambda))
	lambda.AssertNumberOfCalls(t, "Delete", 2)
}

func TestOrchestrator_SimulateOnlyDiffersInDeletedCounter(t *testing.T) {
	items := []scanItem{
		record(domain.ResourceTypeEC2, "i-ok", compliantTags(), createdAgo(72*time.Hour)),
		record(domain.ResourceTypeEC2, "i-old", domain.Tags{{Key: "Owner", Value: "jo"}}, createdAgo(72*time.Hour)),
		record(domain.ResourceTypeEC2, "i-new", nil, createdAgo(2*time.Hour)),
		record(domain.ResourceTypeEC2, "i-older", nil, createdAgo(30*24*time.Hour)),
	}

	live := newFakeScanner(domain.ResourceTypeEC2, items...)
	live.On("Delete", mock.Anything).Return(nil)
	dry := newFakeScanner(domain.ResourceTypeEC2, items...)

	liveRun := newTestOrchestrator(t, domain.RunModeLive, live).Run(context.Background())
	dryRun := newTestOrchestrator(t, domain.RunModeDryRun, dry).Run(context.Background())

	liveCounters := liveRun.Report.For(domain.ResourceTypeEC2)
	dryCounters := dryRun.Report.For(domain.ResourceTypeEC2)

	assert.Equal(t, 2, liveCounters.Deleted)
	assert.Equal(t, 0, dryCounters.Deleted)
	dryCounters.Deleted = liveCounters.Deleted
	assert.Equal(t, liveCounters, dryCounters)

	dry.AssertNotCalled(t, "Delete", mock.Anything)
	assert.Equal(t, domain.RunModeDryRun, dryRun.Mode)
}

func TestOrchestrator_FailuresAreRecordedNotFatal(t *testing.T) {
	ec2 := newFakeScanner(domain.ResourceTypeEC2,
		record(domain.ResourceTypeEC2, "i-1", nil, createdAgo(48*time.Hour)),
		failure(errors.New("failed to describe EC2 instances: throttled")),
		record(domain.ResourceTypeEC2, "never-seen", nil, createdAgo(48*time.Hour)),
	)
	ec2.On("Delete", "i-1").Return(nil)

	rds := newFakeScanner(domain.ResourceTypeRDS,
		failure(&domain.TagLookupError{Type: domain.ResourceTypeRDS, ResourceID: "db-secret", Err: errors.New("AccessDenied")}),
		record(domain.ResourceTypeRDS, "db-1", nil, createdAgo(48*time.Hour)),
	)
	rds.On("Delete", "db-1").Return(errors.New("InvalidDBInstanceState"))

	s3 := newFakeScanner(domain.ResourceTypeS3,
		record(domain.ResourceTypeS3, "bucket-1", compliantTags(), createdAgo(48*time.Hour)),
	)

	run := newTestOrchestrator(t, domain.RunModeLive, ec2, rds, s3).Run(context.Background())

	assert.Equal(t, domain.TypeCounters{Scanned: 1, NonCompliant: 1, Deleted: 1}, run.Report.For(domain.ResourceTypeEC2))
	assert.Equal(t, domain.TypeCounters{Scanned: 1, NonCompliant: 1}, run.Report.For(domain.ResourceTypeRDS))
	assert.Equal(t, domain.TypeCounters{Scanned: 1}, run.Report.For(domain.ResourceTypeS3))

	errs := run.Report.SortedErrors()
	require.Len(t, errs, 3)
	assert.Equal(t, domain.RunError{
		Type:    domain.ResourceTypeEC2,
		Kind:    domain.ErrorKindScan,
		Message: "failed to describe EC2 instances: throttled",
	}, errs[0])
	assert.Equal(t, domain.RunError{
		Type:       domain.ResourceTypeRDS,
		ResourceID: "db-1",
		Kind:       domain.ErrorKindDeletion,
		Message:    "InvalidDBInstanceState",
	}, errs[1])
	assert.Equal(t, domain.RunError{
		Type:       domain.ResourceTypeRDS,
		ResourceID: "db-secret",
		Kind:       domain.ErrorKindTagLookup,
		Message:    "AccessDenied",
	}, errs[2])
}

func TestOrchestrator_ManyDeletionsAreAllCounted(t *testing.T) {
	items := make([]scanItem, 0, 50)
	for i := range 50 {
		items = append(items, record(domain.ResourceTypeEC2, fmt.Sprintf("i-%02d", i), nil, createdAgo(48*time.Hour)))
	}
	ec2 := newFakeScanner(domain.ResourceTypeEC2, items...)
	ec2.On("Delete", "i-07").Return(errors.New("UnauthorizedOperation"))
	ec2.On("Delete", mock.Anything).Return(nil)

	run := newTestOrchestrator(t, domain.RunModeLive, ec2).Run(context.Background())

	assert.Equal(t, domain.TypeCounters{Scanned: 50, NonCompliant: 50, Deleted: 49}, run.Report.For(domain.ResourceTypeEC2))
	require.Len(t, run.Report.Errors, 1)
	assert.Equal(t, "i-07", run.Report.Errors[0].ResourceID)
}

func TestOrchestrator_EveryRegisteredTypeIsReported(t *testing.T) {
	run := newTestOrchestrator(t, domain.RunModeDryRun,
		newFakeScanner(domain.ResourceTypeEC2),
		newFakeScanner(domain.ResourceTypeLambda),
	).Run(context.Background())

	assert.Contains(t, run.Report.Counters, domain.ResourceTypeEC2)
	assert.Contains(t, run.Report.Counters, domain.ResourceTypeLambda)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, fixedNow, run.StartedAt)
}

func TestOrchestrator_NotifiesAndRecordsHistory(t *testing.T) {
	registry, err := inventory.NewRegistry(newFakeScanner(domain.ResourceTypeS3,
		record(domain.ResourceTypeS3, "bucket-1", nil, createdAgo(time.Hour)),
	))
	require.NoError(t, err)

	notifier := new(mockNotifier)
	notifier.On("Publish", mock.Anything, mock.AnythingOfType("*domain.RunReport")).
		Return(errors.New("sns unavailable")).Once()
	history := new(mockHistory)
	history.On("Add", mock.Anything, mock.MatchedBy(func(s domain.RunSummary) bool {
		return s.Kind == domain.RunKindCleanup &&
			s.Mode == domain.RunModeDryRun &&
			s.Totals.InGracePeriod == 1 &&
			len(s.Payload) > 0
	})).Return(nil).Once()

	o := NewOrchestrator(registry, policy.MustNew(policy.DefaultRequiredTags), Options{
		GracePeriod: 24 * time.Hour,
	}, notifier, history)
	o.now = func() time.Time { return fixedNow }

	run := o.Run(context.Background())

	require.NotNil(t, run)
	assert.Equal(t, domain.RunModeDryRun, run.Mode)
	notifier.AssertExpectations(t)
	history.AssertExpectations(t)
}
