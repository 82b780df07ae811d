package scanners

import (
	"context"
	"fmt"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/de-tools/tagwarden/pkg/models/domain"
)

const rdsStatusDeleting = "deleting"

type RDSAPI interface {
	DescribeDBInstances(ctx context.Context, in *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
	ListTagsForResource(ctx context.Context, in *rds.ListTagsForResourceInput, optFns ...func(*rds.Options)) (*rds.ListTagsForResourceOutput, error)
	DeleteDBInstance(ctx context.Context, in *rds.DeleteDBInstanceInput, optFns ...func(*rds.Options)) (*rds.DeleteDBInstanceOutput, error)
}

type rdsScanner struct {
	client RDSAPI
}

func NewRDSScanner(client RDSAPI) *rdsScanner {
	return &rdsScanner{client: client}
}

func (s *rdsScanner) GetResourceType() domain.ResourceType {
	return domain.ResourceTypeRDS
}

func (s *rdsScanner) Scan(ctx context.Context) iter.Seq2[domain.ResourceRecord, error] {
	return func(yield func(domain.ResourceRecord, error) bool) {
		paginator := rds.NewDescribeDBInstancesPaginator(s.client, &rds.DescribeDBInstancesInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(domain.ResourceRecord{}, fmt.Errorf("failed to describe RDS instances: %w", err))
				return
			}

			for _, instance := range page.DBInstances {
				status := aws.ToString(instance.DBInstanceStatus)
				if status == rdsStatusDeleting {
					continue
				}

				id := aws.ToString(instance.DBInstanceIdentifier)
				arn := aws.ToString(instance.DBInstanceArn)

				tagsResp, err := s.client.ListTagsForResource(ctx, &rds.ListTagsForResourceInput{
					ResourceName: aws.String(arn),
				})
				if err != nil {
					lookupErr := &domain.TagLookupError{Type: domain.ResourceTypeRDS, ResourceID: id, Err: err}
					if !yield(domain.ResourceRecord{}, lookupErr) {
						return
					}
					continue
				}

				record := domain.ResourceRecord{
					Type: domain.ResourceTypeRDS,
					ID:   id,
					ARN:  arn,
					Tags: toTags(tagsResp.TagList, func(t types.Tag) (*string, *string) {
						return t.Key, t.Value
					}),
					CreatedAt: instance.InstanceCreateTime,
					State:     domain.LifecycleState(status),
					SizeClass: aws.ToString(instance.DBInstanceClass),
				}
				if !yield(record, nil) {
					return
				}
			}
		}
	}
}

// Delete removes the instance without a final snapshot
func (s *rdsScanner) Delete(ctx context.Context, record domain.ResourceRecord) error {
	_, err := s.client.DeleteDBInstance(ctx, &rds.DeleteDBInstanceInput{
		DBInstanceIdentifier: aws.String(record.ID),
		SkipFinalSnapshot:    aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to delete RDS instance %s: %w", record.ID, err)
	}
	return nil
}
