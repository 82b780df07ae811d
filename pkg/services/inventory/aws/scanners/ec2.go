package scanners

import (
	"context"
	"fmt"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/de-tools/tagwarden/pkg/models/domain"
)

type EC2API interface {
	DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	TerminateInstances(ctx context.Context, in *ec2.TerminateInstancesInput, optFns ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error)
}

type ec2Scanner struct {
	client EC2API
}

func NewEC2Scanner(client EC2API) *ec2Scanner {
	return &ec2Scanner{client: client}
}

func (s *ec2Scanner) GetResourceType() domain.ResourceType {
	return domain.ResourceTypeEC2
}

func (s *ec2Scanner) Scan(ctx context.Context) iter.Seq2[domain.ResourceRecord, error] {
	return func(yield func(domain.ResourceRecord, error) bool) {
		paginator := ec2.NewDescribeInstancesPaginator(s.client, &ec2.DescribeInstancesInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(domain.ResourceRecord{}, fmt.Errorf("failed to describe EC2 instances: %w", err))
				return
			}

			for _, reservation := range page.Reservations {
				for _, instance := range reservation.Instances {
					state := instanceState(instance)
					if state == types.InstanceStateNameShuttingDown || state == types.InstanceStateNameTerminated {
						continue
					}

					record := domain.ResourceRecord{
						Type: domain.ResourceTypeEC2,
						ID:   aws.ToString(instance.InstanceId),
						Tags: toTags(instance.Tags, func(t types.Tag) (*string, *string) {
							return t.Key, t.Value
						}),
						CreatedAt: instance.LaunchTime,
						State:     domain.LifecycleState(state),
						SizeClass: string(instance.InstanceType),
					}
					if !yield(record, nil) {
						return
					}
				}
			}
		}
	}
}

func (s *ec2Scanner) Delete(ctx context.Context, record domain.ResourceRecord) error {
	_, err := s.client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []string{record.ID},
	})
	if err != nil {
		return fmt.Errorf("failed to terminate EC2 instance %s: %w", record.ID, err)
	}
	return nil
}

func instanceState(instance types.Instance) types.InstanceStateName {
	if instance.State == nil {
		return ""
	}
	return instance.State.Name
}
