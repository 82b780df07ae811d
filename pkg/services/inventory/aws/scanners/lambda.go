package scanners

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/de-tools/tagwarden/pkg/models/domain"
)

// lastModifiedLayout is the ISO 8601 form used by the Lambda API, e.g. 2024-05-01T10:20:30.123+0000
const lastModifiedLayout = "2006-01-02T15:04:05.999-0700"

type LambdaAPI interface {
	ListFunctions(ctx context.Context, in *lambda.ListFunctionsInput, optFns ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error)
	ListTags(ctx context.Context, in *lambda.ListTagsInput, optFns ...func(*lambda.Options)) (*lambda.ListTagsOutput, error)
	DeleteFunction(ctx context.Context, in *lambda.DeleteFunctionInput, optFns ...func(*lambda.Options)) (*lambda.DeleteFunctionOutput, error)
}

type LambdaOptions struct {
	// SelfFunctionName is never listed nor deleted
	SelfFunctionName string
}

type lambdaScanner struct {
	client LambdaAPI
	self   string
}

func NewLambdaScanner(client LambdaAPI, opts LambdaOptions) *lambdaScanner {
	return &lambdaScanner{client: client, self: opts.SelfFunctionName}
}

func (s *lambdaScanner) GetResourceType() domain.ResourceType {
	return domain.ResourceTypeLambda
}

func (s *lambdaScanner) Scan(ctx context.Context) iter.Seq2[domain.ResourceRecord, error] {
	return func(yield func(domain.ResourceRecord, error) bool) {
		paginator := lambda.NewListFunctionsPaginator(s.client, &lambda.ListFunctionsInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(domain.ResourceRecord{}, fmt.Errorf("failed to list Lambda functions: %w", err))
				return
			}

			for _, fn := range page.Functions {
				name := aws.ToString(fn.FunctionName)
				if s.self != "" && name == s.self {
					continue
				}

				arn := aws.ToString(fn.FunctionArn)
				tagsResp, err := s.client.ListTags(ctx, &lambda.ListTagsInput{
					Resource: aws.String(arn),
				})
				if err != nil {
					lookupErr := &domain.TagLookupError{Type: domain.ResourceTypeLambda, ResourceID: name, Err: err}
					if !yield(domain.ResourceRecord{}, lookupErr) {
						return
					}
					continue
				}

				record := domain.ResourceRecord{
					Type:      domain.ResourceTypeLambda,
					ID:        name,
					ARN:       arn,
					Tags:      mapToTags(tagsResp.Tags),
					CreatedAt: parseLastModified(aws.ToString(fn.LastModified)),
					State:     domain.LifecycleState(fn.State),
				}
				if !yield(record, nil) {
					return
				}
			}
		}
	}
}

func (s *lambdaScanner) Delete(ctx context.Context, record domain.ResourceRecord) error {
	if s.self != "" && record.ID == s.self {
		return fmt.Errorf("refusing to delete the governance function %s", record.ID)
	}

	_, err := s.client.DeleteFunction(ctx, &lambda.DeleteFunctionInput{
		FunctionName: aws.String(record.ID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete Lambda function %s: %w", record.ID, err)
	}
	return nil
}

// parseLastModified returns nil when the value is absent or malformed so the grace gate treats the age as unknown
func parseLastModified(v string) *time.Time {
	if v == "" {
		return nil
	}
	ts, err := time.Parse(lastModifiedLayout, v)
	if err != nil {
		return nil
	}
	return &ts
}
