package scanners

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/de-tools/tagwarden/pkg/models/domain"
	"github.com/rs/zerolog"
)

// MaxDeleteBatch is the DeleteObjects per-call item limit
const MaxDeleteBatch = 1000

var noTagsErrorCodes = map[string]struct{}{
	"NoSuchTagSet":           {},
	"NoSuchTagConfiguration": {},
	"NoSuchTagSetError":      {},
}

type S3API interface {
	ListBuckets(ctx context.Context, in *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	GetBucketTagging(ctx context.Context, in *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
	ListObjectVersions(ctx context.Context, in *s3.ListObjectVersionsInput, optFns ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	DeleteBucket(ctx context.Context, in *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
}

type S3Options struct {
	// Region restricts listing to buckets in that region; empty lists every bucket
	Region string
	// BatchSize is the number of object versions per DeleteObjects call, capped at MaxDeleteBatch
	BatchSize int
}

type s3Scanner struct {
	client    S3API
	region    string
	batchSize int
}

func NewS3Scanner(client S3API, opts S3Options) *s3Scanner {
	batch := opts.BatchSize
	if batch <= 0 || batch > MaxDeleteBatch {
		batch = MaxDeleteBatch
	}
	return &s3Scanner{
		client:    client,
		region:    opts.Region,
		batchSize: batch,
	}
}

func (s *s3Scanner) GetResourceType() domain.ResourceType {
	return domain.ResourceTypeS3
}

func (s *s3Scanner) Scan(ctx context.Context) iter.Seq2[domain.ResourceRecord, error] {
	return func(yield func(domain.ResourceRecord, error) bool) {
		var continuationToken *string
		for {
			input := &s3.ListBucketsInput{ContinuationToken: continuationToken}
			if s.region != "" {
				input.BucketRegion = aws.String(s.region)
			}

			resp, err := s.client.ListBuckets(ctx, input)
			if err != nil {
				yield(domain.ResourceRecord{}, fmt.Errorf("failed to list S3 buckets: %w", err))
				return
			}

			for _, bucket := range resp.Buckets {
				name := aws.ToString(bucket.Name)
				tags, err := s.bucketTags(ctx, name)
				if err != nil {
					lookupErr := &domain.TagLookupError{Type: domain.ResourceTypeS3, ResourceID: name, Err: err}
					if !yield(domain.ResourceRecord{}, lookupErr) {
						return
					}
					continue
				}

				record := domain.ResourceRecord{
					Type:      domain.ResourceTypeS3,
					ID:        name,
					ARN:       "arn:aws:s3:::" + name,
					Tags:      tags,
					CreatedAt: bucket.CreationDate,
				}
				if !yield(record, nil) {
					return
				}
			}

			if aws.ToString(resp.ContinuationToken) == "" {
				return
			}
			continuationToken = resp.ContinuationToken
		}
	}
}

func (s *s3Scanner) bucketTags(ctx context.Context, bucket string) (domain.Tags, error) {
	resp, err := s.client.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			if _, ok := noTagsErrorCodes[apiErr.ErrorCode()]; ok {
				return domain.Tags{}, nil
			}
		}
		return nil, err
	}

	return toTags(resp.TagSet, func(t types.Tag) (*string, *string) {
		return t.Key, t.Value
	}), nil
}

// Delete empties the bucket and removes it. The bucket is only removed once every
// listed version and delete marker has been deleted; if emptying fails the bucket
// is left in place and an *domain.EmptyingError is returned.
func (s *s3Scanner) Delete(ctx context.Context, record domain.ResourceRecord) error {
	if err := s.empty(ctx, record.ID); err != nil {
		return err
	}

	_, err := s.client.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(record.ID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete S3 bucket %s: %w", record.ID, err)
	}
	return nil
}

// bucketEmptier holds the state of one emptying pass; it is never shared between buckets
type bucketEmptier struct {
	client    S3API
	bucket    string
	batchSize int
	pending   []types.ObjectIdentifier
	submitted int
	batches   int
}

func (s *s3Scanner) empty(ctx context.Context, bucket string) error {
	logger := zerolog.Ctx(ctx).With().Str("bucket", bucket).Logger()

	e := &bucketEmptier{
		client:    s.client,
		bucket:    bucket,
		batchSize: s.batchSize,
		pending:   make([]types.ObjectIdentifier, 0, s.batchSize),
	}

	var keyMarker, versionMarker *string
	for {
		page, err := s.client.ListObjectVersions(ctx, &s3.ListObjectVersionsInput{
			Bucket:          aws.String(bucket),
			KeyMarker:       keyMarker,
			VersionIdMarker: versionMarker,
		})
		if err != nil {
			return &domain.EmptyingError{
				Bucket:    bucket,
				Submitted: e.submitted,
				Err:       fmt.Errorf("failed to list object versions: %w", err),
			}
		}

		for _, v := range page.Versions {
			if err := e.add(ctx, v.Key, v.VersionId); err != nil {
				return err
			}
		}
		for _, m := range page.DeleteMarkers {
			if err := e.add(ctx, m.Key, m.VersionId); err != nil {
				return err
			}
		}

		if !aws.ToBool(page.IsTruncated) {
			break
		}
		if page.NextKeyMarker == nil && page.NextVersionIdMarker == nil {
			return &domain.EmptyingError{
				Bucket:    bucket,
				Submitted: e.submitted,
				Err:       errors.New("truncated object version listing without a continuation marker"),
			}
		}
		keyMarker = page.NextKeyMarker
		versionMarker = page.NextVersionIdMarker
	}

	if err := e.flush(ctx); err != nil {
		return err
	}

	logger.Debug().
		Int("objects", e.submitted).
		Int("batches", e.batches).
		Msg("bucket emptied")
	return nil
}

func (e *bucketEmptier) add(ctx context.Context, key, versionID *string) error {
	e.pending = append(e.pending, types.ObjectIdentifier{Key: key, VersionId: versionID})
	if len(e.pending) < e.batchSize {
		return nil
	}
	return e.flush(ctx)
}

func (e *bucketEmptier) flush(ctx context.Context) error {
	if len(e.pending) == 0 {
		return nil
	}

	batch := e.pending
	e.batches++
	resp, err := e.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(e.bucket),
		Delete: &types.Delete{
			Objects: batch,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return &domain.EmptyingError{
			Bucket:    e.bucket,
			Submitted: e.submitted,
			Err:       fmt.Errorf("failed to delete batch %d: %w", e.batches, err),
		}
	}
	if len(resp.Errors) > 0 {
		first := resp.Errors[0]
		return &domain.EmptyingError{
			Bucket:    e.bucket,
			Submitted: e.submitted + len(batch) - len(resp.Errors),
			Err: fmt.Errorf("batch %d: %d objects not deleted, first %s: %s %s",
				e.batches, len(resp.Errors), aws.ToString(first.Key),
				aws.ToString(first.Code), aws.ToString(first.Message)),
		}
	}

	e.submitted += len(batch)
	e.pending = make([]types.ObjectIdentifier, 0, e.batchSize)
	return nil
}
