package aws

import (
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/tagwarden/pkg/services/inventory"
	"github.com/de-tools/tagwarden/pkg/services/inventory/aws/scanners"
)

type Options struct {
	// SelfFunctionName is the Lambda function running the governance process, if any
	SelfFunctionName string
	// DeleteBatchSize bounds the DeleteObjects batches used when emptying buckets
	DeleteBatchSize int
}

// NewScanners builds one scanner per supported resource family from a loaded SDK config
func NewScanners(cfg awssdk.Config, opts Options) []inventory.Scanner {
	return []inventory.Scanner{
		scanners.NewEC2Scanner(ec2.NewFromConfig(cfg)),
		scanners.NewRDSScanner(rds.NewFromConfig(cfg)),
		scanners.NewS3Scanner(s3.NewFromConfig(cfg), scanners.S3Options{
			Region:    cfg.Region,
			BatchSize: opts.DeleteBatchSize,
		}),
		scanners.NewLambdaScanner(lambda.NewFromConfig(cfg), scanners.LambdaOptions{
			SelfFunctionName: opts.SelfFunctionName,
		}),
	}
}
