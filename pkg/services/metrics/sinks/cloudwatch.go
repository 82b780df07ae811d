package sinks

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/de-tools/tagwarden/pkg/models/domain"
)

type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

type cloudWatchSink struct {
	client CloudWatchAPI
}

func NewCloudWatchSink(client CloudWatchAPI) *cloudWatchSink {
	return &cloudWatchSink{client: client}
}

func (s *cloudWatchSink) PutMetric(ctx context.Context, point domain.MetricPoint) error {
	dims := make([]types.Dimension, 0, len(point.Dimensions))
	for _, d := range point.Dimensions {
		dims = append(dims, types.Dimension{
			Name:  aws.String(d.Name),
			Value: aws.String(d.Value),
		})
	}

	datum := types.MetricDatum{
		MetricName: aws.String(point.Name),
		Value:      aws.Float64(point.Value),
		Unit:       types.StandardUnit(point.Unit),
		Dimensions: dims,
	}
	if !point.Timestamp.IsZero() {
		datum.Timestamp = aws.Time(point.Timestamp)
	}

	_, err := s.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(point.Namespace),
		MetricData: []types.MetricDatum{datum},
	})
	if err != nil {
		return fmt.Errorf("failed to put metric %s/%s: %w", point.Namespace, point.Name, err)
	}
	return nil
}
