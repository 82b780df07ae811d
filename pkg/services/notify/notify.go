package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/de-tools/tagwarden/pkg/models/domain"
)

// Notifier is satisfied by both implementations
type Notifier interface {
	Publish(ctx context.Context, run *domain.RunReport) error
}

// New returns an SNS notifier for topicARN, or a log notifier when it is empty
func New(cfg aws.Config, topicARN string) Notifier {
	if topicARN == "" {
		return NewLogNotifier()
	}
	return NewSNSNotifier(sns.NewFromConfig(cfg), topicARN)
}
