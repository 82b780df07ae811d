package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/de-tools/tagwarden/pkg/models/domain"
	"github.com/rs/zerolog"
)

type SNSAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type snsNotifier struct {
	client   SNSAPI
	topicARN string
}

func NewSNSNotifier(client SNSAPI, topicARN string) *snsNotifier {
	return &snsNotifier{client: client, topicARN: topicARN}
}

func (n *snsNotifier) Publish(ctx context.Context, run *domain.RunReport) error {
	body, err := Render(run)
	if err != nil {
		return err
	}

	resp, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(Subject),
		Message:  aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to publish report to %s: %w", n.topicARN, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("topic_arn", n.topicARN).
		Str("message_id", aws.ToString(resp.MessageId)).
		Msg("run report published")
	return nil
}
