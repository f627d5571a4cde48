package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/idv-gateway/internal/domain"
)

// publisher is the slice of the SNS API used for direct SMS.
type publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Provider sends SMS directly to a phone number via AWS SNS. It is the last
// entry in the failover list and only enabled explicitly.
type Provider struct {
	client   publisher
	senderID string
}

func NewProvider(awsCfg aws.Config, senderID string) *Provider {
	return &Provider{client: sns.NewFromConfig(awsCfg), senderID: senderID}
}

func (p *Provider) Name() string { return "sns" }

func (p *Provider) SendMessage(ctx context.Context, msg domain.OTPMessage) error {
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
	}
	if p.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(p.senderID)}
	}
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(msg.Phone),
		Message:           aws.String(msg.Text),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("sns: %w", err)
	}
	return nil
}
