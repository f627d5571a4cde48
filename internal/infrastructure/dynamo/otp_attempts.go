package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/idv-gateway/internal/domain"
	"github.com/idv-gateway/internal/pkg/id"
)

// attemptKeyLayout is fixed-width so lexicographic order equals time order.
const attemptKeyLayout = "2006-01-02T15:04:05.000000000Z"

// OTPAttemptRepo is the append-only OTP send log used for rate limiting.
// PK: phone, SK: attempt_key. Items expire through the expires_at TTL attribute.
type OTPAttemptRepo struct {
	client    *dynamodb.Client
	tableName string
	retention time.Duration
	now       func() time.Time
}

func NewOTPAttemptRepo(client *dynamodb.Client, tableName string, retention time.Duration) *OTPAttemptRepo {
	return &OTPAttemptRepo{client: client, tableName: tableName, retention: retention, now: time.Now}
}

// CountRecentOtpAttempts counts attempts for phone created at or after windowStart.
func (r *OTPAttemptRepo) CountRecentOtpAttempts(ctx context.Context, phone string, windowStart time.Time) (int, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("#pk = :phone AND #sk >= :from"),
		ExpressionAttributeNames: map[string]string{
			"#pk": fieldPhone,
			"#sk": fieldAttemptKey,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":phone": &types.AttributeValueMemberS{Value: phone},
			":from":  &types.AttributeValueMemberS{Value: attemptKeyLowerBound(windowStart)},
		},
		Select:         types.SelectCount,
		ConsistentRead: aws.Bool(true),
	}

	total := 0
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return 0, err
		}
		total += int(out.Count)
		if len(out.LastEvaluatedKey) == 0 {
			return total, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// RecordOtpAttempt appends one attempt for phone.
func (r *OTPAttemptRepo) RecordOtpAttempt(ctx context.Context, phone string) error {
	now := r.now().UTC()
	attemptID := id.NewAt(now)
	a := domain.OTPAttempt{
		Phone:      phone,
		AttemptKey: attemptKey(now, attemptID),
		AttemptID:  attemptID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(r.retention).Unix(),
	}
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal otp attempt: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func attemptKey(at time.Time, attemptID string) string {
	return attemptKeyLowerBound(at) + "#" + attemptID
}

func attemptKeyLowerBound(at time.Time) string {
	return at.UTC().Format(attemptKeyLayout)
}
