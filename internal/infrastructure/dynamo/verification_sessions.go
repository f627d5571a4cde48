package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/idv-gateway/internal/domain"
)

// VerificationSessionRepo stores provider verification sessions.
// PK: session_id. Every write is a single UpdateItem so concurrent webhooks for
// the same session are serialized by DynamoDB rather than by this process.
type VerificationSessionRepo struct {
	client    sessionsAPI
	tableName string
}

type sessionsAPI interface {
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

func NewVerificationSessionRepo(client *dynamodb.Client, tableName string) *VerificationSessionRepo {
	return &VerificationSessionRepo{client: client, tableName: tableName}
}

// UpsertVerificationSession creates the session if missing, overwrites the status and
// merges evidence: present fields overwrite, absent fields keep their stored value.
// A redelivery (same status and payload as stored) writes nothing and returns the stored item.
func (r *VerificationSessionRepo) UpsertVerificationSession(ctx context.Context, u domain.SessionUpsert) (*domain.VerificationSession, error) {
	set, defaults := sessionUpdates(u)
	sess, err := r.update(ctx, u.SessionID, set, defaults, redeliveryGuard(u))
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return r.Get(ctx, u.SessionID)
	}
	return sess, err
}

// InitSession records a freshly issued session as pending. Every field is written
// with if_not_exists except the URL, so a webhook that arrived first is never rolled back.
func (r *VerificationSessionRepo) InitSession(ctx context.Context, p domain.PendingSession) (*domain.VerificationSession, error) {
	set, defaults := pendingUpdates(p)
	return r.update(ctx, p.SessionID, set, defaults, nil)
}

func pendingUpdates(p domain.PendingSession) (set, defaults map[string]interface{}) {
	at := p.At.UTC()
	set = map[string]interface{}{
		fieldSessionURL: p.SessionURL,
	}
	defaults = map[string]interface{}{
		fieldSubjectID:  p.SubjectID,
		fieldStatus:     string(domain.StatusPending),
		fieldRiskScore:  0,
		fieldRiskLabels: []string{},
		fieldCreatedAt:  at,
		fieldUpdatedAt:  at,
	}
	return set, defaults
}

// Get reads a session with a consistent read.
func (r *VerificationSessionRepo) Get(ctx context.Context, sessionID string) (*domain.VerificationSession, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldSessionID, sessionID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("verification session not found: %w", domain.ErrNotFound)
	}
	var s domain.VerificationSession
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *VerificationSessionRepo) update(ctx context.Context, sessionID string, set, defaults map[string]interface{}, guard *condition) (*domain.VerificationSession, error) {
	ue, err := buildUpdateExpr(set, defaults)
	if err != nil {
		return nil, err
	}
	in := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldSessionID, sessionID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	}
	if guard != nil {
		for k, v := range guard.Names {
			in.ExpressionAttributeNames[k] = v
		}
		for k, v := range guard.Values {
			in.ExpressionAttributeValues[k] = v
		}
		in.ConditionExpression = aws.String(guard.Expr)
	}
	out, err := r.client.UpdateItem(ctx, in)
	if err != nil {
		return nil, err
	}
	var s domain.VerificationSession
	if err := attributevalue.UnmarshalMap(out.Attributes, &s); err != nil {
		return nil, fmt.Errorf("unmarshal verification session: %w", err)
	}
	return &s, nil
}

// condition is a ConditionExpression with its own placeholders, disjoint from updateExpr's.
type condition struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// redeliveryGuard fails the write when the stored status and raw payload already
// equal u's, so replaying an event leaves updated_at untouched. Nil when u carries no payload.
func redeliveryGuard(u domain.SessionUpsert) *condition {
	if u.RawPayload == "" {
		return nil
	}
	return &condition{
		Expr: "attribute_not_exists(#c_raw) OR #c_status <> :c_status OR #c_raw <> :c_raw",
		Names: map[string]string{
			"#c_status": fieldStatus,
			"#c_raw":    fieldRawPayload,
		},
		Values: map[string]types.AttributeValue{
			":c_status": &types.AttributeValueMemberS{Value: string(u.Status)},
			":c_raw":    &types.AttributeValueMemberS{Value: u.RawPayload},
		},
	}
}

// sessionUpdates splits an upsert into unconditional writes and first-write defaults.
func sessionUpdates(u domain.SessionUpsert) (set, defaults map[string]interface{}) {
	at := u.At.UTC()
	set = map[string]interface{}{
		fieldStatus:    string(u.Status),
		fieldUpdatedAt: at,
	}
	if u.SubjectID != "" {
		set[fieldSubjectID] = u.SubjectID
	}
	if u.RawPayload != "" {
		set[fieldRawPayload] = u.RawPayload
	}

	ev := u.Evidence
	if ev.RiskScore != nil {
		set[fieldRiskScore] = *ev.RiskScore
	}
	if ev.RiskLabels != nil {
		set[fieldRiskLabels] = ev.RiskLabels
	}
	if ev.Document != nil {
		set[fieldDocument] = *ev.Document
	}
	if ev.FailReason != nil {
		set[fieldFailReason] = *ev.FailReason
	}
	if ev.FailCode != nil {
		set[fieldFailCode] = *ev.FailCode
	}

	defaults = map[string]interface{}{
		fieldRiskScore:  0,
		fieldRiskLabels: []string{},
		fieldCreatedAt:  at,
	}
	return set, defaults
}

