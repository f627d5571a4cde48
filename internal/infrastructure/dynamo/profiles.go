package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/idv-gateway/internal/domain"
)

// ProfileRepo reads and flags profiles owned by the profile service.
// PK: profile_id. Only the verification attributes are ever written here.
type ProfileRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewProfileRepo(client *dynamodb.Client, tableName string) *ProfileRepo {
	return &ProfileRepo{client: client, tableName: tableName}
}

func (r *ProfileRepo) Get(ctx context.Context, profileID string) (*domain.Profile, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldProfileID, profileID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("profile not found: %w", domain.ErrNotFound)
	}
	var p domain.Profile
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetAuthenticatedUser resolves the token subject to an enabled profile.
func (r *ProfileRepo) GetAuthenticatedUser(ctx context.Context, claims domain.UserIdentity) (*domain.UserIdentity, error) {
	if claims.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	p, err := r.Get(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("profile %s: %w", claims.UserID, domain.ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get profile: %w", domain.ErrPersistence, err)
	}
	if !p.Enable {
		return nil, fmt.Errorf("profile %s disabled: %w", claims.UserID, domain.ErrUnauthenticated)
	}
	return &domain.UserIdentity{UserID: p.ProfileID, SessionID: claims.SessionID}, nil
}

// MarkProfileVerified flags the profile as identity-verified by sessionID.
// Returns domain.ErrNotFound when no such profile exists; the profile is never created here.
func (r *ProfileRepo) MarkProfileVerified(ctx context.Context, subjectID, sessionID string) error {
	now := time.Now().UTC()
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldIsIdentityVerified:    true,
		fieldVerificationSessionID: sessionID,
		fieldVerifiedAt:            now,
		fieldUpdatedAt:             now,
	}, nil)
	if err != nil {
		return err
	}
	ue.Names["#pk"] = fieldProfileID
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldProfileID, subjectID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("profile %s: %w", subjectID, domain.ErrNotFound)
	}
	return err
}
