package household

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"rsvp-households/internal/domain"
)

// DynamoMaxBatchSize is the BatchWriteItem request limit.
const DynamoMaxBatchSize = 25

// DynamoDBClient is the subset of the DynamoDB API the store uses.
type DynamoDBClient interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

var _ DynamoDBClient = (*dynamodb.Client)(nil)

type dynamoStore struct {
	client         DynamoDBClient
	table          string
	consistentRead bool
	logger         zerolog.Logger
}

// NewDynamo returns a Store backed by a DynamoDB table whose partition key
// is household_id and sort key is member_key.
func NewDynamo(client DynamoDBClient, table string, consistentRead bool, logger zerolog.Logger) Store {
	return &dynamoStore{
		client:         client,
		table:          table,
		consistentRead: consistentRead,
		logger:         logger.With().Str("component", "household-dynamodb").Str("table", table).Logger(),
	}
}

func (d *dynamoStore) BatchWrite(ctx context.Context, partitionKey string, rows []Row) ([]Row, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	requests := make([]types.WriteRequest, 0, len(rows))
	for _, row := range rows {
		row.HouseholdID = partitionKey
		item, err := attributevalue.MarshalMap(row)
		if err != nil {
			return nil, fmt.Errorf("marshal row %s/%s: %w", partitionKey, row.MemberKey, err)
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}

	out, err := d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{d.table: requests},
	})
	if err != nil {
		return nil, classifyDynamo(err)
	}

	unprocessed := out.UnprocessedItems[d.table]
	if len(unprocessed) == 0 {
		return nil, nil
	}
	pending := make([]Row, 0, len(unprocessed))
	for _, req := range unprocessed {
		if req.PutRequest == nil {
			continue
		}
		var row Row
		if err := attributevalue.UnmarshalMap(req.PutRequest.Item, &row); err != nil {
			return nil, fmt.Errorf("unmarshal unprocessed item: %w", err)
		}
		pending = append(pending, row)
	}
	d.logger.Debug().Str("household_id", partitionKey).Int("unprocessed", len(pending)).Msg("batch write partially accepted")
	return pending, nil
}

func (d *dynamoStore) Query(ctx context.Context, partitionKey string) ([]Row, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.table),
		KeyConditionExpression: aws.String("household_id = :household_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":household_id": &types.AttributeValueMemberS{Value: partitionKey},
		},
		ConsistentRead: aws.Bool(d.consistentRead),
	}

	var rows []Row
	paginator := dynamodb.NewQueryPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyDynamo(err)
		}
		for _, item := range page.Items {
			var row Row
			if err := attributevalue.UnmarshalMap(item, &row); err != nil {
				key, _ := item["member_key"].(*types.AttributeValueMemberS)
				memberKey := ""
				if key != nil {
					memberKey = key.Value
				}
				return nil, &domain.DecodeError{HouseholdID: partitionKey, MemberKey: memberKey, Field: "item", Reason: err.Error()}
			}
			rows = append(rows, row)
		}
	}
	SortRows(rows)
	return rows, nil
}

func (d *dynamoStore) BatchDelete(ctx context.Context, partitionKey string, memberKeys []string) ([]string, error) {
	if len(memberKeys) == 0 {
		return nil, nil
	}
	requests := make([]types.WriteRequest, 0, len(memberKeys))
	for _, k := range memberKeys {
		requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{
			Key: map[string]types.AttributeValue{
				"household_id": &types.AttributeValueMemberS{Value: partitionKey},
				"member_key":   &types.AttributeValueMemberS{Value: k},
			},
		}})
	}
	out, err := d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{d.table: requests},
	})
	if err != nil {
		return nil, classifyDynamo(err)
	}
	var pending []string
	for _, req := range out.UnprocessedItems[d.table] {
		if req.DeleteRequest == nil {
			continue
		}
		if key, ok := req.DeleteRequest.Key["member_key"].(*types.AttributeValueMemberS); ok {
			pending = append(pending, key.Value)
		}
	}
	return pending, nil
}

func (d *dynamoStore) MaxBatchSize() int {
	return DynamoMaxBatchSize
}

func (d *dynamoStore) Ping(ctx context.Context) error {
	_, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(d.table)})
	return classifyDynamo(err)
}

func classifyDynamo(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ProvisionedThroughputExceededException",
			"RequestLimitExceeded",
			"ThrottlingException",
			"InternalServerError",
			"ServiceUnavailable":
			return fmt.Errorf("%w: %w", ErrTransient, err)
		}
		return err
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return err
}
