package gateway

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	tableHashKey       = "id"
	tableReadCapacity  = 5
	tableWriteCapacity = 5
)

// CreateTable creates a provisioned table keyed by a string "id" attribute.
func (g *AWS) CreateTable(ctx context.Context, name string) (err error) {
	const op = "CreateTable"
	start := time.Now()
	defer func() { err = g.observe(ctx, op, start, err) }()

	_, err = g.clients.DynamoDB.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(name),
		KeySchema: []ddbtypes.KeySchemaElement{
			{AttributeName: aws.String(tableHashKey), KeyType: ddbtypes.KeyTypeHash},
		},
		AttributeDefinitions: []ddbtypes.AttributeDefinition{
			{AttributeName: aws.String(tableHashKey), AttributeType: ddbtypes.ScalarAttributeTypeS},
		},
		ProvisionedThroughput: &ddbtypes.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(tableReadCapacity),
			WriteCapacityUnits: aws.Int64(tableWriteCapacity),
		},
	})
	return err
}
