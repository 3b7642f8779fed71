package awsdynamo

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/pkg/errors"
)

func throughput() *dynamodb.ProvisionedThroughput {
	return &dynamodb.ProvisionedThroughput{
		ReadCapacityUnits:  aws.Int64(1),
		WriteCapacityUnits: aws.Int64(1),
	}
}

func hashKey(attr string) []*dynamodb.KeySchemaElement {
	return []*dynamodb.KeySchemaElement{
		{
			AttributeName: aws.String(attr),
			KeyType:       aws.String(dynamodb.KeyTypeHash),
		},
	}
}

func stringAttrs(names ...string) []*dynamodb.AttributeDefinition {
	defs := make([]*dynamodb.AttributeDefinition, len(names))
	for i, n := range names {
		defs[i] = &dynamodb.AttributeDefinition{
			AttributeName: aws.String(n),
			AttributeType: aws.String(dynamodb.ScalarAttributeTypeS),
		}
	}
	return defs
}

func globalIndex(name, attr string) *dynamodb.GlobalSecondaryIndex {
	return &dynamodb.GlobalSecondaryIndex{
		IndexName: aws.String(name),
		KeySchema: hashKey(attr),
		Projection: &dynamodb.Projection{
			ProjectionType: aws.String(dynamodb.ProjectionTypeAll),
		},
		ProvisionedThroughput: throughput(),
	}
}

// TableInputs describes every table of the model.
func (m *DynamoModel) TableInputs() []*dynamodb.CreateTableInput {
	return []*dynamodb.CreateTableInput{
		{
			TableName:             aws.String(m.table(TableUser)),
			KeySchema:             hashKey("id"),
			AttributeDefinitions:  stringAttrs("id", "email_key", "username_key", "reset_token"),
			ProvisionedThroughput: throughput(),
			GlobalSecondaryIndexes: []*dynamodb.GlobalSecondaryIndex{
				globalIndex(IndexEmail, "email_key"),
				globalIndex(IndexUsername, "username_key"),
				globalIndex(IndexResetToken, "reset_token"),
			},
		},
		{
			TableName:             aws.String(m.table(TableStory)),
			KeySchema:             hashKey("id"),
			AttributeDefinitions:  stringAttrs("id", "author_uid"),
			ProvisionedThroughput: throughput(),
			GlobalSecondaryIndexes: []*dynamodb.GlobalSecondaryIndex{
				globalIndex(IndexAuthor, "author_uid"),
			},
		},
		{
			TableName:             aws.String(m.table(TableComment)),
			KeySchema:             hashKey("id"),
			AttributeDefinitions:  stringAttrs("id", "author_uid"),
			ProvisionedThroughput: throughput(),
			GlobalSecondaryIndexes: []*dynamodb.GlobalSecondaryIndex{
				globalIndex(IndexAuthor, "author_uid"),
			},
		},
	}
}

// CreateTables creates all tables and waits until they are active.
func (m *DynamoModel) CreateTables(ctx context.Context) error {
	for _, in := range m.TableInputs() {
		if _, err := m.db.CreateTableWithContext(ctx, in); err != nil {
			return errors.Wrapf(err, "create table %s", aws.StringValue(in.TableName))
		}
		desc := &dynamodb.DescribeTableInput{TableName: in.TableName}
		if err := m.db.WaitUntilTableExistsWithContext(ctx, desc); err != nil {
			return errors.Wrapf(err, "wait for table %s", aws.StringValue(in.TableName))
		}
	}
	return nil
}

// DeleteTables drops all tables, ignoring tables that do not exist.
func (m *DynamoModel) DeleteTables(ctx context.Context) error {
	for _, in := range m.TableInputs() {
		_, err := m.db.DeleteTableWithContext(ctx, &dynamodb.DeleteTableInput{TableName: in.TableName})
		if err != nil {
			if aerr, ok := err.(interface{ Code() string }); ok && aerr.Code() == dynamodb.ErrCodeResourceNotFoundException {
				continue
			}
			return errors.Wrapf(err, "delete table %s", aws.StringValue(in.TableName))
		}
	}
	return nil
}
