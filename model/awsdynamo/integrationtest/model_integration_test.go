package integrationtest

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"camper/model"
	"camper/model/awsdynamo"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
)

var awsprofile = flag.String("profile", os.Getenv("AWS_PROFILE"), "AWS Profile using shared credential file")
var integration = flag.Bool("integration", false, "Enable integration tests")
var dynamodebug = flag.Bool("dynamodebug", false, "Enable for debug out of dynamo requests")
var endpoint = flag.String("endpoint", "http://localhost:8000", "DynamoDB endpoint")

const prefix = "it_"

var sess *session.Session

func TestMain(m *testing.M) {
	flag.Parse()
	if !*integration {
		fmt.Fprintln(os.Stderr, "Skipping integration tests")
		os.Exit(0)
	}
	cfg := &aws.Config{
		Region:      aws.String("us-west-2"),
		Endpoint:    aws.String(*endpoint),
		Credentials: credentials.NewSharedCredentials("", *awsprofile),
	}
	sess = session.Must(session.NewSession(cfg))
	if *dynamodebug {
		sess.Config.LogLevel = aws.LogLevel(aws.LogDebug)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	dm := awsdynamo.NewModelFromSession(sess, prefix)
	if err := dm.DeleteTables(ctx); err != nil {
		fmt.Printf("Warn: Delete tables failed: %s\n", err)
	}
	if err := dm.CreateTables(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating tables: %s", err)
		os.Exit(1)
	}
	if err := loadUserFixtures(ctx, dm); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading 'user' integration fixtures: %s", err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

var mmodel model.Model

func setup() {
	mmodel = awsdynamo.NewModelFromSession(sess, prefix)
}
