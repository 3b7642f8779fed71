package main

import (
	"context"

	"camper/config"
	"camper/model"
	"camper/model/awsdynamo"
	"camper/model/mongodb"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// store is an opened model plus its schema setup and teardown.
type store struct {
	model.Model
	setup func(ctx context.Context) error
	close func(ctx context.Context) error
}

func openStore(ctx context.Context, cfg config.StoreConfig) (*store, error) {
	switch cfg.Backend {
	case config.BackendMongo:
		m, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		return &store{Model: m, setup: m.EnsureIndexes, close: m.Close}, nil
	case config.BackendDynamo:
		awsCfg := aws.Config{Region: aws.String(cfg.Dynamo.Region)}
		if cfg.Dynamo.Endpoint != "" {
			awsCfg.Endpoint = aws.String(cfg.Dynamo.Endpoint)
		}
		sess, err := session.NewSessionWithOptions(session.Options{
			Config:  awsCfg,
			Profile: cfg.Dynamo.Profile,
		})
		if err != nil {
			return nil, errors.Wrap(err, "could not create aws session")
		}
		m := awsdynamo.NewModelFromSession(sess, cfg.Dynamo.TablePrefix)
		return &store{
			Model: m,
			setup: m.CreateTables,
			close: func(context.Context) error { return nil },
		}, nil
	}
	return nil, errors.Errorf("unknown store backend %q", cfg.Backend)
}

var createTablesCmd = &cobra.Command{
	Use:   "create-tables",
	Short: "Create the DynamoDB tables or the MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.close(ctx)
		if err := st.setup(ctx); err != nil {
			return err
		}
		log.Infof("Schema ready on %s", cfg.Store.Backend)
		return nil
	},
}
