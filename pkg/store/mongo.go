package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/timelane/pkg/chart"
	tlerrors "github.com/matzehuels/timelane/pkg/errors"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Defaults for unset MongoConfig fields.
const (
	DefaultMongoDatabase   = "timelane"
	DefaultMongoCollection = "charts"
)

// MongoStore keeps one document per chart. The document carries the Info
// fields next to the chart so List can skip the chart bodies.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	opts   settings
}

type document struct {
	Info  `bson:",inline"`
	Chart *chart.Chart `bson:"chart"`
}

// NewMongoStore connects to cfg.URI and pings the primary.
func NewMongoStore(ctx context.Context, cfg MongoConfig, opts ...Option) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		opts:   resolve(opts),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*chart.Chart, error) {
	if err := tlerrors.ValidateID(id); err != nil {
		return nil, err
	}
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("find chart %s: %w", id, err)
	}
	if doc.Chart == nil {
		doc.Chart = &chart.Chart{}
	}
	return doc.Chart, nil
}

func (s *MongoStore) Put(ctx context.Context, id string, c *chart.Chart) error {
	if err := tlerrors.ValidateID(id); err != nil {
		return err
	}
	doc := document{Info: infoOf(id, c, time.Now()), Chart: c}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store chart %s: %w", id, err)
	}
	s.opts.logger.Debug("stored chart", "id", id, "rows", doc.Rows, "tasks", doc.Tasks)
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	find := options.Find().
		SetProjection(bson.M{"chart": 0}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, find)
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	var infos []Info
	if err := cur.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("decode chart list: %w", err)
	}
	return infos, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := tlerrors.ValidateID(id); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete chart %s: %w", id, err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
