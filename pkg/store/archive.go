package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mcperrors "github.com/mcpcrawl/mcpcrawl/pkg/errors"
	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

// Archiver appends the raw per-candidate ScrapedBundle somewhere durable,
// for operators debugging a dedup or merge decision after the fact. Never
// read by the pipeline itself.
type Archiver interface {
	Archive(ctx context.Context, slug string, bundle model.ScrapedBundle) error
	Close(ctx context.Context) error
}

// NoopArchiver is used whenever CRAWLER_ARCHIVE_MONGO_URL is unset; the
// pipeline runs identically with or without archival.
type NoopArchiver struct{}

func (NoopArchiver) Archive(context.Context, string, model.ScrapedBundle) error { return nil }
func (NoopArchiver) Close(context.Context) error                               { return nil }

// archivedBundle is the document shape written to the archival collection.
type archivedBundle struct {
	Slug       string    `bson:"slug"`
	Ecosystem  string    `bson:"ecosystem"`
	Identifier string    `bson:"identifier"`
	ArchivedAt time.Time `bson:"archived_at"`
	Registry   any       `bson:"registry,omitempty"`
	Repo       any       `bson:"repo,omitempty"`
	Docs       any       `bson:"docs,omitempty"`
}

// MongoArchiver writes each processed candidate's raw bundle to a MongoDB
// collection, one document per candidate per crawl.
type MongoArchiver struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoArchiver connects to uri and targets the mcpcrawl.archived_bundles
// collection.
func NewMongoArchiver(ctx context.Context, uri string) (*MongoArchiver, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "archive: connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "archive: ping mongo")
	}
	collection := client.Database("mcpcrawl").Collection("archived_bundles")
	return &MongoArchiver{client: client, collection: collection}, nil
}

// Archive inserts one archival document for the candidate's raw bundle.
func (a *MongoArchiver) Archive(ctx context.Context, slug string, bundle model.ScrapedBundle) error {
	doc := archivedBundle{
		Slug:       slug,
		Ecosystem:  string(bundle.Candidate.Ecosystem),
		Identifier: bundle.Candidate.Identifier,
		ArchivedAt: time.Now(),
		Registry:   bundle.Registry,
		Repo:       bundle.Repo,
		Docs:       bundle.Docs,
	}
	if _, err := a.collection.InsertOne(ctx, doc); err != nil {
		return mcperrors.Wrap(mcperrors.ErrCodeInternal, err, "archive: insert bundle for %s", slug)
	}
	return nil
}

// Close disconnects the underlying mongo client.
func (a *MongoArchiver) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}
