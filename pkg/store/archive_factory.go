package store

import "context"

// NewArchiver returns a MongoArchiver when mongoURL is non-empty, otherwise
// a NoopArchiver. The CLI calls this when it builds the Runner's clients,
// and the result is treated as optional operator tooling thereafter.
func NewArchiver(ctx context.Context, mongoURL string) (Archiver, error) {
	if mongoURL == "" {
		return NoopArchiver{}, nil
	}
	return NewMongoArchiver(ctx, mongoURL)
}
