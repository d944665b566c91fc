package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"loan-assistant/internal/common/errors"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/models"
)

// Indexer mirrors ledger rows into a search index for ad-hoc analytics.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	log    logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{client: client, index: index, log: log}
}

// Index writes one record as a document keyed by application id.
func (i *Indexer) Index(ctx context.Context, rec *models.ApplicationRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return errors.NewSearchIndexFailedError(err)
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithDocumentID(rec.ID),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		return errors.NewSearchIndexFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewSearchIndexFailedError(fmt.Errorf("index response: %s", res.Status()))
	}
	return nil
}

// CompositeSink appends to the relational ledger and mirrors to the search
// index. The relational write is authoritative; an indexing failure is
// logged and swallowed so a search outage never blocks a decision.
type CompositeSink struct {
	primary Sink
	indexer *Indexer
	log     logger.Logger
}

func NewCompositeSink(primary Sink, indexer *Indexer, log logger.Logger) *CompositeSink {
	return &CompositeSink{primary: primary, indexer: indexer, log: log}
}

func (c *CompositeSink) Append(ctx context.Context, rec *models.ApplicationRecord) error {
	if err := c.primary.Append(ctx, rec); err != nil {
		return err
	}

	if c.indexer != nil {
		if err := c.indexer.Index(ctx, rec); err != nil {
			c.log.WithError(err).Warn("Search index write failed", map[string]interface{}{
				"applicationId": rec.ID,
			})
		}
	}
	return nil
}

var _ Sink = (*CompositeSink)(nil)
