package jobs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/maltedev/gatherer-scraper/internal/database"
	"github.com/maltedev/gatherer-scraper/internal/events"
	"github.com/maltedev/gatherer-scraper/internal/models"
)

// CatalogWriter stores crawl results and their events in one transaction.
type CatalogWriter struct {
	db        *database.DB
	cards     *database.CardStore
	publisher *events.Publisher
}

func NewCatalogWriter(db *database.DB, publisher *events.Publisher) *CatalogWriter {
	return &CatalogWriter{
		db:        db,
		cards:     database.NewCardStore(db),
		publisher: publisher,
	}
}

func (w *CatalogWriter) SaveCardSet(ctx context.Context, jobID, setName string, rows []*models.CardListRow) error {
	return w.db.Transaction(ctx, func(tx pgx.Tx) error {
		if err := w.cards.SaveCardSetWithTx(ctx, tx, setName, rows); err != nil {
			return err
		}

		payload := events.NewCardSetCrawledPayload(setName, rows)
		payload.JobID = jobID
		return w.publisher.PublishCardSetCrawledWithTx(ctx, tx, payload)
	})
}

func (w *CatalogWriter) SaveCard(ctx context.Context, jobID string, multiverseID int, faces []*models.CardFace) error {
	return w.db.Transaction(ctx, func(tx pgx.Tx) error {
		if err := w.cards.SaveCardWithTx(ctx, tx, multiverseID, faces); err != nil {
			return err
		}

		payload := events.NewCardCrawledPayload(multiverseID, faces)
		payload.JobID = jobID
		return w.publisher.PublishCardCrawledWithTx(ctx, tx, payload)
	})
}
