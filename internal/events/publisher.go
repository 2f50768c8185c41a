package events

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maltedev/gatherer-scraper/internal/database"
	"github.com/maltedev/gatherer-scraper/internal/models"
)

type EventType string

const (
	EventTypeCardSetCrawled EventType = "CARD_SET_CRAWLED"
	EventTypeCardCrawled    EventType = "CARD_CRAWLED"
)

const (
	aggregateCardSet = "card_set"
	aggregateCard    = "card"
)

type CardSetCrawledPayload struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	Timestamp     time.Time `json:"timestamp"`
	Set           string    `json:"set"`
	CardCount     int       `json:"card_count"`
	MultiverseIDs []int     `json:"multiverse_ids"`
	JobID         string    `json:"job_id,omitempty"`
}

type CardCrawledPayload struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	Timestamp    time.Time `json:"timestamp"`
	MultiverseID int       `json:"multiverse_id"`
	Title        string    `json:"title"`
	Faces        []string  `json:"faces"`
	HasPrinted   bool      `json:"has_printed"`
	JobID        string    `json:"job_id,omitempty"`
}

func NewCardSetCrawledPayload(set string, rows []*models.CardListRow) *CardSetCrawledPayload {
	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.MultiverseID)
	}

	return &CardSetCrawledPayload{
		Set:           set,
		CardCount:     len(rows),
		MultiverseIDs: ids,
	}
}

func NewCardCrawledPayload(multiverseID int, faces []*models.CardFace) *CardCrawledPayload {
	payload := &CardCrawledPayload{
		MultiverseID: multiverseID,
		Faces:        make([]string, 0, len(faces)),
	}

	for _, face := range faces {
		if payload.Title == "" {
			payload.Title = face.Title
		}
		payload.Faces = append(payload.Faces, face.Name)
		if face.Printed != nil {
			payload.HasPrinted = true
		}
	}

	return payload
}

// Publisher writes crawl events to the transactional outbox. The *WithTx
// variants join a transaction that also stores the crawl result.
type Publisher struct {
	db     *database.DB
	outbox *database.OutboxRepository
	logger *slog.Logger
}

func NewPublisher(db *database.DB, logger *slog.Logger) *Publisher {
	return &Publisher{
		db:     db,
		outbox: database.NewOutboxRepository(db),
		logger: logger.With("component", "event_publisher"),
	}
}

func (p *Publisher) PublishCardSetCrawled(ctx context.Context, payload *CardSetCrawledPayload) error {
	return p.db.Transaction(ctx, func(tx pgx.Tx) error {
		return p.PublishCardSetCrawledWithTx(ctx, tx, payload)
	})
}

func (p *Publisher) PublishCardSetCrawledWithTx(ctx context.Context, tx pgx.Tx, payload *CardSetCrawledPayload) error {
	stamp(&payload.EventID, &payload.EventType, &payload.Timestamp, EventTypeCardSetCrawled)
	return p.insert(ctx, tx, aggregateCardSet, payload.Set, payload.EventType, payload.EventID, payload)
}

func (p *Publisher) PublishCardCrawled(ctx context.Context, payload *CardCrawledPayload) error {
	return p.db.Transaction(ctx, func(tx pgx.Tx) error {
		return p.PublishCardCrawledWithTx(ctx, tx, payload)
	})
}

func (p *Publisher) PublishCardCrawledWithTx(ctx context.Context, tx pgx.Tx, payload *CardCrawledPayload) error {
	stamp(&payload.EventID, &payload.EventType, &payload.Timestamp, EventTypeCardCrawled)
	return p.insert(ctx, tx, aggregateCard, strconv.Itoa(payload.MultiverseID), payload.EventType, payload.EventID, payload)
}

func (p *Publisher) insert(ctx context.Context, tx pgx.Tx, aggregateType, aggregateID, eventType, eventID string, payload any) error {
	event, err := database.NewOutboxEvent(aggregateType, aggregateID, eventType, payload)
	if err != nil {
		return err
	}

	if err := p.outbox.InsertWithTx(ctx, tx, event); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}

	p.logger.Info("event published to outbox",
		"type", eventType,
		"event_id", eventID,
		"aggregate_id", aggregateID,
		"outbox_id", event.ID,
	)

	return nil
}

func stamp(id, eventType *string, ts *time.Time, typ EventType) {
	if *id == "" {
		*id = uuid.New().String()
	}
	if *eventType == "" {
		*eventType = string(typ)
	}
	if ts.IsZero() {
		*ts = time.Now()
	}
}
