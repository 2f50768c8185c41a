package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/maltedev/gatherer-scraper/internal/models"
)

// CardSet is a stored list crawl.
type CardSet struct {
	Name      string                `json:"name"`
	CardCount int                   `json:"card_count"`
	CrawledAt time.Time             `json:"crawled_at"`
	Rows      []*models.CardListRow `json:"rows,omitempty"`
}

// Card is a stored detail crawl.
type Card struct {
	MultiverseID int                `json:"multiverse_id"`
	Title        string             `json:"title"`
	Faces        []*models.CardFace `json:"faces"`
	CrawledAt    time.Time          `json:"crawled_at"`
}

// CardStore persists crawl results. A crawl replaces whatever was stored for
// the same set or card.
type CardStore struct {
	db *DB
}

func NewCardStore(db *DB) *CardStore {
	return &CardStore{db: db}
}

func (s *CardStore) SaveCardSet(ctx context.Context, setName string, rows []*models.CardListRow) error {
	return s.db.Transaction(ctx, func(tx pgx.Tx) error {
		return s.SaveCardSetWithTx(ctx, tx, setName, rows)
	})
}

// SaveCardSetWithTx stores rows in page order within tx.
func (s *CardStore) SaveCardSetWithTx(ctx context.Context, tx pgx.Tx, setName string, rows []*models.CardListRow) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO card_sets (name, card_count, crawled_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET
			card_count = EXCLUDED.card_count,
			crawled_at = EXCLUDED.crawled_at`,
		setName, len(rows))
	if err != nil {
		return fmt.Errorf("failed to upsert card set: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM card_list_rows WHERE set_name = $1`, setName); err != nil {
		return fmt.Errorf("failed to clear card list rows: %w", err)
	}

	batch := &pgx.Batch{}
	for i, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal row %d: %w", row.MultiverseID, err)
		}
		batch.Queue(`
			INSERT INTO card_list_rows (set_name, position, multiverse_id, name, row)
			VALUES ($1, $2, $3, $4, $5)`,
			setName, i, row.MultiverseID, row.Name, data)
	}

	if batch.Len() == 0 {
		return nil
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert card list rows: %w", err)
	}

	return nil
}

func (s *CardStore) GetCardSet(ctx context.Context, setName string) (*CardSet, error) {
	set := &CardSet{Name: setName}
	err := s.db.QueryRow(ctx,
		`SELECT card_count, crawled_at FROM card_sets WHERE name = $1`, setName,
	).Scan(&set.CardCount, &set.CrawledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("card set %q: %w", setName, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card set: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT row FROM card_list_rows WHERE set_name = $1 ORDER BY position`, setName)
	if err != nil {
		return nil, fmt.Errorf("failed to get card list rows: %w", err)
	}
	defer rows.Close()

	set.Rows = make([]*models.CardListRow, 0, set.CardCount)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan card list row: %w", err)
		}
		row := &models.CardListRow{}
		if err := json.Unmarshal(data, row); err != nil {
			return nil, fmt.Errorf("failed to unmarshal card list row: %w", err)
		}
		set.Rows = append(set.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return set, nil
}

func (s *CardStore) SaveCard(ctx context.Context, multiverseID int, faces []*models.CardFace) error {
	return s.db.Transaction(ctx, func(tx pgx.Tx) error {
		return s.SaveCardWithTx(ctx, tx, multiverseID, faces)
	})
}

func (s *CardStore) SaveCardWithTx(ctx context.Context, tx pgx.Tx, multiverseID int, faces []*models.CardFace) error {
	data, err := json.Marshal(faces)
	if err != nil {
		return fmt.Errorf("failed to marshal faces: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO cards (multiverse_id, title, faces, crawled_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (multiverse_id) DO UPDATE SET
			title = EXCLUDED.title,
			faces = EXCLUDED.faces,
			crawled_at = EXCLUDED.crawled_at`,
		multiverseID, cardTitle(faces), data)
	if err != nil {
		return fmt.Errorf("failed to upsert card: %w", err)
	}

	return nil
}

func (s *CardStore) GetCard(ctx context.Context, multiverseID int) (*Card, error) {
	card := &Card{MultiverseID: multiverseID}
	var data []byte

	err := s.db.QueryRow(ctx,
		`SELECT title, faces, crawled_at FROM cards WHERE multiverse_id = $1`, multiverseID,
	).Scan(&card.Title, &data, &card.CrawledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("card %d: %w", multiverseID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	if err := json.Unmarshal(data, &card.Faces); err != nil {
		return nil, fmt.Errorf("failed to unmarshal faces: %w", err)
	}

	return card, nil
}

// Counts returns the number of stored sets and cards.
func (s *CardStore) Counts(ctx context.Context) (sets, cards int, err error) {
	err = s.db.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM card_sets), (SELECT COUNT(*) FROM cards)`,
	).Scan(&sets, &cards)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return sets, cards, nil
}

func cardTitle(faces []*models.CardFace) string {
	if len(faces) == 0 {
		return ""
	}
	return faces[0].Title
}
