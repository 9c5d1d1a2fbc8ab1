package db

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"horse.fit/tscat/internal/catalog"
)

const messageInsertBatchSize = 500

// SnapshotRows is a catalog flattened into table rows, ready to publish.
type SnapshotRows struct {
	Snapshot CatalogSnapshot
	Messages []CatalogMessage
}

// PublishResult describes a publish call.
type PublishResult struct {
	SnapshotID     int64  `json:"snapshot_id"`
	SnapshotUUID   string `json:"snapshot_uuid"`
	ContentHashHex string `json:"content_hash"`
	Messages       int    `json:"messages"`
	// Duplicate is set when an identical catalog was already published
	// for the language; nothing was written.
	Duplicate bool `json:"duplicate"`
}

// SnapshotListItem is used by the history CLI command.
type SnapshotListItem struct {
	SnapshotUUID     string    `json:"snapshot_uuid"`
	Origin           string    `json:"origin"`
	Language         string    `json:"language"`
	TSVersion        string    `json:"ts_version"`
	MessageCount     int       `json:"message_count"`
	UnfinishedCount  int       `json:"unfinished_count"`
	ValidationErrors int       `json:"validation_errors"`
	ContentHashHex   string    `json:"content_hash"`
	PublishedAt      time.Time `json:"published_at"`
}

// BuildSnapshotRows flattens cat into rows. The content hash is taken
// over the re-serialized catalog, so formatting-only edits of the file
// do not produce a new snapshot.
func BuildSnapshotRows(cat *catalog.Catalog, origin string, problems catalog.ValidationErrors) (SnapshotRows, error) {
	if cat == nil {
		return SnapshotRows{}, fmt.Errorf("catalog is nil")
	}

	var canonical bytes.Buffer
	if err := catalog.Encode(&canonical, cat); err != nil {
		return SnapshotRows{}, fmt.Errorf("encode catalog: %w", err)
	}
	hash := sha256.Sum256(canonical.Bytes())

	if problems == nil {
		problems = catalog.ValidationErrors{}
	}
	problemsJSON, err := json.Marshal(problems)
	if err != nil {
		return SnapshotRows{}, fmt.Errorf("marshal validation errors: %w", err)
	}

	stats := cat.Stats()
	rows := SnapshotRows{
		Snapshot: CatalogSnapshot{
			Origin:           origin,
			Language:         cat.Language,
			SourceLanguage:   optionalString(cat.SourceLanguage),
			TSVersion:        cat.Version,
			ContentHash:      hash[:],
			ContextCount:     stats.Contexts,
			MessageCount:     stats.Messages,
			UnfinishedCount:  stats.Unfinished,
			ObsoleteCount:    stats.Obsolete,
			ValidationErrors: problemsJSON,
		},
		Messages: make([]CatalogMessage, 0, stats.Messages),
	}

	for _, ctx := range cat.Contexts {
		for idx, msg := range ctx.Messages {
			row := CatalogMessage{
				Context:     ctx.Name,
				Position:    idx,
				Source:      msg.Source,
				Comment:     optionalString(msg.Comment),
				ExternalID:  optionalString(msg.ID),
				Numerus:     msg.Numerus,
				Status:      string(msg.Status),
				Translation: msg.Translation.Text,
			}
			if len(msg.Translation.Forms) > 0 {
				if row.NumerusForms, err = json.Marshal(msg.Translation.Forms); err != nil {
					return SnapshotRows{}, fmt.Errorf("marshal numerus forms: %w", err)
				}
			}
			if len(msg.Locations) > 0 {
				if row.Locations, err = json.Marshal(msg.Locations); err != nil {
					return SnapshotRows{}, fmt.Errorf("marshal locations: %w", err)
				}
			}
			rows.Messages = append(rows.Messages, row)
		}
	}
	return rows, nil
}

// Publish stores rows in one transaction. Publishing the same content for
// the same language twice returns the existing snapshot.
func (p *Pool) Publish(ctx context.Context, rows SnapshotRows) (*PublishResult, error) {
	if p == nil || p.gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	snapshot := rows.Snapshot
	result := &PublishResult{
		ContentHashHex: hex.EncodeToString(snapshot.ContentHash),
		Messages:       len(rows.Messages),
	}

	err := p.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing CatalogSnapshot
		err := tx.Where("language = ? AND content_hash = ?", snapshot.Language, snapshot.ContentHash).
			Take(&existing).Error
		switch {
		case err == nil:
			result.SnapshotID = existing.SnapshotID
			result.SnapshotUUID = existing.SnapshotUUID
			result.Duplicate = true
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("look up existing snapshot: %w", err)
		}

		// snapshot_uuid and published_at come back through RETURNING.
		if err := tx.Create(&snapshot).Error; err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}

		if len(rows.Messages) > 0 {
			messages := make([]CatalogMessage, len(rows.Messages))
			for i, msg := range rows.Messages {
				msg.SnapshotID = snapshot.SnapshotID
				messages[i] = msg
			}
			if err := tx.CreateInBatches(messages, messageInsertBatchSize).Error; err != nil {
				return fmt.Errorf("insert messages: %w", err)
			}
		}

		result.SnapshotID = snapshot.SnapshotID
		result.SnapshotUUID = snapshot.SnapshotUUID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListSnapshots returns the most recent snapshots, optionally for one language.
func (p *Pool) ListSnapshots(ctx context.Context, language string, limit int) ([]SnapshotListItem, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}

	const q = `
SELECT
	s.snapshot_uuid::text,
	s.origin,
	s.language,
	s.ts_version,
	s.message_count,
	s.unfinished_count,
	jsonb_array_length(s.validation_errors),
	encode(s.content_hash, 'hex'),
	s.published_at
FROM tscat.catalog_snapshots s
WHERE ($1 = '' OR s.language = $1)
ORDER BY s.published_at DESC, s.snapshot_id DESC
LIMIT $2
`

	rows, err := p.Query(ctx, q, strings.TrimSpace(language), limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	items := make([]SnapshotListItem, 0, limit)
	for rows.Next() {
		var row SnapshotListItem
		if err := rows.Scan(
			&row.SnapshotUUID,
			&row.Origin,
			&row.Language,
			&row.TSVersion,
			&row.MessageCount,
			&row.UnfinishedCount,
			&row.ValidationErrors,
			&row.ContentHashHex,
			&row.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return items, nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &value
}
