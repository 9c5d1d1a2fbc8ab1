package db

import (
	"encoding/json"
	"time"
)

// CatalogSnapshot maps tscat.catalog_snapshots: one published TS file.
type CatalogSnapshot struct {
	SnapshotID       int64           `gorm:"column:snapshot_id;primaryKey;autoIncrement"`
	SnapshotUUID     string          `gorm:"column:snapshot_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	Origin           string          `gorm:"column:origin;type:text;not null"`
	Language         string          `gorm:"column:language;type:text;not null"`
	SourceLanguage   *string         `gorm:"column:source_language;type:text"`
	TSVersion        string          `gorm:"column:ts_version;type:text;not null"`
	ContentHash      []byte          `gorm:"column:content_hash;type:bytea;not null"`
	ContextCount     int             `gorm:"column:context_count;type:integer;not null;default:0"`
	MessageCount     int             `gorm:"column:message_count;type:integer;not null;default:0"`
	UnfinishedCount  int             `gorm:"column:unfinished_count;type:integer;not null;default:0"`
	ObsoleteCount    int             `gorm:"column:obsolete_count;type:integer;not null;default:0"`
	ValidationErrors json.RawMessage `gorm:"column:validation_errors;type:jsonb;not null;default:'[]'"`
	PublishedAt      time.Time       `gorm:"column:published_at;type:timestamptz;not null;default:now()"`
}

func (CatalogSnapshot) TableName() string { return "tscat.catalog_snapshots" }

// CatalogMessage maps tscat.catalog_messages.
type CatalogMessage struct {
	MessageID    int64           `gorm:"column:message_id;primaryKey;autoIncrement"`
	SnapshotID   int64           `gorm:"column:snapshot_id;type:bigint;not null"`
	Context      string          `gorm:"column:context;type:text;not null"`
	Position     int             `gorm:"column:position;type:integer;not null"`
	Source       string          `gorm:"column:source;type:text;not null"`
	Comment      *string         `gorm:"column:comment;type:text"`
	ExternalID   *string         `gorm:"column:external_id;type:text"`
	Numerus      bool            `gorm:"column:numerus;type:boolean;not null;default:false"`
	Status       string          `gorm:"column:status;type:tscat.message_status;not null"`
	Translation  string          `gorm:"column:translation;type:text;not null;default:''"`
	NumerusForms json.RawMessage `gorm:"column:numerus_forms;type:jsonb"`
	Locations    json.RawMessage `gorm:"column:locations;type:jsonb"`
	CreatedAt    time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (CatalogMessage) TableName() string { return "tscat.catalog_messages" }

func autoMigrateModels() []any {
	return []any{
		&CatalogSnapshot{},
		&CatalogMessage{},
	}
}
