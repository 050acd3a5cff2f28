package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const pointerKeyPrefix = "last_embed_"

// MessagePointer is the most recently created or edited panel message of a
// guild. IDs are snowflakes kept as decimal strings in Go and encoded as
// JSON integers on disk.
type MessagePointer struct {
	ChannelID string
	MessageID string
}

type pointerRecord struct {
	ChannelID uint64 `json:"channel_id"`
	MessageID uint64 `json:"message_id"`
}

func (p MessagePointer) MarshalJSON() ([]byte, error) {
	ch, err := strconv.ParseUint(p.ChannelID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid channel id %q", p.ChannelID)
	}
	msg, err := strconv.ParseUint(p.MessageID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid message id %q", p.MessageID)
	}

	return json.Marshal(pointerRecord{ChannelID: ch, MessageID: msg})
}

func (p *MessagePointer) UnmarshalJSON(b []byte) error {
	var r pointerRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}

	p.ChannelID = strconv.FormatUint(r.ChannelID, 10)
	p.MessageID = strconv.FormatUint(r.MessageID, 10)
	return nil
}

// PointerKey is the store key of a guild's panel pointer.
func PointerKey(guildID string) string {
	return pointerKeyPrefix + guildID
}

// LoadPointer returns ErrNotFound when the guild never created a panel.
func LoadPointer(ctx context.Context, s Store, guildID string) (MessagePointer, error) {
	var p MessagePointer

	raw, err := s.Load(ctx, PointerKey(guildID))
	if err != nil {
		return p, err
	}

	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("decode pointer for guild %s: %w", guildID, err)
	}

	return p, nil
}

func SavePointer(ctx context.Context, s Store, guildID string, p MessagePointer) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pointer for guild %s: %w", guildID, err)
	}

	return s.Save(ctx, PointerKey(guildID), raw)
}

// KVEntry is the row layout shared by the SQL backends.
type KVEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_store"
}
