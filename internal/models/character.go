package models

import (
	"time"

	"gorm.io/gorm"
)

// CharacterType distinguishes the two character sources.
type CharacterType string

const (
	CharacterHistorical CharacterType = "historical"
	CharacterCustom     CharacterType = "custom"
)

// HistoricalEvent is one dated entry of a character's key-event list.
type HistoricalEvent struct {
	Date         string `json:"date"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Significance string `json:"significance"`
}

// Character is a playable figure, historical or custom. Immutable once loaded.
type Character struct {
	ID         string            `json:"id"`
	Type       CharacterType     `json:"type"`
	Name       string            `json:"name"`
	Era        string            `json:"era"`
	Traits     []string          `json:"traits"`
	Biography  string            `json:"biography,omitempty"`
	Background string            `json:"background,omitempty"`
	KeyEvents  []HistoricalEvent `json:"keyEvents,omitempty"`
}

// CustomCharacterRow is the MySQL row backing a user-created character.
type CustomCharacterRow struct {
	ID         string         `gorm:"primaryKey;size:64" json:"id"`
	Name       string         `gorm:"size:255" json:"name"`
	Era        string         `gorm:"size:128" json:"era"`
	Background string         `gorm:"type:text" json:"background"`
	Traits     string         `gorm:"type:text" json:"-"` // comma-joined trait list
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
