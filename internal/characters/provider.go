package characters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"LivingHistory/server/internal/models"
)

// ErrCharacterNotFound is returned when no character matches the identifier.
var ErrCharacterNotFound = errors.New("character not found")

// Provider resolves character records for the storyline engine.
type Provider interface {
	Historical(ctx context.Context, id string) (*models.Character, error)
	Custom(ctx context.Context, id string) (*models.Character, error)
}

// Service implements Provider over the built-in historical roster and the
// custom-character table. A nil db disables custom characters.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]*models.Character
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
		cache:  make(map[string]*models.Character),
	}
}

func (s *Service) Historical(_ context.Context, id string) (*models.Character, error) {
	if c := s.cached("historical_" + id); c != nil {
		return c, nil
	}

	c, ok := roster[id]
	if !ok {
		return nil, fmt.Errorf("historical character %s: %w", id, ErrCharacterNotFound)
	}

	s.store("historical_"+id, c)
	return c, nil
}

func (s *Service) Custom(ctx context.Context, id string) (*models.Character, error) {
	if c := s.cached("custom_" + id); c != nil {
		return c, nil
	}

	if s.db == nil {
		return nil, fmt.Errorf("custom character %s: %w", id, ErrCharacterNotFound)
	}

	var row models.CustomCharacterRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("custom character %s: %w", id, ErrCharacterNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load custom character %s: %w", id, err)
	}

	c := rowToCharacter(&row)
	s.store("custom_"+id, c)
	return c, nil
}

// CreateCustom stores a user-created character and returns its record.
func (s *Service) CreateCustom(ctx context.Context, name, era, background string, traits []string) (*models.Character, error) {
	if s.db == nil {
		return nil, errors.New("custom characters unavailable: no database configured")
	}

	row := models.CustomCharacterRow{
		ID:         fmt.Sprintf("custom-%d", time.Now().UnixMilli()),
		Name:       name,
		Era:        era,
		Background: background,
		Traits:     strings.Join(traits, ","),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create custom character: %w", err)
	}

	c := rowToCharacter(&row)
	s.store("custom_"+c.ID, c)
	s.logger.Info("custom character created", zap.String("id", c.ID), zap.String("name", c.Name))
	return c, nil
}

// ListCustom returns all stored custom characters, newest first.
func (s *Service) ListCustom(ctx context.Context) ([]*models.Character, error) {
	if s.db == nil {
		return nil, nil
	}

	var rows []models.CustomCharacterRow
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list custom characters: %w", err)
	}

	out := make([]*models.Character, 0, len(rows))
	for i := range rows {
		out = append(out, rowToCharacter(&rows[i]))
	}
	return out, nil
}

// AllHistorical returns the built-in roster in identifier order.
func (s *Service) AllHistorical() []*models.Character {
	out := make([]*models.Character, 0, len(roster))
	for _, id := range rosterOrder {
		out = append(out, roster[id])
	}
	return out
}

// SearchHistorical filters the roster by name, era, trait, or biography.
func (s *Service) SearchHistorical(query string) []*models.Character {
	all := s.AllHistorical()
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return all
	}

	var out []*models.Character
	for _, c := range all {
		if matchesQuery(c, query) {
			out = append(out, c)
		}
	}
	return out
}

// FilterHistoricalByEra returns roster characters whose era contains the
// given label; "all" returns everything.
func (s *Service) FilterHistoricalByEra(era string) []*models.Character {
	all := s.AllHistorical()
	if era == "" || strings.EqualFold(era, "all") {
		return all
	}

	var out []*models.Character
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Era), strings.ToLower(era)) {
			out = append(out, c)
		}
	}
	return out
}

func matchesQuery(c *models.Character, query string) bool {
	if strings.Contains(strings.ToLower(c.Name), query) ||
		strings.Contains(strings.ToLower(c.Era), query) ||
		strings.Contains(strings.ToLower(c.Biography), query) {
		return true
	}
	for _, t := range c.Traits {
		if strings.Contains(strings.ToLower(t), query) {
			return true
		}
	}
	return false
}

func rowToCharacter(row *models.CustomCharacterRow) *models.Character {
	var traits []string
	if row.Traits != "" {
		traits = strings.Split(row.Traits, ",")
	}
	return &models.Character{
		ID:         row.ID,
		Type:       models.CharacterCustom,
		Name:       row.Name,
		Era:        row.Era,
		Traits:     traits,
		Background: row.Background,
	}
}

func (s *Service) cached(key string) *models.Character {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[key]
}

func (s *Service) store(key string, c *models.Character) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = c
}
