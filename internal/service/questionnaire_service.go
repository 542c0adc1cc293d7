package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"qualiobra/internal/cache"
	"qualiobra/internal/diagnostic"
	"qualiobra/internal/model"
	"qualiobra/internal/repository"
)

var (
	ErrInvalidLevel = errors.New("invalid assessment level")
	ErrItemNotFound = errors.New("questionnaire item not found")
)

// QuestionnaireService serves the active questionnaire
type QuestionnaireService struct {
	itemRepo  repository.ItemRepo
	itemCache cache.ItemCache
	order     diagnostic.GroupOrder
}

// NewQuestionnaireService creates a new questionnaire service. itemCache may be nil.
func NewQuestionnaireService(itemRepo repository.ItemRepo, itemCache cache.ItemCache, order diagnostic.GroupOrder) *QuestionnaireService {
	return &QuestionnaireService{
		itemRepo:  itemRepo,
		itemCache: itemCache,
		order:     order,
	}
}

// Order is the group order used for every grouping this service produces
func (s *QuestionnaireService) Order() diagnostic.GroupOrder {
	return s.order
}

// AllActive returns every active item regardless of level
func (s *QuestionnaireService) AllActive(ctx context.Context) ([]model.QuestionnaireItem, error) {
	if s.itemCache != nil {
		items, err := s.itemCache.GetItems(ctx)
		if err != nil {
			log.Printf("item cache read failed: %v", err)
		} else if items != nil {
			return items, nil
		}
	}

	items, err := s.itemRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load questionnaire: %w", err)
	}
	active := make([]model.QuestionnaireItem, 0, len(items))
	for _, item := range items {
		if item.Active {
			active = append(active, item)
		}
	}

	if s.itemCache != nil {
		if err := s.itemCache.SetItems(ctx, active); err != nil {
			log.Printf("item cache write failed: %v", err)
		}
	}
	return active, nil
}

// ActiveItems returns the active items assessed at level
func (s *QuestionnaireService) ActiveItems(ctx context.Context, level model.Level) ([]model.QuestionnaireItem, error) {
	if !level.IsValid() {
		return nil, ErrInvalidLevel
	}
	all, err := s.AllActive(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]model.QuestionnaireItem, 0, len(all))
	for _, item := range all {
		if level.Includes(item.ApplicableLevel) {
			items = append(items, item)
		}
	}
	return items, nil
}

// Groups returns the active items of level grouped by requirement
func (s *QuestionnaireService) Groups(ctx context.Context, level model.Level) ([]model.RequirementGroup, error) {
	items, err := s.ActiveItems(ctx, level)
	if err != nil {
		return nil, err
	}
	return diagnostic.GroupByRequirement(items, s.order), nil
}

// Item finds an active item assessed at level
func (s *QuestionnaireService) Item(ctx context.Context, level model.Level, itemID string) (*model.QuestionnaireItem, error) {
	items, err := s.ActiveItems(ctx, level)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == itemID {
			return &items[i], nil
		}
	}
	return nil, ErrItemNotFound
}

// ImportItems validates and upserts questionnaire items. Composite
// "<code> - <title>" labels are split into code and title here.
func (s *QuestionnaireService) ImportItems(ctx context.Context, items []model.QuestionnaireItem) error {
	for i := range items {
		item := &items[i]
		if item.ID == "" {
			return fmt.Errorf("item %d: missing id", i)
		}
		if !item.ApplicableLevel.IsValid() {
			return fmt.Errorf("item %s: %w %q", item.ID, ErrInvalidLevel, item.ApplicableLevel)
		}
		if item.ScoringKind == "" {
			item.ScoringKind = model.ScoringFivePoint
		}
		if item.ScoringKind != model.ScoringFivePoint && item.ScoringKind != model.ScoringBinary {
			return fmt.Errorf("item %s: unknown scoring kind %q", item.ID, item.ScoringKind)
		}
		code, title := diagnostic.ParseRequirement(item.RequirementCode)
		if code == "" {
			return fmt.Errorf("item %s: missing requirement code", item.ID)
		}
		item.RequirementCode = code
		if item.RequirementTitle == "" {
			item.RequirementTitle = title
		}
	}

	if err := s.itemRepo.Upsert(ctx, items); err != nil {
		return fmt.Errorf("failed to import items: %w", err)
	}
	if s.itemCache != nil {
		if err := s.itemCache.Invalidate(ctx); err != nil {
			log.Printf("item cache invalidate failed: %v", err)
		}
	}
	log.Printf("Imported %d questionnaire items", len(items))
	return nil
}
