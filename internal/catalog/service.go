package catalog

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/cookbook/internal/domain"
)

// Store is the persistence the catalog reads from and writes through
type Store interface {
	ListRecipes(ctx context.Context) ([]domain.Recipe, error)
	GetRecipe(ctx context.Context, id string) (*domain.Recipe, error)
	SaveRecipe(ctx context.Context, r domain.Recipe) (*domain.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error
	ListFavorites(ctx context.Context) ([]domain.Favorite, error)
	ToggleFavorite(ctx context.Context, recipeID string) (bool, error)
	GetWeeklyMenu(ctx context.Context, weekKey string) (*domain.WeeklyMenu, error)
	SaveWeeklyMenu(ctx context.Context, menu domain.WeeklyMenu) error
	GetCategories(ctx context.Context) (*domain.Categories, error)
}

// Notifier receives an event after each successful mutation
type Notifier interface {
	Notify(ev domain.ChangeEvent)
}

// Service owns the current snapshot and routes every mutation through the store
type Service struct {
	store     Store
	log       *zap.Logger
	notifier  Notifier
	seed      bool
	wheelSize int
	now       func() time.Time

	mu   sync.RWMutex
	snap *Snapshot
	rng  *rand.Rand
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithNotifier publishes change events to n
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithSampleSeed saves SampleRecipes on Load when the store holds no recipe
func WithSampleSeed(enabled bool) Option {
	return func(s *Service) { s.seed = enabled }
}

// WithWheelSize bounds how many candidates a draw picks from
func WithWheelSize(n int) Option {
	return func(s *Service) { s.wheelSize = n }
}

// WithRand sets the random source used by Draw
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rng = r }
}

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service with an empty snapshot; call Load before use
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		log:       zap.NewNop(),
		wheelSize: DefaultWheelSize,
		now:       time.Now,
		snap:      newSnapshot(nil, nil, domain.DefaultCategories(), time.Time{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := uint64(s.now().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return s
}

// Load seeds sample recipes into an empty store when enabled, then loads the snapshot
func (s *Service) Load(ctx context.Context) error {
	if s.seed {
		recipes, err := s.store.ListRecipes(ctx)
		if err != nil {
			return fmt.Errorf("load recipes: %w", err)
		}
		if len(recipes) == 0 {
			for _, r := range SampleRecipes() {
				if _, err := s.store.SaveRecipe(ctx, r); err != nil {
					return fmt.Errorf("seed sample %s: %w", r.Name, err)
				}
			}
			s.log.Info("seeded sample recipes", zap.Int("count", len(SampleRecipes())))
		}
	}
	return s.Refresh(ctx)
}

// Refresh rereads recipes, favorites and categories. The new snapshot replaces
// the current one only when every read succeeds.
func (s *Service) Refresh(ctx context.Context) error {
	recipes, err := s.store.ListRecipes(ctx)
	if err != nil {
		s.log.Warn("refresh failed, keeping previous snapshot", zap.Error(err))
		return fmt.Errorf("refresh recipes: %w", err)
	}
	favs, err := s.store.ListFavorites(ctx)
	if err != nil {
		s.log.Warn("refresh failed, keeping previous snapshot", zap.Error(err))
		return fmt.Errorf("refresh favorites: %w", err)
	}
	cats, err := s.store.GetCategories(ctx)
	if err != nil {
		s.log.Warn("refresh failed, keeping previous snapshot", zap.Error(err))
		return fmt.Errorf("refresh categories: %w", err)
	}

	snap := newSnapshot(recipes, favs, *cats, s.now())

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.log.Debug("snapshot refreshed",
		zap.Int("recipes", len(recipes)),
		zap.Int("favorites", len(favs)))
	return nil
}

// Snapshot returns the current snapshot
func (s *Service) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// GetRecipe reads a recipe straight from the store; nil when absent
func (s *Service) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	return s.store.GetRecipe(ctx, id)
}

// SaveRecipe validates and stores r, then reloads the snapshot
func (s *Service) SaveRecipe(ctx context.Context, r domain.Recipe) (*domain.Recipe, error) {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.store.SaveRecipe(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("save recipe: %w", err)
	}
	s.log.Info("recipe saved", zap.String("id", saved.ID), zap.String("name", saved.Name))

	err = s.Refresh(ctx)
	s.notify(domain.ChangeEvent{Type: domain.EventRecipeSaved, ID: saved.ID})
	return saved, err
}

// DeleteRecipe removes a recipe and reloads the snapshot
func (s *Service) DeleteRecipe(ctx context.Context, id string) error {
	if err := s.store.DeleteRecipe(ctx, id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	s.log.Info("recipe deleted", zap.String("id", id))

	err := s.Refresh(ctx)
	s.notify(domain.ChangeEvent{Type: domain.EventRecipeDeleted, ID: id})
	return err
}

// ToggleFavorite flips the favorite mark of id and returns the new state
func (s *Service) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	on, err := s.store.ToggleFavorite(ctx, id)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	s.log.Debug("favorite toggled", zap.String("id", id), zap.Bool("favorite", on))

	err = s.Refresh(ctx)
	s.notify(domain.ChangeEvent{Type: domain.EventFavoriteToggled, ID: id, Favorite: &on})
	return on, err
}

// WeeklyMenu returns the stored menu of week, or an empty one
func (s *Service) WeeklyMenu(ctx context.Context, week Week) (*domain.WeeklyMenu, error) {
	menu, err := s.store.GetWeeklyMenu(ctx, week.Key())
	if err != nil {
		return nil, fmt.Errorf("get weekly menu: %w", err)
	}
	return menu, nil
}

// CurrentWeek returns the ISO week of today
func (s *Service) CurrentWeek() Week {
	return WeekOf(s.now())
}

// AssignMenuDay puts recipeID on day slot of week
func (s *Service) AssignMenuDay(ctx context.Context, week Week, slot, recipeID string) (*domain.WeeklyMenu, error) {
	if _, ok := s.Snapshot().Recipe(recipeID); !ok {
		return nil, &domain.ValidationError{Field: "recipeId", Message: fmt.Sprintf("unknown recipe %q", recipeID)}
	}
	return s.updateMenuDay(ctx, week, slot, recipeID)
}

// ClearMenuDay empties day slot of week
func (s *Service) ClearMenuDay(ctx context.Context, week Week, slot string) (*domain.WeeklyMenu, error) {
	return s.updateMenuDay(ctx, week, slot, "")
}

func (s *Service) updateMenuDay(ctx context.Context, week Week, slot, recipeID string) (*domain.WeeklyMenu, error) {
	if !domain.ValidDaySlot(slot) {
		return nil, &domain.ValidationError{Field: "slot", Message: fmt.Sprintf("unknown day slot %q", slot)}
	}

	menu, err := s.WeeklyMenu(ctx, week)
	if err != nil {
		return nil, err
	}
	menu.WeekKey = week.Key()
	if menu.Days == nil {
		menu.Days = map[string]string{}
	}
	if recipeID == "" {
		delete(menu.Days, slot)
	} else {
		menu.Days[slot] = recipeID
	}

	if err := s.store.SaveWeeklyMenu(ctx, *menu); err != nil {
		return nil, fmt.Errorf("save weekly menu: %w", err)
	}
	s.log.Debug("menu updated", zap.String("week", menu.WeekKey), zap.String("slot", slot), zap.String("recipe", recipeID))

	s.notify(domain.ChangeEvent{Type: domain.EventMenuUpdated, ID: menu.WeekKey})
	return menu, nil
}

// Draw picks a random recipe from the snapshot under c
func (s *Service) Draw(c DrawConstraints) (DrawResult, bool) {
	snap := s.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	return Draw(snap.Recipes, c, s.wheelSize, s.rng)
}

// Stats summarizes the snapshot as of now
func (s *Service) Stats() Stats {
	return s.Snapshot().Stats(s.now())
}

func (s *Service) notify(ev domain.ChangeEvent) {
	if s.notifier == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = s.now().UTC()
	}
	s.notifier.Notify(ev)
}
