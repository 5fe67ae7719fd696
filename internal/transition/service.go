package transition

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/reelkeep/reelkeep/internal/domain"
)

// Service applies transition decisions against the record store.
type Service struct {
	store  domain.RecordStore
	logger *slog.Logger
}

// NewService creates a new transition service.
func NewService(store domain.RecordStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Save moves the movie described by summary toward target, creating or
// updating its record as needed. The returned record reflects the persisted
// state after the write; on a no-op it is the unchanged existing record.
func (s *Service) Save(ctx context.Context, scope string, summary domain.CatalogSummary, target domain.TransitionTarget) (domain.MovieRecord, Decision, error) {
	var existing *domain.MovieRecord

	found, err := s.store.FindByTitle(ctx, scope, summary.Title)
	switch {
	case err == nil:
		existing = &found
	case errors.Is(err, domain.ErrRecordNotFound):
		// First save for this title
	default:
		s.logger.Error("title lookup failed", "error", err, "title", summary.Title)
		return domain.MovieRecord{}, Decision{}, err
	}

	return s.apply(ctx, scope, existing, summary, target)
}

// SetStatus moves an already-persisted record toward target.
func (s *Service) SetStatus(ctx context.Context, scope string, record domain.MovieRecord, target domain.TransitionTarget) (domain.MovieRecord, Decision, error) {
	return s.apply(ctx, scope, &record, domain.CatalogSummary{}, target)
}

func (s *Service) apply(ctx context.Context, scope string, existing *domain.MovieRecord, summary domain.CatalogSummary, target domain.TransitionTarget) (domain.MovieRecord, Decision, error) {
	decision := Decide(existing, target, summary, time.Now())

	switch decision.Op {
	case OpCreate:
		id, err := s.store.Create(ctx, scope, decision.Record)
		if err != nil {
			s.logger.Error("failed to create record", "error", err, "title", decision.Record.Title)
			return domain.MovieRecord{}, decision, err
		}
		decision.Record.ID = id
		s.logger.Info("record created", "id", id, "title", decision.Record.Title, "target", target.String())
		return decision.Record, decision, nil

	case OpUpdate:
		if err := s.store.Update(ctx, scope, existing.ID, decision.Change); err != nil {
			s.logger.Error("failed to update record", "error", err, "id", existing.ID)
			return domain.MovieRecord{}, decision, err
		}
		updated := *existing
		updated.Watched = decision.Change.Watched
		updated.WantToWatch = decision.Change.WantToWatch
		updated.UpdatedAt = time.Now()
		s.logger.Info("record updated", "id", existing.ID, "target", target.String())
		return updated, decision, nil

	default:
		s.logger.Debug("transition no-op", "title", existing.Title, "message", decision.Message)
		return *existing, decision, nil
	}
}

// Delete removes a record by id. A missing record returns
// domain.ErrRecordNotFound, distinct from a store failure.
func (s *Service) Delete(ctx context.Context, scope, id string) error {
	found, err := s.store.DeleteByID(ctx, scope, id)
	if err != nil {
		s.logger.Error("failed to delete record", "error", err, "id", id)
		return err
	}
	if !found {
		s.logger.Warn("record not found for delete", "id", id)
		return domain.ErrRecordNotFound
	}
	s.logger.Info("record deleted", "id", id)
	return nil
}
