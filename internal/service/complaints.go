package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tajious/parkify/internal/metrics"
	"github.com/tajious/parkify/internal/models"
	"github.com/tajious/parkify/internal/storage"
)

type ComplaintService struct {
	store storage.Storage
	log   zerolog.Logger
}

func NewComplaintService(store storage.Storage, log zerolog.Logger) *ComplaintService {
	return &ComplaintService{store: store, log: log}
}

// Submit stores one complaint for the authenticated user. Retries create duplicates.
func (s *ComplaintService) Submit(ctx context.Context, actorID uint, req models.SubmitComplaintRequest) (*models.Complaint, error) {
	if req.UserID != actorID {
		return nil, ErrForbidden
	}

	complaint := &models.Complaint{
		UserID:   req.UserID,
		Complain: req.Complain,
		Detail:   req.Detail,
	}
	if err := s.store.CreateComplaint(ctx, complaint); err != nil {
		return nil, fmt.Errorf("submit complaint: %w", err)
	}

	metrics.ComplaintsSubmittedTotal.Inc()
	return complaint, nil
}
