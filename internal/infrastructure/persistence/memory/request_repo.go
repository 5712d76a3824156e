// Package memory provides in-memory implementations of the persistence
// ports. They back the unit tests (including the concurrency tests,
// which need a store without cgo) and are handy for local development
// without a database file.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/garyjia/leave-bot/internal/application/port"
	"github.com/garyjia/leave-bot/internal/domain/entity"
	"github.com/garyjia/leave-bot/internal/domain/leave"
)

// RequestRepository is an in-memory port.RequestRepository.
type RequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*entity.LeaveRequest
}

// NewRequestRepository creates an empty in-memory request repository.
func NewRequestRepository() *RequestRepository {
	return &RequestRepository{
		requests: make(map[string]*entity.LeaveRequest),
	}
}

// Create stores a new request.
func (r *RequestRepository) Create(ctx context.Context, req *entity.LeaveRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

// GetByID returns a copy of the stored request.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*entity.LeaveRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, leave.ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

// MarkDecided transitions the request out of PENDING. The check and the
// write happen under one lock, so only the first concurrent decision
// takes effect.
func (r *RequestRepository) MarkDecided(ctx context.Context, id, status, note string, respondedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return false, leave.ErrRequestNotFound
	}
	if req.Status != entity.StatusPending {
		return false, nil
	}

	req.Status = status
	req.ResponseNote = note
	t := respondedAt
	req.RespondedAt = &t
	return true, nil
}

// ListRecent returns matching requests, most recent first.
func (r *RequestRepository) ListRecent(ctx context.Context, filter port.RequestFilter) ([]*entity.LeaveRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.LeaveRequest, 0, len(r.requests))
	for _, req := range r.requests {
		if filter.RequesterID != "" && req.RequesterID != filter.RequesterID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		cp := *req
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].RequestedAt.After(out[j].RequestedAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
