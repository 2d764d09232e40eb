package service

import (
	"context"
	"errors"

	"github.com/BrandonDHaskell/powerwatch/internal/powerwatch/store"
)

var (
	ErrInvalidUserID = errors.New("user id must be a positive integer")
)

// ApprovalService holds the per-user approval flags.  It performs no
// identity check of its own: callers must only invoke Approve and
// Disapprove on behalf of the administrator.
type ApprovalService struct {
	state *store.State
}

// NewApprovalService keeps its flags in st under approval:<user id>.
func NewApprovalService(st *store.State) *ApprovalService {
	return &ApprovalService{state: st}
}

// Approve lets userID ask for the light status.  It overwrites any
// earlier flag.
func (s *ApprovalService) Approve(ctx context.Context, userID int64) error {
	return s.set(ctx, userID, store.Approved)
}

// Disapprove revokes userID's access.  The flag is written even when the
// user was never approved.
func (s *ApprovalService) Disapprove(ctx context.Context, userID int64) error {
	return s.set(ctx, userID, store.Disapproved)
}

// IsApproved reports whether userID holds exactly the approved flag.  It
// fails closed: on a read error it returns false along with the error.
func (s *ApprovalService) IsApproved(ctx context.Context, userID int64) (bool, error) {
	if userID <= 0 {
		return false, nil
	}
	a, err := s.state.Approval(ctx, userID)
	if err != nil {
		return false, err
	}
	return a == store.Approved, nil
}

func (s *ApprovalService) set(ctx context.Context, userID int64, a store.Approval) error {
	if userID <= 0 {
		return ErrInvalidUserID
	}
	return s.state.SetApproval(ctx, userID, a)
}
