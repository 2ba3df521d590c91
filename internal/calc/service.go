package calc

import (
	"context"
	"fmt"
	"time"

	"github.com/tallyhq/tally/internal/apperror"
	"github.com/tallyhq/tally/internal/session"
)

// Service defines the business logic contract for computations.
type Service interface {
	// Compute evaluates the operator over the operands, records the
	// calculation against the caller's session (and bound user when the
	// session is authenticated), and returns the result.
	Compute(ctx context.Context, token string, req ComputeRequest) (*ComputeResponse, error)

	// History returns the caller's calculations: scoped per-user once the
	// session is authenticated, per-session while anonymous.
	History(ctx context.Context, token string) ([]Calculation, error)
}

// service implements Service over the calculation repository, resolving the
// caller through the session service.
type service struct {
	repo     Repository
	sessions session.Service
}

// NewService creates a calc service with the given dependencies.
func NewService(repo Repository, sessions session.Service) Service {
	return &service{repo: repo, sessions: sessions}
}

// Compute evaluates and records one calculation. An unrecognized operator
// (or a division by zero) is not an error: the row is stored with a NULL
// result and the null is returned to the caller.
func (s *service) Compute(ctx context.Context, token string, req ComputeRequest) (*ComputeResponse, error) {
	sess, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	result := Evaluate(req.Num1, req.Num2, req.OperatorID)

	calc := &Calculation{
		Num1:       req.Num1,
		Num2:       req.Num2,
		OperatorID: req.OperatorID,
		Result:     result,
		SessionID:  sess.ID,
		CreatedAt:  time.Now().UTC(),
	}
	// Tag with the user only when the owning session is authenticated at
	// record time. Earlier anonymous records keep a NULL user_id forever.
	if sess.IsAuth && sess.UserID != nil {
		calc.UserID = sess.UserID
	}

	if err := s.repo.Create(ctx, calc); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("recording calculation: %w", err))
	}

	return &ComputeResponse{
		Num1:       req.Num1,
		Num2:       req.Num2,
		OperatorID: req.OperatorID,
		Result:     result,
	}, nil
}

// History returns the caller's visible calculations. Authenticated sessions
// see the bound user's records across all sessions; anonymous sessions see
// only their own browser session's records.
func (s *service) History(ctx context.Context, token string) ([]Calculation, error) {
	sess, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	var calcs []Calculation
	if sess.IsAuth && sess.UserID != nil {
		calcs, err = s.repo.ListByUser(ctx, *sess.UserID)
	} else {
		calcs, err = s.repo.ListBySession(ctx, sess.ID)
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("loading history: %w", err))
	}

	return calcs, nil
}
