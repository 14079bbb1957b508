package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/repository"
	pkgLog "github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
)

// WaitlistService is what the delivery layers call.
type WaitlistService interface {
	Join(ctx context.Context, in JoinInput) (JoinOutput, error)
	Leave(ctx context.Context, eventID, userID string) (LeaveOutput, error)
	PositionOf(ctx context.Context, eventID, userID string) (int, error)
	SizeOf(ctx context.Context, eventID string) (int, error)
	Status(ctx context.Context, eventID string) (WaitlistStatusOutput, error)

	Confirm(ctx context.Context, eventID, userID string) (models.OfferOutcome, error)
	Reject(ctx context.Context, eventID, userID string) error
	HandleOfferReply(ctx context.Context, in OfferReplyInput) (OfferReplyOutput, error)

	SetCredential(ctx context.Context, userID, credential string) error
	RemoveCredential(ctx context.Context, userID string) error

	Hold(ctx context.Context, ref string) (string, error)
	Release(ctx context.Context, ref string) (string, error)

	StartSweeper(ctx context.Context) error
	StopSweeper() error
	GetSweeperStatus() SweeperStatus
}

type waitlistService struct {
	engine *QueueEngine
	coord  *OfferCoordinator
	creds  repository.CredentialRepository
	tokens *OfferTokens
	sweep  *Sweeper
	l      pkgLog.Logger
}

func NewWaitlistService(
	engine *QueueEngine,
	coord *OfferCoordinator,
	creds repository.CredentialRepository,
	tokens *OfferTokens,
	sweep *Sweeper,
	l pkgLog.Logger,
) WaitlistService {
	return &waitlistService{
		engine: engine,
		coord:  coord,
		creds:  creds,
		tokens: tokens,
		sweep:  sweep,
		l:      l,
	}
}

func (s *waitlistService) Join(ctx context.Context, in JoinInput) (JoinOutput, error) {
	out, err := s.engine.Join(ctx, in)
	if err != nil {
		s.l.Warnf(ctx, "service.waitlistService.Join: %v", err)
		return JoinOutput{}, err
	}
	return out, nil
}

func (s *waitlistService) Leave(ctx context.Context, eventID, userID string) (LeaveOutput, error) {
	out, err := s.engine.Leave(ctx, eventID, userID)
	if err != nil {
		s.l.Warnf(ctx, "service.waitlistService.Leave: %v", err)
		return LeaveOutput{}, err
	}
	return out, nil
}

func (s *waitlistService) PositionOf(ctx context.Context, eventID, userID string) (int, error) {
	return s.engine.PositionOf(ctx, eventID, userID)
}

func (s *waitlistService) SizeOf(ctx context.Context, eventID string) (int, error) {
	return s.engine.Size(ctx, eventID)
}

func (s *waitlistService) Status(ctx context.Context, eventID string) (WaitlistStatusOutput, error) {
	n, err := s.engine.Size(ctx, eventID)
	if err != nil {
		s.l.Errorf(ctx, "service.waitlistService.Status: %v", err)
		return WaitlistStatusOutput{}, err
	}

	out := WaitlistStatusOutput{
		EventID: eventID,
		Size:    n,
		MaxSize: s.engine.MaxSize(),
		Held:    s.coord.Holds().IsHeld(eventID),
	}
	if offer, ok := s.coord.OfferFor(eventID); ok {
		out.Offer = &offer
	}

	return out, nil
}

func (s *waitlistService) Confirm(ctx context.Context, eventID, userID string) (models.OfferOutcome, error) {
	outcome, err := s.coord.Confirm(ctx, eventID, userID)
	if err != nil {
		s.l.Warnf(ctx, "service.waitlistService.Confirm: %v", err)
		return "", err
	}
	return outcome, nil
}

func (s *waitlistService) Reject(ctx context.Context, eventID, userID string) error {
	if err := s.coord.Reject(ctx, eventID, userID); err != nil {
		s.l.Warnf(ctx, "service.waitlistService.Reject: %v", err)
		return err
	}
	return nil
}

// HandleOfferReply resolves an offer from a signed reply token. A token for
// an offer that is no longer live yields ErrStaleOffer.
func (s *waitlistService) HandleOfferReply(ctx context.Context, in OfferReplyInput) (OfferReplyOutput, error) {
	claims, err := s.tokens.Parse(in.Token)
	if err != nil {
		s.l.Warnf(ctx, "service.waitlistService.HandleOfferReply: %v", err)
		return OfferReplyOutput{}, err
	}

	out := OfferReplyOutput{EventID: claims.EventID, UserID: claims.UserID}

	switch in.Action {
	case OfferActionConfirm:
		outcome, err := s.coord.ConfirmOffer(ctx, claims.EventID, claims.UserID, claims.OfferID)
		if err != nil {
			s.l.Warnf(ctx, "service.waitlistService.HandleOfferReply: %v", err)
			return OfferReplyOutput{}, err
		}
		out.Outcome = outcome
	case OfferActionReject:
		if err := s.coord.RejectOffer(ctx, claims.EventID, claims.UserID, claims.OfferID); err != nil {
			s.l.Warnf(ctx, "service.waitlistService.HandleOfferReply: %v", err)
			return OfferReplyOutput{}, err
		}
		out.Outcome = models.OfferOutcomeRejected
	default:
		return OfferReplyOutput{}, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, in.Action)
	}

	return out, nil
}

func (s *waitlistService) SetCredential(ctx context.Context, userID, credential string) error {
	credential = strings.TrimSpace(credential)
	if userID == "" || credential == "" {
		return fmt.Errorf("%w: user_id and credential are required", ErrInvalidInput)
	}

	if err := s.creds.Put(ctx, userID, credential); err != nil {
		s.l.Errorf(ctx, "service.waitlistService.SetCredential: %v", err)
		return err
	}

	s.l.Info(ctx, "Credential saved", "user_id", userID, "length", len(credential))
	return nil
}

func (s *waitlistService) RemoveCredential(ctx context.Context, userID string) error {
	if err := s.creds.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoCredential
		}
		s.l.Errorf(ctx, "service.waitlistService.RemoveCredential: %v", err)
		return err
	}

	s.l.Info(ctx, "Credential removed", "user_id", userID)
	return nil
}

func (s *waitlistService) Hold(ctx context.Context, ref string) (string, error) {
	id, err := s.coord.Holds().Hold(ref)
	if err != nil {
		return "", err
	}
	s.l.Info(ctx, "Event held", "event_id", id, "ref", ref)
	return id, nil
}

func (s *waitlistService) Release(ctx context.Context, ref string) (string, error) {
	id, err := s.coord.Holds().Release(ref)
	if err != nil {
		return "", err
	}
	s.l.Info(ctx, "Event released", "event_id", id, "ref", ref)
	return id, nil
}

func (s *waitlistService) StartSweeper(ctx context.Context) error {
	if s.sweep == nil {
		return fmt.Errorf("sweeper not initialized")
	}
	return s.sweep.Start(ctx)
}

func (s *waitlistService) StopSweeper() error {
	if s.sweep == nil {
		return fmt.Errorf("sweeper not initialized")
	}
	return s.sweep.Stop()
}

func (s *waitlistService) GetSweeperStatus() SweeperStatus {
	if s.sweep == nil {
		return SweeperStatus{IsRunning: false}
	}
	return s.sweep.Status()
}
