package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vogiaan1904/ticketbottle-waitlist/internal/lock"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/monitoring"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/repository"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
)

// QueueEngine owns every write to the waitlist of an event. All writes for
// one event happen under that event's lock, so positions stay exactly 1..N.
type QueueEngine struct {
	repo     repository.WaitlistRepository
	notifier NotificationRouter
	pub      EventPublisher
	locks    *lock.KeyedMutex
	l        logger.Logger
	maxSize  int
	now      func() time.Time

	leaveHooks []leaveHook
}

// removal is what a successful removal has to announce once the event
// lock is released.
type removal struct {
	entry     models.WaitlistEntry
	deltas    []models.PositionDelta
	remaining int
	reason    models.LeaveReason
}

func NewQueueEngine(
	repo repository.WaitlistRepository,
	notifier NotificationRouter,
	pub EventPublisher,
	l logger.Logger,
	maxSize int,
	now func() time.Time,
) *QueueEngine {
	if now == nil {
		now = time.Now
	}
	return &QueueEngine{
		repo:     repo,
		notifier: notifier,
		pub:      pub,
		locks:    lock.NewKeyedMutex(),
		l:        l,
		maxSize:  maxSize,
		now:      now,
	}
}

// leaveHook runs inside the event lock after a user leaves. It returns the
// outcomes to deliver once the lock is released.
type leaveHook func(ctx context.Context, eventID, userID string) []models.OutcomeNotification

// onLeave registers fn to run inside the event lock after a user leaves.
func (e *QueueEngine) onLeave(fn leaveHook) {
	e.leaveHooks = append(e.leaveHooks, fn)
}

func (e *QueueEngine) lock(eventID string) func() {
	return e.locks.Lock(eventID)
}

func (e *QueueEngine) MaxSize() int {
	return e.maxSize
}

func (e *QueueEngine) Join(ctx context.Context, in JoinInput) (JoinOutput, error) {
	if in.EventID == "" || in.UserID == "" {
		return JoinOutput{}, fmt.Errorf("%w: event_id and user_id are required", ErrInvalidInput)
	}

	unlock := e.lock(in.EventID)
	out, entry, err := e.joinLocked(ctx, in)
	unlock()

	monitoring.TrackOperation("join", err)
	if err != nil {
		return JoinOutput{}, err
	}

	if out.Status == JoinStatusJoined {
		monitoring.SetWaitlistSize(in.EventID, entry.Position)

		if e.pub != nil {
			if err := e.pub.PublishJoined(ctx, entry); err != nil {
				e.l.Errorf(ctx, "service.QueueEngine.Join: %v", err)
			}
		}

		e.l.Info(ctx, "User joined waitlist",
			"event_id", in.EventID,
			"user_id", in.UserID,
			"position", entry.Position,
		)
	}

	return out, nil
}

func (e *QueueEngine) joinLocked(ctx context.Context, in JoinInput) (JoinOutput, models.WaitlistEntry, error) {
	existing, err := e.repo.Get(ctx, in.EventID, in.UserID)
	if err == nil {
		return JoinOutput{
			Status:      JoinStatusAlreadyJoined,
			Position:    existing.Position,
			PeopleAhead: existing.PeopleAhead(),
		}, existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return JoinOutput{}, models.WaitlistEntry{}, fmt.Errorf("failed to look up entry: %w", err)
	}

	n, err := e.repo.Count(ctx, in.EventID)
	if err != nil {
		return JoinOutput{}, models.WaitlistEntry{}, fmt.Errorf("failed to count waitlist: %w", err)
	}
	if n >= int64(e.maxSize) {
		return JoinOutput{}, models.WaitlistEntry{}, ErrWaitlistFull
	}

	entry := models.WaitlistEntry{
		EventID:    in.EventID,
		UserID:     in.UserID,
		ChatID:     in.ChatID,
		EventTitle: in.EventTitle,
		Position:   int(n) + 1,
		JoinedAt:   e.now().UTC(),
	}
	if err := e.repo.Insert(ctx, entry); err != nil {
		return JoinOutput{}, models.WaitlistEntry{}, fmt.Errorf("failed to insert entry: %w", err)
	}

	return JoinOutput{
		Status:      JoinStatusJoined,
		Position:    entry.Position,
		PeopleAhead: entry.PeopleAhead(),
	}, entry, nil
}

// Leave removes the user, closes the gap behind them and cancels any live
// offer they hold.
func (e *QueueEngine) Leave(ctx context.Context, eventID, userID string) (LeaveOutput, error) {
	var outcomes []models.OutcomeNotification

	unlock := e.lock(eventID)
	rm, err := e.removeLocked(ctx, eventID, userID, models.LeaveReasonUserLeft)
	if err == nil {
		for _, hook := range e.leaveHooks {
			outcomes = append(outcomes, hook(ctx, eventID, userID)...)
		}
	}
	unlock()

	monitoring.TrackOperation("leave", err)
	if err != nil {
		return LeaveOutput{}, err
	}

	e.announceRemoval(ctx, rm)

	for _, n := range outcomes {
		if err := e.notifier.NotifyOutcome(ctx, n); err != nil {
			e.l.Warn(ctx, "Failed to notify outcome",
				"event_id", n.EventID,
				"user_id", n.UserID,
				"outcome", n.Outcome,
				"error", err,
			)
		}
	}

	return LeaveOutput{Deltas: rm.deltas}, nil
}

// removeLocked deletes one entry and renumbers the entries behind it.
// The caller must hold the event lock.
func (e *QueueEngine) removeLocked(ctx context.Context, eventID, userID string, reason models.LeaveReason) (removal, error) {
	entries, err := e.repo.List(ctx, eventID)
	if err != nil {
		return removal{}, fmt.Errorf("failed to list waitlist: %w", err)
	}

	idx := -1
	for i, en := range entries {
		if en.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return removal{}, ErrNotInWaitlist
	}

	removed := entries[idx]
	remaining := make([]models.WaitlistEntry, 0, len(entries)-1)
	remaining = append(remaining, entries[:idx]...)
	remaining = append(remaining, entries[idx+1:]...)

	reorder := make(map[string]int)
	deltas := make([]models.PositionDelta, 0)
	for i, en := range remaining {
		newPos := i + 1
		if en.Position == newPos {
			continue
		}
		reorder[en.UserID] = newPos
		deltas = append(deltas, models.PositionDelta{
			UserID:      en.UserID,
			ChatID:      en.ChatID,
			OldPosition: en.Position,
			NewPosition: newPos,
		})
	}

	if err := e.repo.Delete(ctx, eventID, userID, reorder); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return removal{}, ErrNotInWaitlist
		}
		return removal{}, fmt.Errorf("failed to delete entry: %w", err)
	}

	return removal{
		entry:     removed,
		deltas:    deltas,
		remaining: len(remaining),
		reason:    reason,
	}, nil
}

// announceRemoval publishes the removal and fans out position changes.
// Delivery failures are logged only.
func (e *QueueEngine) announceRemoval(ctx context.Context, rm removal) {
	monitoring.SetWaitlistSize(rm.entry.EventID, rm.remaining)

	if e.pub != nil {
		if err := e.pub.PublishLeft(ctx, rm.entry, rm.reason); err != nil {
			e.l.Errorf(ctx, "service.QueueEngine.announceRemoval: %v", err)
		}
	}

	for _, d := range rm.deltas {
		if err := e.notifier.NotifyPositionChange(ctx, models.PositionChangeNotification{
			EventID:    rm.entry.EventID,
			EventTitle: rm.entry.EventTitle,
			Delta:      d,
		}); err != nil {
			e.l.Warn(ctx, "Failed to notify position change",
				"event_id", rm.entry.EventID,
				"user_id", d.UserID,
				"error", err,
			)
		}
	}

	e.l.Info(ctx, "User removed from waitlist",
		"event_id", rm.entry.EventID,
		"user_id", rm.entry.UserID,
		"reason", rm.reason,
		"moved", len(rm.deltas),
	)
}

func (e *QueueEngine) PositionOf(ctx context.Context, eventID, userID string) (int, error) {
	entry, err := e.repo.Get(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrNotInWaitlist
		}
		return 0, err
	}
	return entry.Position, nil
}

func (e *QueueEngine) Size(ctx context.Context, eventID string) (int, error) {
	n, err := e.repo.Count(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (e *QueueEngine) HeadOfQueue(ctx context.Context, eventID string) (models.WaitlistEntry, error) {
	entries, err := e.repo.List(ctx, eventID)
	if err != nil {
		return models.WaitlistEntry{}, err
	}
	if len(entries) == 0 {
		return models.WaitlistEntry{}, ErrWaitlistEmpty
	}
	return entries[0], nil
}

// Entries returns the waitlist of an event in position order.
func (e *QueueEngine) Entries(ctx context.Context, eventID string) ([]models.WaitlistEntry, error) {
	return e.repo.List(ctx, eventID)
}

// ActiveEvents returns the events with a non-empty waitlist.
func (e *QueueEngine) ActiveEvents(ctx context.Context) ([]string, error) {
	return e.repo.EventIDs(ctx)
}
