package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/monitoring"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/repository"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
)

type OfferConfig struct {
	OfferTimeout      time.Duration
	RateLimitCooldown time.Duration
	// ReofferAfterTimeout lets a candidate whose offer expired receive the
	// next offer again. When false they are skipped until no other eligible
	// candidate is left.
	ReofferAfterTimeout bool
	// SkipWithoutCredential passes over candidates that have no booking
	// credential. When false such a candidate blocks the event at the head
	// of the queue until a credential is stored or they leave.
	SkipWithoutCredential bool
}

type eventState struct {
	offer         *models.Offer
	cooldownUntil time.Time
	timedOut      map[string]struct{}
}

// outbox collects side effects produced under the event lock so they can
// be delivered after it is released.
type outbox struct {
	offers   []models.OfferNotification
	outcomes []models.OutcomeNotification
	removals []removal
}

// OfferCoordinator runs the Idle -> Offered -> Idle negotiation of every
// event. Transitions for one event run under the QueueEngine's event lock.
type OfferCoordinator struct {
	engine   *QueueEngine
	booking  BookingGateway
	creds    repository.CredentialRepository
	notifier NotificationRouter
	tokens   *OfferTokens
	holds    *HoldRegistry
	l        logger.Logger
	cfg      OfferConfig
	now      func() time.Time

	mu     sync.Mutex
	states map[string]*eventState
}

func NewOfferCoordinator(
	engine *QueueEngine,
	booking BookingGateway,
	creds repository.CredentialRepository,
	notifier NotificationRouter,
	tokens *OfferTokens,
	holds *HoldRegistry,
	l logger.Logger,
	cfg OfferConfig,
	now func() time.Time,
) *OfferCoordinator {
	if now == nil {
		now = time.Now
	}
	if holds == nil {
		holds, _ = NewHoldRegistry(nil)
	}

	c := &OfferCoordinator{
		engine:   engine,
		booking:  booking,
		creds:    creds,
		notifier: notifier,
		tokens:   tokens,
		holds:    holds,
		l:        l,
		cfg:      cfg,
		now:      now,
		states:   make(map[string]*eventState),
	}
	engine.onLeave(c.cancelLocked)

	return c
}

func (c *OfferCoordinator) Holds() *HoldRegistry {
	return c.holds
}

// Tick expires an elapsed offer and, when the event is idle, tries to
// offer a free slot to the first eligible candidate.
func (c *OfferCoordinator) Tick(ctx context.Context, eventID string) error {
	var ob outbox

	unlock := c.engine.lock(eventID)
	err := c.tickLocked(ctx, eventID, &ob)
	unlock()

	c.deliver(ctx, &ob)
	return err
}

func (c *OfferCoordinator) tickLocked(ctx context.Context, eventID string, ob *outbox) error {
	now := c.now()

	if offer, ok := c.currentOffer(eventID); ok {
		if offer.Expired(now) {
			// The event stays idle until the next tick.
			c.expireLocked(ctx, offer, ob)
		}
		return nil
	}

	if c.holds.IsHeld(eventID) {
		return nil
	}

	if now.Before(c.cooldownUntil(eventID)) {
		return nil
	}

	entries, err := c.engine.Entries(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to list waitlist: %w", err)
	}
	if len(entries) == 0 {
		c.dropState(eventID)
		return nil
	}

	candidate, cred, err := c.selectCandidate(ctx, eventID, entries)
	if err != nil {
		return err
	}
	if candidate == nil {
		return nil
	}

	slotID, ok, err := c.booking.ProbeSlot(ctx, eventID, cred)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			c.startCooldown(ctx, eventID, now)
			return nil
		}
		return fmt.Errorf("failed to probe slot: %w", err)
	}
	if !ok {
		return nil
	}

	offer := models.Offer{
		ID:              uuid.NewString(),
		EventID:         eventID,
		EventTitle:      candidate.EventTitle,
		CandidateUserID: candidate.UserID,
		ChatID:          candidate.ChatID,
		SlotID:          slotID,
		IssuedAt:        now,
		Deadline:        now.Add(c.cfg.OfferTimeout),
	}

	var token string
	if c.tokens != nil {
		if token, err = c.tokens.Issue(offer); err != nil {
			c.l.Errorf(ctx, "service.OfferCoordinator.tickLocked: %v", err)
		}
	}

	c.setOffer(eventID, &offer)
	ob.offers = append(ob.offers, models.OfferNotification{Offer: offer, Token: token})
	monitoring.TrackOffer("issued")

	c.l.Info(ctx, "Offer issued",
		"event_id", eventID,
		"offer_id", offer.ID,
		"user_id", offer.CandidateUserID,
		"deadline", offer.Deadline,
	)

	return nil
}

// selectCandidate returns the earliest entry that, when re-offering is
// disabled, has not timed out in the current cycle. A candidate without a
// credential ends the selection unless SkipWithoutCredential is set.
func (c *OfferCoordinator) selectCandidate(ctx context.Context, eventID string, entries []models.WaitlistEntry) (*models.WaitlistEntry, string, error) {
	skipped := c.timedOut(eventID)

	for i := range entries {
		en := &entries[i]
		if _, ok := skipped[en.UserID]; ok {
			continue
		}

		cred, err := c.creds.Get(ctx, en.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				if !c.cfg.SkipWithoutCredential {
					c.l.Warn(ctx, "Head candidate has no credential, no offer this tick",
						"event_id", eventID,
						"user_id", en.UserID,
					)
					return nil, "", nil
				}
				c.l.Warn(ctx, "Skipping candidate without credential",
					"event_id", eventID,
					"user_id", en.UserID,
				)
				continue
			}
			return nil, "", fmt.Errorf("failed to load credential: %w", err)
		}

		return en, cred, nil
	}

	if len(skipped) > 0 {
		// Everyone left has timed out once; start a new cycle next tick.
		c.resetTimedOut(eventID)
	}

	return nil, "", nil
}

// Confirm books the offered slot for the candidate. Any failure leaves the
// candidate queued; only a successful booking removes them.
func (c *OfferCoordinator) Confirm(ctx context.Context, eventID, userID string) (models.OfferOutcome, error) {
	return c.ConfirmOffer(ctx, eventID, userID, "")
}

// ConfirmOffer is Confirm restricted to the offer with id offerID. An empty
// offerID accepts whichever offer the user holds.
func (c *OfferCoordinator) ConfirmOffer(ctx context.Context, eventID, userID, offerID string) (models.OfferOutcome, error) {
	var ob outbox

	unlock := c.engine.lock(eventID)
	outcome, err := c.confirmLocked(ctx, eventID, userID, offerID, &ob)
	unlock()

	c.deliver(ctx, &ob)
	monitoring.TrackOperation("confirm", err)

	return outcome, err
}

func (c *OfferCoordinator) confirmLocked(ctx context.Context, eventID, userID, offerID string, ob *outbox) (models.OfferOutcome, error) {
	offer, err := c.liveOfferFor(ctx, eventID, userID, offerID, ob)
	if err != nil {
		return "", err
	}

	result := c.book(ctx, offer)
	c.clearOffer(eventID)

	if result.Kind == models.BookingRateLimited {
		c.startCooldown(ctx, eventID, c.now())
	}

	if result.Kind == models.BookingSuccess {
		rm, err := c.engine.removeLocked(ctx, eventID, userID, models.LeaveReasonBooked)
		if err != nil {
			c.l.Errorf(ctx, "service.OfferCoordinator.confirmLocked: %v", err)
		} else {
			ob.removals = append(ob.removals, rm)
		}
	}

	outcome := result.Outcome()
	details := result.Details
	if details == "" {
		details = result.Reason
	}
	ob.outcomes = append(ob.outcomes, outcomeFor(offer, outcome, details))
	monitoring.TrackOffer(string(outcome))

	c.l.Info(ctx, "Offer confirmed",
		"event_id", eventID,
		"offer_id", offer.ID,
		"user_id", userID,
		"outcome", outcome,
	)

	return outcome, nil
}

// book re-checks availability with the candidate's credential and books
// the slot that is free right now.
func (c *OfferCoordinator) book(ctx context.Context, offer models.Offer) models.BookingResult {
	cred, err := c.creds.Get(ctx, offer.CandidateUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.BookingResult{Kind: models.BookingRejected, Reason: ErrNoCredential.Error()}
		}
		return models.BookingResult{Kind: models.BookingTransportError, Reason: err.Error()}
	}

	slotID, ok, err := c.booking.ProbeSlot(ctx, offer.EventID, cred)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			return models.BookingResult{Kind: models.BookingRateLimited}
		}
		return models.BookingResult{Kind: models.BookingTransportError, Reason: err.Error()}
	}
	if !ok {
		return models.BookingResult{Kind: models.BookingNoSlot}
	}

	return c.booking.Book(ctx, cred, slotID)
}

// Reject gives up the candidate's place in the waitlist.
func (c *OfferCoordinator) Reject(ctx context.Context, eventID, userID string) error {
	return c.RejectOffer(ctx, eventID, userID, "")
}

// RejectOffer is Reject restricted to the offer with id offerID.
func (c *OfferCoordinator) RejectOffer(ctx context.Context, eventID, userID, offerID string) error {
	var ob outbox

	unlock := c.engine.lock(eventID)
	err := c.rejectLocked(ctx, eventID, userID, offerID, &ob)
	unlock()

	c.deliver(ctx, &ob)
	monitoring.TrackOperation("reject", err)

	return err
}

func (c *OfferCoordinator) rejectLocked(ctx context.Context, eventID, userID, offerID string, ob *outbox) error {
	offer, err := c.liveOfferFor(ctx, eventID, userID, offerID, ob)
	if err != nil {
		return err
	}

	c.clearOffer(eventID)

	rm, err := c.engine.removeLocked(ctx, eventID, userID, models.LeaveReasonRejected)
	if err != nil {
		return fmt.Errorf("failed to remove rejecting candidate: %w", err)
	}
	ob.removals = append(ob.removals, rm)
	ob.outcomes = append(ob.outcomes, outcomeFor(offer, models.OfferOutcomeRejected, ""))
	monitoring.TrackOffer(string(models.OfferOutcomeRejected))

	c.l.Info(ctx, "Offer rejected",
		"event_id", eventID,
		"offer_id", offer.ID,
		"user_id", userID,
	)

	return nil
}

// liveOfferFor returns the offer held by userID, and with a non-empty
// offerID only that offer. An offer past its deadline is expired on the
// spot and reported as stale.
func (c *OfferCoordinator) liveOfferFor(ctx context.Context, eventID, userID, offerID string, ob *outbox) (models.Offer, error) {
	offer, ok := c.currentOffer(eventID)
	if !ok || offer.CandidateUserID != userID {
		return models.Offer{}, ErrStaleOffer
	}
	if offerID != "" && offer.ID != offerID {
		return models.Offer{}, ErrStaleOffer
	}

	if offer.Expired(c.now()) {
		c.expireLocked(ctx, offer, ob)
		return models.Offer{}, ErrStaleOffer
	}

	return offer, nil
}

func (c *OfferCoordinator) expireLocked(ctx context.Context, offer models.Offer, ob *outbox) {
	c.mu.Lock()
	st := c.stateLocked(offer.EventID)
	st.offer = nil
	if !c.cfg.ReofferAfterTimeout {
		st.timedOut[offer.CandidateUserID] = struct{}{}
	}
	c.mu.Unlock()

	ob.outcomes = append(ob.outcomes, outcomeFor(offer, models.OfferOutcomeExpired, ""))
	monitoring.TrackOffer(string(models.OfferOutcomeExpired))

	c.l.Info(ctx, "Offer expired",
		"event_id", offer.EventID,
		"offer_id", offer.ID,
		"user_id", offer.CandidateUserID,
	)
}

// cancelLocked drops a live offer held by a user who just left the
// waitlist. It runs inside QueueEngine.Leave under the event lock.
func (c *OfferCoordinator) cancelLocked(ctx context.Context, eventID, userID string) []models.OutcomeNotification {
	c.mu.Lock()
	st, ok := c.states[eventID]
	if !ok {
		c.mu.Unlock()
		return nil
	}
	delete(st.timedOut, userID)
	offer := st.offer
	if offer == nil || offer.CandidateUserID != userID {
		c.mu.Unlock()
		return nil
	}
	st.offer = nil
	c.mu.Unlock()

	monitoring.TrackOffer(string(models.OfferOutcomeCancelled))
	c.l.Info(ctx, "Offer cancelled by leave",
		"event_id", eventID,
		"offer_id", offer.ID,
		"user_id", userID,
	)

	return []models.OutcomeNotification{outcomeFor(*offer, models.OfferOutcomeCancelled, "")}
}

// OfferFor returns a snapshot of the live offer of an event.
func (c *OfferCoordinator) OfferFor(eventID string) (models.Offer, bool) {
	return c.currentOffer(eventID)
}

// OfferedEvents lists the events that currently hold an offer.
func (c *OfferCoordinator) OfferedEvents() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0)
	for id, st := range c.states {
		if st.offer != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (c *OfferCoordinator) startCooldown(ctx context.Context, eventID string, now time.Time) {
	until := now.Add(c.cfg.RateLimitCooldown)

	c.mu.Lock()
	c.stateLocked(eventID).cooldownUntil = until
	c.mu.Unlock()

	c.l.Warn(ctx, "Booking service rate limited, pausing event",
		"event_id", eventID,
		"until", until,
	)
}

func (c *OfferCoordinator) deliver(ctx context.Context, ob *outbox) {
	for _, n := range ob.offers {
		if err := c.notifier.NotifyOffer(ctx, n); err != nil {
			c.l.Warn(ctx, "Failed to notify offer",
				"event_id", n.Offer.EventID,
				"user_id", n.Offer.CandidateUserID,
				"error", err,
			)
		}
	}

	for _, rm := range ob.removals {
		c.engine.announceRemoval(ctx, rm)
	}

	for _, n := range ob.outcomes {
		if err := c.notifier.NotifyOutcome(ctx, n); err != nil {
			c.l.Warn(ctx, "Failed to notify outcome",
				"event_id", n.EventID,
				"user_id", n.UserID,
				"outcome", n.Outcome,
				"error", err,
			)
		}
	}
}

func outcomeFor(o models.Offer, outcome models.OfferOutcome, details string) models.OutcomeNotification {
	return models.OutcomeNotification{
		EventID:    o.EventID,
		EventTitle: o.EventTitle,
		UserID:     o.CandidateUserID,
		ChatID:     o.ChatID,
		OfferID:    o.ID,
		Outcome:    outcome,
		Details:    details,
	}
}

// stateLocked requires c.mu.
func (c *OfferCoordinator) stateLocked(eventID string) *eventState {
	st, ok := c.states[eventID]
	if !ok {
		st = &eventState{timedOut: make(map[string]struct{})}
		c.states[eventID] = st
	}
	return st
}

func (c *OfferCoordinator) currentOffer(eventID string) (models.Offer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[eventID]
	if !ok || st.offer == nil {
		return models.Offer{}, false
	}
	return *st.offer, true
}

func (c *OfferCoordinator) setOffer(eventID string, o *models.Offer) {
	c.mu.Lock()
	c.stateLocked(eventID).offer = o
	c.mu.Unlock()
}

func (c *OfferCoordinator) clearOffer(eventID string) {
	c.mu.Lock()
	if st, ok := c.states[eventID]; ok {
		st.offer = nil
	}
	c.mu.Unlock()
}

func (c *OfferCoordinator) cooldownUntil(eventID string) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.states[eventID]; ok {
		return st.cooldownUntil
	}
	return time.Time{}
}

func (c *OfferCoordinator) timedOut(eventID string) map[string]struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]struct{})
	if st, ok := c.states[eventID]; ok {
		for id := range st.timedOut {
			out[id] = struct{}{}
		}
	}
	return out
}

func (c *OfferCoordinator) resetTimedOut(eventID string) {
	c.mu.Lock()
	if st, ok := c.states[eventID]; ok {
		st.timedOut = make(map[string]struct{})
	}
	c.mu.Unlock()
}

// dropState forgets an event with an empty waitlist unless it is cooling down.
func (c *OfferCoordinator) dropState(eventID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[eventID]
	if !ok || st.offer != nil || c.now().Before(st.cooldownUntil) {
		return
	}
	delete(c.states, eventID)
}
