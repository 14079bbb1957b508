package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vogiaan1904/ticketbottle-waitlist/internal/models"
	"github.com/vogiaan1904/ticketbottle-waitlist/internal/repository/memory"
	"github.com/vogiaan1904/ticketbottle-waitlist/pkg/logger"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeBooking struct {
	mu       sync.Mutex
	slots    map[string]string
	probeErr error
	result   models.BookingResult
	probes   map[string]int
	booked   []string
	gate     chan struct{}
}

func newFakeBooking() *fakeBooking {
	return &fakeBooking{
		slots:  make(map[string]string),
		probes: make(map[string]int),
		result: models.BookingResult{Kind: models.BookingSuccess, Details: "2026-05-10T18:00:00"},
	}
}

func (b *fakeBooking) ProbeSlot(ctx context.Context, eventID, credential string) (string, bool, error) {
	b.mu.Lock()
	gate := b.gate
	b.probes[eventID]++
	slot, err := b.slots[eventID], b.probeErr
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
	}

	if err != nil {
		return "", false, err
	}
	return slot, slot != "", nil
}

func (b *fakeBooking) Book(ctx context.Context, credential, slotID string) models.BookingResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.booked = append(b.booked, slotID)
	return b.result
}

func (b *fakeBooking) setSlot(eventID, slotID string) {
	b.mu.Lock()
	b.slots[eventID] = slotID
	b.mu.Unlock()
}

func (b *fakeBooking) setProbeErr(err error) {
	b.mu.Lock()
	b.probeErr = err
	b.mu.Unlock()
}

func (b *fakeBooking) setResult(r models.BookingResult) {
	b.mu.Lock()
	b.result = r
	b.mu.Unlock()
}

func (b *fakeBooking) probeCount(eventID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.probes[eventID]
}

type fakeNotifier struct {
	mu        sync.Mutex
	offers    []models.OfferNotification
	outcomes  []models.OutcomeNotification
	positions []models.PositionChangeNotification
	err       error
}

func (n *fakeNotifier) NotifyOffer(ctx context.Context, o models.OfferNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.offers = append(n.offers, o)
	return n.err
}

func (n *fakeNotifier) NotifyOutcome(ctx context.Context, o models.OutcomeNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outcomes = append(n.outcomes, o)
	return n.err
}

func (n *fakeNotifier) NotifyPositionChange(ctx context.Context, p models.PositionChangeNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.positions = append(n.positions, p)
	return n.err
}

func (n *fakeNotifier) offerCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.offers)
}

func (n *fakeNotifier) lastOutcome() models.OutcomeNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.outcomes) == 0 {
		return models.OutcomeNotification{}
	}
	return n.outcomes[len(n.outcomes)-1]
}

type fakePublisher struct {
	mu     sync.Mutex
	joined []models.WaitlistEntry
	left   []models.LeaveReason
}

func (p *fakePublisher) PublishJoined(ctx context.Context, e models.WaitlistEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.joined = append(p.joined, e)
	return nil
}

func (p *fakePublisher) PublishLeft(ctx context.Context, e models.WaitlistEntry, reason models.LeaveReason) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.left = append(p.left, reason)
	return nil
}

type harness struct {
	clock    *fakeClock
	creds    *memory.CredentialRepository
	booking  *fakeBooking
	notifier *fakeNotifier
	pub      *fakePublisher
	tokens   *OfferTokens
	engine   *QueueEngine
	coord    *OfferCoordinator
}

func newHarness(t *testing.T, cfg OfferConfig) *harness {
	t.Helper()

	l := logger.InitializeTestZapLogger()
	h := &harness{
		clock:    newFakeClock(),
		creds:    memory.NewCredentialRepository(),
		booking:  newFakeBooking(),
		notifier: &fakeNotifier{},
		pub:      &fakePublisher{},
	}
	h.tokens = NewOfferTokens("test-secret", h.clock.Now)
	h.engine = NewQueueEngine(memory.NewWaitlistRepository(), h.notifier, h.pub, l, 10, h.clock.Now)

	holds, err := NewHoldRegistry(nil)
	if err != nil {
		t.Fatal(err)
	}
	h.coord = NewOfferCoordinator(h.engine, h.booking, h.creds, h.notifier, h.tokens, holds, l, cfg, h.clock.Now)

	return h
}

func defaultOfferConfig() OfferConfig {
	return OfferConfig{
		OfferTimeout:        60 * time.Second,
		RateLimitCooldown:   45 * time.Second,
		ReofferAfterTimeout: true,
	}
}

// join adds users in order and gives each a credential.
func (h *harness) join(t *testing.T, eventID string, users ...string) {
	t.Helper()
	for _, u := range users {
		_ = h.creds.Put(context.Background(), u, "session="+u)
		if _, err := h.engine.Join(context.Background(), JoinInput{
			EventID:    eventID,
			UserID:     u,
			ChatID:     "chat-" + u,
			EventTitle: "Launch party",
		}); err != nil {
			t.Fatalf("join %s: %v", u, err)
		}
	}
}
