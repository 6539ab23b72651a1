package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Invalidation kinds carried by sync events.
const (
	KindReserved  = "reserved"
	KindCancelled = "cancelled"
	KindExpired   = "expired"
	KindBlocked   = "blocked"
	KindTick      = "tick"
)

// SyncEvent tells a calendar view that the availability of a property
// changed and it should refetch. IDs let subscribers de-duplicate deliveries
// that arrive over more than one of the redundant paths.
type SyncEvent struct {
	ID         string    `json:"id"`
	PropertyID uint      `json:"propertyID"`
	Kind       string    `json:"kind"`
	At         time.Time `json:"at"`
}

// Bus is the broadcast transport. The contract is eventual delivery to every
// subscriber of the property; the transport is an implementation choice.
type Bus interface {
	Publish(ctx context.Context, ev SyncEvent) error
	Subscribe(ctx context.Context, propertyID uint) (<-chan SyncEvent, error)
	LastChange(ctx context.Context, propertyID uint) (time.Time, error)
}

// defaultPollInterval is the low-frequency fallback tick delivered to
// subscribers even when no broadcast arrives.
const defaultPollInterval = 30 * time.Second

// SyncService keeps every open calendar view eventually consistent with the
// booking table through three redundant fail-safes: the broadcast bus, the
// periodic fallback tick, and the StaleSince check a re-focused view runs.
// All of them are advisory; the authoritative availability check always
// happens again inside the reservation commit.
type SyncService struct {
	bus       Bus
	pollEvery time.Duration
}

func NewSyncService(bus Bus, pollEvery time.Duration) *SyncService {
	if pollEvery <= 0 {
		pollEvery = defaultPollInterval
	}
	return &SyncService{bus: bus, pollEvery: pollEvery}
}

// Publish broadcasts an invalidation for the property. Best effort: a lost
// broadcast only delays viewers until their fallback tick.
func (s *SyncService) Publish(ctx context.Context, propertyID uint, kind string) {
	ev := SyncEvent{
		ID:         uuid.NewString(),
		PropertyID: propertyID,
		Kind:       kind,
		At:         time.Now().UTC(),
	}
	if err := s.bus.Publish(ctx, ev); err != nil {
		log.Println("sync publish failed:", err)
	}
}

// Subscribe delivers broadcast events for the property plus a periodic
// fallback tick until ctx is cancelled. The returned channel is closed when
// the subscription ends.
func (s *SyncService) Subscribe(ctx context.Context, propertyID uint) (<-chan SyncEvent, error) {
	in, err := s.bus.Subscribe(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan SyncEvent)
	go func() {
		defer close(out)
		ticker := time.NewTicker(s.pollEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			case t := <-ticker.C:
				tick := SyncEvent{ID: uuid.NewString(), PropertyID: propertyID, Kind: KindTick, At: t.UTC()}
				select {
				case out <- tick:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// StaleSince lets a view that regained focus ask whether availability
// changed while it was inactive.
func (s *SyncService) StaleSince(ctx context.Context, propertyID uint, since time.Time) (bool, error) {
	last, err := s.bus.LastChange(ctx, propertyID)
	if err != nil {
		return false, err
	}
	return !last.IsZero() && last.After(since), nil
}

// RedisBus broadcasts through redis pub/sub and keeps a last-change marker
// key per property as the shared key-value fallback signal.
type RedisBus struct {
	client    *redis.Client
	markerTTL time.Duration
}

func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client, markerTTL: 24 * time.Hour}
}

func syncChannel(propertyID uint) string {
	return fmt.Sprintf("availability:%d", propertyID)
}

func staleMarker(propertyID uint) string {
	return fmt.Sprintf("stale:availability:%d", propertyID)
}

func (b *RedisBus) Publish(ctx context.Context, ev SyncEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := b.client.Set(ctx, staleMarker(ev.PropertyID), ev.At.Format(time.RFC3339Nano), b.markerTTL).Err(); err != nil {
		return err
	}
	return b.client.Publish(ctx, syncChannel(ev.PropertyID), payload).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, propertyID uint) (<-chan SyncEvent, error) {
	sub := b.client.Subscribe(ctx, syncChannel(propertyID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan SyncEvent)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev SyncEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Println("sync: dropping malformed event:", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *RedisBus) LastChange(ctx context.Context, propertyID uint) (time.Time, error) {
	val, err := b.client.Get(ctx, staleMarker(propertyID)).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, val)
}

// MemoryBus is the in-process bus used when no redis is configured, and by
// the tests. Same delivery contract, single process only.
type MemoryBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[uint]map[int]chan SyncEvent
	last   map[uint]time.Time
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		subs: make(map[uint]map[int]chan SyncEvent),
		last: make(map[uint]time.Time),
	}
}

func (b *MemoryBus) Publish(ctx context.Context, ev SyncEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last[ev.PropertyID] = ev.At
	for _, ch := range b.subs[ev.PropertyID] {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop, its fallback tick will catch it up.
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, propertyID uint) (<-chan SyncEvent, error) {
	ch := make(chan SyncEvent, 16)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.subs[propertyID] == nil {
		b.subs[propertyID] = make(map[int]chan SyncEvent)
	}
	b.subs[propertyID][id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs[propertyID], id)
		b.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

func (b *MemoryBus) LastChange(ctx context.Context, propertyID uint) (time.Time, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last[propertyID], nil
}
