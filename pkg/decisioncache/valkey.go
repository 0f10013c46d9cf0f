package decisioncache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"

	"github.com/AzielCF/az-digest/domains/gating"
	"github.com/AzielCF/az-digest/infrastructure/valkey"
)

// ValkeyStore implements gating.DecisionCache on Valkey. Expiration is native
// TTL, so entries survive process restarts when the operator opts in.
type ValkeyStore struct {
	client *valkey.Client
	prefix string
}

// NewValkeyStore creates a new ValkeyStore instance.
func NewValkeyStore(client *valkey.Client) *ValkeyStore {
	return &ValkeyStore{
		client: client,
		prefix: client.Key("gating_decision") + ":",
	}
}

func (s *ValkeyStore) fullKey(fingerprint string) string {
	return s.prefix + fingerprint
}

func (s *ValkeyStore) inner() valkeylib.Client {
	return s.client.Inner()
}

func (s *ValkeyStore) Get(ctx context.Context, fingerprint string) (*gating.CacheEntry, error) {
	cmd := s.inner().B().Get().Key(s.fullKey(fingerprint)).Build()

	data, err := s.inner().Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkeylib.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gating decision: %w", err)
	}

	var entry gating.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gating decision: %w", err)
	}
	return &entry, nil
}

func (s *ValkeyStore) Save(ctx context.Context, fingerprint string, entry *gating.CacheEntry, ttl time.Duration) error {
	entry.ExpiresAt = time.Now().Add(ttl)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal gating decision: %w", err)
	}

	cmd := s.inner().B().Set().
		Key(s.fullKey(fingerprint)).
		Value(string(data)).
		Ex(ttl).
		Build()

	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save gating decision: %w", err)
	}
	return nil
}

func (s *ValkeyStore) Delete(ctx context.Context, fingerprint string) error {
	cmd := s.inner().B().Del().Key(s.fullKey(fingerprint)).Build()
	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to delete gating decision: %w", err)
	}
	return nil
}
