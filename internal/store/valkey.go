package store

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"
)

// ValkeyStore implements BlobStore on a Valkey (Redis-compatible) server.
// Keys never expire.
type ValkeyStore struct {
	client valkey.Client
}

// NewValkey connects to the server at addr.
func NewValkey(addr string) (*ValkeyStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &ValkeyStore{client: client}, nil
}

func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *ValkeyStore) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.client.B().Set().Key(key).Value(valkey.BinaryString(value)).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) Close() error {
	s.client.Close()
	return nil
}
