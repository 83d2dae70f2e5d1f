package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/valkey-io/valkey-go"
)

// valkeyKeyPrefix namespaces elevation entries in a shared Valkey instance.
const valkeyKeyPrefix = "runcraft:elevation:"

// ValkeyStore keeps resolved elevations in Valkey (Redis-compatible). Keys never expire.
type ValkeyStore struct {
	client valkey.Client
	log    *slog.Logger
}

// NewValkeyClient connects to a Valkey server at addr.
func NewValkeyClient(addr string) (valkey.Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}

	return client, nil
}

// NewValkeyStore wraps an existing client.
func NewValkeyStore(client valkey.Client, log *slog.Logger) *ValkeyStore {
	return &ValkeyStore{client: client, log: log}
}

// Lookup fetches all keys in one pipelined round trip.
func (vs *ValkeyStore) Lookup(ctx context.Context, keys []string) (map[string]float64, error) {
	found := make(map[string]float64, len(keys))
	if len(keys) == 0 {
		return found, nil
	}

	cmds := make(valkey.Commands, 0, len(keys))
	for _, key := range keys {
		cmds = append(cmds, vs.client.B().Get().Key(valkeyKeyPrefix+key).Build())
	}

	for i, resp := range vs.client.DoMulti(ctx, cmds...) {
		elev, err := resp.AsFloat64()
		if valkey.IsValkeyNil(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read elevation for %s: %w", keys[i], err)
		}
		found[keys[i]] = elev
	}

	vs.log.DebugContext(ctx, "Elevation points loaded from valkey", "requested", len(keys), "found", len(found))

	return found, nil
}

// Store writes the values with SET NX so an existing entry is never overwritten.
func (vs *ValkeyStore) Store(ctx context.Context, values map[string]float64) error {
	if len(values) == 0 {
		return nil
	}

	cmds := make(valkey.Commands, 0, len(values))
	for key, elev := range values {
		cmds = append(cmds, vs.client.B().Set().
			Key(valkeyKeyPrefix+key).
			Value(strconv.FormatFloat(elev, 'f', -1, 64)).
			Nx().
			Build())
	}

	for _, resp := range vs.client.DoMulti(ctx, cmds...) {
		// NX answers nil when the key already exists.
		if err := resp.Error(); err != nil && !valkey.IsValkeyNil(err) {
			return fmt.Errorf("failed to store elevation point: %w", err)
		}
	}

	return nil
}

// Ping checks the connection for health checks.
func (vs *ValkeyStore) Ping(ctx context.Context) error {
	return vs.client.Do(ctx, vs.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (vs *ValkeyStore) Close() {
	vs.client.Close()
}
