package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"fintrack/domain"
	"fintrack/errors"

	"github.com/nats-io/nats.go"
)

// Bucket is the JetStream KeyValue bucket holding presence entries, one key
// per user id.
const Bucket = "PRESENCE"

// kvEntry is the stored value; the user id is the key and is not repeated.
type kvEntry struct {
	Name   string `json:"name"`
	ConnID string `json:"socketId"`
}

// KVDirectory is the shared Directory over a NATS JetStream KeyValue bucket.
// Writes are last-write-wins per key; there is no compare-and-swap, which is
// an accepted limitation of the presence model.
type KVDirectory struct {
	kv nats.KeyValue
}

// NewKVDirectory creates (or binds to) the presence bucket.
func NewKVDirectory(js nats.JetStreamContext) (*KVDirectory, error) {
	kv, err := js.CreateKeyValue(&nats.KeyValueConfig{
		Bucket:  Bucket,
		History: 1,
		Storage: nats.MemoryStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create presence bucket: %v", errors.ErrConnectivity, err)
	}
	return &KVDirectory{kv: kv}, nil
}

func (d *KVDirectory) Register(_ context.Context, entry domain.PresenceEntry) error {
	data, err := json.Marshal(kvEntry{Name: entry.Name, ConnID: entry.ConnID})
	if err != nil {
		return err
	}
	if _, err := d.kv.Put(entry.UserID, data); err != nil {
		return fmt.Errorf("%w: register %s: %v", errors.ErrConnectivity, entry.UserID, err)
	}
	return nil
}

func (d *KVDirectory) Lookup(_ context.Context, userID string) (domain.PresenceEntry, bool, error) {
	kve, err := d.kv.Get(userID)
	if err == nats.ErrKeyNotFound {
		return domain.PresenceEntry{}, false, nil
	}
	if err != nil {
		return domain.PresenceEntry{}, false, fmt.Errorf("%w: lookup %s: %v", errors.ErrConnectivity, userID, err)
	}
	var stored kvEntry
	if err := json.Unmarshal(kve.Value(), &stored); err != nil {
		return domain.PresenceEntry{}, false, err
	}
	return domain.PresenceEntry{UserID: userID, Name: stored.Name, ConnID: stored.ConnID}, true, nil
}

// Remove scans the bucket for the entry holding connID and deletes it.
// Matching on the connection id keeps a disconnect of an old socket from
// evicting the entry written by a newer reconnection.
func (d *KVDirectory) Remove(ctx context.Context, connID string) (bool, error) {
	keys, err := d.keys()
	if err != nil {
		return false, err
	}
	for _, key := range keys {
		entry, found, err := d.Lookup(ctx, key)
		if err != nil || !found {
			continue
		}
		if entry.ConnID == connID {
			if err := d.kv.Delete(key); err != nil {
				return false, fmt.Errorf("%w: remove %s: %v", errors.ErrConnectivity, key, err)
			}
			return true, nil
		}
	}
	return false, nil
}

func (d *KVDirectory) ListAll(ctx context.Context) ([]domain.PresenceEntry, error) {
	keys, err := d.keys()
	if err != nil {
		return nil, err
	}
	entries := make([]domain.PresenceEntry, 0, len(keys))
	for _, key := range keys {
		// An entry deleted between Keys and Get is simply skipped.
		entry, found, err := d.Lookup(ctx, key)
		if err != nil {
			return nil, err
		}
		if found {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries, nil
}

func (d *KVDirectory) keys() ([]string, error) {
	keys, err := d.kv.Keys()
	if err == nats.ErrNoKeysFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list presence keys: %v", errors.ErrConnectivity, err)
	}
	return keys, nil
}
