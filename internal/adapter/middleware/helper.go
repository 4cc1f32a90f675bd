package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

func bodyHash(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }

func nowUTC() time.Time { return time.Now().UTC() }

func buildKey(method, path, actorID, idemKey string) string {
	return "idemp:claims:" + strings.ToLower(method) + ":" + path + ":" + actorID + ":" + idemKey
}

// validIdemKey accepts a hyphenated RFC 4122 UUID (v1-v8), a 32-char hex id
// or a ULID, case-insensitive.
func validIdemKey(k string) bool {
	k = strings.TrimSpace(k)
	switch len(k) {
	case 36:
		u, err := uuid.Parse(k)
		return err == nil && u.Variant() == uuid.RFC4122 && u.Version() >= 1 && u.Version() <= 8
	case 32:
		_, err := hex.DecodeString(k)
		return err == nil
	case ulid.EncodedSize:
		_, err := ulid.ParseStrict(strings.ToUpper(k))
		return err == nil
	}
	return false
}

// ---- Redis helpers ----
func provisionalSet(ctx context.Context, rdb *redis.Client, key string, entry idempEntry) (bool, error) {
	payload, _ := json.Marshal(entry)
	return rdb.SetNX(ctx, key, payload, provisionalLockTTL).Result()
}

func loadEntry(ctx context.Context, rdb *redis.Client, key string) (idempEntry, error) {
	var e idempEntry
	v, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	_ = json.Unmarshal(v, &e)
	return e, nil
}

func saveFinal(ctx context.Context, rdb *redis.Client, key string, entry idempEntry, ttl time.Duration) error {
	payload, _ := json.Marshal(entry)
	return rdb.Set(ctx, key, payload, ttl).Err()
}
