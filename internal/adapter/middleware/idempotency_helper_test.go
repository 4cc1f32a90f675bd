package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

func Test_bodyHash(t *testing.T) {
	data := []byte("hello world")
	sum := sha256.Sum256(data)
	if got, want := bodyHash(data), hex.EncodeToString(sum[:]); got != want {
		t.Fatalf("bodyHash mismatch: got %s want %s", got, want)
	}
}

func Test_nowUTC(t *testing.T) {
	u := nowUTC()
	if u.Location() != time.UTC {
		t.Fatalf("nowUTC must be UTC, got %v", u.Location())
	}
	if d := time.Since(u); d < 0 || d > 2*time.Second {
		t.Fatalf("nowUTC too far from now: %v", d)
	}
}

func Test_buildKey(t *testing.T) {
	k := buildKey("POST", "/api/claims", strings.Repeat("b", 32), strings.Repeat("a", 32))
	wantPrefix := "idemp:claims:post:/api/claims:"
	if !strings.HasPrefix(k, wantPrefix) {
		t.Fatalf("buildKey prefix mismatch: got %q want prefix %q", k, wantPrefix)
	}
	if !strings.Contains(k, ":"+strings.Repeat("b", 32)+":") || !strings.HasSuffix(k, strings.Repeat("a", 32)) {
		t.Fatalf("buildKey missing actor/key segments: %q", k)
	}
}

func Test_validIdemKey(t *testing.T) {
	t.Run("accepts uuid, 32-hex and ulid", func(t *testing.T) {
		valid := []string{
			"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
			"3F9A6A1B-3D54-4FBE-8B3A-6B3E8D6B2C88",
			"018f4e3c-7a1b-7c2d-9e3f-0a1b2c3d4e5f", // v7
			strings.Repeat("a", 32),
			"01HZX3J8K9M2N4P6Q8R0S2T4V6",
			"01hzx3j8k9m2n4p6q8r0s2t4v6",
		}
		for _, s := range valid {
			if !validIdemKey(s) {
				t.Fatalf("validIdemKey should accept %q", s)
			}
		}
	})

	t.Run("rejects bad formats", func(t *testing.T) {
		invalid := []string{
			"",
			"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",   // 31 chars
			"3f9a6a1b3d544fbe8b3a6b3e8d6b2c880", // 33 chars
			"zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz",
			"3f9a6a1b-3d54-9fbe-8b3a-6b3e8d6b2c88", // version 9
			"01HZX3J8K9M2N4P6Q8R0S2T4VI",           // I is not crockford
			"8ZZZZZZZZZZZZZZZZZZZZZZZZZ",           // ulid overflow
			"3f9a6a1b-3d54-4fbe-cb3a-6b3e8d6b2c88", // not the RFC 4122 variant
			"{3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88}",
			"urn:uuid:3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
			"retry-me-please",
		}
		for _, s := range invalid {
			if validIdemKey(s) {
				t.Fatalf("validIdemKey should reject %q", s)
			}
		}
	})
}

func Test_provisionalSet_LoadEntry(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()

	key := buildKey("POST", "/api/claims", strings.Repeat("b", 32), strings.Repeat("a", 32))
	entry := idempEntry{
		InProgress: true,
		BodySHA256: bodyHash([]byte(`{"a":1}`)),
		Key:        strings.Repeat("a", 32),
		CreatedAt:  nowUTC(),
	}

	ok, err := provisionalSet(context.Background(), rdb, key, entry)
	if err != nil || !ok {
		t.Fatalf("provisionalSet 1: ok=%v err=%v", ok, err)
	}
	ttl := rdb.TTL(context.Background(), key).Val()
	if ttl <= 0 || ttl > provisionalLockTTL {
		t.Fatalf("provisional TTL not set correctly: %v", ttl)
	}

	ok, err = provisionalSet(context.Background(), rdb, key, entry)
	if err != nil {
		t.Fatalf("provisionalSet 2 err: %v", err)
	}
	if ok {
		t.Fatalf("provisionalSet 2 should be false, got true")
	}

	got, err := loadEntry(context.Background(), rdb, key)
	if err != nil {
		t.Fatalf("loadEntry err: %v", err)
	}
	if !got.InProgress || got.Key != entry.Key || got.BodySHA256 != entry.BodySHA256 {
		t.Fatalf("loaded entry mismatch: %+v vs %+v", got, entry)
	}
}

func Test_saveFinal_Load_TTL(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()

	key := buildKey("POST", "/api/claims", strings.Repeat("b", 32), strings.Repeat("a", 32))
	final := idempEntry{
		Code:        201,
		ContentType: "application/json",
		Body:        []byte(`{"ok":true}`),
		BodySHA256:  bodyHash([]byte(`{"ok":true}`)),
		Key:         strings.Repeat("a", 32),
		CreatedAt:   nowUTC(),
	}

	ttlWant := 5 * time.Second
	if err := saveFinal(context.Background(), rdb, key, final, ttlWant); err != nil {
		t.Fatalf("saveFinal err: %v", err)
	}
	ttl := rdb.TTL(context.Background(), key).Val()
	if ttl <= 0 || ttl > ttlWant {
		t.Fatalf("final TTL out of range: got %v want <= %v", ttl, ttlWant)
	}

	got, err := loadEntry(context.Background(), rdb, key)
	if err != nil {
		t.Fatalf("load after final err: %v", err)
	}
	if got.Code != 201 || string(got.Body) != `{"ok":true}` || got.InProgress {
		t.Fatalf("final entry mismatch: %+v", got)
	}
}
