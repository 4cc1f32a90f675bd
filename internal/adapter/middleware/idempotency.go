package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"insurance-claims-backend/internal/infrastructure/logger"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"

	// How long we hold the "in-progress" lock before it must be refreshed by finishing the handler.
	provisionalLockTTL = 60 * time.Second
	// Multipart submissions carry up to eight 5 MiB files plus form fields.
	maxIdempotentBody = 48 << 20
)

type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	Key         string    `json:"key"`
	CreatedAt   time.Time `json:"created_at"`
}

type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	if r.buf != nil {
		r.buf.Write(b)
	}
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

// Idempotency makes retried workflow mutations safe. It is opt-in per
// request: calls without an Idempotency-Key header pass straight through.
// The key is scoped by method, route, caller and client key, so it must run
// after Authenticate. A repeated key with the same body replays the stored
// response; with a different body it is rejected with 409. Server errors are
// not stored so the client can retry them.
func Idempotency(rdb *redis.Client, ttl time.Duration, log *logger.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = logger.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			method := req.Method

			switch method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			idemKey := strings.TrimSpace(req.Header.Get(HeaderIdempotencyKey))
			if idemKey == "" {
				return next(c)
			}
			if !validIdemKey(idemKey) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid Idempotency-Key format", "code": "VALIDATION_ERROR"})
			}
			actor, ok := ActorFrom(c)
			if !ok {
				return unauthorized(c, "not authenticated")
			}

			var body []byte
			if req.Body != nil {
				var err error
				body, err = io.ReadAll(io.LimitReader(req.Body, maxIdempotentBody+1))
				if err != nil {
					return c.JSON(http.StatusBadRequest, map[string]string{"error": "unreadable request body", "code": "VALIDATION_ERROR"})
				}
				if len(body) > maxIdempotentBody {
					return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large", "code": "VALIDATION_ERROR"})
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			bhash := bodyHash(body)

			key := buildKey(method, c.Path(), actor.ID, idemKey)
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()

			entry := idempEntry{InProgress: true, BodySHA256: bhash, Key: idemKey, CreatedAt: nowUTC()}
			ok, err := provisionalSet(ctx, rdb, key, entry)
			if err != nil {
				log.Error("idempotency store unavailable", "key", key, "error", err)
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable", "code": "UNAVAILABLE"})
			}
			if !ok {
				cur, errLoad := loadEntry(ctx, rdb, key)
				if errLoad != nil {
					log.Warn("idempotency entry load failed", "key", key, "error", errLoad)
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					return c.JSON(http.StatusConflict, map[string]string{"error": "Idempotency-Key reused with different body", "code": "CONFLICT"})
				}
				if !cur.InProgress && cur.Code != 0 {
					ct := cur.ContentType
					if ct == "" {
						ct = echo.MIMEApplicationJSONCharsetUTF8
					}
					c.Response().Header().Set("Idempotent-Replayed", "true")
					return c.Blob(cur.Code, ct, cur.Body)
				}
				return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress", "code": "CONFLICT"})
			}

			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// detached: the client may already be gone
			bg, cancelBg := context.WithTimeout(context.WithoutCancel(req.Context()), 2*time.Second)
			defer cancelBg()
			if rec.code >= http.StatusInternalServerError {
				if err := rdb.Del(bg, key).Err(); err != nil {
					log.Warn("idempotency lock release failed", "key", key, "error", err)
				}
				return nil
			}
			final := idempEntry{
				Code:        rec.code,
				ContentType: rec.Header().Get(echo.HeaderContentType),
				Body:        rec.buf.Bytes(),
				BodySHA256:  bhash,
				Key:         idemKey,
				CreatedAt:   nowUTC(),
			}
			if err := saveFinal(bg, rdb, key, final, ttl); err != nil {
				log.Warn("idempotency result not stored", "key", key, "error", err)
			}
			return nil
		}
	}
}
