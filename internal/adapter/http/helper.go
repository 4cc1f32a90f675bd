package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"strconv"
	"strings"

	"insurance-claims-backend/internal/adapter/middleware"
	"insurance-claims-backend/internal/domain/claim"
	"insurance-claims-backend/internal/domain/user"
	docuc "insurance-claims-backend/internal/usecase/document"

	"github.com/labstack/echo/v4"
)

// envelope wraps every successful response body.
type envelope struct {
	Data any `json:"data"`
}

func ok(c echo.Context, status int, v any) error {
	return c.JSON(status, envelope{Data: v})
}

// actor returns the authenticated caller. Routes are always mounted behind
// Authenticate, so a missing actor is a wiring bug.
func actor(c echo.Context) (user.Actor, error) {
	a, found := middleware.ActorFrom(c)
	if !found {
		return user.Actor{}, errors.New("no authenticated actor on request")
	}
	return a, nil
}

// self resolves the caller and checks that the {userId} path segment names
// them.
func self(c echo.Context) (user.Actor, error) {
	a, err := actor(c)
	if err != nil {
		return a, err
	}
	if p := c.Param("userId"); p != a.ID {
		return a, fmt.Errorf("%w: path user does not match the authenticated user", claim.ErrForbidden)
	}
	return a, nil
}

// expectedVersion reads an optional If-Match header ("3" or "\"3\"").
func expectedVersion(c echo.Context) (*uint, error) {
	raw := strings.Trim(strings.TrimSpace(c.Request().Header.Get("If-Match")), `"`)
	if raw == "" || raw == "*" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return nil, fmt.Errorf("%w: If-Match must be a claim version number", claim.ErrValidation)
	}
	v := uint(n)
	return &v, nil
}

// formFiles collects uploads under any of the given field names; browsers
// send "documents[]" while most clients send "documents".
func formFiles(form *multipart.Form, fields ...string) []docuc.Upload {
	if form == nil {
		return nil
	}
	var out []docuc.Upload
	for _, f := range fields {
		for _, fh := range form.File[f] {
			fh := fh
			out = append(out, docuc.Upload{
				Filename: fh.Filename,
				Size:     fh.Size,
				Open:     func() (io.ReadCloser, error) { return fh.Open() },
			})
		}
	}
	return out
}

// multipartForm parses the body; a plain urlencoded form yields no files.
func multipartForm(c echo.Context) (*multipart.Form, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ct, echo.MIMEMultipartForm) {
		if err := c.Request().ParseForm(); err != nil {
			return nil, err
		}
		return &multipart.Form{Value: c.Request().PostForm}, nil
	}
	return c.MultipartForm()
}

func formValue(form *multipart.Form, keys ...string) string {
	for _, k := range keys {
		if v := form.Value[k]; len(v) > 0 && strings.TrimSpace(v[0]) != "" {
			return strings.TrimSpace(v[0])
		}
	}
	return ""
}

func setVersionHeader(c echo.Context, v uint) {
	c.Response().Header().Set("ETag", strconv.Quote(strconv.FormatUint(uint64(v), 10)))
}

// amountField reads an optional money value sent either as a JSON number or
// as a numeric string. Range and precision are left to the validator.
func amountField(raw json.RawMessage) (*float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: amount is not numeric", claim.ErrValidation)
		}
		if s = strings.TrimSpace(s); s == "" {
			return nil, nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: amount %s is not numeric", claim.ErrValidation, strconv.Quote(s))
	}
	return &v, nil
}

// stringField reads an optional JSON string; null or absent is "".
func stringField(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: must be a string", claim.ErrValidation)
	}
	return s, nil
}
