// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/tiffin/config"
	"github.com/shashiranjanraj/tiffin/pkg/validate"
)

const defaultMaxBody = 4 << 20

// ErrEmptyBody is returned when the request has no body at all.
var ErrEmptyBody = errors.New("request body is empty")

func maxBodyBytes() int64 {
	n := int64(config.Int("MAX_BODY_BYTES", defaultMaxBody))
	if n <= 0 {
		return defaultMaxBody
	}
	return n
}

// JSON decodes r.Body into dest and validates it. Malformed or oversized
// bodies return err; validation failures return errs.
func JSON(r *http.Request, dest any) (errs validate.Errors, err error) {
	if err := Decode(r, dest); err != nil {
		return nil, err
	}
	return validate.Struct(dest), nil
}

// Decode is JSON without validation.
func Decode(r *http.Request, dest any) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return ErrEmptyBody
		default:
			return fmt.Errorf("invalid JSON: %w", err)
		}
	}
	return nil
}
