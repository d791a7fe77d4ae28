package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/erazemk/donations/internal/donation"
	"github.com/erazemk/donations/internal/store"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("encoding response")
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, r *http.Request, status int, message string) {
	jsonResponse(w, r, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into target and runs its
// validation tags.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(target); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(target); err != nil {
		return validationMessage(err)
	}
	return nil
}

func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := strings.SplitN(fe.Namespace(), ".", 2)
	name := fe.Field()
	if len(field) == 2 {
		name = field[1]
	}
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Errorf("%s is required", name)
	case "email":
		return fmt.Errorf("%s must be a valid email address", name)
	case "min", "gte":
		return fmt.Errorf("%s must be at least %s", name, fe.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", name, fe.Param())
	default:
		return fmt.Errorf("%s is invalid", name)
	}
}

// idParam parses a positive integer path parameter.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// writeServiceError maps domain errors to status codes. Anything it does
// not recognize is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *donation.ValidationError
		notFound   *donation.NotFoundError
		ambiguous  *donation.AmbiguousReferenceError
		stock      *donation.InsufficientStockError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &ambiguous), errors.As(err, &stock):
		jsonError(w, r, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		jsonError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrStockConflict):
		jsonError(w, r, http.StatusConflict, "stock changed while the request was processed, please retry")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		jsonError(w, r, http.StatusInternalServerError, "internal error")
	}
}
