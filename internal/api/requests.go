package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps request bodies; a full log of a decade of dates is far
// below this.
const maxBodyBytes = 64 << 10

// validate is shared; validator.Validate caches struct metadata and is safe
// for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// PredictionRequest is the body of POST /api/v1/predictions.
type PredictionRequest struct {
	PeriodStarts []string `json:"period_starts" validate:"required,dive,max=10"`
}

// PhaseRequest is the body of POST /api/v1/phase and /api/v1/summary.
// Date is optional; empty means today in the server's time zone.
type PhaseRequest struct {
	PeriodStarts []string `json:"period_starts" validate:"required,dive,max=10"`
	Date         string   `json:"date,omitempty" validate:"omitempty,len=10"`
}

// decodeJSON decodes a JSON request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// validateRequest runs struct validation and flattens the result into a
// client-facing message.
func validateRequest(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max", "len":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date", field)
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}
