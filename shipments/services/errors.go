package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrShipmentNotFound = errors.New("shipment not found")
	ErrTrackingNumber   = errors.New("tracking number generation failed")
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// requireText flags fields that are blank once surrounding whitespace is trimmed.
func requireText(verr *ValidationError, fields map[string]string) {
	for field, value := range fields {
		if strings.TrimSpace(value) == "" {
			verr.add(field, "is required")
		}
	}
}

// FromBinding converts request-binding validator failures into a *ValidationError and returns
// any other error unchanged.
func FromBinding(err error) error {
	ve := &ValidationError{}
	if rest := fromValidator(err, ve); rest != nil {
		return rest
	}
	return ve
}

// fromValidator converts validator output keyed by json field names.
func fromValidator(err error, into *ValidationError) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		into.add(fe.Field(), describeTag(fe))
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return "is invalid"
	}
}
