// Package validation checks raw form input before any backend call is made.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Error is a client-side validation failure. It never reaches the API client
// and is always recoverable in place.
type Error struct {
	Fields map[string]string
	order  []string
}

func (e *Error) Error() string {
	if e == nil || len(e.order) == 0 {
		return "datos inválidos"
	}
	return e.Fields[e.order[0]]
}

// First returns the first failing field's message.
func (e *Error) First() string {
	return e.Error()
}

// Add records msg for field, keeping the first message per field.
func (e *Error) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = msg
	e.order = append(e.order, field)
}

// Fail builds a single-field Error.
func Fail(field, msg string) *Error {
	e := &Error{}
	e.Add(field, msg)
	return e
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var verr *Error
	return errors.As(err, &verr)
}

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if label := f.Tag.Get("label"); label != "" {
				return label
			}
			return f.Name
		})
		_ = v.RegisterValidation("id", func(fl validator.FieldLevel) bool {
			n, err := strconv.ParseInt(strings.TrimSpace(fl.Field().String()), 10, 64)
			return err == nil && n > 0
		})
		_ = v.RegisterValidation("positive", func(fl validator.FieldLevel) bool {
			n, err := ParseDecimal(fl.Field().String())
			return err == nil && n > 0
		})
		_ = v.RegisterValidation("nonneg", func(fl validator.FieldLevel) bool {
			n, err := ParseDecimal(fl.Field().String())
			return err == nil && n >= 0
		})
		_ = v.RegisterValidation("count", func(fl validator.FieldLevel) bool {
			n, err := strconv.ParseInt(strings.TrimSpace(fl.Field().String()), 10, 64)
			return err == nil && n >= 0
		})
		_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
			_, err := ParseDecimal(fl.Field().String())
			return err == nil
		})
		instance = v
	})
	return instance
}

// Struct validates form and returns *Error on failure. Strings are expected
// to be trimmed by the caller.
func Struct(form any) error {
	err := engine().Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Error{}
	for _, fe := range fieldErrs {
		out.Add(fe.StructField(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("El campo %s es obligatorio.", label)
	case "email":
		return fmt.Sprintf("El campo %s no es un email válido.", label)
	case "min":
		return fmt.Sprintf("El campo %s debe tener al menos %s caracteres.", label, fe.Param())
	case "max":
		return fmt.Sprintf("El campo %s no puede superar %s caracteres.", label, fe.Param())
	case "positive":
		return fmt.Sprintf("El campo %s debe ser mayor que 0.", label)
	case "nonneg":
		return fmt.Sprintf("El campo %s debe ser un número mayor o igual a 0.", label)
	case "count":
		return fmt.Sprintf("El campo %s debe ser un entero mayor o igual a 0.", label)
	case "decimal", "number":
		return fmt.Sprintf("El campo %s debe ser un número válido.", label)
	default:
		return fmt.Sprintf("El campo %s no es válido.", label)
	}
}

// ParseDecimal parses a user-typed number, accepting a comma decimal separator.
func ParseDecimal(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("empty number")
	}
	if strings.Contains(raw, ",") && !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if n != n || n > 1e15 || n < -1e15 {
		return 0, errors.New("number out of range")
	}
	return n, nil
}

// ParseID parses a positive integer identifier.
func ParseID(raw string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
