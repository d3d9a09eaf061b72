package quality

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	domainquality "pqms/internal/domain/quality"
	"pqms/internal/errs"
)

const dateLayout = "2006-01-02"

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("backup_frequency", func(fl validator.FieldLevel) bool {
		return domainquality.ValidBackupFrequency(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return domainquality.ValidUsername(fl.Field().String())
	})
	v.RegisterStructValidationMapRules(map[string]string{
		"SystemName":            "required,max=100",
		"Language":              "required,max=10",
		"Timezone":              "required,max=50",
		"DateFormat":            "required,max=20",
		"SessionTimeoutMinutes": "min=1",
		"PasswordExpiryDays":    "min=0",
		"BackupFrequency":       "backup_frequency",
	}, domainquality.SystemSettings{})
	return v
}

// check validates in and reports the first failing field, prefixed when nested.
func (s *Service) check(in any, prefix string) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.Wrap(err, "validate input")
	}

	fe := fieldErrs[0]
	field := fe.Field()
	if prefix != "" {
		field = prefix + "." + field
	}
	return errs.Validation(field, describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is less than or equal to %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
		}
		return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
	case "email":
		return "enter a valid email address"
	case "username":
		return "enter a valid username: letters, digits and @/./+/-/_ only"
	case "oneof", "backup_frequency":
		return fmt.Sprintf("%q is not a valid choice", fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// choice converts a domain parse error into a field validation error.
func choice[T any](field string, parse func(string) (T, error), raw string) (T, error) {
	v, err := parse(raw)
	if err != nil {
		return v, errs.Validation(field, err.Error())
	}
	return v, nil
}

func parseDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, errs.Validationf(field, "date has wrong format, use YYYY-MM-DD")
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
