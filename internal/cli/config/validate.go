package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their koanf key.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("koanf")
	})
	return v
}

// ErrMissingCredentials is returned when the graphistry exporter is selected
// without a username or password.
var ErrMissingCredentials = errors.New("GRAPHISTRY_USER and GRAPHISTRY_PASS must be set (environment or .env file)")

// Validate checks field values. Credentials are checked separately by
// RequireCredentials since a dry run does not need them.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// RequireCredentials fails when the graphistry exporter is selected and
// either credential is missing.
func (c *Config) RequireCredentials() error {
	if c.Exporter != "graphistry" {
		return nil
	}
	if c.Graphistry.Username == "" || c.Graphistry.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// formatValidationError reports every failed field using its config key.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		key := configKey(e.Namespace())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", key))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s, got %v", key, e.Param(), e.Value()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", key, e.Param(), e.Value()))
		case "eq":
			msgs = append(msgs, fmt.Sprintf("%s must be %s, got %v", key, e.Param(), e.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", key, e.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// configKey drops the root struct name from a namespace such as
// Config.graphistry.api.
func configKey(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
