package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate names fields by their koanf key, so errors read like the YAML
// the operator has to fix.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("koanf")
	})

	return v
}()

// Validate checks c and reports every problem at once. The service must
// not start on an invalid config.
func (c *Config) Validate() error {
	var problems []string

	var fieldErrs validator.ValidationErrors
	if err := validate.Struct(c); err != nil {
		if !errors.As(err, &fieldErrs) {
			return err
		}

		for _, fe := range fieldErrs {
			problems = append(problems, describe(fe))
		}
	}

	problems = append(problems, c.Content.driverProblems()...)

	if len(problems) == 0 {
		return nil
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(problems, "\n  "))
}

// driverProblems lists settings the selected content store needs but lacks.
func (c *ContentConfig) driverProblems() []string {
	var missing []string

	switch c.Driver {
	case DriverFirestore:
		if c.Firestore.ProjectID == "" {
			missing = append(missing, "content.firestore.project_id")
		}
	case DriverMongo:
		if c.Mongo.URI == "" {
			missing = append(missing, "content.mongo.uri")
		}

		if c.Mongo.Database == "" {
			missing = append(missing, "content.mongo.database")
		}
	}

	problems := make([]string, 0, len(missing))
	for _, key := range missing {
		problems = append(problems, fmt.Sprintf("%s is required when content.driver is %s", key, c.Driver))
	}

	return problems
}

func describe(fe validator.FieldError) string {
	key := configKey(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", key, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, fe.Param())
	case "url":
		return key + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed validation: %s", key, fe.Tag())
	}
}

// configKey drops the root struct from a validator namespace:
// "Config.server.read_timeout" becomes "server.read_timeout".
func configKey(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}

	return namespace
}
