// File: pkg/common/config.go
package common

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ProviderConfig carries everything needed to open a handle against one provider
type ProviderConfig struct {
	Provider Provider `arg:"provider" validate:"required"`
	// Ignored for GCP, whose interoperability endpoint is global
	Region    string `arg:"region" validate:"required_unless=Provider gcp"`
	AccessKey string `arg:"access_key" validate:"required"`
	SecretKey string `arg:"secret_key" validate:"required"`
	Bucket    string `arg:"bucket" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("arg"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate checks the provider and every required argument, including the bucket
func (c ProviderConfig) Validate() error {
	return c.validate()
}

// ValidateCredentials is Validate without the bucket requirement, for account-level operations like listing buckets
func (c ProviderConfig) ValidateCredentials() error {
	return c.validate("Bucket")
}

func (c ProviderConfig) validate(except ...string) error {
	if c.Provider != "" {
		p, err := ParseProvider(string(c.Provider))
		if err != nil {
			return err
		}
		c.Provider = p
	}

	var err error
	if len(except) > 0 {
		err = validate.StructExcept(c, except...)
	} else {
		err = validate.Struct(c)
	}
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("error validating provider config: %w", err)
	}

	missing := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		missing = append(missing, fe.Field())
	}
	return &MissingArgumentError{Fields: missing}
}

// MissingFields reports which required arguments are empty without failing
func (c ProviderConfig) MissingFields() []string {
	var missingErr *MissingArgumentError
	if errors.As(c.Validate(), &missingErr) {
		return missingErr.Fields
	}
	return nil
}
