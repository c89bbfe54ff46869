package usecase

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/phenrril/catalogseed/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeOutput unmarshals a model reply and runs the struct validation rules
// on it. Every failure is reported as domain.ErrInvalidOutput.
func decodeOutput(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidOutput, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidOutput, err)
	}
	return nil
}
