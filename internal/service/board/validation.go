package board

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/callsys/callboard/pkg/validator"
)

var ExactNumberRule = []validation.Rule{
	validation.Min(0),
}

var PassedNumberRule = []validation.Rule{
	validation.Required,
	validation.Min(1),
}

var LinkTextRule = []validation.Rule{
	validation.Required,
	validation.Length(1, 200),
}

var LinkURLRule = []validation.Rule{
	validation.Required,
	validation.Length(1, 2048),
	validation.By(func(value any) error {
		s, _ := value.(string)
		if !validator.IsHTTPURL(s) {
			return validation.NewError("validation_http_url", "must start with http:// or https://")
		}
		return nil
	}),
}

var IndexRule = []validation.Rule{
	validation.Min(0),
}

func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
