package planfile

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/lorikeet-run/lorikeet/internal/plan"
	lkerrors "github.com/lorikeet-run/lorikeet/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// validateSteps runs structural validation (non-empty name, non-negative
// retry fields) on every decoded step ahead of graph construction.
func validateSteps(steps []plan.Step) error {
	v := validatorInstance()
	for i, step := range steps {
		if err := v.Struct(step); err != nil {
			return convertValidationError(i, err)
		}
	}
	return nil
}

func convertValidationError(index int, err error) error {
	if ves, ok := err.(validator.ValidationErrors); ok {
		fe := ves[0]
		field := fmt.Sprintf("steps[%d].%s", index, strings.ToLower(fe.Field()))
		return lkerrors.NewValidationError(field, fmt.Sprintf("failed validation for tag '%s'", fe.Tag()), err)
	}
	return lkerrors.NewValidationError(fmt.Sprintf("steps[%d]", index), err.Error(), err)
}
