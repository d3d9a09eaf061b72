package quality

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidChoice    = errors.New("not a valid choice")
	ErrBoundsInverted   = errors.New("min_value must not exceed max_value")
	ErrDecimalPlaces    = errors.New("decimal_places must be between 0 and 10")
	ErrProgressRange    = errors.New("progress must be between 0 and 100")
	ErrDuplicateItem    = errors.New("check item appears more than once in checklist")
	ErrForeignChecklist = errors.New("checklist item does not belong to the execution's checklist")
	ErrInactiveUser     = errors.New("user is inactive")
	ErrStrandedResults  = errors.New("stored results belong to another checklist; resend item_results_write")
)

func invalidChoice(raw string) error {
	return fmt.Errorf("%q is %w", raw, ErrInvalidChoice)
}
