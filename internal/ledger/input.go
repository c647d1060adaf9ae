package ledger

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"saldo/internal/core"
)

// Input carries the mutable fields of a transaction. Amount is a magnitude;
// the stored sign follows Type.
type Input struct {
	Description string     `validate:"required"`
	Amount      core.Money `validate:"gt=0,lte=1000000000000000"`
	Date        core.Date  `validate:"required"`
	Type        core.Type  `validate:"oneof=income expense"`
	Category    string     `validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		return f.Interface().(core.Money).Cents
	}, core.Money{})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		return f.Interface().(core.Date).String()
	}, core.Date{})
	return v
}

var fieldErrors = map[string]struct {
	name string
	err  error
}{
	"Description": {"description", core.ErrEmptyDescription},
	"Amount":      {"amount", core.ErrInvalidAmount},
	"Date":        {"date", core.ErrInvalidDate},
	"Type":        {"type", core.ErrInvalidType},
	"Category":    {"category", core.ErrInvalidCategory},
}

// check trims in and reports the first invalid field as a
// *core.ValidationError.
func (in *Input) check(cats core.Categories) error {
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			if fe, ok := fieldErrors[verrs[0].StructField()]; ok {
				return core.Invalid(fe.name, fe.err)
			}
		}
		return core.Invalid("input", err)
	}
	if !cats.Allows(in.Type, in.Category) {
		return core.Invalid("category", core.ErrInvalidCategory)
	}
	return nil
}

func (in Input) transaction(id int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		Description: in.Description,
		Amount:      in.Type.Signed(in.Amount),
		Date:        in.Date,
		Type:        in.Type,
		Category:    in.Category,
	}
}
