package user

import "github.com/ShreyasReddy007/Digital-AfterLife/internal/domain/errs"

var (
	ErrPasswordNotSet = &errs.DomainError{
		Err:     errs.ErrInvalidInput,
		Message: "secondary password not set for this account",
		Code:    "password_not_set",
	}
	ErrSecondFactorRequired = &errs.DomainError{
		Err:     errs.ErrUnauthorized,
		Message: "secondary password verification required",
		Code:    "second_factor_required",
	}
)
