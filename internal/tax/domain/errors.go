package domain

import "errors"

var (
	ErrInvalidTaxConfig = errors.New("invalid_tax_config")
)
