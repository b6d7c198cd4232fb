package service

import "errors"

var (
	ErrEmptyCart      = errors.New("cart is empty, nothing to checkout")
	ErrInvalidAddress = errors.New("shipping address is required")
	ErrOrderLocked    = errors.New("order can no longer be modified")
	ErrForbidden      = errors.New("administrator role required")
	ErrInvalidProduct = errors.New("invalid product")
	ErrInvalidOffer   = errors.New("invalid offer")
)
