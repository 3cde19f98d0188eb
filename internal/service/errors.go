package service

import "errors"

var (
	ErrNoBasket            = errors.New("no basket for this session")
	ErrUsernameRequired    = errors.New("username is required")
	ErrPackageRequired     = errors.New("package id is required")
	ErrItemNotFound        = errors.New("item is not in the basket")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrTransactionRequired = errors.New("transaction id is required")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrMalformedWebhook    = errors.New("malformed webhook payload")

	errNoToken = errors.New("no webstore token configured")
)
