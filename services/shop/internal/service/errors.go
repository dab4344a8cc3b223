package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Error is a failure with a message meant for the client. It unwraps to
// one of the kinds above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func validationf(format string, a ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, a...)}
}

func conflictf(format string, a ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, a...)}
}

const MsgProductUnavailable = "Produto indisponível"

func stockLimitMsg(stock int) string {
	return fmt.Sprintf("Apenas %d un. disponíveis", stock)
}

var (
	ErrNonPositiveQuantity = &Error{Kind: ErrValidation, Msg: "quantity must be greater than zero"}
	ErrAddressRequired     = &Error{Kind: ErrValidation, Msg: "shipping address is required"}
	ErrForeignAddress      = &Error{Kind: ErrConflict, Msg: "invalid or foreign shipping address"}
	ErrCartEmpty           = &Error{Kind: ErrConflict, Msg: "cart is empty"}
	ErrIdempotencyKeyReuse = &Error{Kind: ErrConflict, Msg: "idempotency key was already used for a different checkout"}
	ErrProductNotFound     = &Error{Kind: ErrNotFound, Msg: "product not found"}
	ErrProductUnavailable  = &Error{Kind: ErrConflict, Msg: MsgProductUnavailable}
	ErrCartItemNotFound    = &Error{Kind: ErrNotFound, Msg: "cart item not found"}
	ErrAddressNotFound     = &Error{Kind: ErrNotFound, Msg: "address not found"}
	ErrOrderNotFound       = &Error{Kind: ErrNotFound, Msg: "order not found"}
)
