package costmodel

import "errors"

// ErrNoAskLiquidity is returned when a book snapshot has an empty ask side.
var ErrNoAskLiquidity = errors.New("costmodel: no ask liquidity available")

// ErrInsufficientLiquidity is returned when the VWAP walk fills nothing.
var ErrInsufficientLiquidity = errors.New("costmodel: unable to fill order with available liquidity")
