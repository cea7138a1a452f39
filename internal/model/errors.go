package model

import "errors"

// Move rejections. All of these are recoverable: the board is untouched
// when any of them is returned.
var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrNoPieceAtSource = errors.New("no piece at starting position")
	ErrWrongTurn       = errors.New("not your turn")
	ErrIllegalMove     = errors.New("illegal move")
	ErrNotPlayer       = errors.New("player is not in this game")
)
