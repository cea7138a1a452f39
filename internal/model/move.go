package model

// Move is a proposed move in board coordinates, before any validation.
type Move struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// SimpleMove is an accepted move as broadcast to clients.
type SimpleMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}
