package model

type ClientPlayer struct {
	ID    string `json:"name"`
	Color Color  `json:"color"`
}
