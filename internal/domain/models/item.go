package models

// ItemStats mirrors the free-form stats document stored with each catalog
// item. Pointers distinguish "field absent in the document" from a zero
// delta, so the equipment engine can reject malformed catalog entries.
type ItemStats struct {
	Attack  *int `json:"attack"`
	Defense *int `json:"defense"`
	Health  *int `json:"health"`
}

// Valid reports whether every stat field is present.
func (s ItemStats) Valid() bool {
	return s.Attack != nil && s.Defense != nil && s.Health != nil
}

// Deltas flattens the document into a Stats block. Only meaningful when
// Valid() is true.
func (s ItemStats) Deltas() Stats {
	var d Stats
	if s.Attack != nil {
		d.Attack = *s.Attack
	}
	if s.Defense != nil {
		d.Defense = *s.Defense
	}
	if s.Health != nil {
		d.Health = *s.Health
	}
	return d
}

type Item struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Price       int       `json:"price"`
	Rarity      string    `json:"rarity"`
	Stats       ItemStats `json:"stats"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   string    `json:"created_at"`
}
