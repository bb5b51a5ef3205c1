package models

// StartingMoney is granted to every freshly created character.
const StartingMoney = 100000

type Character struct {
	ID        int    `json:"id"`
	UserID    int    `json:"-"`
	Name      string `json:"name"`
	Money     int    `json:"money"`
	Attack    int    `json:"attack"`
	Defense   int    `json:"defense"`
	Health    int    `json:"health"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// Stats is the derived combat block of a character. It also serves as the
// delta an item contributes while equipped.
type Stats struct {
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Health  int `json:"health"`
}

func (c *Character) Stats() Stats {
	return Stats{Attack: c.Attack, Defense: c.Defense, Health: c.Health}
}

func (c *Character) SetStats(s Stats) {
	c.Attack = s.Attack
	c.Defense = s.Defense
	c.Health = s.Health
}

func (s Stats) Add(d Stats) Stats {
	return Stats{Attack: s.Attack + d.Attack, Defense: s.Defense + d.Defense, Health: s.Health + d.Health}
}

// SubFloor subtracts d and clamps every field at zero. Unequipping an item
// must never leave a character with negative stats.
func (s Stats) SubFloor(d Stats) Stats {
	return Stats{
		Attack:  max(0, s.Attack-d.Attack),
		Defense: max(0, s.Defense-d.Defense),
		Health:  max(0, s.Health-d.Health),
	}
}
