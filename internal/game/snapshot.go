// Package game wraps a normalized STATE message with the lookups and board
// derivations every other component shares. A Snapshot is immutable: the next
// server state always replaces it wholesale.
package game

import (
	"sort"

	"tycoon.gg/internal/protocol"
)

type Snapshot struct {
	Msg *protocol.StateMsg

	players map[string]*protocol.PlayerState
	tiles   map[int]*protocol.TileState
	owned   map[int]*protocol.PropertyState
	groups  map[string][]int
}

func NewSnapshot(msg *protocol.StateMsg) *Snapshot {
	s := &Snapshot{
		Msg:     msg,
		players: make(map[string]*protocol.PlayerState, len(msg.Players)),
		tiles:   make(map[int]*protocol.TileState, len(msg.Board)),
		owned:   make(map[int]*protocol.PropertyState, len(msg.Ownership)),
		groups:  make(map[string][]int),
	}
	for i := range msg.Players {
		s.players[msg.Players[i].Name] = &msg.Players[i]
	}
	for i := range msg.Board {
		t := &msg.Board[i]
		s.tiles[t.Position] = t
		if t.Kind == "property" && t.Group != "" {
			s.groups[t.Group] = append(s.groups[t.Group], t.Position)
		}
	}
	for g := range s.groups {
		sort.Ints(s.groups[g])
	}
	for i := range msg.Ownership {
		s.owned[msg.Ownership[i].Position] = &msg.Ownership[i]
	}
	return s
}

func (s *Snapshot) Version() uint64 { return s.Msg.Version }
func (s *Snapshot) Turn() int       { return s.Msg.Turn }
func (s *Snapshot) GameOver() bool  { return s.Msg.GameOver }

func (s *Snapshot) Player(name string) *protocol.PlayerState {
	return s.players[name]
}

func (s *Snapshot) IsTurn(name string) bool {
	return s.Msg.CurrentPlayer == name
}

func (s *Snapshot) Tile(pos int) *protocol.TileState {
	return s.tiles[pos]
}

// Ownership returns the ownership record for a tile. Unowned tiles have no
// record; the zero value with the position filled in is returned instead.
func (s *Snapshot) Ownership(pos int) protocol.PropertyState {
	if p := s.owned[pos]; p != nil {
		return *p
	}
	return protocol.PropertyState{Position: pos}
}

func (s *Snapshot) Owner(pos int) string {
	if p := s.owned[pos]; p != nil {
		return p.Owner
	}
	return ""
}

// BuildingUnits counts a hotel as five building units.
func BuildingUnits(p protocol.PropertyState) int {
	if p.Hotel {
		return 5
	}
	return p.Houses
}
