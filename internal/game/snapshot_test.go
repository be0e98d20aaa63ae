package game

import (
	"testing"

	"tycoon.gg/internal/protocol"
)

func testState() *protocol.StateMsg {
	return &protocol.StateMsg{
		Type:          protocol.TypeState,
		Version:       3,
		Turn:          5,
		CurrentPlayer: "Alice",
		Players: []protocol.PlayerState{
			{Name: "Alice", Cash: 1200, Position: 6},
			{Name: "Bob", Cash: 800, Position: 12},
		},
		Board: []protocol.TileState{
			{Position: 1, Name: "Mediterranean Avenue", Kind: "property", Group: "brown", Price: 60, HouseCost: 50, Buyable: true},
			{Position: 3, Name: "Baltic Avenue", Kind: "property", Group: "brown", Price: 60, HouseCost: 50, Buyable: true},
			{Position: 5, Name: "Reading Railroad", Kind: "railroad", Price: 200, Buyable: true},
			{Position: 6, Name: "Oriental Avenue", Kind: "property", Group: "lightblue", Price: 100, HouseCost: 50, Buyable: true},
			{Position: 8, Name: "Vermont Avenue", Kind: "property", Group: "lightblue", Price: 100, HouseCost: 50, Buyable: true},
			{Position: 9, Name: "Connecticut Avenue", Kind: "property", Group: "lightblue", Price: 120, HouseCost: 50, Buyable: true},
		},
		Ownership: []protocol.PropertyState{
			{Position: 1, Owner: "Alice"},
			{Position: 3, Owner: "Alice", Houses: 2},
			{Position: 6, Owner: "Bob"},
			{Position: 8, Owner: "Bob", Mortgaged: true},
		},
	}
}

func TestSnapshot_Lookups(t *testing.T) {
	s := NewSnapshot(testState())
	if p := s.Player("Bob"); p == nil || p.Cash != 800 {
		t.Fatalf("player lookup: %+v", s.Player("Bob"))
	}
	if !s.IsTurn("Alice") || s.IsTurn("Bob") {
		t.Fatalf("turn check wrong")
	}
	if tl := s.Tile(5); tl == nil || tl.Kind != "railroad" {
		t.Fatalf("tile lookup: %+v", s.Tile(5))
	}
	if own := s.Ownership(9); own.Owner != "" || own.Position != 9 {
		t.Fatalf("unowned tile should yield zero record, got %+v", own)
	}
}

func TestSnapshot_Groups(t *testing.T) {
	s := NewSnapshot(testState())
	if got := s.Group("brown"); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("brown group: %v", got)
	}
	if !s.OwnsGroup("Alice", "brown") {
		t.Fatalf("Alice owns all of brown")
	}
	if s.OwnsGroup("Bob", "lightblue") {
		t.Fatalf("Bob misses Connecticut, lightblue incomplete")
	}
	complete := s.CompleteGroups("Alice")
	if len(complete) != 1 || complete[0] != "brown" {
		t.Fatalf("complete groups for Alice: %v", complete)
	}
	if s.GroupFullyUnmortgaged("lightblue") {
		t.Fatalf("Vermont is mortgaged")
	}
	if !s.GroupHasBuildings("brown") {
		t.Fatalf("Baltic has houses")
	}
	if s.GroupHasBuildings("lightblue") {
		t.Fatalf("lightblue has no buildings")
	}
}

func TestBuildingUnits_HotelCountsAsFive(t *testing.T) {
	if got := BuildingUnits(protocol.PropertyState{Houses: 3}); got != 3 {
		t.Fatalf("houses: %d", got)
	}
	if got := BuildingUnits(protocol.PropertyState{Hotel: true}); got != 5 {
		t.Fatalf("hotel: %d", got)
	}
}
