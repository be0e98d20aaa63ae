package game

import "sort"

// Group returns the board positions of a color group in board order.
func (s *Snapshot) Group(name string) []int {
	return s.groups[name]
}

// GroupNames returns all color groups, sorted for deterministic iteration.
func (s *Snapshot) GroupNames() []string {
	names := make([]string, 0, len(s.groups))
	for g := range s.groups {
		names = append(names, g)
	}
	sort.Strings(names)
	return names
}

// CompleteGroups lists the color groups the player owns in full.
func (s *Snapshot) CompleteGroups(owner string) []string {
	var out []string
	for _, g := range s.GroupNames() {
		if s.OwnsGroup(owner, g) {
			out = append(out, g)
		}
	}
	return out
}

func (s *Snapshot) OwnsGroup(owner, group string) bool {
	positions := s.groups[group]
	if len(positions) == 0 {
		return false
	}
	for _, pos := range positions {
		if s.Owner(pos) != owner {
			return false
		}
	}
	return true
}

func (s *Snapshot) GroupMortgaged(group string) []int {
	var out []int
	for _, pos := range s.groups[group] {
		if s.Ownership(pos).Mortgaged {
			out = append(out, pos)
		}
	}
	return out
}

func (s *Snapshot) GroupFullyUnmortgaged(group string) bool {
	return len(s.GroupMortgaged(group)) == 0
}

// GroupHasBuildings reports whether any tile of the group carries houses or a
// hotel. Mortgaging inside such a group is not allowed by the rules engine,
// so the rescue branch must skip those tiles.
func (s *Snapshot) GroupHasBuildings(group string) bool {
	for _, pos := range s.groups[group] {
		if BuildingUnits(s.Ownership(pos)) > 0 {
			return true
		}
	}
	return false
}

// OwnedBy lists every position the player owns, in board order.
func (s *Snapshot) OwnedBy(owner string) []int {
	var out []int
	for i := range s.Msg.Ownership {
		if s.Msg.Ownership[i].Owner == owner {
			out = append(out, s.Msg.Ownership[i].Position)
		}
	}
	sort.Ints(out)
	return out
}
