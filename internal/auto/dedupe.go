package auto

// ActionKey identifies one autonomous action for idempotency purposes: the
// same action against the same tile must not fire again until the server has
// had a few snapshots to reflect the outcome.
type ActionKey struct {
	Type     string
	Position int
}

type dedupeEntry struct {
	expiresVersion uint64
}

// RecentActions is a small TTL'd cache of emitted action keys. The TTL is
// counted in snapshot versions rather than wall time so replays behave the
// same as live play: an entry remembered at version N suppresses the key
// until version N+ttl.
type RecentActions struct {
	ttl     uint64
	entries map[ActionKey]dedupeEntry
}

func NewRecentActions(ttlVersions uint64) *RecentActions {
	if ttlVersions == 0 {
		ttlVersions = 8
	}
	return &RecentActions{
		ttl:     ttlVersions,
		entries: make(map[ActionKey]dedupeEntry),
	}
}

// Seen reports whether the key fired within the last ttl versions. Expired
// entries are cleaned up opportunistically.
func (c *RecentActions) Seen(key ActionKey, nowVersion uint64) bool {
	for k, e := range c.entries {
		if nowVersion >= e.expiresVersion {
			delete(c.entries, k)
		}
	}
	e, ok := c.entries[key]
	return ok && nowVersion < e.expiresVersion
}

// Remember records an emitted action key at the version it fired against.
func (c *RecentActions) Remember(key ActionKey, nowVersion uint64) {
	c.entries[key] = dedupeEntry{expiresVersion: nowVersion + c.ttl}
}

func (c *RecentActions) Reset() {
	c.entries = make(map[ActionKey]dedupeEntry)
}
