package domain

// LocEntry is the cached line count of one repository. Once written it is reused
// verbatim by later runs.
type LocEntry struct {
	Additions int64 `json:"add"`
	Deletions int64 `json:"del"`
}

// LocCache maps a repository key to its entry.
type LocCache map[string]LocEntry

// Totals sums every entry in the cache.
func (c LocCache) Totals() LocTotals {
	var t LocTotals
	for _, e := range c {
		t.Additions += e.Additions
		t.Deletions += e.Deletions
	}
	return t
}

// LocTotals is the grand total of lines added and deleted.
type LocTotals struct {
	Additions int64 `json:"additions"`
	Deletions int64 `json:"deletions"`
}

// Add accumulates an entry.
func (t *LocTotals) Add(e LocEntry) {
	t.Additions += e.Additions
	t.Deletions += e.Deletions
}

// Net is additions minus deletions.
func (t LocTotals) Net() int64 {
	return t.Additions - t.Deletions
}
