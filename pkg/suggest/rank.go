package suggest

import "sort"

// rankEntries orders candidates by frequency (highest first), breaks ties by word
// ascending so results are reproducible, and truncates to limit.
func rankEntries(entries []Entry, limit int) []Entry {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Frequency != entries[j].Frequency {
			return entries[i].Frequency > entries[j].Frequency
		}
		return entries[i].Word < entries[j].Word
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		return []Entry{}
	}
	return entries
}
