// Package dedup reduces a record set to one entry per city. The merge
// decision is a named policy so the product rule can be swapped without
// touching the mechanics.
package dedup

import "aircatalog/internal/models"

// MergePolicy picks the surviving record when two share a dedupe key.
type MergePolicy func(existing, candidate models.CityRecord) models.CityRecord

// HighestPollutionWins keeps the record with the strictly greater
// pollution value; ties keep the first-seen record. Product intent: the
// catalog ranks most-polluted cities, so the reading that puts a city
// on the list wins.
func HighestPollutionWins(existing, candidate models.CityRecord) models.CityRecord {
	if candidate.PollutionValue > existing.PollutionValue {
		return candidate
	}
	return existing
}

// MostRecentWins keeps the later-seen record unconditionally. Not the
// default; available as an alternative policy.
func MostRecentWins(_, candidate models.CityRecord) models.CityRecord {
	return candidate
}

// Dedupe collapses records sharing (lowercased canonical name, country)
// using the given policy. Output order is the first-seen order of keys;
// runs in O(n).
func Dedupe(records []models.CityRecord, policy MergePolicy) []models.CityRecord {
	if policy == nil {
		policy = HighestPollutionWins
	}

	index := make(map[string]int, len(records))
	out := make([]models.CityRecord, 0, len(records))
	for _, record := range records {
		key := record.DedupeKey()
		if i, seen := index[key]; seen {
			out[i] = policy(out[i], record)
			continue
		}
		index[key] = len(out)
		out = append(out, record)
	}
	return out
}
