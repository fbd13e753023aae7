package reconcile

import "brightroots/internal/models"

// Merge folds incoming into existing by provider id. A record from incoming
// replaces the existing one when its CreatedAt is not older, so on equal
// timestamps the channel merged last wins. Ids not seen before are appended
// in incoming order.
//
// existing is taken as is: if it already holds the same id twice, only the
// first occurrence takes part in the merge.
func Merge(existing, incoming []models.ProviderRecord) []models.ProviderRecord {
	merged := make([]models.ProviderRecord, len(existing), len(existing)+len(incoming))
	copy(merged, existing)

	index := make(map[string]int, len(merged))
	for i, p := range merged {
		if _, seen := index[p.ID]; !seen {
			index[p.ID] = i
		}
	}

	for _, in := range incoming {
		i, ok := index[in.ID]
		if !ok {
			index[in.ID] = len(merged)
			merged = append(merged, in)
			continue
		}
		if !in.CreatedAt.Before(merged[i].CreatedAt) {
			merged[i] = resolve(merged[i], in)
		}
	}
	return merged
}

// resolve picks the winner of a same-id collision where incoming is at least
// as recent. A projection only carries a few fields, so it is laid over a
// full record instead of replacing it.
func resolve(existing, incoming models.ProviderRecord) models.ProviderRecord {
	if !incoming.Partial || existing.Partial {
		return incoming
	}
	out := existing
	if incoming.BusinessName != "" {
		out.BusinessName = incoming.BusinessName
	}
	if incoming.Status != "" {
		out.Status = incoming.Status
	}
	out.CreatedAt = incoming.CreatedAt
	return out
}

// ByID indexes a reconciled set. Later duplicates are ignored.
func ByID(records []models.ProviderRecord) map[string]models.ProviderRecord {
	out := make(map[string]models.ProviderRecord, len(records))
	for _, p := range records {
		if _, ok := out[p.ID]; !ok {
			out[p.ID] = p
		}
	}
	return out
}
