package visit

import "sort"

// Key returns the identity of a visit record: its id, or dateISO|customerName
// for records stored without one.
func Key(v *Visit) string {
	if v.ID != "" {
		return v.ID
	}
	return v.DateISO + "|" + v.CustomerName
}

// Reconcile merges visits read from the per-user store (cloud) with visits
// read from the flat legacy store into one deduplicated list, newest first.
//
// Cloud records seed the result; a later cloud record replaces an earlier one
// with the same key. A legacy record with a new key is added as-is. A legacy
// record whose key is already present only fills optional fields that are
// empty on the existing record. Records with equal dateISO keep their
// insertion order, so Reconcile(out, nil) returns out unchanged.
//
// Inputs are never modified; merged records are fresh copies.
func Reconcile(cloud, legacy []*Visit) []*Visit {
	out := make([]*Visit, 0, len(cloud)+len(legacy))
	index := make(map[string]int, len(cloud)+len(legacy))

	for _, v := range cloud {
		if v == nil {
			continue
		}
		k := Key(v)
		if i, ok := index[k]; ok {
			out[i] = v
			continue
		}
		index[k] = len(out)
		out = append(out, v)
	}

	for _, v := range legacy {
		if v == nil {
			continue
		}
		k := Key(v)
		if i, ok := index[k]; ok {
			out[i] = mergeFields(out[i], v)
			continue
		}
		index[k] = len(out)
		out = append(out, v)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateISO > out[j].DateISO
	})
	return out
}

// mergeFields returns a copy of cur with empty optional fields filled from
// fallback.
func mergeFields(cur, fallback *Visit) *Visit {
	m := *cur
	if m.PhotoURL == "" {
		m.PhotoURL = fallback.PhotoURL
	}
	if m.PhotoPath == "" {
		m.PhotoPath = fallback.PhotoPath
	}
	if m.ResultNote == "" {
		m.ResultNote = fallback.ResultNote
	}
	if m.Temperature == "" {
		m.Temperature = fallback.Temperature
	}
	if len(m.Offered) == 0 {
		m.Offered = fallback.Offered
	}
	if len(m.OfferedDetailed) == 0 {
		m.OfferedDetailed = fallback.OfferedDetailed
	}
	return &m
}
