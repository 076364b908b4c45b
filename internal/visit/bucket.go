package visit

import "sort"

// DayBucket groups the visits made on one calendar date.
type DayBucket struct {
	Date   string   `json:"date"`
	Visits []*Visit `json:"visits"`
}

// GroupByDate buckets visits by the date portion of dateISO. Visits inside a
// bucket are newest first and buckets are ordered newest date first.
func GroupByDate(visits []*Visit) []DayBucket {
	index := make(map[string]int)
	var buckets []DayBucket

	for _, v := range visits {
		if v == nil {
			continue
		}
		d := v.DateKey()
		i, ok := index[d]
		if !ok {
			i = len(buckets)
			index[d] = i
			buckets = append(buckets, DayBucket{Date: d})
		}
		buckets[i].Visits = append(buckets[i].Visits, v)
	}

	for _, b := range buckets {
		sort.SliceStable(b.Visits, func(i, j int) bool {
			return b.Visits[i].DateISO > b.Visits[j].DateISO
		})
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Date > buckets[j].Date
	})

	if buckets == nil {
		buckets = []DayBucket{}
	}
	return buckets
}
