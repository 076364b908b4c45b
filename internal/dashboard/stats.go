package dashboard

import "github.com/evcraddock/field-visits/internal/visit"

// Stats summarizes a visit list.
type Stats struct {
	Total         int                       `json:"total"`
	ByTemperature map[visit.Temperature]int `json:"byTemperature"`
	Users         int                       `json:"users"`
	WithPhoto     int                       `json:"withPhoto"`
	WithGeo       int                       `json:"withGeo"`
}

// Summarize counts visits overall and per temperature. Every known
// temperature is present in the map, even at zero.
func Summarize(visits []*visit.Visit) Stats {
	s := Stats{ByTemperature: make(map[visit.Temperature]int, len(visit.ValidTemperatures))}
	for _, t := range visit.ValidTemperatures {
		s.ByTemperature[t] = 0
	}

	users := make(map[string]struct{})
	for _, v := range visits {
		if v == nil {
			continue
		}
		s.Total++
		if v.Temperature != "" {
			s.ByTemperature[v.Temperature]++
		}
		users[v.UserID] = struct{}{}
		if v.PhotoURL != "" || v.PhotoPath != "" {
			s.WithPhoto++
		}
		if v.Geo != nil {
			s.WithGeo++
		}
	}
	s.Users = len(users)
	return s
}
