package tables

import (
	"sort"
	"strconv"
)

// Store holds every materialized feed table after a replay pass.
type Store struct {
	StopInfo      map[string]StopRecord  `json:"stopinfo"`
	SpecialNote   map[string]NoteRecord  `json:"specialnote"`
	RouteMaster   map[string]RouteRecord `json:"routemaster"`
	RouteStopFile []RouteStopRecord      `json:"routestopfile"`
	AreaFile      map[string]AreaRecord  `json:"areafile"`
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		StopInfo:      make(map[string]StopRecord),
		SpecialNote:   make(map[string]NoteRecord),
		RouteMaster:   make(map[string]RouteRecord),
		RouteStopFile: []RouteStopRecord{},
		AreaFile:      make(map[string]AreaRecord),
	}
}

// Counts is the number of records per table.
type Counts struct {
	StopInfo      int `json:"stopinfo"`
	SpecialNote   int `json:"specialnote"`
	RouteMaster   int `json:"routemaster"`
	RouteStopFile int `json:"routestopfile"`
	AreaFile      int `json:"areafile"`
}

// Total sums all tables.
func (c Counts) Total() int {
	return c.StopInfo + c.SpecialNote + c.RouteMaster + c.RouteStopFile + c.AreaFile
}

// Counts returns per-table record counts.
func (s *Store) Counts() Counts {
	return Counts{
		StopInfo:      len(s.StopInfo),
		SpecialNote:   len(s.SpecialNote),
		RouteMaster:   len(s.RouteMaster),
		RouteStopFile: len(s.RouteStopFile),
		AreaFile:      len(s.AreaFile),
	}
}

// Stop looks up a stop by code.
func (s *Store) Stop(code string) (StopRecord, bool) {
	r, ok := s.StopInfo[code]
	return r, ok
}

// Route looks up a route by number.
func (s *Store) Route(routeNo string) (RouteRecord, bool) {
	r, ok := s.RouteMaster[routeNo]
	return r, ok
}

// RouteStops returns the stops of one route direction ordered by stop_seq.
func (s *Store) RouteStops(routeNo, bound string) []RouteStopRecord {
	var stops []RouteStopRecord
	for _, r := range s.RouteStopFile {
		if r.RouteNo == routeNo && r.Bound == bound {
			stops = append(stops, r)
		}
	}
	sort.SliceStable(stops, func(i, j int) bool {
		return lessSeq(stops[i].StopSeq, stops[j].StopSeq)
	})
	return stops
}

// StopCodes returns stop-info keys in sorted order.
func (s *Store) StopCodes() []string {
	return sortedKeys(s.StopInfo)
}

// NoteCodes returns special-note keys in sorted order.
func (s *Store) NoteCodes() []string {
	return sortedKeys(s.SpecialNote)
}

// RouteNumbers returns route-master keys in sorted order.
func (s *Store) RouteNumbers() []string {
	return sortedKeys(s.RouteMaster)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// lessSeq orders numeric sequences numerically and falls back to text.
func lessSeq(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
