package store

import "github.com/roach88/insight/internal/ir"

func (s *Store) cachedRecords(id string) ([]ir.Record, bool) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	records, ok := s.cache[id]
	return records, ok
}

func (s *Store) storeCached(id string, records []ir.Record) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache[id] = records
}

func (s *Store) evictCached(id string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.cache, id)
}

// CachedDatasets reports how many datasets currently have records in memory.
func (s *Store) CachedDatasets() int {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return len(s.cache)
}
