package records

import (
	"context"
	"sync"

	id "healthpass/pkg/domain"
)

// InMemoryStore is a Store backed by a map. It stands in for the real
// record store in tests and local development.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.PatientID]*PatientRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.PatientID]*PatientRecord)}
}

// Put registers or replaces a patient record.
func (s *InMemoryStore) Put(record *PatientRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.PatientID] = record
}

func (s *InMemoryStore) GetRecord(_ context.Context, patientID id.PatientID) (*PatientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[patientID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *InMemoryStore) GetContacts(_ context.Context, patientID id.PatientID) ([]Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[patientID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]Contact{}, record.Contacts...), nil
}
