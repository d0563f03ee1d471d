package records

import (
	"context"

	id "healthpass/pkg/domain"
	dErrors "healthpass/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "patient record not found")

// Store is the read-only view of the external record store. Contacts are a
// separate call because the surrounding application keeps them in their own
// collection; emergency issuance fetches both concurrently.
type Store interface {
	GetRecord(ctx context.Context, patientID id.PatientID) (*PatientRecord, error)
	GetContacts(ctx context.Context, patientID id.PatientID) ([]Contact, error)
}
