package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"healthpass/internal/credential"
	"healthpass/internal/credential/tracer"
	"healthpass/internal/records"
	id "healthpass/pkg/domain"
	dErrors "healthpass/pkg/domain-errors"
)

// snapshotFetchResult holds results from the parallel record-store reads.
// Each goroutine writes to its own field, avoiding data races.
type snapshotFetchResult struct {
	record   *records.PatientRecord
	contacts []records.Contact
}

// captureSnapshot reads the live record and emergency contacts concurrently
// and freezes them into the snapshot an emergency credential embeds. This is
// the only record-store access on the issuance path; verification never
// touches the store.
func (s *Service) captureSnapshot(ctx context.Context, patientID id.PatientID) (*credential.EmergencySnapshot, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSnapshot)
	var err error
	defer func() { span.End(err) }()

	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	var result snapshotFetchResult

	g.Go(func() error {
		record, fetchErr := s.store.GetRecord(ctx, patientID)
		if fetchErr != nil {
			return fetchErr
		}
		result.record = record
		return nil
	})
	g.Go(func() error {
		contacts, fetchErr := s.store.GetContacts(ctx, patientID)
		if fetchErr != nil {
			return fetchErr
		}
		result.contacts = contacts
		return nil
	})

	if err = g.Wait(); err != nil {
		err = dErrors.Wrap(err, dErrors.CodeInternal, "could not capture emergency snapshot")
		return nil, err
	}

	snap := &credential.EmergencySnapshot{
		BloodType:          result.record.Basic.BloodType,
		CriticalConditions: result.record.CriticalConditionNames(),
		Allergies:          result.record.AllergySubstances(),
	}
	for _, c := range result.contacts {
		snap.Contacts = append(snap.Contacts, credential.EmergencyContact(c))
	}
	return snap, nil
}
