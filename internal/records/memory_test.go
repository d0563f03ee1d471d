package records

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	store := NewInMemoryStore()
	store.Put(&PatientRecord{
		PatientID: "HP-1",
		Basic:     BasicInfo{Name: "Jordan Reyes", BloodType: "O-"},
		Contacts:  []Contact{{Name: "Maria Santos", Relation: "spouse"}},
	})

	t.Run("get record", func(t *testing.T) {
		record, err := store.GetRecord(context.Background(), "HP-1")
		require.NoError(t, err)
		require.Equal(t, "Jordan Reyes", record.Basic.Name)
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		record, err := store.GetRecord(context.Background(), "HP-1")
		require.NoError(t, err)
		record.Basic.Name = "tampered"

		again, err := store.GetRecord(context.Background(), "HP-1")
		require.NoError(t, err)
		require.Equal(t, "Jordan Reyes", again.Basic.Name)
	})

	t.Run("get contacts", func(t *testing.T) {
		contacts, err := store.GetContacts(context.Background(), "HP-1")
		require.NoError(t, err)
		require.Len(t, contacts, 1)
	})

	t.Run("unknown patient", func(t *testing.T) {
		_, err := store.GetRecord(context.Background(), "HP-404")
		require.True(t, errors.Is(err, ErrNotFound))

		_, err = store.GetContacts(context.Background(), "HP-404")
		require.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestSnapshotHelpers(t *testing.T) {
	record := &PatientRecord{
		Conditions: []Condition{
			{Name: "diabetes", Critical: true},
			{Name: "seasonal rhinitis"},
			{Name: "epilepsy", Critical: true},
		},
		Allergies: []Allergy{
			{Substance: "penicillin"},
			{Substance: "latex"},
		},
	}

	require.Equal(t, []string{"diabetes", "epilepsy"}, record.CriticalConditionNames())
	require.Equal(t, []string{"penicillin", "latex"}, record.AllergySubstances())
}
