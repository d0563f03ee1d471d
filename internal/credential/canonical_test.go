package credential

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "healthpass/pkg/domain-errors"
)

// CanonicalSuite tests the deterministic wire form and its parsing.
type CanonicalSuite struct {
	suite.Suite
}

func TestCanonicalSuite(t *testing.T) {
	suite.Run(t, new(CanonicalSuite))
}

func (s *CanonicalSuite) build(variant Variant) *Credential {
	params := BuildParams{
		PatientID:   "HP-1",
		IssuerID:    "H1",
		Purpose:     "specialist referral",
		Permissions: []string{"view_basic_info", "view_conditions"},
		Now:         time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	var (
		cred *Credential
		err  error
	)
	switch variant {
	case VariantEmergency:
		cred, err = NewEmergency(params, EmergencySnapshot{
			BloodType:          "AB+",
			CriticalConditions: []string{"epilepsy"},
			Allergies:          []string{"latex"},
			Contacts:           []EmergencyContact{{Name: "Sam Lee", Relation: "sibling", Phone: "+1-555-0101"}},
		})
	case VariantLimited:
		params.Binding = Binding{DoctorID: "D1"}
		cred, err = NewLimited(params, VisitContext{AppointmentID: "A1", VisitID: "V1"})
	case VariantTemporary:
		cred, err = NewTemporary(params, 24)
	default:
		params.Binding = Binding{HospitalID: "H1"}
		cred, err = NewFull(params)
	}
	s.Require().NoError(err)
	return cred
}

func (s *CanonicalSuite) TestRoundTrip() {
	for _, variant := range []Variant{VariantFull, VariantEmergency, VariantLimited, VariantTemporary} {
		s.Run(variant.String(), func() {
			original := s.build(variant)

			raw, err := MarshalCanonical(original)
			s.Require().NoError(err)

			decoded, dropped, err := UnmarshalCanonical(raw)
			s.Require().NoError(err)
			s.Empty(dropped)
			s.Equal(original, decoded)
		})
	}
}

func (s *CanonicalSuite) TestDeterminism() {
	cred := s.build(VariantFull)

	first, err := MarshalCanonical(cred)
	s.Require().NoError(err)
	second, err := MarshalCanonical(cred)
	s.Require().NoError(err)
	s.Equal(first, second, "the same credential must always canonicalize to the same bytes")
}

func (s *CanonicalSuite) TestUnknownPermissionsDropped() {
	raw, err := MarshalCanonical(s.build(VariantFull))
	s.Require().NoError(err)

	// Splice an unknown token into the permission array the way a newer
	// issuer would.
	var wire map[string]json.RawMessage
	s.Require().NoError(json.Unmarshal(raw, &wire))
	wire["perm"] = json.RawMessage(`["view_basic_info","view_billing"]`)
	spliced, err := json.Marshal(wire)
	s.Require().NoError(err)

	decoded, dropped, err := UnmarshalCanonical(spliced)
	s.Require().NoError(err)
	s.Equal([]Permission{PermViewBasicInfo}, decoded.Permissions)
	s.Equal([]string{"view_billing"}, dropped)
}

func (s *CanonicalSuite) TestMalformedInput() {
	s.Run("not JSON", func() {
		_, _, err := UnmarshalCanonical([]byte("not json at all"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeDecodeFailed))
	})

	s.Run("unknown variant", func() {
		raw, err := MarshalCanonical(s.build(VariantFull))
		s.Require().NoError(err)
		var wire map[string]json.RawMessage
		s.Require().NoError(json.Unmarshal(raw, &wire))
		wire["t"] = json.RawMessage(`"revoked"`)
		spliced, err := json.Marshal(wire)
		s.Require().NoError(err)

		_, _, err = UnmarshalCanonical(spliced)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeDecodeFailed))
	})

	s.Run("malformed credential ID", func() {
		raw, err := MarshalCanonical(s.build(VariantFull))
		s.Require().NoError(err)
		var wire map[string]json.RawMessage
		s.Require().NoError(json.Unmarshal(raw, &wire))
		wire["jti"] = json.RawMessage(`"not-a-uuid"`)
		spliced, err := json.Marshal(wire)
		s.Require().NoError(err)

		_, _, err = UnmarshalCanonical(spliced)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeDecodeFailed))
	})

	s.Run("nil credential cannot marshal", func() {
		_, err := MarshalCanonical(nil)
		s.Require().Error(err)
	})
}
