package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"healthpass/internal/credential"
	"healthpass/pkg/testutil"
)

// ValidateSuite tests structural, temporal and heuristic checks with an
// injected clock.
type ValidateSuite struct {
	suite.Suite
	issued time.Time
}

func TestValidateSuite(t *testing.T) {
	suite.Run(t, new(ValidateSuite))
}

func (s *ValidateSuite) SetupTest() {
	s.issued = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

func (s *ValidateSuite) fresh(opts ...func(*testutil.CredentialBuilder)) *credential.Credential {
	b := testutil.NewCredentialBuilder().
		Variant(credential.VariantLimited).
		Permissions("view_basic_info").
		IssuedAt(s.issued)
	for _, opt := range opts {
		opt(b)
	}
	cred, err := b.Build()
	s.Require().NoError(err)
	return cred
}

func (s *ValidateSuite) TestValidCredential() {
	verdict := Check(Input{Credential: s.fresh(), Now: s.issued.Add(time.Hour)})

	s.True(verdict.IsValid)
	s.True(verdict.IsAuthentic)
	s.False(verdict.IsExpired)
	s.Empty(verdict.Errors)
	s.Empty(verdict.Warnings)
}

func (s *ValidateSuite) TestStructuralRules() {
	s.Run("nil credential", func() {
		verdict := Check(Input{Now: s.issued})
		s.False(verdict.IsValid)
		s.False(verdict.IsAuthentic)
	})

	s.Run("missing patient ID", func() {
		cred := s.fresh()
		cred.PatientID = ""
		verdict := Check(Input{Credential: cred, Now: s.issued})
		s.False(verdict.IsValid)
		s.Contains(verdict.Errors, "missing patient ID")
	})

	s.Run("empty permission set", func() {
		cred := s.fresh()
		cred.Permissions = nil
		verdict := Check(Input{Credential: cred, Now: s.issued})
		s.False(verdict.IsValid)
		s.Contains(verdict.Errors, "permission set is empty")
	})
}

func (s *ValidateSuite) TestExpiry() {
	cred := s.fresh()

	s.Run("valid strictly before expiry", func() {
		verdict := Check(Input{Credential: cred, Now: cred.ExpiresAt.Add(-time.Minute)})
		s.True(verdict.IsValid)
		s.False(verdict.IsExpired)
	})

	s.Run("expired at the exact boundary", func() {
		verdict := Check(Input{Credential: cred, Now: cred.ExpiresAt})
		s.False(verdict.IsValid)
		s.True(verdict.IsExpired)
		s.Contains(verdict.Errors, "expired")
	})

	s.Run("expiry is monotonic", func() {
		// Once expired, every later instant stays expired.
		for _, after := range []time.Duration{0, time.Second, time.Hour, 24 * time.Hour} {
			verdict := Check(Input{Credential: cred, Now: cred.ExpiresAt.Add(after)})
			s.True(verdict.IsExpired, "still expired %s past expiry", after)
		}
	})
}

func (s *ValidateSuite) TestCriticalAgeOverridesExpiry() {
	// A credential claiming a 60-day lifetime is force-invalidated once it is
	// older than 30 days, even though its own expiry field says otherwise.
	cred := s.fresh(func(b *testutil.CredentialBuilder) {
		b.Lifetime(60 * 24 * time.Hour)
	})

	now := s.issued.Add(31 * 24 * time.Hour)
	verdict := Check(Input{Credential: cred, Now: now})

	s.False(verdict.IsExpired, "its own expiry has not passed")
	s.False(verdict.IsValid, "critical age invalidates regardless")
	s.Contains(verdict.Errors, "credential issued more than 30 days ago")
}

func (s *ValidateSuite) TestHeuristicWarnings() {
	s.Run("aging credential warns without invalidating", func() {
		cred := s.fresh(func(b *testutil.CredentialBuilder) {
			b.Lifetime(30 * 24 * time.Hour)
		})
		verdict := Check(Input{Credential: cred, Now: s.issued.Add(8 * 24 * time.Hour)})
		s.True(verdict.IsValid)
		s.Contains(verdict.Warnings, "aging credential")
	})

	s.Run("broad permission set warns", func() {
		all := make([]string, 0)
		for _, p := range credential.AllPermissions() {
			all = append(all, p.String())
		}
		cred := s.fresh(func(b *testutil.CredentialBuilder) {
			b.Variant(credential.VariantFull).Permissions(all...)
		})
		verdict := Check(Input{Credential: cred, Now: s.issued.Add(time.Hour)})
		s.True(verdict.IsValid)
		s.Contains(verdict.Warnings, "unusually broad permissions")
	})

	s.Run("imminent expiry warns", func() {
		cred := s.fresh()
		verdict := Check(Input{Credential: cred, Now: cred.ExpiresAt.Add(-30 * time.Minute)})
		s.True(verdict.IsValid)
		s.Contains(verdict.Warnings, "credential expires within the hour")
	})

	s.Run("dropped permissions surface as warnings", func() {
		verdict := Check(Input{
			Credential:         s.fresh(),
			DroppedPermissions: []string{"view_billing"},
			Now:                s.issued.Add(time.Hour),
		})
		s.True(verdict.IsValid)
		s.Contains(verdict.Warnings, "unknown permission dropped: view_billing")
	})
}

func (s *ValidateSuite) TestOldFormatVersionWarns() {
	cred := s.fresh()
	cred.FormatVersion = credential.MinFormatVersion - 1

	verdict := Check(Input{Credential: cred, Now: s.issued.Add(time.Hour)})
	s.True(verdict.IsValid, "old format warns, it does not invalidate")
	s.NotEmpty(verdict.Warnings)
}
