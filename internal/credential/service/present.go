package service

import (
	"context"
	"strconv"

	"healthpass/internal/audit"
	"healthpass/internal/credential"
	"healthpass/internal/credential/authz"
	"healthpass/internal/credential/filter"
	"healthpass/internal/credential/tracer"
	"healthpass/internal/credential/validate"
	dErrors "healthpass/pkg/domain-errors"
)

// Summary is the PII-light description of a decoded credential that inspect
// and presentation responses share.
type Summary struct {
	CredentialID string
	Variant      credential.Variant
	PatientID    string
	IssuerID     string
	Purpose      string
	IssuedAt     int64
	ExpiresAt    int64
	Permissions  []string
}

// PresentResult is what a successful presentation releases. Exactly one of
// View/Snapshot is set: emergency credentials release their embedded
// snapshot, every other variant releases a filtered projection of the live
// record.
type PresentResult struct {
	Summary  Summary
	Verdict  validate.Verdict
	View     *filter.View
	Snapshot *credential.EmergencySnapshot
}

// InspectResult is a verdict without any data release.
type InspectResult struct {
	Summary Summary
	Verdict validate.Verdict
}

// Present runs the full verification pipeline for a scanned credential:
// decode, validate, authorize the operator, then release the filtered view.
// Every failure is a typed domain error; nothing here panics on hostile
// input.
func (s *Service) Present(ctx context.Context, encoded string, op Operator) (*PresentResult, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanPresent,
		tracer.String(tracer.AttrOperatorRole, string(op.Role)),
	)
	var err error
	defer func() { span.End(err) }()

	cred, verdict, err := s.decodeAndValidate(ctx, encoded, op)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		tracer.String(tracer.AttrCredentialID, cred.ID.String()),
		tracer.String(tracer.AttrVariant, cred.Variant.String()),
		tracer.Bool(tracer.AttrValid, verdict.IsValid),
		tracer.Int64(tracer.AttrWarnings, int64(len(verdict.Warnings))),
	)

	if err = authz.Authorize(op, cred); err != nil {
		s.countPresentation("denied")
		s.emit(ctx, audit.Event{
			CredentialID: cred.ID.String(),
			Variant:      cred.Variant.String(),
			Subject:      cred.PatientID.String(),
			Operator:     op.ID.String(),
			Action:       audit.ActionPresentationDenied,
			Permissions:  permissionStrings(cred.Permissions),
			Verdict:      verdictLabel(verdict),
			Reason:       err.Error(),
		})
		return nil, err
	}

	result := &PresentResult{Summary: summarize(cred), Verdict: verdict}
	if cred.Variant == credential.VariantEmergency {
		// The snapshot was captured at issuance; the live record is not
		// consulted, which is the point of the emergency variant.
		result.Snapshot = cred.Snapshot
	} else {
		record, fetchErr := s.store.GetRecord(ctx, cred.PatientID)
		if fetchErr != nil {
			err = fetchErr
			return nil, err
		}
		result.View = filter.Apply(record, cred.Permissions)
	}

	s.countPresentation("authorized")
	s.emit(ctx, audit.Event{
		CredentialID: cred.ID.String(),
		Variant:      cred.Variant.String(),
		Subject:      cred.PatientID.String(),
		Operator:     op.ID.String(),
		Action:       audit.ActionPresentationOK,
		Permissions:  permissionStrings(cred.Permissions),
		Verdict:      verdictLabel(verdict),
	})
	span.AddEvent(tracer.EventAuditEmitted)
	return result, nil
}

// Inspect decodes and validates without authorizing or releasing data. It is
// the "is this code any good" probe for scanner UIs, and it reports the full
// verdict including warnings.
func (s *Service) Inspect(ctx context.Context, encoded string) (*InspectResult, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanInspect)
	var err error
	defer func() { span.End(err) }()

	cred, dropped, err := s.codec.Decode(encoded)
	if err != nil {
		s.countDecodeFailure(ctx, err)
		return nil, err
	}
	verdict := validate.Check(validate.Input{
		Credential:         cred,
		DroppedPermissions: dropped,
		Now:                s.now(),
	})
	s.observeWarnings(verdict)
	s.emit(ctx, audit.Event{
		CredentialID: cred.ID.String(),
		Variant:      cred.Variant.String(),
		Subject:      cred.PatientID.String(),
		Action:       audit.ActionInspected,
		Permissions:  permissionStrings(cred.Permissions),
		Verdict:      verdictLabel(verdict),
	})
	return &InspectResult{Summary: summarize(cred), Verdict: verdict}, nil
}

// decodeAndValidate is the shared front half of Present. A verdict with
// errors becomes a typed error: expiry keeps its own code so callers can
// offer re-issuance instead of a generic rejection.
func (s *Service) decodeAndValidate(ctx context.Context, encoded string, op Operator) (*credential.Credential, validate.Verdict, error) {
	cred, dropped, err := s.codec.Decode(encoded)
	if err != nil {
		s.countDecodeFailure(ctx, err)
		return nil, validate.Verdict{}, err
	}
	s.emit(ctx, audit.Event{
		CredentialID: cred.ID.String(),
		Variant:      cred.Variant.String(),
		Subject:      cred.PatientID.String(),
		Operator:     op.ID.String(),
		Action:       audit.ActionCredentialDecoded,
		Permissions:  permissionStrings(cred.Permissions),
	})

	verdict := validate.Check(validate.Input{
		Credential:         cred,
		DroppedPermissions: dropped,
		Now:                s.now(),
	})
	s.observeWarnings(verdict)
	if !verdict.IsValid {
		s.countPresentation("invalid")
		code := dErrors.CodeValidation
		if verdict.IsExpired {
			code = dErrors.CodeExpired
		}
		err := dErrors.New(code, "credential is not valid: "+firstError(verdict))
		s.emit(ctx, audit.Event{
			CredentialID: cred.ID.String(),
			Variant:      cred.Variant.String(),
			Subject:      cred.PatientID.String(),
			Operator:     op.ID.String(),
			Action:       audit.ActionPresentationDenied,
			Verdict:      verdictLabel(verdict),
			Reason:       err.Error(),
		})
		return nil, verdict, err
	}
	return cred, verdict, nil
}

func (s *Service) countDecodeFailure(ctx context.Context, err error) {
	if s.metrics != nil {
		s.metrics.DecodeFailures.Inc()
	}
	s.emit(ctx, audit.Event{
		Action: audit.ActionDecodeFailed,
		Reason: err.Error(),
	})
}

func (s *Service) countPresentation(outcome string) {
	if s.metrics != nil {
		s.metrics.Presentations.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) observeWarnings(v validate.Verdict) {
	if s.metrics != nil && len(v.Warnings) > 0 {
		s.metrics.ValidationWarnings.Add(float64(len(v.Warnings)))
	}
}

func summarize(c *credential.Credential) Summary {
	return Summary{
		CredentialID: c.ID.String(),
		Variant:      c.Variant,
		PatientID:    c.PatientID.String(),
		IssuerID:     c.IssuerID.String(),
		Purpose:      c.Purpose,
		IssuedAt:     c.IssuedAt.Unix(),
		ExpiresAt:    c.ExpiresAt.Unix(),
		Permissions:  permissionStrings(c.Permissions),
	}
}

func verdictLabel(v validate.Verdict) string {
	return "valid=" + strconv.FormatBool(v.IsValid) +
		" expired=" + strconv.FormatBool(v.IsExpired) +
		" warnings=" + strconv.Itoa(len(v.Warnings))
}

func firstError(v validate.Verdict) string {
	if len(v.Errors) == 0 {
		return "unspecified"
	}
	return v.Errors[0]
}
