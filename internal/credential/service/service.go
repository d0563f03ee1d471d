// Package service orchestrates the credential lifecycle: issuance (build,
// encode, audit) and presentation (decode, validate, authorize, filter,
// audit). Handlers stay thin; everything a presentation releases flows
// through here.
package service

import (
	"context"
	"log/slog"
	"time"

	"healthpass/internal/audit"
	"healthpass/internal/credential"
	"healthpass/internal/credential/authz"
	"healthpass/internal/credential/codec"
	"healthpass/internal/credential/integrity"
	"healthpass/internal/credential/metrics"
	"healthpass/internal/credential/tracer"
	"healthpass/internal/records"
	id "healthpass/pkg/domain"
	dErrors "healthpass/pkg/domain-errors"
	"healthpass/pkg/requestcontext"
)

// snapshotTimeout bounds the record-store reads during emergency issuance.
const snapshotTimeout = 5 * time.Second

// AuditPublisher captures the audit trail for every build/decode/authorize.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service wires the pure credential components to their collaborators. The
// components themselves stay stateless; the service owns the codec key
// material (read-only after construction), the record store handle, and the
// audit sink.
type Service struct {
	codec   *codec.Codec
	store   records.Store
	auditor AuditPublisher
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics sets the metrics collector for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithTracer sets the tracer for the service.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithClock injects a clock for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a credential service with required dependencies.
// Panics if required dependencies are nil - fail fast at startup. The
// auditor is required: an unaudited credential operation is a compliance
// hole, not a degraded mode.
func New(c *codec.Codec, store records.Store, auditor AuditPublisher, opts ...Option) *Service {
	if c == nil {
		panic("service.New: codec is required")
	}
	if store == nil {
		panic("service.New: record store is required")
	}
	if auditor == nil {
		panic("service.New: auditor is required for the audit trail")
	}
	s := &Service{
		codec:   c,
		store:   store,
		auditor: auditor,
		tracer:  tracer.NewNoop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueRequest is the domain-level input for credential issuance.
type IssueRequest struct {
	Variant   credential.Variant
	PatientID id.PatientID
	IssuerID  id.OperatorID
	Purpose   string
	Binding   credential.Binding
	Context   credential.VisitContext

	// Permissions are raw tokens, strict-parsed by the builder.
	Permissions []string

	// Lifetime overrides the variant default for full/emergency/limited.
	Lifetime time.Duration

	// LifetimeHours is required for temporary credentials.
	LifetimeHours int
}

// IssueResult carries everything the caller embeds in the optical code plus
// the out-of-band digest.
type IssueResult struct {
	Credential *credential.Credential
	Encoded    string
	Digest     string
}

// Issue builds, encodes and audits a credential of the requested variant.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanIssue,
		tracer.String(tracer.AttrVariant, req.Variant.String()),
	)
	var err error
	defer func() { span.End(err) }()

	cred, err := s.build(ctx, req)
	if err != nil {
		s.countIssueFailure(req.Variant)
		s.emit(ctx, audit.Event{
			Subject:  req.PatientID.String(),
			Operator: req.IssuerID.String(),
			Variant:  req.Variant.String(),
			Action:   audit.ActionIssueRejected,
			Reason:   err.Error(),
		})
		return nil, err
	}

	encoded, err := s.codec.Encode(cred)
	if err != nil {
		s.countIssueFailure(req.Variant)
		return nil, err
	}
	digest, err := integrity.Hash(cred)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CredentialsIssued.WithLabelValues(cred.Variant.String()).Inc()
		s.metrics.EncodedSize.Observe(float64(len(encoded)))
	}
	span.SetAttributes(tracer.String(tracer.AttrCredentialID, cred.ID.String()))
	s.emit(ctx, audit.Event{
		CredentialID: cred.ID.String(),
		Variant:      cred.Variant.String(),
		Subject:      cred.PatientID.String(),
		Operator:     cred.IssuerID.String(),
		Action:       audit.ActionCredentialIssued,
		Permissions:  permissionStrings(cred.Permissions),
	})
	span.AddEvent(tracer.EventAuditEmitted)

	return &IssueResult{Credential: cred, Encoded: encoded, Digest: digest}, nil
}

func (s *Service) build(ctx context.Context, req IssueRequest) (*credential.Credential, error) {
	params := credential.BuildParams{
		PatientID:   req.PatientID,
		IssuerID:    req.IssuerID,
		Purpose:     req.Purpose,
		Binding:     req.Binding,
		Lifetime:    req.Lifetime,
		Permissions: req.Permissions,
		Now:         s.now(),
	}
	switch req.Variant {
	case credential.VariantFull:
		return credential.NewFull(params)
	case credential.VariantEmergency:
		snap, err := s.captureSnapshot(ctx, req.PatientID)
		if err != nil {
			return nil, err
		}
		return credential.NewEmergency(params, *snap)
	case credential.VariantLimited:
		return credential.NewLimited(params, req.Context)
	case credential.VariantTemporary:
		return credential.NewTemporary(params, req.LifetimeHours)
	default:
		return nil, dErrors.New(dErrors.CodeConstruction, "unknown credential variant: "+req.Variant.String())
	}
}

func (s *Service) countIssueFailure(v credential.Variant) {
	if s.metrics != nil {
		s.metrics.IssueFailures.WithLabelValues(v.String()).Inc()
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	event.RequestID = requestcontext.RequestID(ctx)
	event.Client = requestcontext.Client(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
		)
	}
}

func permissionStrings(perms []credential.Permission) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, p.String())
	}
	return out
}

// Operator aliases the gate's operator identity so handlers depend on one
// package.
type Operator = authz.Operator
