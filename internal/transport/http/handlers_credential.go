// Package httptransport is the thin HTTP layer over the credential service.
// Handlers decode requests, delegate, and translate domain errors; business
// logic stays in the service.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"healthpass/internal/audit"
	"healthpass/internal/credential"
	"healthpass/internal/credential/authz"
	"healthpass/internal/credential/service"
	"healthpass/internal/credential/validate"
	"healthpass/internal/platform/middleware"
	id "healthpass/pkg/domain"
	dErrors "healthpass/pkg/domain-errors"
	"healthpass/pkg/platform/httputil"
)

// CredentialService is the surface the handlers need from the service layer.
type CredentialService interface {
	Issue(ctx context.Context, req service.IssueRequest) (*service.IssueResult, error)
	Present(ctx context.Context, encoded string, op service.Operator) (*service.PresentResult, error)
	Inspect(ctx context.Context, encoded string) (*service.InspectResult, error)
}

// AuditReader lists the audit trail for one patient.
type AuditReader interface {
	List(ctx context.Context, subject string) ([]audit.Event, error)
}

// CredentialHandler handles credential issue/present/inspect endpoints.
type CredentialHandler struct {
	service CredentialService
	auditor AuditReader
	logger  *slog.Logger
}

func NewCredentialHandler(svc CredentialService, auditor AuditReader, logger *slog.Logger) *CredentialHandler {
	return &CredentialHandler{service: svc, auditor: auditor, logger: logger}
}

type issueRequest struct {
	Variant       string   `json:"variant"`
	PatientID     string   `json:"patient_id"`
	Purpose       string   `json:"purpose,omitempty"`
	Permissions   []string `json:"permissions,omitempty"`
	HospitalID    string   `json:"hospital_id,omitempty"`
	DoctorID      string   `json:"doctor_id,omitempty"`
	AppointmentID string   `json:"appointment_id,omitempty"`
	VisitID       string   `json:"visit_id,omitempty"`
	LifetimeHours int      `json:"lifetime_hours,omitempty"`
}

type issueResponse struct {
	CredentialID string   `json:"credential_id"`
	Variant      string   `json:"variant"`
	Encoded      string   `json:"encoded"`
	Digest       string   `json:"digest"`
	Permissions  []string `json:"permissions"`
	ExpiresAt    string   `json:"expires_at"`
}

func (h *CredentialHandler) handleIssue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body is not valid JSON"))
		return
	}
	variant, err := credential.ParseVariant(req.Variant)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	patientID, err := id.ParsePatientID(req.PatientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	op := middleware.GetOperator(r.Context())
	svcReq := service.IssueRequest{
		Variant:   variant,
		PatientID: patientID,
		IssuerID:  op.ID,
		Purpose:   req.Purpose,
		Binding: credential.Binding{
			HospitalID: id.HospitalID(req.HospitalID),
			DoctorID:   id.DoctorID(req.DoctorID),
		},
		Context: credential.VisitContext{
			AppointmentID: id.AppointmentID(req.AppointmentID),
			VisitID:       id.VisitID(req.VisitID),
		},
		Permissions:   req.Permissions,
		LifetimeHours: req.LifetimeHours,
	}
	if variant == credential.VariantTemporary && svcReq.LifetimeHours == 0 {
		svcReq.LifetimeHours = credential.DefaultTemporaryLifetimeHours
	}

	result, err := h.service.Issue(r.Context(), svcReq)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, issueResponse{
		CredentialID: result.Credential.ID.String(),
		Variant:      result.Credential.Variant.String(),
		Encoded:      result.Encoded,
		Digest:       result.Digest,
		Permissions:  permissionStrings(result.Credential.Permissions),
		ExpiresAt:    result.Credential.ExpiresAt.Format(time.RFC3339),
	})
}

type presentRequest struct {
	Encoded string `json:"encoded"`
}

type verdictResponse struct {
	IsValid     bool     `json:"is_valid"`
	IsExpired   bool     `json:"is_expired"`
	IsAuthentic bool     `json:"is_authentic"`
	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

type summaryResponse struct {
	CredentialID string   `json:"credential_id"`
	Variant      string   `json:"variant"`
	PatientID    string   `json:"patient_id"`
	IssuerID     string   `json:"issuer_id"`
	Purpose      string   `json:"purpose,omitempty"`
	IssuedAt     int64    `json:"issued_at"`
	ExpiresAt    int64    `json:"expires_at"`
	Permissions  []string `json:"permissions"`
}

type presentResponse struct {
	Summary  summaryResponse   `json:"summary"`
	Verdict  verdictResponse   `json:"verdict"`
	View     *viewResponse     `json:"view,omitempty"`
	Snapshot *snapshotResponse `json:"snapshot,omitempty"`
}

func (h *CredentialHandler) handlePresent(w http.ResponseWriter, r *http.Request) {
	var req presentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body is not valid JSON"))
		return
	}

	op := middleware.GetOperator(r.Context())
	result, err := h.service.Present(r.Context(), req.Encoded, op)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, presentResponse{
		Summary:  toSummaryResponse(result.Summary),
		Verdict:  toVerdictResponse(result.Verdict),
		View:     toViewResponse(result.View),
		Snapshot: toSnapshotResponse(result.Snapshot),
	})
}

type inspectResponse struct {
	Summary summaryResponse `json:"summary"`
	Verdict verdictResponse `json:"verdict"`
}

func (h *CredentialHandler) handleInspect(w http.ResponseWriter, r *http.Request) {
	var req presentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body is not valid JSON"))
		return
	}

	result, err := h.service.Inspect(r.Context(), req.Encoded)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inspectResponse{
		Summary: toSummaryResponse(result.Summary),
		Verdict: toVerdictResponse(result.Verdict),
	})
}

type auditEventResponse struct {
	Timestamp    string   `json:"timestamp"`
	CredentialID string   `json:"credential_id,omitempty"`
	Variant      string   `json:"variant,omitempty"`
	Operator     string   `json:"operator,omitempty"`
	Action       string   `json:"action"`
	Permissions  []string `json:"permissions,omitempty"`
	Verdict      string   `json:"verdict,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	Client       string   `json:"client,omitempty"`
}

// handleAuditTrail lists audit events for one patient. Patients see their
// own trail; hospital operators see any, which mirrors the record store's
// own access rules.
func (h *CredentialHandler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	op := middleware.GetOperator(r.Context())
	if op.Role == authz.RolePatient && op.ID.String() != patientID {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "patients may only view their own audit trail"))
		return
	}

	events, err := h.auditor.List(r.Context(), patientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]auditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, auditEventResponse{
			Timestamp:    e.Timestamp.UTC().Format(time.RFC3339),
			CredentialID: e.CredentialID,
			Variant:      e.Variant,
			Operator:     e.Operator,
			Action:       string(e.Action),
			Permissions:  e.Permissions,
			Verdict:      e.Verdict,
			Reason:       e.Reason,
			Client:       e.Client,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": out})
}

func toSummaryResponse(s service.Summary) summaryResponse {
	return summaryResponse{
		CredentialID: s.CredentialID,
		Variant:      s.Variant.String(),
		PatientID:    s.PatientID,
		IssuerID:     s.IssuerID,
		Purpose:      s.Purpose,
		IssuedAt:     s.IssuedAt,
		ExpiresAt:    s.ExpiresAt,
		Permissions:  s.Permissions,
	}
}

func toVerdictResponse(v validate.Verdict) verdictResponse {
	return verdictResponse{
		IsValid:     v.IsValid,
		IsExpired:   v.IsExpired,
		IsAuthentic: v.IsAuthentic,
		Errors:      v.Errors,
		Warnings:    v.Warnings,
	}
}

func permissionStrings(perms []credential.Permission) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, p.String())
	}
	return out
}
