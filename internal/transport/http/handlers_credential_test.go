package httptransport

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"healthpass/internal/audit"
	"healthpass/internal/credential/authz"
	"healthpass/internal/credential/codec"
	"healthpass/internal/credential/metrics"
	"healthpass/internal/credential/service"
	"healthpass/internal/operatortoken"
	"healthpass/internal/platform/health"
	"healthpass/internal/records"
	id "healthpass/pkg/domain"
	"healthpass/pkg/secrets"
	"healthpass/pkg/testutil"
)

// HandlerSuite tests the HTTP surface end to end against in-memory
// collaborators: real router, real middleware, real service.
type HandlerSuite struct {
	suite.Suite
	router   http.Handler
	tokens   *operatortoken.Service
	auditLog *audit.InMemoryStore
	metrics  *metrics.Metrics
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupSuite() {
	// Prometheus collectors register globally; create them once per binary.
	s.metrics = metrics.New()
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	master, err := secrets.ParseMaster(testutil.TestMasterKey)
	s.Require().NoError(err)
	credCodec, err := codec.New(master)
	s.Require().NoError(err)

	store := records.NewInMemoryStore()
	store.Put(testutil.PatientRecord())
	s.auditLog = audit.NewInMemoryStore()

	svc := service.New(credCodec, store, audit.NewPublisher(s.auditLog),
		service.WithLogger(logger),
	)
	s.tokens = operatortoken.NewService("test-signing-key", "healthpass-test", time.Hour)

	handler := NewCredentialHandler(svc, audit.NewPublisher(s.auditLog), logger)
	s.router = NewRouter(handler, health.New("test"), s.tokens, s.metrics, logger)
}

func (s *HandlerSuite) bearer(operatorID id.OperatorID, role authz.Role) string {
	token, err := s.tokens.Generate(operatorID, role)
	s.Require().NoError(err)
	return "Bearer " + token
}

func (s *HandlerSuite) request(method, path, auth string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *HandlerSuite) issueEncoded(body map[string]any) string {
	rec := s.request(http.MethodPost, "/credentials/issue",
		s.bearer("H1", authz.RoleHospital), body)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	encoded, _ := s.decode(rec)["encoded"].(string)
	s.Require().NotEmpty(encoded)
	return encoded
}

func (s *HandlerSuite) TestAuthRequired() {
	rec := s.request(http.MethodPost, "/credentials/issue", "", map[string]any{})
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.request(http.MethodPost, "/credentials/present", "Bearer bogus", map[string]any{})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestHealthNeedsNoAuth() {
	rec := s.request(http.MethodGet, "/health/live", "", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlerSuite) TestIssueFull() {
	rec := s.request(http.MethodPost, "/credentials/issue",
		s.bearer("H1", authz.RoleHospital), map[string]any{
			"variant":     "full",
			"patient_id":  "HP-1",
			"purpose":     "referral",
			"permissions": []string{"view_full_history"},
		})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	body := s.decode(rec)
	s.Equal("full", body["variant"])
	s.NotEmpty(body["credential_id"])
	s.NotEmpty(body["encoded"])
	s.NotEmpty(body["digest"])
}

func (s *HandlerSuite) TestIssueRejections() {
	s.Run("unknown variant", func() {
		rec := s.request(http.MethodPost, "/credentials/issue",
			s.bearer("H1", authz.RoleHospital), map[string]any{
				"variant": "revoked", "patient_id": "HP-1",
			})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("missing patient", func() {
		rec := s.request(http.MethodPost, "/credentials/issue",
			s.bearer("H1", authz.RoleHospital), map[string]any{
				"variant": "full", "permissions": []string{"view_basic_info"},
			})
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("limited without visit context", func() {
		rec := s.request(http.MethodPost, "/credentials/issue",
			s.bearer("H1", authz.RoleHospital), map[string]any{
				"variant": "limited", "patient_id": "HP-1",
			})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *HandlerSuite) TestTemporaryDefaultsLifetime() {
	rec := s.request(http.MethodPost, "/credentials/issue",
		s.bearer("D1", authz.RoleDoctor), map[string]any{
			"variant":    "temporary",
			"patient_id": "HP-1",
		})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	expires, err := time.Parse(time.RFC3339, s.decode(rec)["expires_at"].(string))
	s.Require().NoError(err)
	s.WithinDuration(time.Now().Add(24*time.Hour), expires, time.Minute)
}

func (s *HandlerSuite) TestPresentFlow() {
	encoded := s.issueEncoded(map[string]any{
		"variant":     "full",
		"patient_id":  "HP-1",
		"permissions": []string{"view_basic_info", "view_allergies"},
	})

	rec := s.request(http.MethodPost, "/credentials/present",
		s.bearer("D1", authz.RoleDoctor), map[string]any{"encoded": encoded})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	body := s.decode(rec)
	verdict := body["verdict"].(map[string]any)
	s.Equal(true, verdict["is_valid"])

	view := body["view"].(map[string]any)
	s.NotNil(view["basic_info"])
	s.NotNil(view["allergies"])
	s.Nil(view["conditions"], "ungranted groups are omitted")
	s.Nil(body["snapshot"])
}

func (s *HandlerSuite) TestPresentEmergencyReleasesSnapshot() {
	encoded := s.issueEncoded(map[string]any{
		"variant":    "emergency",
		"patient_id": "HP-1",
	})

	rec := s.request(http.MethodPost, "/credentials/present",
		s.bearer("D2", authz.RoleDoctor), map[string]any{"encoded": encoded})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	body := s.decode(rec)
	snapshot := body["snapshot"].(map[string]any)
	s.Equal("O-", snapshot["blood_type"])
	s.Nil(body["view"])
}

func (s *HandlerSuite) TestPresentDeniedByBinding() {
	encoded := s.issueEncoded(map[string]any{
		"variant":     "full",
		"patient_id":  "HP-1",
		"hospital_id": "H1",
		"permissions": []string{"view_basic_info"},
	})

	rec := s.request(http.MethodPost, "/credentials/present",
		s.bearer("H2", authz.RoleHospital), map[string]any{"encoded": encoded})
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal("authorization_denied", s.decode(rec)["error"])
}

func (s *HandlerSuite) TestPresentUndecodable() {
	rec := s.request(http.MethodPost, "/credentials/present",
		s.bearer("D1", authz.RoleDoctor), map[string]any{"encoded": "garbage"})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Equal("decode_failed", s.decode(rec)["error"])
}

func (s *HandlerSuite) TestInspect() {
	encoded := s.issueEncoded(map[string]any{
		"variant":     "full",
		"patient_id":  "HP-1",
		"permissions": []string{"view_basic_info"},
	})

	rec := s.request(http.MethodPost, "/credentials/inspect",
		s.bearer("HP-2", authz.RolePatient), map[string]any{"encoded": encoded})
	s.Require().Equal(http.StatusOK, rec.Code)

	body := s.decode(rec)
	s.Equal(true, body["verdict"].(map[string]any)["is_valid"])
	s.Nil(body["view"], "inspect never releases data")
}

func (s *HandlerSuite) TestAuditTrailAccess() {
	s.issueEncoded(map[string]any{
		"variant":     "full",
		"patient_id":  "HP-1",
		"permissions": []string{"view_basic_info"},
	})

	s.Run("patient reads their own trail", func() {
		rec := s.request(http.MethodGet, "/patients/HP-1/audit",
			s.bearer("HP-1", authz.RolePatient), nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		events := s.decode(rec)["events"].([]any)
		s.NotEmpty(events)
	})

	s.Run("patient cannot read another trail", func() {
		rec := s.request(http.MethodGet, "/patients/HP-1/audit",
			s.bearer("HP-2", authz.RolePatient), nil)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("hospital reads any trail", func() {
		rec := s.request(http.MethodGet, "/patients/HP-1/audit",
			s.bearer("H2", authz.RoleHospital), nil)
		s.Equal(http.StatusOK, rec.Code)
	})
}

func (s *HandlerSuite) TestContentTypeEnforced() {
	req := httptest.NewRequest(http.MethodPost, "/credentials/inspect", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", s.bearer("D1", authz.RoleDoctor))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnsupportedMediaType, rec.Code)
}
