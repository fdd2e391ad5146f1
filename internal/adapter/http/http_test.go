package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	mw "microfin-backend/internal/adapter/middleware"
	"microfin-backend/internal/auth"
	"microfin-backend/internal/domain/client"
	domainLoan "microfin-backend/internal/domain/loan"
	"microfin-backend/internal/domain/region"
	"microfin-backend/internal/domain/staff"
	"microfin-backend/internal/domain/uow"
	"microfin-backend/internal/rules"
	"microfin-backend/internal/testutil/clientmock"
	"microfin-backend/internal/testutil/externalmock"
	"microfin-backend/internal/testutil/loanmock"
	"microfin-backend/internal/testutil/regionmock"
	"microfin-backend/internal/testutil/staffmock"
	"microfin-backend/internal/testutil/uowmock"
	loanuc "microfin-backend/internal/usecase/loan"
	workflowuc "microfin-backend/internal/usecase/workflow"
)

const (
	testClientID = "c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1c1"
	testAppID    = "LA2026080001"
)

type server struct {
	e  *echo.Echo
	mu sync.Mutex
	db map[string]domainLoan.Loan
}

func (s *server) put(l *domainLoan.Loan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db[l.ApplicationID] = *l
}

func (s *server) loan(appID string) (domainLoan.Loan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.db[appID]
	return l, ok
}

func newServer(t *testing.T) *server {
	t.Helper()
	s := &server{db: map[string]domainLoan.Loan{}}

	loans := &loanmock.Repo{
		CreateFn: func(ctx context.Context, l *domainLoan.Loan) error {
			s.put(l)
			return nil
		},
		GetByApplicationIDFn: func(ctx context.Context, appID string) (*domainLoan.Loan, error) {
			l, ok := s.loan(appID)
			if !ok {
				return nil, domainLoan.ErrNotFound
			}
			return &l, nil
		},
		GetByApplicationIDForUpdateFn: func(ctx context.Context, appID string) (*domainLoan.Loan, error) {
			l, ok := s.loan(appID)
			if !ok {
				return nil, domainLoan.ErrNotFound
			}
			return &l, nil
		},
		SaveFn: func(ctx context.Context, l *domainLoan.Loan) error {
			s.put(l)
			return nil
		},
		ListByAgentIDFn: func(ctx context.Context, agentID string) ([]domainLoan.Loan, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []domainLoan.Loan
			for _, l := range s.db {
				if l.AgentID == agentID {
					out = append(out, l)
				}
			}
			return out, nil
		},
	}
	clients := &clientmock.Repo{
		GetByClientIDFn: func(ctx context.Context, id string) (*client.Client, error) {
			if id != testClientID {
				return nil, client.ErrNotFound
			}
			return &client.Client{ClientID: id, District: "north-hill", MonthlyIncome: 15000, Employment: client.Employed, YearsEmployed: 6, Onboarding: client.OnboardingApproved}, nil
		},
	}
	regions := &regionmock.Repo{
		GetByNameFn: func(ctx context.Context, name string) (*region.Region, error) {
			return &region.Region{Name: name, Districts: []string{"north-hill"}}, nil
		},
	}
	staffRepo := &staffmock.Repo{
		GetRegionalManagerFn: func(ctx context.Context, reg string) (*staff.Staff, error) {
			return &staff.Staff{StaffID: "mgr-1", Role: staff.RoleRegionalManager, Region: reg}, nil
		},
	}

	policy := rules.Policy{MaxDTIPercent: 40, AbsoluteMaxLoan: 1_000_000, HighValueThreshold: 500_000, GuarantorMaxActive: 3}
	validator := rules.NewValidator(clients, loans, regions, policy)
	gate := auth.NewGate(policy.HighValueThreshold)
	tx := uowmock.Passthrough(uow.Repos{Loans: loans, Clients: clients, Staff: staffRepo, Regions: regions})

	log := logrus.New()
	log.SetOutput(io.Discard)

	lu := loanuc.NewUsecase(loans, staffRepo, validator, gate, tx, log)
	wu := workflowuc.NewUsecase(tx, validator, gate, &externalmock.Dispatcher{}, &externalmock.AgreementService{}, log, time.Second)

	e := echo.New()
	e.Validator = NewValidator()
	e.GET("/health", NewHandler().Health)

	lh, wh := NewLoanHandler(lu), NewWorkflowHandler(wu)
	g := e.Group("/api/v1", mw.ActorContext())
	g.POST("/loans", lh.CreateApplication)
	g.GET("/loans", lh.ListLoans)
	g.GET("/loans/:application_id", lh.GetLoan)
	g.POST("/loans/:application_id/agent-review", wh.AgentReview)
	g.POST("/loans/:application_id/regional-review", wh.RegionalReview)
	g.POST("/loans/:application_id/status", wh.OverrideStatus)
	g.POST("/loans/:application_id/payments", wh.PostPayment)

	s.e = e
	return s
}

func (s *server) do(method, path, body string, actor *staff.Actor) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if actor != nil {
		req.Header.Set(mw.HeaderActorID, actor.ID)
		req.Header.Set(mw.HeaderActorRole, string(actor.Role))
		req.Header.Set(mw.HeaderActorRegion, actor.Region)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func seedLoan(s *server, stage domainLoan.Stage) {
	s.put(&domainLoan.Loan{
		ApplicationID:     testAppID,
		ClientID:          testClientID,
		AgentID:           "agent-1",
		RegionalManagerID: "mgr-1",
		Region:            "north",
		Principal:         50000,
		AnnualRate:        12,
		TermMonths:        12,
		RemainingBalance:  53309.28,
		Stage:             stage,
	})
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var out ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return out
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["service"] != serviceName || body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestActorHeadersRequired(t *testing.T) {
	s := newServer(t)

	rec := s.do(http.MethodGet, "/api/v1/loans", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no headers: status = %d", rec.Code)
	}

	bad := staff.Actor{ID: "agent-1", Role: staff.Role("Admin"), Region: "north"}
	rec = s.do(http.MethodGet, "/api/v1/loans", "", &bad)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad role: status = %d", rec.Code)
	}
}

func TestCreateApplication(t *testing.T) {
	s := newServer(t)
	actor := staff.Actor{ID: "agent-1", Role: staff.RoleAgent, Region: "north"}

	body := `{"client_id":"` + testClientID + `","principal":50000,"annual_rate":12,"term_months":12}`
	rec := s.do(http.MethodPost, "/api/v1/loans", body, &actor)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var dto loanuc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatal(err)
	}
	if dto.Stage != string(domainLoan.StageApplicationSubmitted) || dto.Status != "pending" {
		t.Fatalf("stage/status = %s/%s", dto.Stage, dto.Status)
	}
	if dto.MonthlyInstallment != 4442.44 {
		t.Errorf("MonthlyInstallment = %.2f", dto.MonthlyInstallment)
	}
}

func TestCreateApplication_FieldValidation(t *testing.T) {
	s := newServer(t)
	actor := staff.Actor{ID: "agent-1", Role: staff.RoleAgent, Region: "north"}

	tests := []struct {
		name string
		body string
		want string // message substring
	}{
		{"bad client id", `{"client_id":"XYZ","principal":1000,"annual_rate":12,"term_months":12}`, "hex"},
		{"zero principal", `{"client_id":"` + testClientID + `","annual_rate":12,"term_months":12}`, "required"},
		{"fractional cents", `{"client_id":"` + testClientID + `","principal":1000.001,"annual_rate":12,"term_months":12}`, "decimal"},
		{"term too long", `{"client_id":"` + testClientID + `","principal":1000,"annual_rate":12,"term_months":999}`, "less than"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/v1/loans", tc.body, &actor)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			resp := decodeErr(t, rec)
			found := false
			for _, d := range resp.Details {
				if strings.Contains(d.Message, tc.want) {
					found = true
				}
			}
			if !found {
				t.Fatalf("details = %+v, want message containing %q", resp.Details, tc.want)
			}
		})
	}
}

func TestCreateApplication_UnknownClientIs404(t *testing.T) {
	s := newServer(t)
	actor := staff.Actor{ID: "agent-1", Role: staff.RoleAgent, Region: "north"}

	body := `{"client_id":"ffffffffffffffffffffffffffffffff","principal":1000,"annual_rate":12,"term_months":12}`
	rec := s.do(http.MethodPost, "/api/v1/loans", body, &actor)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCreateApplication_BusinessRuleIs422WithCodes(t *testing.T) {
	s := newServer(t)
	actor := staff.Actor{ID: "agent-1", Role: staff.RoleAgent, Region: "north"}

	// installment on 200000 far exceeds the income cap
	body := `{"client_id":"` + testClientID + `","principal":200000,"annual_rate":12,"term_months":12}`
	rec := s.do(http.MethodPost, "/api/v1/loans", body, &actor)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeErr(t, rec)
	found := false
	for _, d := range resp.Details {
		if d.Code == rules.CodeHighDTI {
			found = true
		}
	}
	if !found {
		t.Fatalf("details = %+v, want %s", resp.Details, rules.CodeHighDTI)
	}
}

func TestGetLoan(t *testing.T) {
	s := newServer(t)
	seedLoan(s, domainLoan.StageApplicationSubmitted)
	owner := staff.Actor{ID: "agent-1", Role: staff.RoleAgent, Region: "north"}

	rec := s.do(http.MethodGet, "/api/v1/loans/"+testAppID, "", &owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodGet, "/api/v1/loans/not-an-id", "", &owner)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed id: status = %d", rec.Code)
	}

	rec = s.do(http.MethodGet, "/api/v1/loans/LA2026089999", "", &owner)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id: status = %d", rec.Code)
	}

	other := staff.Actor{ID: "agent-2", Role: staff.RoleAgent, Region: "north"}
	rec = s.do(http.MethodGet, "/api/v1/loans/"+testAppID, "", &other)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign agent: status = %d", rec.Code)
	}
}

func TestAgentReviewEndpoint(t *testing.T) {
	s := newServer(t)
	seedLoan(s, domainLoan.StageApplicationSubmitted)
	actor := staff.Actor{ID: "agent-1", Role: staff.RoleAgent, Region: "north"}

	rec := s.do(http.MethodPost, "/api/v1/loans/"+testAppID+"/agent-review", `{"approve":true,"comments":"ok","rating":4}`, &actor)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var dto loanuc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatal(err)
	}
	if dto.Stage != string(domainLoan.StageAgentApproved) {
		t.Fatalf("stage = %s", dto.Stage)
	}

	// repeating the decision is now an illegal transition
	rec = s.do(http.MethodPost, "/api/v1/loans/"+testAppID+"/agent-review", `{"approve":true}`, &actor)
	if rec.Code != http.StatusConflict {
		t.Fatalf("replay: status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestOverrideStatusEndpoint(t *testing.T) {
	s := newServer(t)
	seedLoan(s, domainLoan.StageAgreementGenerated)
	adm := staff.Actor{ID: "adm-1", Role: staff.RoleModerateAdmin}

	rec := s.do(http.MethodPost, "/api/v1/loans/"+testAppID+"/status", `{"target_stage":"funds_disbursed"}`, &adm)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// unknown stage names are a client error, not a conflict
	rec = s.do(http.MethodPost, "/api/v1/loans/"+testAppID+"/status", `{"target_stage":"Funds_Disbursed"}`, &adm)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad stage: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = s.do(http.MethodPost, "/api/v1/loans/"+testAppID+"/status", `{"target_stage":"application_submitted"}`, &adm)
	if rec.Code != http.StatusConflict {
		t.Fatalf("unreachable stage: status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestPostPaymentEndpoint(t *testing.T) {
	s := newServer(t)
	seedLoan(s, domainLoan.StageLoanActive)
	actor := staff.Actor{ID: "agent-1", Role: staff.RoleAgent, Region: "north"}

	rec := s.do(http.MethodPost, "/api/v1/loans/"+testAppID+"/payments", `{"amount":4442.44}`, &actor)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var dto loanuc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatal(err)
	}
	if dto.RemainingBalance != 48866.84 {
		t.Errorf("RemainingBalance = %.2f", dto.RemainingBalance)
	}
}

func TestPostPaymentEndpoint_InactiveLoan(t *testing.T) {
	s := newServer(t)
	seedLoan(s, domainLoan.StageRegionalApproved)
	actor := staff.Actor{ID: "agent-1", Role: staff.RoleAgent, Region: "north"}

	rec := s.do(http.MethodPost, "/api/v1/loans/"+testAppID+"/payments", `{"amount":100}`, &actor)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestToFieldErrors_Fallback(t *testing.T) {
	out := ToFieldErrors(io.ErrUnexpectedEOF)
	if len(out) != 1 || out[0].Field != "_" {
		t.Fatalf("out = %+v", out)
	}
	if !containsFieldMsg(out, "_", "EOF") {
		t.Fatalf("out = %+v", out)
	}
}
