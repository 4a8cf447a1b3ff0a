package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/handler"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/service"
)

type mockApplicationService struct {
	lastActor   models.Principal
	lastOfferID uint
	lastStatus  dto.ApplicationStatusRequest
	response    dto.ApplicationResponse
	err         error
}

func (m *mockApplicationService) Apply(_ context.Context, actor models.Principal, offerID uint, _ dto.ApplyRequest) (dto.ApplicationResponse, error) {
	m.lastActor = actor
	m.lastOfferID = offerID
	return m.response, m.err
}

func (m *mockApplicationService) Cancel(_ context.Context, actor models.Principal, _ uint) error {
	m.lastActor = actor
	return m.err
}

func (m *mockApplicationService) Get(_ context.Context, actor models.Principal, _ uint) (dto.ApplicationResponse, error) {
	m.lastActor = actor
	return m.response, m.err
}

func (m *mockApplicationService) ListMine(_ context.Context, actor models.Principal, _ dto.ApplicationListRequest) (dto.ApplicationListResponse, error) {
	m.lastActor = actor
	return dto.ApplicationListResponse{Items: []dto.ApplicationResponse{m.response}, Pagination: dto.NewPaginationMeta(1, 20, 1)}, m.err
}

func (m *mockApplicationService) ListForOffer(_ context.Context, actor models.Principal, offerID uint, _ dto.ApplicationListRequest) (dto.ApplicationListResponse, error) {
	m.lastActor = actor
	m.lastOfferID = offerID
	return dto.ApplicationListResponse{}, m.err
}

func (m *mockApplicationService) ChangeStatus(_ context.Context, actor models.Principal, _ uint, req dto.ApplicationStatusRequest) (dto.ApplicationResponse, error) {
	m.lastActor = actor
	m.lastStatus = req
	if err := testValidator().Struct(req); err != nil {
		return dto.ApplicationResponse{}, err
	}
	return m.response, m.err
}

type mockScreeningService struct {
	result dto.TestSubmissionResponse
	err    error
}

func (m *mockScreeningService) CandidateTest(context.Context, models.Principal, uint) (dto.ScreeningTestResponse, error) {
	return dto.ScreeningTestResponse{}, m.err
}

func (m *mockScreeningService) Submit(context.Context, models.Principal, uint, dto.TestSubmissionRequest) (dto.TestSubmissionResponse, error) {
	return m.result, m.err
}

func newApplicationApp(apps *mockApplicationService, screening *mockScreeningService, as models.Principal) *fiber.App {
	return newTestApp(handler.NewApplicationHandler(apps, screening, testLogger()), as)
}

func TestApplicationHandler_ApplyCreated(t *testing.T) {
	apps := &mockApplicationService{response: dto.ApplicationResponse{ID: 3, Status: models.ApplicationPending}}
	app := newApplicationApp(apps, &mockScreeningService{}, studentPrincipal)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/offers/7/apply", dto.ApplyRequest{CoverLetter: "Hello"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeEnvelope(t, resp)
	require.True(t, body.Success)
	require.EqualValues(t, 7, apps.lastOfferID)
	require.Equal(t, studentPrincipal, apps.lastActor)
}

func TestApplicationHandler_ApplyWithoutBody(t *testing.T) {
	apps := &mockApplicationService{}
	app := newApplicationApp(apps, &mockScreeningService{}, studentPrincipal)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/offers/7/apply", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestApplicationHandler_RoleGuards(t *testing.T) {
	apps := &mockApplicationService{}

	resp := doJSON(t, newApplicationApp(apps, &mockScreeningService{}, companyPrincipal), http.MethodPost, "/api/v1/offers/7/apply", nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, newApplicationApp(apps, &mockScreeningService{}, models.Principal{}), http.MethodGet, "/api/v1/applications/1", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestApplicationHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		method string
		path   string
		as     models.Principal
		status int
	}{
		{"duplicate application", service.ErrApplicationExists, http.MethodPost, "/api/v1/offers/7/apply", studentPrincipal, fiber.StatusConflict},
		{"closed offer", service.ErrOfferNotActive, http.MethodPost, "/api/v1/offers/7/apply", studentPrincipal, fiber.StatusConflict},
		{"cancel past interview", service.ErrNotCancellable, http.MethodDelete, "/api/v1/applications/4", studentPrincipal, fiber.StatusConflict},
		{"missing application", service.ErrApplicationNotFound, http.MethodGet, "/api/v1/applications/4", companyPrincipal, fiber.StatusNotFound},
		{"foreign application", service.ErrForbidden, http.MethodGet, "/api/v1/applications/4", companyPrincipal, fiber.StatusForbidden},
		{"unexpected failure", context.DeadlineExceeded, http.MethodGet, "/api/v1/applications/4", companyPrincipal, fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apps := &mockApplicationService{err: tc.err}
			resp := doJSON(t, newApplicationApp(apps, &mockScreeningService{}, tc.as), tc.method, tc.path, nil)
			require.Equal(t, tc.status, resp.StatusCode)
			require.False(t, decodeEnvelope(t, resp).Success)
		})
	}
}

func TestApplicationHandler_UnexpectedErrorCarriesCause(t *testing.T) {
	apps := &mockApplicationService{err: context.DeadlineExceeded}
	resp := doJSON(t, newApplicationApp(apps, &mockScreeningService{}, companyPrincipal), http.MethodGet, "/api/v1/applications/4", nil)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body := decodeEnvelope(t, resp)
	require.Equal(t, "internal server error", body.Message)
	require.Equal(t, context.DeadlineExceeded.Error(), body.Details["error"])
}

func TestApplicationHandler_CancelNoContent(t *testing.T) {
	apps := &mockApplicationService{}
	resp := doJSON(t, newApplicationApp(apps, &mockScreeningService{}, studentPrincipal), http.MethodDelete, "/api/v1/applications/4", nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestApplicationHandler_InvalidID(t *testing.T) {
	apps := &mockApplicationService{}
	resp := doJSON(t, newApplicationApp(apps, &mockScreeningService{}, companyPrincipal), http.MethodGet, "/api/v1/applications/abc", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestApplicationHandler_InterviewValidationDetails(t *testing.T) {
	apps := &mockApplicationService{}
	app := newApplicationApp(apps, &mockScreeningService{}, companyPrincipal)

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/applications/4/status", map[string]string{"status": "entretien"})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeEnvelope(t, resp)
	require.Contains(t, body.Details, "interview_date")
	require.Contains(t, body.Details, "interview_type")
}

func TestApplicationHandler_InterviewScheduled(t *testing.T) {
	apps := &mockApplicationService{response: dto.ApplicationResponse{ID: 4, Status: models.ApplicationInterview}}
	app := newApplicationApp(apps, &mockScreeningService{}, companyPrincipal)
	when := time.Now().Add(48 * time.Hour).UTC()

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/applications/4/status", dto.ApplicationStatusRequest{
		Status:        "entretien",
		InterviewDate: &when,
		InterviewType: "visio",
		InterviewLink: "https://meet.example.com/abc",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "visio", apps.lastStatus.InterviewType)

	body := decodeEnvelope(t, resp)
	var data dto.ApplicationResponse
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.Equal(t, models.ApplicationInterview, data.Status)
}

func TestApplicationHandler_SubmitTestReportsDuplicates(t *testing.T) {
	screening := &mockScreeningService{result: dto.TestSubmissionResponse{ApplicationID: 4, Score: 75, Accepted: false}}
	app := newApplicationApp(&mockApplicationService{}, screening, studentPrincipal)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/applications/4/test", dto.TestSubmissionRequest{
		Answers: []dto.AnswerChoice{{QuestionID: 1, AnswerID: 2}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "screening test already submitted", decodeEnvelope(t, resp).Message)
}
