package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/handler"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/service"
)

type mockOfferService struct {
	lastList dto.OfferListRequest
	listResp dto.OfferListResponse
	offer    dto.OfferResponse
	err      error
}

func (m *mockOfferService) Create(_ context.Context, _ models.Principal, req dto.OfferCreateRequest) (dto.OfferResponse, error) {
	if err := testValidator().Struct(req); err != nil {
		return dto.OfferResponse{}, err
	}
	return m.offer, m.err
}

func (m *mockOfferService) Update(context.Context, models.Principal, uint, dto.OfferUpdateRequest) (dto.OfferResponse, error) {
	return m.offer, m.err
}

func (m *mockOfferService) ChangeStatus(context.Context, models.Principal, uint, dto.OfferStatusRequest) (dto.OfferResponse, error) {
	return m.offer, m.err
}

func (m *mockOfferService) Delete(context.Context, models.Principal, uint) error {
	return m.err
}

func (m *mockOfferService) Get(context.Context, models.Principal, uint) (dto.OfferResponse, error) {
	return m.offer, m.err
}

func (m *mockOfferService) ListPublic(_ context.Context, req dto.OfferListRequest) (dto.OfferListResponse, error) {
	m.lastList = req
	return m.listResp, m.err
}

func (m *mockOfferService) ListMine(context.Context, models.Principal, dto.ListRequest) (dto.OfferListResponse, error) {
	return m.listResp, m.err
}

func (m *mockOfferService) ReplaceTest(context.Context, models.Principal, uint, dto.ScreeningTestRequest) (dto.ScreeningTestResponse, error) {
	return dto.ScreeningTestResponse{}, m.err
}

func (m *mockOfferService) OwnerTest(context.Context, models.Principal, uint) (dto.ScreeningTestResponse, error) {
	return dto.ScreeningTestResponse{}, m.err
}

func TestOfferHandler_ListPassesFiltersAndMeta(t *testing.T) {
	svc := &mockOfferService{listResp: dto.OfferListResponse{
		Items:      []dto.OfferResponse{{ID: 1, Title: "Backend intern"}},
		Pagination: dto.NewPaginationMeta(2, 5, 6),
	}}
	app := newTestApp(handler.NewOfferHandler(svc, testLogger()), studentPrincipal)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/offers?page=2&page_size=5&city=Lyon&contract_type=stage", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 2, svc.lastList.Page)
	require.Equal(t, 5, svc.lastList.PageSize)
	require.Equal(t, "Lyon", svc.lastList.City)
	require.Equal(t, "stage", svc.lastList.ContractType)

	body := decodeEnvelope(t, resp)
	var meta dto.PaginationMeta
	require.NoError(t, json.Unmarshal(body.Meta, &meta))
	require.Equal(t, 2, meta.TotalPages)
}

func TestOfferHandler_CreateValidation(t *testing.T) {
	app := newTestApp(handler.NewOfferHandler(&mockOfferService{}, testLogger()), companyPrincipal)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/offers", map[string]string{"title": "Intern", "contract_type": "freelance"})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, decodeEnvelope(t, resp).Details, "contract_type")
}

func TestOfferHandler_StudentsCannotCreate(t *testing.T) {
	app := newTestApp(handler.NewOfferHandler(&mockOfferService{}, testLogger()), studentPrincipal)
	resp := doJSON(t, app, http.MethodPost, "/api/v1/offers", map[string]string{"title": "Intern"})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestOfferHandler_DeleteOutcomes(t *testing.T) {
	app := newTestApp(handler.NewOfferHandler(&mockOfferService{}, testLogger()), companyPrincipal)
	resp := doJSON(t, app, http.MethodDelete, "/api/v1/offers/3", nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	app = newTestApp(handler.NewOfferHandler(&mockOfferService{err: service.ErrOfferHasApplications}, testLogger()), companyPrincipal)
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/offers/3", nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.Equal(t, service.ErrOfferHasApplications.Error(), decodeEnvelope(t, resp).Message)
}

func TestOfferHandler_TestLockedAndInvalid(t *testing.T) {
	app := newTestApp(handler.NewOfferHandler(&mockOfferService{err: service.ErrScreeningTestLocked}, testLogger()), companyPrincipal)
	resp := doJSON(t, app, http.MethodPut, "/api/v1/offers/3/test", dto.ScreeningTestRequest{Title: "Go"})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	app = newTestApp(handler.NewOfferHandler(&mockOfferService{err: service.ErrInvalidScreeningTest}, testLogger()), companyPrincipal)
	resp = doJSON(t, app, http.MethodPut, "/api/v1/offers/3/test", dto.ScreeningTestRequest{Title: "Go"})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}
