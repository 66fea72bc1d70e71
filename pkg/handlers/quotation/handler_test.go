package quotation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qb-tools/quote-forge/pkg/models/domain"
	"github.com/qb-tools/quote-forge/pkg/services/pricing"
	quotationsvc "github.com/qb-tools/quote-forge/pkg/services/quotation"
	"github.com/qb-tools/quote-forge/pkg/services/validation"
	"github.com/qb-tools/quote-forge/pkg/store/client"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Draft() domain.Quotation {
	args := m.Called()
	return args.Get(0).(domain.Quotation)
}

func (m *mockService) DraftState() domain.DraftState {
	args := m.Called()
	return args.Get(0).(domain.DraftState)
}

func (m *mockService) Replace(ctx context.Context, q domain.Quotation) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *mockService) ClearDraft(ctx context.Context) {
	m.Called(ctx)
}

func (m *mockService) SaveDraft(ctx context.Context) (domain.Quotation, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Quotation), args.Error(1)
}

func (m *mockService) Submit(ctx context.Context) (domain.Quotation, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Quotation), args.Error(1)
}

func (m *mockService) Validate() validation.Result {
	args := m.Called()
	return args.Get(0).(validation.Result)
}

func (m *mockService) Totals() pricing.Totals {
	args := m.Called()
	return args.Get(0).(pricing.Totals)
}

func (m *mockService) ListQuotations(ctx context.Context, status domain.Status) ([]domain.Quotation, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Quotation), args.Error(1)
}

func (m *mockService) GetQuotation(ctx context.Context, id int64) (domain.Quotation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Quotation), args.Error(1)
}

func (m *mockService) DeleteQuotation(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockService) DuplicateQuotation(ctx context.Context, id int64) (domain.Quotation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Quotation), args.Error(1)
}

func (m *mockService) UpdateStatus(ctx context.Context, id int64, next domain.Status) (domain.Quotation, error) {
	args := m.Called(ctx, id, next)
	return args.Get(0).(domain.Quotation), args.Error(1)
}

func (m *mockService) GenerateQuotationPDF(ctx context.Context, id int64) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockService) ListMaterials(ctx context.Context) ([]domain.MaterialRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MaterialRef), args.Error(1)
}

func (m *mockService) RefreshMaterials(ctx context.Context) ([]domain.MaterialRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MaterialRef), args.Error(1)
}

func withID(req *http.Request, id string) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func TestGetDraft(t *testing.T) {
	service := new(mockService)
	q := domain.DefaultQuotation()
	q.Title = "Wardrobe"
	service.On("DraftState").Return(domain.DraftState{Quotation: q, IsDirty: true})

	handler := NewHandler(service)
	req := httptest.NewRequest("GET", "/draft", nil)
	rec := httptest.NewRecorder()

	handler.GetDraft(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response draftStateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "Wardrobe", response.Quotation.Title)
	assert.True(t, response.IsDirty)
	service.AssertExpectations(t)
}

func TestReplaceDraft(t *testing.T) {
	service := new(mockService)
	service.On("Replace", mock.Anything, mock.MatchedBy(func(q domain.Quotation) bool {
		return q.Title == "Replacement"
	})).Return(nil)
	service.On("DraftState").Return(domain.DraftState{Quotation: domain.DefaultQuotation()})

	handler := NewHandler(service)
	body := bytes.NewBufferString(`{"title": "Replacement"}`)
	req := httptest.NewRequest("PUT", "/draft", body)
	rec := httptest.NewRecorder()

	handler.ReplaceDraft(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestReplaceDraft_IssuedQuotationIs409(t *testing.T) {
	service := new(mockService)
	service.On("Replace", mock.Anything, mock.Anything).
		Return(fmt.Errorf("cannot edit a quotation in status %q: %w", "issued", quotationsvc.ErrImmutableQuotation))

	handler := NewHandler(service)
	req := httptest.NewRequest("PUT", "/draft", bytes.NewBufferString(`{"title": "too late"}`))
	rec := httptest.NewRecorder()

	handler.ReplaceDraft(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReplaceDraft_BadBody(t *testing.T) {
	handler := NewHandler(new(mockService))
	req := httptest.NewRequest("PUT", "/draft", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()

	handler.ReplaceDraft(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveDraft_ValidationErrorsAre422(t *testing.T) {
	service := new(mockService)
	service.On("SaveDraft", mock.Anything).Return(domain.Quotation{}, &quotationsvc.ValidationError{
		Result: validation.Result{
			IsValid: false,
			Errors:  validation.Errors{"client": "Client selection is required"},
		},
	})

	handler := NewHandler(service)
	req := httptest.NewRequest("POST", "/draft/save", nil)
	rec := httptest.NewRecorder()

	handler.SaveDraft(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var response validationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.False(t, response.IsValid)
	assert.Equal(t, "Client selection is required", response.Errors["client"])
}

func TestSaveDraft_RemoteErrorKeepsStatus(t *testing.T) {
	service := new(mockService)
	service.On("SaveDraft", mock.Anything).Return(domain.Quotation{}, &client.APIError{
		StatusCode: http.StatusServiceUnavailable,
		Message:    "Server error, please try again later",
	})

	handler := NewHandler(service)
	req := httptest.NewRequest("POST", "/draft/save", nil)
	rec := httptest.NewRecorder()

	handler.SaveDraft(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server error")
}

func TestGetDraftPricing(t *testing.T) {
	service := new(mockService)
	service.On("Totals").Return(pricing.Totals{
		Subtotal:     100,
		MarkupAmount: 20,
		TaxAmount:    12,
		GrandTotal:   132,
	})

	handler := NewHandler(service)
	req := httptest.NewRequest("GET", "/draft/pricing", nil)
	rec := httptest.NewRecorder()

	handler.GetDraftPricing(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response pricing.Totals
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, 132.0, response.GrandTotal)
}

func TestListQuotations(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		setupMock      func(*mockService)
		expectedStatus int
		expectedLen    int
	}{
		{
			name:  "no filter",
			query: "",
			setupMock: func(m *mockService) {
				m.On("ListQuotations", mock.Anything, domain.Status("")).Return(
					[]domain.Quotation{{ID: 1}, {ID: 2}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedLen:    2,
		},
		{
			name:  "status filter",
			query: "?status=issued",
			setupMock: func(m *mockService) {
				m.On("ListQuotations", mock.Anything, domain.StatusIssued).Return(
					[]domain.Quotation{{ID: 2, Status: domain.StatusIssued}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedLen:    1,
		},
		{
			name:           "unknown status",
			query:          "?status=archived",
			setupMock:      func(m *mockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(mockService)
			tt.setupMock(service)

			handler := NewHandler(service)
			req := httptest.NewRequest("GET", "/quotations"+tt.query, nil)
			rec := httptest.NewRecorder()

			handler.ListQuotations(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var response []domain.Quotation
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
				assert.Len(t, response, tt.expectedLen)
			}
			service.AssertExpectations(t)
		})
	}
}

func TestUpdateQuotationStatus(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*mockService)
		expectedStatus int
	}{
		{
			name: "valid transition",
			body: `{"status": "issued"}`,
			setupMock: func(m *mockService) {
				m.On("UpdateStatus", mock.Anything, int64(5), domain.StatusIssued).
					Return(domain.Quotation{ID: 5, Status: domain.StatusIssued}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "forbidden transition",
			body: `{"status": "accepted"}`,
			setupMock: func(m *mockService) {
				m.On("UpdateStatus", mock.Anything, int64(5), domain.StatusAccepted).
					Return(domain.Quotation{}, fmt.Errorf("draft to accepted: %w", quotationsvc.ErrInvalidTransition))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "unknown status",
			body:           `{"status": "archived"}`,
			setupMock:      func(m *mockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad body",
			body:           `{`,
			setupMock:      func(m *mockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(mockService)
			tt.setupMock(service)

			handler := NewHandler(service)
			req := withID(httptest.NewRequest("PUT", "/quotations/5/status", bytes.NewBufferString(tt.body)), "5")
			rec := httptest.NewRecorder()

			handler.UpdateQuotationStatus(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			service.AssertExpectations(t)
		})
	}
}

func TestDeleteQuotation(t *testing.T) {
	service := new(mockService)
	service.On("DeleteQuotation", mock.Anything, int64(9)).Return(nil)

	handler := NewHandler(service)
	req := withID(httptest.NewRequest("DELETE", "/quotations/9", nil), "9")
	rec := httptest.NewRecorder()

	handler.DeleteQuotation(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	service.AssertExpectations(t)
}

func TestGetQuotation_BadID(t *testing.T) {
	handler := NewHandler(new(mockService))
	req := withID(httptest.NewRequest("GET", "/quotations/abc", nil), "abc")
	rec := httptest.NewRecorder()

	handler.GetQuotation(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMaterials(t *testing.T) {
	service := new(mockService)
	service.On("ListMaterials", mock.Anything).Return([]domain.MaterialRef{
		{ID: 1, Name: "Steel Sheet", UnitCost: 25.50, Unit: "sq ft"},
		{ID: 3, Name: "Wood Plank", UnitCost: 8.25, Unit: "linear ft"},
	}, nil)

	handler := NewHandler(service)
	req := httptest.NewRequest("GET", "/materials", nil)
	rec := httptest.NewRecorder()

	handler.ListMaterials(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []domain.MaterialRef
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	require.Len(t, response, 2)
	assert.Equal(t, "Steel Sheet", response[0].Name)
}

func TestRefreshMaterials_RemoteFailureKeepsStatus(t *testing.T) {
	service := new(mockService)
	service.On("RefreshMaterials", mock.Anything).Return(nil, &client.APIError{
		StatusCode: http.StatusBadGateway,
		Message:    "Server error, please try again later",
	})

	handler := NewHandler(service)
	req := httptest.NewRequest("POST", "/materials/refresh", nil)
	rec := httptest.NewRecorder()

	handler.RefreshMaterials(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetQuotationPDF(t *testing.T) {
	service := new(mockService)
	pdf := []byte("%PDF-1.7 fake")
	service.On("GenerateQuotationPDF", mock.Anything, int64(4)).Return(pdf, nil)

	handler := NewHandler(service)
	req := withID(httptest.NewRequest("GET", "/quotations/4/pdf", nil), "4")
	rec := httptest.NewRecorder()

	handler.GetQuotationPDF(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, pdf, rec.Body.Bytes())
}
