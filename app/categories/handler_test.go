package categories

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/trucksigns/truck-signs-api/app/api"
	"github.com/trucksigns/truck-signs-api/models"
)

// --- Mock Repository ---

type MockCategoryRepo struct {
	Categories     []models.Category
	LetteringItems []models.LetteringItemCategory
	ListErr        error
}

func (m *MockCategoryRepo) ListCategories(context.Context) ([]models.Category, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Categories, nil
}

func (m *MockCategoryRepo) ListLetteringItemCategories(context.Context) ([]models.LetteringItemCategory, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.LetteringItems, nil
}

// --- Tests: GET /categories ---

func TestHandleGetAll(t *testing.T) {
	testCases := []struct {
		name               string
		mockRepoSetup      func() *MockCategoryRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "Success with multiple categories",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{
					Categories: []models.Category{
						{ID: 1, Title: models.TruckSignCategory, BasePrice: decimal.NewFromFloat(100), MaxAmountOfLetteringItems: 4, Height: 12, Width: 24},
						{ID: 2, Title: "Decal", BasePrice: decimal.NewFromFloat(19.99)},
					},
				}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []api.Category
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp, 2)
				assert.Equal(t, models.TruckSignCategory, resp[0].Title)
				assert.Equal(t, 100.0, resp[0].BasePrice)
				assert.Equal(t, 4, resp[0].MaxAmountOfLetteringItems)
				assert.Equal(t, 24, resp[0].Width)
				assert.Equal(t, 19.99, resp[1].BasePrice)
			},
		},
		{
			name: "Success with empty list",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{
					Categories: []models.Category{},
				}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, "[]", rec.Body.String())
			},
		},
		{
			name: "Repository error",
			mockRepoSetup: func() *MockCategoryRepo {
				return &MockCategoryRepo{
					ListErr: errors.New("db failure"),
				}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "failed to fetch categories", errResp["error"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			handler := NewCategoryHandler(tc.mockRepoSetup())
			req := httptest.NewRequest("GET", "/categories", nil)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGetAll(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}

// --- Tests: GET /lettering-item-categories ---

func TestHandleGetLetteringItemCategories(t *testing.T) {
	testCases := []struct {
		name               string
		repo               *MockCategoryRepo
		expectedStatusCode int
		expectedBody       string
	}{
		{
			name: "Success",
			repo: &MockCategoryRepo{LetteringItems: []models.LetteringItemCategory{
				{ID: 1, Title: "Line1", Price: decimal.NewFromFloat(15)},
				{ID: 2, Title: "Line2", Price: decimal.NewFromFloat(12.5)},
			}},
			expectedStatusCode: http.StatusOK,
			expectedBody:       `[{"id":1,"title":"Line1","price":15},{"id":2,"title":"Line2","price":12.5}]`,
		},
		{
			name:               "Empty",
			repo:               &MockCategoryRepo{LetteringItems: nil},
			expectedStatusCode: http.StatusOK,
			expectedBody:       `[]`,
		},
		{
			name:               "Repository error",
			repo:               &MockCategoryRepo{ListErr: errors.New("timeout")},
			expectedStatusCode: http.StatusInternalServerError,
			expectedBody:       `{"error":"failed to fetch lettering item categories","code":"internal_error"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewCategoryHandler(tc.repo)
			rec := httptest.NewRecorder()

			handler.HandleGetLetteringItemCategories(rec, httptest.NewRequest("GET", "/lettering-item-categories", nil))

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
		})
	}
}
