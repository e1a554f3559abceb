package catalog

import (
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

func TestHandleGetProduct(t *testing.T) {
	testCases := []struct {
		name               string
		productID          string
		mockRepoSetup      func() *MockProductRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCall      func(t *testing.T, repo *MockProductRepo)
	}{
		{
			name:      "Success with nested category",
			productID: "1",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts()}
			},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp api.Product
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, uint(1), resp.ID)
				assert.Equal(t, "Flame", resp.Title)
				assert.Equal(t, "/media/Flame.png", resp.Image)
				assert.Equal(t, api.Category{
					ID:                        1,
					Title:                     models.TruckSignCategory,
					BasePrice:                 100,
					MaxAmountOfLetteringItems: 4,
				}, resp.Category)
			},
			checkRepoCall: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, uint(1), repo.lastCalledID)
			},
		},
		{
			name:      "Product not found",
			productID: "404",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts()}
			},
			expectedStatusCode: http.StatusNotFound,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "Product not found", errResp["error"])
			},
			checkRepoCall: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, uint(404), repo.lastCalledID)
			},
		},
		{
			name:      "Repository internal error",
			productID: "7",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{Err: errors.New("db connection lost")}
			},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "Internal error", errResp["error"])
			},
		},
		{
			name:      "Non numeric id in path",
			productID: "abc",
			mockRepoSetup: func() *MockProductRepo {
				return &MockProductRepo{SourceProducts: allMockProducts()}
			},
			expectedStatusCode: http.StatusNotFound,
			checkRepoCall: func(t *testing.T, repo *MockProductRepo) {
				assert.Zero(t, repo.lastCalledID, "repository must not be queried")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := tc.mockRepoSetup()
			handler := NewCatalogHandler(mockRepo)
			req := httptest.NewRequest("GET", "/products/"+tc.productID, nil)
			req.SetPathValue("id", tc.productID)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleGetProduct(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)

			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}

			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, mockRepo)
			}
		})
	}
}

func TestHandleGetVariation(t *testing.T) {
	amount := 1
	color := models.ProductColor{ID: 3, ColorNickname: "Chrome", ColorInHex: "#C0C0C0"}
	variation := models.ProductVariation{
		ID:           9,
		ProductID:    1,
		Product:      newTestProduct(1, "Flame", truckSign, false),
		ProductColor: &color,
		Amount:       &amount,
		LetteringItems: []models.LetteringItemVariation{
			{
				ID:                    1,
				Lettering:             "HELLO",
				LetteringItemCategory: models.LetteringItemCategory{ID: 2, Title: "Line2", Price: decimal.NewFromFloat(15)},
			},
		},
	}
	mockRepo := &MockProductRepo{Variations: []models.ProductVariation{variation}}
	handler := NewCatalogHandler(mockRepo)

	req := httptest.NewRequest("GET", "/product-variations/9", nil)
	req.SetPathValue("id", "9")
	rec := httptest.NewRecorder()
	handler.HandleGetVariation(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp api.ProductVariation
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, uint(9), resp.ID)
	assert.Equal(t, "Flame", resp.Product.Title)
	assert.Equal(t, "Chrome", resp.ProductColor.ColorNickname)
	assert.Len(t, resp.LetteringItems, 1)
	assert.Equal(t, "Line2", resp.LetteringItems[0].LetteringItemCategory.Title)
	if assert.NotNil(t, resp.Price) {
		assert.Equal(t, 115.0, *resp.Price)
	}

	req = httptest.NewRequest("GET", "/product-variations/10", nil)
	req.SetPathValue("id", "10")
	rec = httptest.NewRecorder()
	handler.HandleGetVariation(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
