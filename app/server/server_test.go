package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trucksigns/truck-signs-api/app/api"
	"github.com/trucksigns/truck-signs-api/app/cache"
	"github.com/trucksigns/truck-signs-api/app/catalog"
	"github.com/trucksigns/truck-signs-api/app/categories"
	"github.com/trucksigns/truck-signs-api/app/comments"
	"github.com/trucksigns/truck-signs-api/app/database"
	"github.com/trucksigns/truck-signs-api/app/metrics"
	"github.com/trucksigns/truck-signs-api/app/ordering"
	"github.com/trucksigns/truck-signs-api/app/orders"
	"github.com/trucksigns/truck-signs-api/app/payments"
	"github.com/trucksigns/truck-signs-api/app/storage"
	"github.com/trucksigns/truck-signs-api/models"
)

type stubGateway struct {
	amounts []int64
}

func (g *stubGateway) Charge(_ context.Context, _ string, _ payments.Card, amount int64, currency string) (*payments.Charge, error) {
	g.amounts = append(g.amounts, amount)
	return &payments.Charge{ID: fmt.Sprintf("ch_%d", len(g.amounts)), Amount: amount, Currency: currency}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *stubGateway) {
	t.Helper()
	db, err := database.Open(database.Config{
		Driver:       database.DriverSQLite,
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	category := models.Category{Title: models.TruckSignCategory, BasePrice: decimal.RequireFromString("100.00"), MaxAmountOfLetteringItems: 4}
	require.NoError(t, db.Create(&category).Error)
	require.NoError(t, db.Create(&[]models.LetteringItemCategory{
		{Title: "Line1", Price: decimal.RequireFromString("15.00")},
		{Title: "Line2", Price: decimal.RequireFromString("15.00")},
	}).Error)
	require.NoError(t, db.Create(&models.Product{Title: "Flame", CategoryID: category.ID, Image: "/media/flame.png"}).Error)
	require.NoError(t, db.Create(&models.ProductColor{ColorNickname: "Fire Red", ColorInHex: "#FF0000"}).Error)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ids := cache.NewIDCache(cache.NewMemoryStore(time.Minute), cache.NewKeyBuilder("test"), logger)
	catalogRepo := models.NewCatalogRepository(db, ids, models.DefaultCacheTTLs())
	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	gateway := &stubGateway{}
	service := ordering.NewService(catalogRepo, models.NewOrdersRepository(db), gateway, ordering.DefaultConfig(), logger)

	router := NewRouter(Handlers{
		Catalog:    catalog.NewCatalogHandler(catalogRepo),
		Upload:     catalog.NewUploadHandler(catalogRepo, store, "/media/", 1<<20),
		Categories: categories.NewCategoryHandler(catalogRepo),
		Orders:     orders.NewOrdersHandler(service),
		Comments:   comments.NewCommentsHandler(models.NewCommentsRepository(db, ids, models.DefaultCacheTTLs())),
		Metrics:    metrics.NewRecorder(),
	}, logger)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, gateway
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestOrderAndPaymentFlow(t *testing.T) {
	srv, gateway := newTestServer(t)

	var cats []api.Category
	require.Equal(t, http.StatusOK, do(t, srv, "GET", "/categories", "", &cats))
	require.Len(t, cats, 1)

	var products struct {
		Total    int           `json:"total"`
		Products []api.Product `json:"products"`
	}
	require.Equal(t, http.StatusOK, do(t, srv, "GET", "/products", "", &products))
	require.Equal(t, 1, products.Total)
	productID := products.Products[0].ID

	var created api.Order
	status := do(t, srv, "POST", fmt.Sprintf("/products/%d/order", productID),
		`{"order":{"user_email":"driver@example.com"},"product_color_id":"1",`+
			`"lettering_items":[{"title":"Line1","text":"  "},{"title":"Line2","text":"HELLO"}]}`, &created)
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, created.Product.LetteringItems, 1)
	assert.Equal(t, "HELLO", created.Product.LetteringItems[0].Lettering)
	require.NotNil(t, created.TotalPrice)
	assert.Equal(t, 115.0, *created.TotalPrice)

	var paid struct {
		Result string    `json:"result"`
		Order  api.Order `json:"order"`
	}
	status = do(t, srv, "POST", fmt.Sprintf("/orders/%d/payment", created.ID),
		`{"card_num":"4242424242424242","exp_month":"12","exp_year":2030,"cvc":"123"}`, &paid)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", paid.Result)
	assert.True(t, paid.Order.Ordered)
	require.NotNil(t, paid.Order.Payment)
	assert.Equal(t, []int64{11500}, gateway.amounts)

	var errResp map[string]string
	status = do(t, srv, "POST", fmt.Sprintf("/orders/%d/payment", created.ID),
		`{"card_num":"4242424242424242","exp_month":"12","exp_year":"2030","cvc":"123"}`, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Len(t, gateway.amounts, 1, "a paid order is never charged again")

	var preview map[string]api.Order
	require.Equal(t, http.StatusOK, do(t, srv, "GET", fmt.Sprintf("/orders/%d/payment", created.ID), "", &preview))
	assert.True(t, preview["order"].Ordered)

	assert.Equal(t, http.StatusNotFound, do(t, srv, "GET", "/orders/999", "", &errResp))
	assert.Equal(t, "not_found", errResp["code"])
}

func TestIndexHealthCommentsAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	var index map[string]string
	require.Equal(t, http.StatusOK, do(t, srv, "GET", "/", "", &index))
	assert.Equal(t, "/products", index["products"])

	var health map[string]string
	require.Equal(t, http.StatusOK, do(t, srv, "GET", "/health", "", &health))
	assert.Equal(t, "ok", health["status"])

	var list []api.Comment
	require.Equal(t, http.StatusOK, do(t, srv, "GET", "/comments", "", &list))
	assert.Empty(t, list)

	var comment api.Comment
	require.Equal(t, http.StatusCreated, do(t, srv, "POST", "/comments", `{"user_email":"a@example.com","text":"Love it"}`, &comment))
	require.Equal(t, http.StatusOK, do(t, srv, "GET", "/comments", "", &list))
	require.Len(t, list, 1, "creating a comment refreshes the cached list")
	assert.Equal(t, "Love it", list[0].Text)

	// Latency is recorded after the response is written, so poll.
	assert.Eventually(t, func() bool {
		var latency map[string][]metrics.Latency
		if do(t, srv, "GET", "/metrics/latency", "", &latency) != http.StatusOK {
			return false
		}
		routes := map[string]int64{}
		for _, l := range latency["routes"] {
			routes[l.Route] = l.Count
		}
		return routes["GET /comments"] == 2 && routes["POST /comments"] == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRecover(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	handler := Recover(logger, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/products", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal error","code":"internal_error"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "panic serving request")
}

func TestRunShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{Addr: addr, ShutdownTimeout: time.Second}, http.NotFoundHandler(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
