package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/trucksigns/truck-signs-api/app/api"
	"github.com/trucksigns/truck-signs-api/app/ordering"
	"github.com/trucksigns/truck-signs-api/app/payments"
	"github.com/trucksigns/truck-signs-api/models"
)

type OrderService interface {
	CreateOrder(ctx context.Context, req ordering.PlaceOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	CapturePayment(ctx context.Context, id uint, patch *ordering.BuyerInput, card payments.Card) (*models.Order, error)
}

type OrdersHandler struct {
	service OrderService
}

func NewOrdersHandler(s OrderService) *OrdersHandler {
	return &OrdersHandler{service: s}
}

// looseString accepts a JSON string, number or null.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*s = looseString(n.String())
	}
	return nil
}

type createOrderRequest struct {
	Order          ordering.BuyerInput         `json:"order"`
	ProductColorID looseString                 `json:"product_color_id"`
	LetteringItems []ordering.LetteringRequest `json:"lettering_items"`
}

type paymentRequest struct {
	Order    *ordering.BuyerInput `json:"order"`
	CardNum  looseString          `json:"card_num"`
	ExpMonth looseString          `json:"exp_month"`
	ExpYear  looseString          `json:"exp_year"`
	CVC      looseString          `json:"cvc"`
}

type paymentResponse struct {
	Result string    `json:"result"`
	Order  api.Order `json:"order"`
}

func (h *OrdersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	productID, ok := api.PathID(r, "id")
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "not_found", "Product not found")
		return
	}

	var input createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "validation_error", "Malformed order body")
		return
	}

	order, err := h.service.CreateOrder(r.Context(), ordering.PlaceOrderRequest{
		Buyer: input.Order,
		Variation: ordering.VariationRequest{
			ProductID: productID,
			ColorID:   string(input.ProductColorID),
			Lettering: input.LetteringItems,
		},
	})
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.OKResponse(w, http.StatusCreated, api.NewOrder(*order))
}

func (h *OrdersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	order, ok := h.load(w, r)
	if !ok {
		return
	}
	api.OKResponse(w, http.StatusOK, api.NewOrder(*order))
}

// HandleGetPayment is the checkout preview of an order.
func (h *OrdersHandler) HandleGetPayment(w http.ResponseWriter, r *http.Request) {
	order, ok := h.load(w, r)
	if !ok {
		return
	}
	api.OKResponse(w, http.StatusOK, map[string]api.Order{"order": api.NewOrder(*order)})
}

func (h *OrdersHandler) HandlePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "not_found", "Order not found")
		return
	}

	var input paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "validation_error", "Malformed payment body")
		return
	}

	card := payments.Card{
		Number:   string(input.CardNum),
		ExpMonth: string(input.ExpMonth),
		ExpYear:  string(input.ExpYear),
		CVC:      string(input.CVC),
	}
	order, err := h.service.CapturePayment(r.Context(), id, input.Order, card)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	api.OKResponse(w, http.StatusOK, paymentResponse{Result: "success", Order: api.NewOrder(*order)})
}

func (h *OrdersHandler) load(w http.ResponseWriter, r *http.Request) (*models.Order, bool) {
	id, ok := api.PathID(r, "id")
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "not_found", "Order not found")
		return nil, false
	}
	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, err)
		return nil, false
	}
	return order, true
}
