package handlers

import (
	"net/http"

	"github.com/Rakhulsr/fashion-boutique/app/helpers"
	"github.com/Rakhulsr/fashion-boutique/app/services"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

type CartHandler struct {
	render    *render.Render
	validator *validator.Validate
	cart      *services.CartService
	log       *zap.Logger
}

func NewCartHandler(r *render.Render, validator *validator.Validate, cart *services.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{render: r, validator: validator, cart: cart, log: log}
}

type AddCartItemForm struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=0"`
}

type UpdateCartItemForm struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.cart.View(r.Context(), helpers.CurrentUserID(r))
	if err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "cart retrieved", helpers.Payload{"cart": view})
}

func (h *CartHandler) AddItemCart(w http.ResponseWriter, r *http.Request) {
	var form AddCartItemForm
	if !helpers.DecodeAndValidate(h.render, h.validator, h.log, w, r, &form) {
		return
	}

	item, err := h.cart.Add(r.Context(), helpers.CurrentUserID(r), form.ProductID, form.Quantity)
	if err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	count, err := h.cart.Count(r.Context(), helpers.CurrentUserID(r))
	if err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "product added to cart", helpers.Payload{
		"item":       item,
		"cart_count": count,
	})
}

// UpdateCartItem sets the quantity of a cart row; zero removes it.
func (h *CartHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var form UpdateCartItemForm
	if !helpers.DecodeAndValidate(h.render, h.validator, h.log, w, r, &form) {
		return
	}

	userID := helpers.CurrentUserID(r)
	if err := h.cart.UpdateQuantity(r.Context(), userID, mux.Vars(r)["productID"], form.Quantity); err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	view, err := h.cart.View(r.Context(), userID)
	if err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "cart updated", helpers.Payload{"cart": view})
}

func (h *CartHandler) DeleteCartItem(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Remove(r.Context(), helpers.CurrentUserID(r), mux.Vars(r)["productID"]); err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "item removed from cart", nil)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context(), helpers.CurrentUserID(r)); err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "cart cleared", nil)
}

func (h *CartHandler) GetCartCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.cart.Count(r.Context(), helpers.CurrentUserID(r))
	if err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusOK, "cart count", helpers.Payload{"cart_count": count})
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req services.CheckoutRequest
	if !helpers.DecodeAndValidate(h.render, h.validator, h.log, w, r, &req) {
		return
	}

	invoice, err := h.cart.Checkout(r.Context(), helpers.CurrentUserID(r), req)
	if err != nil {
		helpers.WriteError(h.render, w, r, h.log, err)
		return
	}
	helpers.RespondSuccess(h.render, w, http.StatusCreated, "order placed", helpers.Payload{"invoice": invoice})
}
