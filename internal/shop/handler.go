package shop

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/africanut/holding-admin/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the store.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   func(http.Handler) http.Handler
}

// NewHandler constructs the store handler. guard protects catalogue writes.
func NewHandler(logger *slog.Logger, service *Service, guard func(http.Handler) http.Handler) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers store routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.handleProducts)
	r.Get("/categories", h.handleCategories)

	r.Post("/carts", h.handleNewCart)
	r.Route("/carts/{cartID}", func(r chi.Router) {
		r.Get("/", h.handleCart)
		r.Post("/items", h.handleAddItem)
		r.Put("/items/{productID}", h.handleSetQuantity)
		r.Delete("/items/{productID}", h.handleRemoveItem)
		r.Put("/customer", h.handleCustomer)
		r.Post("/checkout", h.handleCheckout)
	})

	r.Group(func(r chi.Router) {
		if h.guard != nil {
			r.Use(h.guard)
		}
		r.Post("/products", h.handleCreateProduct)
		r.Put("/products/{productID}", h.handleUpdateProduct)
		r.Post("/products/{productID}/stock", h.handleAdjustStock)
	})
}

// Checkout statuses.
const (
	StatusConfirmed         = "confirmed"
	StatusNeedsCustomerInfo = "needs_customer_info"
)

type cartResponse struct {
	Draft
	Total string `json:"total"`
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type checkoutResponse struct {
	Status string `json:"status"`
	*Checkout
}

func newCartResponse(d Draft) cartResponse {
	return cartResponse{Draft: d, Total: d.Cart.Total().String()}
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.Products(r.Context())
	if err != nil {
		h.fail(w, r, "list products", err)
		return
	}
	q := r.URL.Query()
	httpx.JSON(w, http.StatusOK, catalog.Filter(q.Get("category"), q.Get("q")))
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.Products(r.Context())
	if err != nil {
		h.fail(w, r, "list categories", err)
		return
	}
	httpx.JSON(w, http.StatusOK, catalog.Categories())
}

func (h *Handler) handleNewCart(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.NewCart(r.Context())
	if err != nil {
		h.fail(w, r, "new cart", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newCartResponse(d))
}

func (h *Handler) handleCart(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Cart(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		h.fail(w, r, "load cart", err)
		return
	}
	httpx.JSON(w, http.StatusOK, newCartResponse(d))
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if req.ProductID == "" {
		httpx.ProblemWithFields(w, http.StatusBadRequest, "Validation Failed", "product id required",
			map[string]string{"productId": "is required"})
		return
	}
	d, err := h.service.AddToCart(r.Context(), chi.URLParam(r, "cartID"), req.ProductID, req.Quantity)
	if err != nil {
		h.fail(w, r, "add to cart", err)
		return
	}
	httpx.JSON(w, http.StatusOK, newCartResponse(d))
}

func (h *Handler) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	d, err := h.service.SetQuantity(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		h.fail(w, r, "set quantity", err)
		return
	}
	httpx.JSON(w, http.StatusOK, newCartResponse(d))
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.RemoveFromCart(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "productID"))
	if err != nil {
		h.fail(w, r, "remove from cart", err)
		return
	}
	httpx.JSON(w, http.StatusOK, newCartResponse(d))
}

func (h *Handler) handleCustomer(w http.ResponseWriter, r *http.Request) {
	var info CustomerInfo
	if err := httpx.DecodeJSON(r, &info); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	d, err := h.service.SetCustomer(r.Context(), chi.URLParam(r, "cartID"), info)
	if err != nil {
		h.fail(w, r, "set customer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, newCartResponse(d))
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	checkout, err := h.service.PlaceOrder(r.Context(), chi.URLParam(r, "cartID"))
	switch {
	case errors.Is(err, ErrCustomerInfoRequired):
		httpx.JSON(w, http.StatusOK, checkoutResponse{Status: StatusNeedsCustomerInfo})
	case err != nil:
		h.fail(w, r, "place order", err)
	default:
		httpx.JSON(w, http.StatusCreated, checkoutResponse{Status: StatusConfirmed, Checkout: &checkout})
	}
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	p, err := h.service.CreateProduct(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create product", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "productID"), in)
	if err != nil {
		h.fail(w, r, "update product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	p, err := h.service.AdjustStock(r.Context(), chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		h.fail(w, r, "adjust stock", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if r.Context().Err() != nil {
		return
	}
	switch {
	case errors.Is(err, ErrMissingCompany):
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Store Not Configured", err.Error())
		return
	case errors.Is(err, httpx.ErrValidation), errors.Is(err, httpx.ErrConflict), errors.Is(err, httpx.ErrNotFound):
	default:
		h.logger.Warn(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
