package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/services"
)

// PlaceOrderRequest is the checkout payload.
type PlaceOrderRequest struct {
	ID              string `json:"id"`
	PackageName     string `json:"package_name"     binding:"required" example:"Growth"`
	Price           string `json:"price"            binding:"required" example:"$1,499"`
	CustomerName    string `json:"customer_name"    binding:"required" example:"Dana"`
	CustomerContact string `json:"customer_contact" binding:"required" example:"dana@example.com"`
	Date            string `json:"date"             example:"10/16/2026"`
}

// AssignOrderRequest picks the team member handling an order.
type AssignOrderRequest struct {
	RepIndex *int `json:"rep_index" binding:"required" example:"0"`
}

// OrdersResponse wraps a visitor's orders, newest first.
type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// ListOrdersResponse wraps a page of orders and pagination information.
type ListOrdersResponse struct {
	Orders     []domain.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

// PlaceOrder godoc
// @ID          placeOrder
// @Summary     Place an order
// @Description Stores a pending order for the caller and notifies the admin device.
// @Tags        Orders
// @Accept      json
// @Produce     json
//
// @Param       X-Visitor-ID     header  string  true  "Visitor ID"
// @Param       Idempotency-Key  header  string  false "Replay-safe key"
// @Param       body             body    handlers.PlaceOrderRequest  true  "Order"
//
// @Success     201  {object} domain.Order
// @Success     200  {object} domain.Order "Replayed"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     409  {object} handlers.ErrorResponse "Id conflict"
// @Router      /orders [post]
func (h *Handlers) PlaceOrder(c *gin.Context) {
	visitorID, okID := requireVisitor(c)
	if !okID {
		return
	}
	if h.replay(c, visitorID, services.ScopeOrders, h.loadOrder) {
		return
	}
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "package_name, price, customer_name and customer_contact are required")
		return
	}
	o, err := h.orders.Place(c.Request.Context(), visitorID, services.OrderInput{
		ID:              strings.TrimSpace(req.ID),
		PackageName:     req.PackageName,
		Price:           req.Price,
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		Date:            req.Date,
	})
	if err != nil {
		failService(c, err)
		return
	}
	h.remember(c, visitorID, services.ScopeOrders, o.ID)
	ok(c, http.StatusCreated, o)
}

// MyOrders godoc
// @ID          myOrders
// @Summary     The caller's orders
// @Tags        Orders
// @Produce     json
// @Param       X-Visitor-ID  header  string  true  "Visitor ID"
// @Success     200  {object} handlers.OrdersResponse
// @Failure     400  {object} handlers.ErrorResponse "Missing visitor"
// @Router      /orders/mine [get]
func (h *Handlers) MyOrders(c *gin.Context) {
	visitorID, okID := requireVisitor(c)
	if !okID {
		return
	}
	items, err := h.orders.ListForVisitor(c.Request.Context(), visitorID)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, OrdersResponse{Orders: items})
}

// ListOrders godoc
// @ID          listOrders
// @Summary     List orders (paginated)
// @Description Every order newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListOrdersResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/orders [get]
func (h *Handlers) ListOrders(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	if v, err := h.orders.Version(ctx); err == nil && notModified(c, "orders", v) {
		return
	}

	items, total, err := h.orders.ListPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListOrdersResponse{Orders: items, Pagination: newPagination(page, pageSize, total)})
}

// OrderStats godoc
// @ID          orderStats
// @Summary     Order counts per status
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object} services.OrderStats
// @Router      /admin/orders/stats [get]
func (h *Handlers) OrderStats(c *gin.Context) {
	st, err := h.orders.Stats(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// AssignOrder godoc
// @ID          assignOrder
// @Summary     Assign an order
// @Description Hands a pending or assigned order to the team member at rep_index.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Order ID"
// @Param       body  body  handlers.AssignOrderRequest  true  "Team member"
//
// @Success     200  {object} domain.Order
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Order not found"
// @Failure     409  {object} handlers.ErrorResponse "Order already completed"
// @Router      /admin/orders/{id}/assign [put]
func (h *Handlers) AssignOrder(c *gin.Context) {
	var req AssignOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RepIndex == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "rep_index required")
		return
	}
	o, err := h.orders.Assign(c.Request.Context(), c.Param("id"), *req.RepIndex)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, o)
}

// CompleteOrder godoc
// @ID          completeOrder
// @Summary     Complete an order
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  string  true  "Order ID"
// @Success     200  {object} domain.Order
// @Failure     404  {object} handlers.ErrorResponse "Order not found"
// @Failure     409  {object} handlers.ErrorResponse "Order already completed"
// @Router      /admin/orders/{id}/complete [put]
func (h *Handlers) CompleteOrder(c *gin.Context) {
	o, err := h.orders.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, o)
}

func (h *Handlers) loadOrder(ctx context.Context, id string) (any, error) {
	return h.orders.Get(ctx, id)
}
