package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/services"
)

func orderReq(pkg string) PlaceOrderRequest {
	return PlaceOrderRequest{
		ID:              domain.NewID(),
		PackageName:     pkg,
		Price:           "$499",
		CustomerName:    "Dana",
		CustomerContact: "dana@example.com",
		Date:            "10/16/2026",
	}
}

func TestOrderHandlers_PlaceAndMine(t *testing.T) {
	h := newHarness(t)
	v := withVisitor("dana")

	req := orderReq("Starter")
	w := h.do(t, http.MethodPost, "/orders", req, v, withKey(req.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("place: %d %s", w.Code, w.Body.String())
	}
	o := decode[domain.Order](t, w)
	if o.ID != req.ID || o.Status != domain.OrderPending || o.VisitorID != "dana" {
		t.Fatalf("order: %+v", o)
	}

	w = h.do(t, http.MethodPost, "/orders", req, v, withKey(req.ID))
	if w.Code != http.StatusOK || w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("replay: %d", w.Code)
	}

	h.do(t, http.MethodPost, "/orders", orderReq("Growth"), withVisitor("someone-else"))

	mine := decode[OrdersResponse](t, h.do(t, http.MethodGet, "/orders/mine", nil, v)).Orders
	if len(mine) != 1 || mine[0].ID != req.ID {
		t.Fatalf("mine: %+v", mine)
	}

	bad := orderReq("")
	if w := h.do(t, http.MethodPost, "/orders", bad, v); w.Code != http.StatusBadRequest || errCode(t, w) != ErrCodeValidation {
		t.Fatalf("missing package: %d", w.Code)
	}
	if w := h.do(t, http.MethodPost, "/orders", orderReq("X")); w.Code != http.StatusBadRequest {
		t.Fatalf("missing visitor: %d", w.Code)
	}
}

func TestOrderHandlers_AdminListPagination(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 5; i++ {
		h.do(t, http.MethodPost, "/orders", orderReq(fmt.Sprintf("pkg-%d", i)), withVisitor("v1"))
	}
	tok := h.token(t)

	w := h.do(t, http.MethodGet, "/admin/orders?page=1&page_size=2", nil, tok)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
	page := decode[ListOrdersResponse](t, w)
	if len(page.Orders) != 2 || page.Pagination.Total != 5 || page.Pagination.TotalPages != 3 || !page.Pagination.HasNext {
		t.Fatalf("page: %+v", page.Pagination)
	}
	if page.Orders[0].PackageName != "pkg-4" {
		t.Fatalf("newest first expected, got %s", page.Orders[0].PackageName)
	}

	etag := w.Header().Get("ETag")
	if w := h.do(t, http.MethodGet, "/admin/orders?page=1&page_size=2", nil, tok, withHeader("If-None-Match", etag)); w.Code != http.StatusNotModified {
		t.Fatalf("conditional: %d", w.Code)
	}

	last := decode[ListOrdersResponse](t, h.do(t, http.MethodGet, "/admin/orders?page=3&page_size=2", nil, tok))
	if len(last.Orders) != 1 || last.Pagination.HasNext {
		t.Fatalf("last page: %+v", last.Pagination)
	}
}

func TestOrderHandlers_Lifecycle(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t)
	o := decode[domain.Order](t, h.do(t, http.MethodPost, "/orders", orderReq("Pro"), withVisitor("v1")))

	w := h.do(t, http.MethodPut, "/admin/orders/"+o.ID+"/assign", map[string]int{"rep_index": 2}, tok)
	if w.Code != http.StatusOK {
		t.Fatalf("assign: %d %s", w.Code, w.Body.String())
	}
	got := decode[domain.Order](t, w)
	if got.Status != domain.OrderAssigned || got.AssignedRepIndex == nil || *got.AssignedRepIndex != 2 {
		t.Fatalf("assigned: %+v", got)
	}

	if w := h.do(t, http.MethodPut, "/admin/orders/"+o.ID+"/assign", map[string]any{}, tok); w.Code != http.StatusBadRequest {
		t.Fatalf("missing rep_index: %d", w.Code)
	}
	if w := h.do(t, http.MethodPut, "/admin/orders/"+o.ID+"/assign", map[string]int{"rep_index": -1}, tok); w.Code != http.StatusBadRequest {
		t.Fatalf("negative rep_index: %d", w.Code)
	}

	w = h.do(t, http.MethodPut, "/admin/orders/"+o.ID+"/complete", nil, tok)
	if w.Code != http.StatusOK || decode[domain.Order](t, w).Status != domain.OrderCompleted {
		t.Fatalf("complete: %d %s", w.Code, w.Body.String())
	}

	w = h.do(t, http.MethodPut, "/admin/orders/"+o.ID+"/assign", map[string]int{"rep_index": 0}, tok)
	if w.Code != http.StatusConflict || errCode(t, w) != ErrCodeInvalidTransition {
		t.Fatalf("assign after complete: %d", w.Code)
	}
	if w := h.do(t, http.MethodPut, "/admin/orders/"+domain.NewID()+"/complete", nil, tok); w.Code != http.StatusNotFound {
		t.Fatalf("unknown order: %d", w.Code)
	}

	st := decode[services.OrderStats](t, h.do(t, http.MethodGet, "/admin/orders/stats", nil, tok))
	if st.Completed != 1 || st.Total != 1 {
		t.Fatalf("stats: %+v", st)
	}
}
