package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/layali-lounge/qrmenu-backend/api/middleware"
	cartpkg "github.com/layali-lounge/qrmenu-backend/internal/cart"
	"github.com/layali-lounge/qrmenu-backend/internal/session"
	"github.com/layali-lounge/qrmenu-backend/pkg/config"
	"github.com/layali-lounge/qrmenu-backend/pkg/db/models"
)

type stubCatalog struct {
	products map[uuid.UUID]models.Product
	offers   map[uuid.UUID]models.Offer
}

func (s stubCatalog) FetchActiveProducts(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := map[uuid.UUID]models.Product{}
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s stubCatalog) FetchActiveOffers(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Offer, error) {
	out := map[uuid.UUID]models.Offer{}
	for _, id := range ids {
		if o, ok := s.offers[id]; ok {
			out[id] = o
		}
	}
	return out, nil
}

func cartTestConfig() config.CartConfig {
	return config.CartConfig{MaxQtyPerLine: 50}
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body string, v *session.Visit) (*httptest.ResponseRecorder, cartResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithVisit(req.Context(), "s1", v))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if resp.Code == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp, envelope.Data
}

func TestCartAddItemAccumulates(t *testing.T) {
	productID := uuid.New()
	lookup := stubCatalog{products: map[uuid.UUID]models.Product{
		productID: {ID: productID, Name: "Mint Tea", PriceSYP: 3000},
	}}
	handler := CartAddItem(lookup, cartTestConfig(), nil)
	v := session.NewVisit()

	body := fmt.Sprintf(`{"kind":"product","id":%q,"qty":2}`, productID)
	resp, data := postJSON(t, handler, "/api/v1/cart/items", body, v)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if data.TotalSYP != 6000 {
		t.Fatalf("expected total 6000 got %d", data.TotalSYP)
	}

	resp, data = postJSON(t, handler, "/api/v1/cart/items", body, v)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := v.Cart().Quantity(cartpkg.ProductKey(productID)); got != 4 {
		t.Fatalf("expected accumulated qty 4 got %d", got)
	}
	if data.TotalSYP != 12000 {
		t.Fatalf("expected total 12000 got %d", data.TotalSYP)
	}
}

func TestCartAddItemCoercesStringQty(t *testing.T) {
	productID := uuid.New()
	lookup := stubCatalog{products: map[uuid.UUID]models.Product{
		productID: {ID: productID, Name: "Mint Tea", PriceSYP: 3000},
	}}
	handler := CartAddItem(lookup, cartTestConfig(), nil)
	v := session.NewVisit()

	body := fmt.Sprintf(`{"kind":"product","id":%q,"qty":"not-a-number"}`, productID)
	resp, _ := postJSON(t, handler, "/api/v1/cart/items", body, v)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := v.Cart().Quantity(cartpkg.ProductKey(productID)); got != 1 {
		t.Fatalf("malformed qty should degrade to 1 got %d", got)
	}
}

func TestCartAddOfferComposesNote(t *testing.T) {
	offerID := uuid.New()
	lookup := stubCatalog{offers: map[uuid.UUID]models.Offer{
		offerID: {ID: offerID, Title: "Shisha Combo", PriceSYP: 12000},
	}}
	handler := CartAddItem(lookup, cartTestConfig(), nil)
	v := session.NewVisit()

	body := fmt.Sprintf(`{"kind":"offer","id":%q,"qty":1,"drink":"Cola","shisha":"Mint","note":"extra ice"}`, offerID)
	resp, _ := postJSON(t, handler, "/api/v1/cart/items", body, v)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	row, ok := v.Cart().Row(cartpkg.OfferKey(offerID))
	if !ok {
		t.Fatalf("offer row missing from cart")
	}
	want := "مشروب: Cola | أركيلة: Mint | ملاحظة: extra ice"
	if row.Note != want {
		t.Fatalf("unexpected composed note %q", row.Note)
	}
}

func TestCartAddItemRejectsUnknownKind(t *testing.T) {
	handler := CartAddItem(stubCatalog{}, cartTestConfig(), nil)
	v := session.NewVisit()

	body := fmt.Sprintf(`{"kind":"combo","id":%q}`, uuid.New())
	resp, _ := postJSON(t, handler, "/api/v1/cart/items", body, v)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartUpdateQtyDelta(t *testing.T) {
	productID := uuid.New()
	key := cartpkg.ProductKey(productID)
	lookup := stubCatalog{products: map[uuid.UUID]models.Product{
		productID: {ID: productID, Name: "Mint Tea", PriceSYP: 3000},
	}}
	handler := CartUpdateQty(lookup, cartTestConfig(), nil)

	v := session.NewVisit()
	v.AddItem(key, 2, "")

	body := fmt.Sprintf(`{"key":%q,"delta":-1}`, key.String())
	resp, _ := postJSON(t, handler, "/api/v1/cart/items/update", body, v)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := v.Cart().Quantity(key); got != 1 {
		t.Fatalf("expected qty 1 after -1 delta got %d", got)
	}

	resp, _ = postJSON(t, handler, "/api/v1/cart/items/update", body, v)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if _, ok := v.Cart().Row(key); ok {
		t.Fatalf("delta down to zero should remove the row")
	}
}

func TestCartUpdateQtySetsAbsolute(t *testing.T) {
	productID := uuid.New()
	key := cartpkg.ProductKey(productID)
	lookup := stubCatalog{products: map[uuid.UUID]models.Product{
		productID: {ID: productID, Name: "Mint Tea", PriceSYP: 3000},
	}}
	handler := CartUpdateQty(lookup, cartTestConfig(), nil)

	v := session.NewVisit()
	v.AddItem(key, 2, "keep me")

	body := fmt.Sprintf(`{"key":%q,"qty":7}`, key.String())
	resp, data := postJSON(t, handler, "/api/v1/cart/items/update", body, v)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := v.Cart().Quantity(key); got != 7 {
		t.Fatalf("expected qty 7 got %d", got)
	}
	if data.TotalSYP != 21000 {
		t.Fatalf("expected total 21000 got %d", data.TotalSYP)
	}
	if row, _ := v.Cart().Row(key); row.Note != "keep me" {
		t.Fatalf("quantity updates must not touch the note, got %q", row.Note)
	}
}

func TestCartUpdateQtyRejectsMalformedKey(t *testing.T) {
	handler := CartUpdateQty(stubCatalog{}, cartTestConfig(), nil)
	v := session.NewVisit()

	resp, _ := postJSON(t, handler, "/api/v1/cart/items/update", `{"key":"x:nope","qty":1}`, v)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartRemoveItem(t *testing.T) {
	productID := uuid.New()
	key := cartpkg.ProductKey(productID)
	handler := CartRemoveItem(stubCatalog{}, nil)

	v := session.NewVisit()
	v.AddItem(key, 2, "")

	body := fmt.Sprintf(`{"key":%q}`, key.String())
	resp, _ := postJSON(t, handler, "/api/v1/cart/items/remove", body, v)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !v.Cart().IsEmpty() {
		t.Fatalf("expected empty cart after remove")
	}
}

func TestCartClearResetsSubmittedFlag(t *testing.T) {
	handler := CartClear(stubCatalog{}, nil)

	v := session.NewVisit()
	v.AddItem(cartpkg.ProductKey(uuid.New()), 1, "")
	v.MarkSubmitted()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/clear", nil)
	req = req.WithContext(middleware.WithVisit(req.Context(), "s1", v))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !v.Cart().IsEmpty() || v.HasSubmittedOrder() {
		t.Fatalf("clear should empty the cart and drop the submitted flag")
	}
}

func TestCartSetTable(t *testing.T) {
	handler := CartSetTable(stubCatalog{}, nil)
	v := session.NewVisit()

	resp, data := postJSON(t, handler, "/api/v1/cart/table", `{"table_no":" T7 "}`, v)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if v.TableNo() != "T7" {
		t.Fatalf("expected table T7 got %q", v.TableNo())
	}
	if data.TableNo != "T7" {
		t.Fatalf("response should echo the table, got %q", data.TableNo)
	}
}
