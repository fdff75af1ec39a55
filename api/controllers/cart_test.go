package controllers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sathwikmerugu45/E-Commerce-Website/internal/cart"
	"github.com/sathwikmerugu45/E-Commerce-Website/internal/catalog"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/db/models"
	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/pricing"
)

func newCartFixture(t *testing.T, stock int) (*cart.Registry, models.Product) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range []string{
		`CREATE TABLE products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC NOT NULL,
			image_url TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			stock INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE cart_items (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			product_id TEXT NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			created_at DATETIME,
			updated_at DATETIME,
			CONSTRAINT cart_items_user_product_key UNIQUE (user_id, product_id)
		)`,
	} {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	product := models.Product{ID: uuid.New(), Name: "Desk Lamp", Price: decimal.RequireFromString("12.50"), Category: "Lighting", Stock: stock}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	registry, err := cart.NewRegistry(cart.RegistryParams{
		Repo:     cart.NewRepository(conn),
		Products: catalog.NewRepository(conn),
		Policy:   pricing.List,
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return registry, product
}

func withItemParam(req *http.Request, itemID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("itemId", itemID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCartLifecycle(t *testing.T) {
	registry, product := newCartFixture(t, 3)
	sess := testSession()

	body := fmt.Sprintf(`{"product_id":%q,"quantity":2}`, product.ID)
	resp := httptest.NewRecorder()
	CartAddItem(registry, nil).ServeHTTP(resp, authed(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), sess))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var view cart.View
	decodeData(t, resp, &view)
	if view.TotalItems != 2 || !view.TotalPrice.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected view after add: %+v", view)
	}
	itemID := view.Items[0].ID.String()

	resp = httptest.NewRecorder()
	req := withItemParam(httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+itemID, strings.NewReader(`{"quantity":10}`)), itemID)
	CartUpdateItem(registry, nil).ServeHTTP(resp, authed(req, sess))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	decodeData(t, resp, &view)
	if view.TotalItems != 3 {
		t.Fatalf("expected quantity clamped to stock, got %d", view.TotalItems)
	}

	resp = httptest.NewRecorder()
	req = withItemParam(httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/"+itemID, nil), itemID)
	CartRemoveItem(registry, nil).ServeHTTP(resp, authed(req, sess))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	CartGet(registry, nil).ServeHTTP(resp, authed(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), sess))
	decodeData(t, resp, &view)
	if len(view.Items) != 0 || view.TotalItems != 0 {
		t.Fatalf("expected empty cart, got %+v", view)
	}
}

func TestCartRequiresSession(t *testing.T) {
	registry, _ := newCartFixture(t, 1)
	resp := httptest.NewRecorder()
	CartGet(registry, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddItemErrors(t *testing.T) {
	registry, product := newCartFixture(t, 0)
	sess := testSession()

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{name: "out of stock", body: fmt.Sprintf(`{"product_id":%q,"quantity":1}`, product.ID), status: http.StatusBadRequest},
		{name: "unknown product", body: fmt.Sprintf(`{"product_id":%q,"quantity":1}`, uuid.New()), status: http.StatusNotFound},
		{name: "zero quantity", body: fmt.Sprintf(`{"product_id":%q,"quantity":0}`, product.ID), status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(tc.body)), sess)
			CartAddItem(registry, nil).ServeHTTP(resp, req)
			if resp.Code != tc.status {
				t.Fatalf("expected %d got %d: %s", tc.status, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestCartUpdateItemRequiresQuantity(t *testing.T) {
	registry, product := newCartFixture(t, 3)
	sess := testSession()
	store, err := registry.Get(context.Background(), sess)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if err := store.AddToCart(context.Background(), product.ID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	itemID := store.Items()[0].ID.String()

	resp := httptest.NewRecorder()
	req := withItemParam(httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+itemID, strings.NewReader(`{}`)), itemID)
	CartUpdateItem(registry, nil).ServeHTTP(resp, authed(req, sess))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
	if got := store.TotalItems(); got != 2 {
		t.Fatalf("line must survive a body without quantity, got %d items", got)
	}

	resp = httptest.NewRecorder()
	req = withItemParam(httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/"+itemID, strings.NewReader(`{"quantity":0}`)), itemID)
	CartUpdateItem(registry, nil).ServeHTTP(resp, authed(req, sess))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var view cart.View
	decodeData(t, resp, &view)
	if len(view.Items) != 0 {
		t.Fatalf("explicit zero should remove the line, got %+v", view)
	}
}
