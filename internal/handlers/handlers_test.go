package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront-functions/internal/database"
	"storefront-functions/internal/repositories/sqlite"
	"storefront-functions/internal/services"
	"storefront-functions/pkg/lambda"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// transport sends one request and returns the status and raw body
type transport func(method, target string, headers map[string]string, body string) (int, []byte)

func setupRouterConfig(t *testing.T) (*RouterConfig, func()) {
	tempDir, err := os.MkdirTemp("", "handlers_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	db, err := database.InitializeDatabase(filepath.Join(tempDir, "test.db"), "", true, logger)
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to initialize database: %v", err)
	}

	svc, err := services.NewServiceContainer(sqlite.NewRepositoryContainer(db, logger), &services.ServiceConfig{Logger: logger})
	if err != nil {
		t.Fatalf("NewServiceContainer() failed: %v", err)
	}

	config := &RouterConfig{
		ProductService: svc.ProductService,
		UserService:    svc.UserService,
		CartService:    svc.CartService,
		OrderService:   svc.OrderService,
		HealthCheck:    db.PingContext,
		Logger:         logger,
	}

	return config, func() {
		db.Close()
		os.RemoveAll(tempDir)
	}
}

func ginTransport(config *RouterConfig) transport {
	engine := gin.New()
	SetupMiddleware(engine, config)
	SetupRoutes(engine, config)
	router := TrimTrailingSlash(engine)

	return func(method, target string, headers map[string]string, body string) (int, []byte) {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code, w.Body.Bytes()
	}
}

func lambdaTransport(config *RouterConfig) transport {
	router := NewLambdaRouter(config, LambdaRoutes(config))

	return func(method, target string, headers map[string]string, body string) (int, []byte) {
		u, err := url.Parse(target)
		if err != nil {
			panic(err)
		}
		query := map[string]string{}
		for k, v := range u.Query() {
			query[k] = v[0]
		}

		resp, err := router.Handle(context.Background(), &lambda.Request{
			Method:      method,
			Path:        u.Path,
			Headers:     headers,
			QueryParams: query,
			Body:        []byte(body),
		})
		if err != nil {
			panic(err)
		}
		return resp.StatusCode, resp.Body
	}
}

var transports = map[string]func(*RouterConfig) transport{
	"gin":    ginTransport,
	"lambda": lambdaTransport,
}

func decode(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("Failed to decode %q: %v", body, err)
	}
	return out
}

func responseField(t *testing.T, body []byte, field string) interface{} {
	t.Helper()
	resp, ok := decode(t, body)["response"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected object response in %s", body)
	}
	return resp[field]
}

func TestEnvelope_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		envelope Envelope
		want     string
		isError  bool
	}{
		{name: "ok", envelope: OK(SuccessResponse{Success: true}), want: `{"response":{"success":true}}`},
		{name: "ok nil", envelope: OK(nil), want: `{"response":null}`},
		{name: "code", envelope: ErrorCode("SQLITE_2067"), want: `{"code":"SQLITE_2067"}`, isError: true},
		{name: "message", envelope: ErrorMessage("No User"), want: `{"message":"No User"}`, isError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.envelope)
			if err != nil {
				t.Fatalf("Marshal() failed: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
			if tt.envelope.IsError() != tt.isError {
				t.Errorf("IsError() = %v, want %v", tt.envelope.IsError(), tt.isError)
			}
		})
	}
}

func TestErrorMapping(t *testing.T) {
	alice := map[string]string{"uid": "alice"}

	tests := []struct {
		name       string
		method     string
		target     string
		headers    map[string]string
		body       string
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{name: "unknown path", method: http.MethodGet, target: "/nowhere", wantStatus: http.StatusNotFound, wantKey: "message", wantValue: "Not found"},
		{name: "wrong verb", method: http.MethodPatch, target: "/products", wantStatus: http.StatusForbidden, wantKey: "message", wantValue: "Invalid method"},
		{name: "cart without uid", method: http.MethodGet, target: "/carts", wantStatus: http.StatusForbidden, wantKey: "message", wantValue: "No User"},
		{name: "order without uid", method: http.MethodPut, target: "/orders/x", wantStatus: http.StatusForbidden, wantKey: "message", wantValue: "No User"},
		{name: "malformed product body", method: http.MethodPost, target: "/products", body: "{", wantStatus: http.StatusBadRequest, wantKey: "message"},
		{name: "invalid product", method: http.MethodPost, target: "/products", body: `{"name":"","price":1}`, wantStatus: http.StatusBadRequest, wantKey: "message"},
		{name: "malformed user body", method: http.MethodPost, target: "/user", body: "[]", wantStatus: http.StatusBadRequest, wantKey: "message"},
		{name: "malformed cart body", method: http.MethodPost, target: "/carts", headers: alice, body: "{", wantStatus: http.StatusInternalServerError, wantKey: "message"},
		{name: "cart body without product", method: http.MethodPost, target: "/carts", headers: alice, body: "{}", wantStatus: http.StatusInternalServerError, wantKey: "message"},
		{name: "cart unknown product", method: http.MethodPost, target: "/carts", headers: alice, body: `{"product":{"id":"missing"}}`, wantStatus: http.StatusNotFound, wantKey: "message"},
		{name: "order without lines", method: http.MethodPost, target: "/orders", headers: alice, body: `{"orderDetails":[]}`, wantStatus: http.StatusInternalServerError, wantKey: "message"},
		{name: "order unknown product", method: http.MethodPost, target: "/orders", headers: alice, body: `{"orderDetails":[{"id":"missing","quantity":1}]}`, wantStatus: http.StatusInternalServerError, wantKey: "code"},
		{name: "missing order", method: http.MethodGet, target: "/orders/missing", headers: alice, wantStatus: http.StatusNotFound, wantKey: "message"},
		{name: "missing product", method: http.MethodGet, target: "/products/missing", wantStatus: http.StatusNotFound, wantKey: "message"},
		{name: "missing user", method: http.MethodGet, target: "/user/missing", wantStatus: http.StatusNotFound, wantKey: "message"},
		{name: "non-numeric page", method: http.MethodGet, target: "/products?page=abc", wantStatus: http.StatusBadRequest, wantKey: "message"},
		{name: "zero page size", method: http.MethodGet, target: "/products?pageSize=0", wantStatus: http.StatusBadRequest, wantKey: "message"},
	}

	for name, newTransport := range transports {
		t.Run(name, func(t *testing.T) {
			config, cleanup := setupRouterConfig(t)
			defer cleanup()
			send := newTransport(config)

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					status, body := send(tt.method, tt.target, tt.headers, tt.body)
					if status != tt.wantStatus {
						t.Fatalf("Expected status %d, got %d (%s)", tt.wantStatus, status, body)
					}

					got, ok := decode(t, body)[tt.wantKey].(string)
					if !ok || got == "" {
						t.Fatalf("Expected %q in body, got %s", tt.wantKey, body)
					}
					if tt.wantValue != "" && got != tt.wantValue {
						t.Errorf("Expected %s %q, got %q", tt.wantKey, tt.wantValue, got)
					}
				})
			}
		})
	}
}

func TestTrailingSlash(t *testing.T) {
	alice := map[string]string{"uid": "alice"}

	for name, newTransport := range transports {
		t.Run(name, func(t *testing.T) {
			config, cleanup := setupRouterConfig(t)
			defer cleanup()
			send := newTransport(config)

			for _, target := range []string{"/carts/", "/orders/", "/products/", "/user/"} {
				status, body := send(http.MethodGet, target, alice, "")
				if status != http.StatusOK {
					t.Fatalf("GET %s: expected 200, got %d (%s)", target, status, body)
				}
				if _, ok := decode(t, body)["response"].([]interface{}); !ok {
					t.Errorf("GET %s: expected list response, got %s", target, body)
				}
			}

			status, _ := send(http.MethodGet, "/products/missing/", nil, "")
			if status != http.StatusNotFound {
				t.Errorf("Expected 404 for unknown product with trailing slash, got %d", status)
			}
		})
	}
}

func TestPreflight(t *testing.T) {
	for name, newTransport := range transports {
		t.Run(name, func(t *testing.T) {
			config, cleanup := setupRouterConfig(t)
			defer cleanup()
			send := newTransport(config)

			for _, target := range []string{"/carts", "/orders/abc", "/products"} {
				status, body := send(http.MethodOptions, target, nil, "")
				if status != http.StatusOK || string(body) != "ok" {
					t.Errorf("OPTIONS %s: expected 200 ok, got %d %q", target, status, body)
				}
			}
		})
	}
}

func TestStorefrontFlow(t *testing.T) {
	for name, newTransport := range transports {
		t.Run(name, func(t *testing.T) {
			config, cleanup := setupRouterConfig(t)
			defer cleanup()
			send := newTransport(config)

			alice := map[string]string{"uid": "alice"}
			bob := map[string]string{"uid": "bob"}

			// Catalogue
			var productIDs []string
			for _, productName := range []string{"Bread", "Cake", "Pie"} {
				status, body := send(http.MethodPost, "/products", nil, `{"name":"`+productName+`","price":4.5}`)
				if status != http.StatusOK {
					t.Fatalf("POST /products: %d %s", status, body)
				}
				productIDs = append(productIDs, responseField(t, body, "id").(string))
			}

			status, body := send(http.MethodGet, "/products", nil, "")
			if status != http.StatusOK {
				t.Fatalf("GET /products: %d %s", status, body)
			}
			if list, _ := decode(t, body)["response"].([]interface{}); len(list) != 3 {
				t.Errorf("Expected 3 products, got %s", body)
			}

			status, body = send(http.MethodGet, "/products?page=1&pageSize=2", nil, "")
			if status != http.StatusOK {
				t.Fatalf("GET /products page: %d %s", status, body)
			}
			if got := responseField(t, body, "totalPages"); got != float64(2) {
				t.Errorf("Expected 2 pages, got %v", got)
			}
			if content, _ := responseField(t, body, "content").([]interface{}); len(content) != 1 {
				t.Errorf("Expected 1 row on the last page, got %s", body)
			}

			status, body = send(http.MethodGet, "/products/"+productIDs[0], nil, "")
			if status != http.StatusOK || responseField(t, body, "name") != "Bread" {
				t.Errorf("GET /products/:id: %d %s", status, body)
			}

			// Users
			status, body = send(http.MethodPost, "/user", nil, `{"name":"Alice"}`)
			if status != http.StatusOK {
				t.Fatalf("POST /user: %d %s", status, body)
			}
			userID := responseField(t, body, "id").(string)
			if status, body = send(http.MethodGet, "/user/"+userID, nil, ""); status != http.StatusOK {
				t.Errorf("GET /user/:id: %d %s", status, body)
			}

			// Cart
			add := `{"product":{"id":"` + productIDs[0] + `"}}`
			status, body = send(http.MethodPost, "/carts", alice, add)
			if status != http.StatusOK {
				t.Fatalf("POST /carts: %d %s", status, body)
			}
			cartID := responseField(t, body, "id").(string)
			if got := responseField(t, body, "productId"); got != productIDs[0] {
				t.Errorf("Expected productId %s, got %v", productIDs[0], got)
			}

			status, body = send(http.MethodPost, "/carts", alice, add)
			if status != http.StatusOK || responseField(t, body, "id") != cartID {
				t.Errorf("Expected idempotent add to return %s, got %d %s", cartID, status, body)
			}

			send(http.MethodPost, "/carts", alice, `{"product":{"id":"`+productIDs[1]+`"}}`)
			send(http.MethodPost, "/carts", bob, add)

			status, body = send(http.MethodGet, "/carts", alice, "")
			if list, _ := decode(t, body)["response"].([]interface{}); status != http.StatusOK || len(list) != 2 {
				t.Errorf("Expected 2 cart rows, got %d %s", status, body)
			}

			status, body = send(http.MethodDelete, "/carts/"+cartID, alice, "")
			if status != http.StatusOK || responseField(t, body, "success") != true {
				t.Errorf("DELETE /carts/:id: %d %s", status, body)
			}

			status, body = send(http.MethodPut, "/carts", alice, `{"ids":["a","b"]}`)
			if status != http.StatusOK || responseField(t, body, "success") != true {
				t.Errorf("PUT /carts: %d %s", status, body)
			}

			// Orders
			lines := `{"orderDetails":[{"id":"` + productIDs[0] + `","quantity":1},{"id":"` + productIDs[2] + `","quantity":2}]}`
			status, body = send(http.MethodPost, "/orders", alice, lines)
			if status != http.StatusOK {
				t.Fatalf("POST /orders: %d %s", status, body)
			}
			orderID := responseField(t, body, "id").(string)

			status, body = send(http.MethodGet, "/orders/"+orderID, alice, "")
			if status != http.StatusOK {
				t.Fatalf("GET /orders/:id: %d %s", status, body)
			}
			if details, _ := responseField(t, body, "orderDetails").([]interface{}); len(details) != 2 {
				t.Errorf("Expected 2 order lines, got %s", body)
			}
			if paid := responseField(t, body, "isPaid"); paid != false {
				t.Errorf("Expected unpaid order, got %v", paid)
			}

			if status, _ = send(http.MethodGet, "/orders/"+orderID, bob, ""); status != http.StatusNotFound {
				t.Errorf("Expected another user's order to be hidden, got %d", status)
			}

			status, body = send(http.MethodPut, "/orders/"+orderID, alice, "")
			if status != http.StatusOK || responseField(t, body, "success") != true {
				t.Fatalf("PUT /orders/:id: %d %s", status, body)
			}

			status, body = send(http.MethodGet, "/orders", alice, "")
			list, _ := decode(t, body)["response"].([]interface{})
			if status != http.StatusOK || len(list) != 1 || list[0].(map[string]interface{})["isPaid"] != true {
				t.Errorf("Expected one paid order, got %d %s", status, body)
			}

			_, body = send(http.MethodGet, "/carts", alice, "")
			if cart, _ := decode(t, body)["response"].([]interface{}); len(cart) != 0 {
				t.Errorf("Expected alice's cart to be emptied, got %s", body)
			}
			_, body = send(http.MethodGet, "/carts", bob, "")
			if cart, _ := decode(t, body)["response"].([]interface{}); len(cart) != 1 {
				t.Errorf("Expected bob's cart untouched, got %s", body)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	config, cleanup := setupRouterConfig(t)
	defer cleanup()
	send := ginTransport(config)

	status, body := send(http.MethodGet, "/health", nil, "")
	if status != http.StatusOK || decode(t, body)["status"] != "healthy" {
		t.Errorf("Expected healthy, got %d %s", status, body)
	}
}

func TestLambdaRouter_RoutePrefix(t *testing.T) {
	config, cleanup := setupRouterConfig(t)
	defer cleanup()
	config.RoutePrefix = "/api/v1"
	send := lambdaTransport(config)

	for _, target := range []string{"/api/v1/products", "/functions/v1/products", "/products"} {
		if status, body := send(http.MethodGet, target, nil, ""); status != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d %s", target, status, body)
		}
	}
}
