package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"felix/internal/services"

	"github.com/go-chi/chi/v5"
)

func buyRequestFor(serviceID string, body []byte) *http.Request {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, "/services/"+serviceID+"/buy", reader)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", serviceID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	return withTestPrincipal(req)
}

func TestBuyServiceSuccess(t *testing.T) {
	var gotService string
	var gotQuantity int
	handler := newTestHandler(testHandlerOptions{
		purchase: stubPurchaseService{
			purchaseFn: func(ctx context.Context, buyerUserID, serviceID string, quantity int) (services.PurchaseResult, error) {
				gotService = serviceID
				gotQuantity = quantity
				return services.PurchaseResult{
					PurchaseID:      "purchase-1",
					TransactionHash: "hash-1",
					TotalPrice:      "30.0000000",
					Currency:        "BLUEDOLLAR",
				}, nil
			},
		},
	})
	rr := httptest.NewRecorder()
	handler.BuyService(rr, buyRequestFor("svc-1", []byte(`{"quantity":3}`)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotService != "svc-1" || gotQuantity != 3 {
		t.Fatalf("unexpected call: %q %d", gotService, gotQuantity)
	}
	var result services.PurchaseResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if result.TotalPrice != "30.0000000" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestBuyServiceDefaultsQuantity(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{
		purchase: stubPurchaseService{
			purchaseFn: func(ctx context.Context, buyerUserID, serviceID string, quantity int) (services.PurchaseResult, error) {
				if quantity != 1 {
					t.Fatalf("expected default quantity 1, got %d", quantity)
				}
				return services.PurchaseResult{PurchaseID: "purchase-1"}, nil
			},
		},
	})
	rr := httptest.NewRecorder()
	handler.BuyService(rr, buyRequestFor("svc-1", nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
}

func TestBuyServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", services.ErrServiceNotFound, http.StatusNotFound},
		{"inactive", services.ErrServiceInactive, http.StatusBadRequest},
		{"self purchase", services.ErrSelfPurchase, http.StatusBadRequest},
		{"no buyer wallet", services.ErrBuyerWalletMissing, http.StatusBadRequest},
		{"no seller wallet", services.ErrSellerWalletMissing, http.StatusBadRequest},
		{"bad quantity", services.ErrInvalidQuantity, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestHandler(testHandlerOptions{
				purchase: stubPurchaseService{
					purchaseFn: func(ctx context.Context, buyerUserID, serviceID string, quantity int) (services.PurchaseResult, error) {
						return services.PurchaseResult{}, tc.err
					},
				},
			})
			rr := httptest.NewRecorder()
			handler.BuyService(rr, buyRequestFor("svc-1", []byte(`{"quantity":1}`)))
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
		})
	}
}

func TestBuyServiceNotRecordedKeepsHash(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{
		purchase: stubPurchaseService{
			purchaseFn: func(ctx context.Context, buyerUserID, serviceID string, quantity int) (services.PurchaseResult, error) {
				return services.PurchaseResult{}, &services.NotRecordedError{TransactionHash: "hash-9", Err: context.DeadlineExceeded}
			},
		},
	})
	rr := httptest.NewRecorder()
	handler.BuyService(rr, buyRequestFor("svc-1", []byte(`{"quantity":1}`)))
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "hash-9") {
		t.Fatalf("response must carry the transaction hash: %s", rr.Body.String())
	}
}

func TestMyPurchases(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{})
	req := withTestPrincipal(httptest.NewRequest(http.MethodGet, "/purchases/me", nil))
	rr := httptest.NewRecorder()
	handler.MyPurchases(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
