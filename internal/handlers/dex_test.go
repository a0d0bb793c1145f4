package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"felix/internal/ledger"
	"felix/internal/services"

	"github.com/go-chi/chi/v5"
)

func TestCreateOfferForwardsRequest(t *testing.T) {
	var got services.OfferRequest
	handler := newTestHandler(testHandlerOptions{
		exchange: stubExchangeService{
			createFn: func(ctx context.Context, req services.OfferRequest) (services.OfferResult, error) {
				got = req
				return services.OfferResult{TransactionHash: "hash-1", Ledger: 7}, nil
			},
		},
	})
	body := []byte(`{"selling_code":"BLUEDOLLAR","buying_code":"XLM","amount":"100","price":"0.25"}`)
	req := withTestPrincipal(httptest.NewRequest(http.MethodPost, "/dex/offers", bytes.NewReader(body)))
	rr := httptest.NewRecorder()
	handler.CreateOffer(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.UserID != "user-1" || got.SellingCode != "BLUEDOLLAR" || got.Price != "0.25" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestCancelOfferParsesID(t *testing.T) {
	var got services.CancelOfferRequest
	handler := newTestHandler(testHandlerOptions{
		exchange: stubExchangeService{
			cancelFn: func(ctx context.Context, req services.CancelOfferRequest) (services.OfferResult, error) {
				got = req
				return services.OfferResult{TransactionHash: "hash-1"}, nil
			},
		},
	})
	body := []byte(`{"selling_code":"BLUEDOLLAR","buying_code":"XLM"}`)
	req := httptest.NewRequest(http.MethodDelete, "/dex/offers/42", bytes.NewReader(body))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", "42")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rr := httptest.NewRecorder()
	handler.CancelOffer(rr, withTestPrincipal(req))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.OfferID != 42 || got.SellingCode != "BLUEDOLLAR" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestCancelOfferRejectsBadID(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{})
	req := httptest.NewRequest(http.MethodDelete, "/dex/offers/zero", bytes.NewReader([]byte(`{}`)))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", "zero")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rr := httptest.NewRecorder()
	handler.CancelOffer(rr, withTestPrincipal(req))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestOrderBookPassesQuery(t *testing.T) {
	var gotSelling, gotBuying string
	handler := newTestHandler(testHandlerOptions{
		exchange: stubExchangeService{
			orderBookFn: func(ctx context.Context, sellingCode, sellingIssuer, buyingCode, buyingIssuer string) (ledger.OrderBook, error) {
				gotSelling, gotBuying = sellingCode, buyingCode
				return ledger.OrderBook{}, nil
			},
		},
	})
	req := withTestPrincipal(httptest.NewRequest(http.MethodGet, "/dex/orderbook?selling_code=BLUEDOLLAR&buying_code=XLM", nil))
	rr := httptest.NewRecorder()
	handler.OrderBook(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotSelling != "BLUEDOLLAR" || gotBuying != "XLM" {
		t.Fatalf("unexpected pair: %q %q", gotSelling, gotBuying)
	}
}
