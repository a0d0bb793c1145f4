package handlers

import (
	"net/http"

	"felix/internal/config"
	"felix/internal/db"
	"felix/internal/middleware"
	"felix/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const (
	roleEntityOwner = "entity_owner"
	roleAdmin       = "admin"
)

type Handler struct {
	txRunner  db.TxRunner
	cfg       config.Config
	users     UserStore
	services  ServiceStore
	purchases PurchaseStore
	audit     AuditStore
	wallet    WalletService
	exchange  ExchangeService
	purchase  PurchaseService
	issuer    IssuerService
	hub       *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, servicesStore ServiceStore, purchases PurchaseStore, audit AuditStore, wallet WalletService, exchange ExchangeService, purchase PurchaseService, issuer IssuerService, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:  txRunner,
		cfg:       cfg,
		users:     users,
		services:  servicesStore,
		purchases: purchases,
		audit:     audit,
		wallet:    wallet,
		exchange:  exchange,
		purchase:  purchase,
		issuer:    issuer,
		hub:       hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	auth := middleware.Auth(h.cfg.JWTSecret)

	router.Route("/user", func(r chi.Router) {
		r.Use(auth)
		r.Post("/sync", h.SyncUser)
		r.Get("/me", h.Me)
	})

	router.Route("/services", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", h.ListServices)
		r.With(middleware.RequireRole(roleEntityOwner)).Post("/", h.CreateService)
		r.With(middleware.RequireRole(roleEntityOwner)).Put("/{id}", h.UpdateService)
		r.With(middleware.RequireRole(roleEntityOwner)).Delete("/{id}", h.DeleteService)
		r.Post("/{id}/buy", h.BuyService)
	})
	router.With(auth).Get("/purchases/me", h.MyPurchases)

	router.Route("/wallet", func(r chi.Router) {
		r.Use(auth)
		r.Post("/", h.CreateWallet)
		r.Get("/me", h.MyWallet)
		r.Get("/balances", h.Balances)
		r.Post("/trust", h.EstablishTrustline)
		r.Post("/send", h.SendAsset)
		r.Get("/transactions", h.Transactions)
	})

	router.Route("/dex", func(r chi.Router) {
		r.Use(auth)
		r.Post("/offers", h.CreateOffer)
		r.Delete("/offers/{id}", h.CancelOffer)
		r.Get("/offers/my", h.MyOffers)
		r.Get("/orderbook", h.OrderBook)
	})

	router.With(auth, middleware.RequireRole(roleAdmin)).Post("/asset/issue", h.IssueAsset)
	router.With(auth, middleware.RequireRole(roleAdmin)).Get("/admin/audit", h.ListAuditLogs)

	router.Get("/ws/activity", h.WSActivity)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
