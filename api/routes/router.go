package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bechdu/buyback-backend/api/controllers"
	"github.com/bechdu/buyback-backend/api/middleware"
	internalauth "github.com/bechdu/buyback-backend/internal/auth"
	"github.com/bechdu/buyback-backend/internal/coinbands"
	"github.com/bechdu/buyback-backend/internal/directory"
	"github.com/bechdu/buyback-backend/internal/dispatch"
	"github.com/bechdu/buyback-backend/internal/invoices"
	"github.com/bechdu/buyback-backend/internal/ledger"
	"github.com/bechdu/buyback-backend/internal/orders"
	"github.com/bechdu/buyback-backend/internal/payments"
	"github.com/bechdu/buyback-backend/internal/refunds"
	"github.com/bechdu/buyback-backend/pkg/config"
	"github.com/bechdu/buyback-backend/pkg/enums"
	"github.com/bechdu/buyback-backend/pkg/logger"
	"github.com/bechdu/buyback-backend/pkg/redis"
)

// Services groups everything the router wires into handlers.
type Services struct {
	Auth      internalauth.Service
	Directory directory.Service
	Orders    orders.Service
	Dispatch  dispatch.Service
	Ledger    ledger.Service
	CoinBands coinbands.Service
	Refunds   refunds.Service
	Payments  payments.Service
	Invoices  invoices.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	otpLimiter := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		otpPolicy := middleware.NewOTPRateLimitPolicy(
			"send",
			cfg.OTP.SendWindow,
			cfg.OTP.SendIPLimit,
			cfg.OTP.SendLimit,
		)
		otpLimiter = middleware.OTPRateLimit(otpPolicy, redisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	// Storefront endpoints, no token required.
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", controllers.CreateOrder(svcs.Orders, logg))
		r.Get("/customer/{phone}", controllers.CustomerOrders(svcs.Orders, logg))
		r.Get("/{orderId}", controllers.GetOrder(svcs.Orders, logg))
	})

	// Partner and pickup person login share one flow; the account type is
	// resolved by phone.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(otpLimiter).Post("/otp", controllers.SendOTP(svcs.Auth, logg))
		r.Post("/login", controllers.Login(svcs.Auth, logg))
		r.With(otpLimiter).Post("/pickup/otp", controllers.SendOTP(svcs.Auth, logg))
		r.Post("/pickup/login", controllers.Login(svcs.Auth, logg))
	})

	r.Route("/api/partner/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.RolePartner))

		r.Get("/profile", controllers.PartnerProfile(svcs.Directory, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/eligible", controllers.PartnerEligibleOrders(svcs.Directory, svcs.Dispatch, logg))
			r.Get("/assigned", controllers.PartnerAssignedOrders(svcs.Directory, svcs.Dispatch, logg))
			r.Post("/{orderId}/accept", controllers.PartnerAcceptOrder(svcs.Directory, svcs.Orders, logg))
			r.Post("/{orderId}/delegate", controllers.PartnerDelegateOrder(svcs.Directory, svcs.Orders, logg))
			r.Post("/{orderId}/undelegate", controllers.PartnerUndelegateOrder(svcs.Directory, svcs.Orders, logg))
			r.Post("/{orderId}/requote", controllers.PartnerRequoteOrder(svcs.Directory, svcs.Orders, logg))
			r.Post("/{orderId}/reschedule", controllers.PartnerRescheduleOrder(svcs.Directory, svcs.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.PartnerCancelOrder(svcs.Directory, svcs.Orders, logg))
			r.Post("/{orderId}/complete", controllers.PartnerCompleteOrder(svcs.Directory, svcs.Orders, logg))
		})

		r.Route("/pickup-persons", func(r chi.Router) {
			r.Get("/", controllers.PartnerListPickupPersons(svcs.Directory, logg))
			r.Post("/", controllers.PartnerAddPickupPerson(svcs.Directory, logg))
			r.Patch("/{phone}/status", controllers.PartnerSetPickupStatus(svcs.Directory, logg))
			r.Delete("/{phone}", controllers.PartnerRemovePickupPerson(svcs.Directory, logg))
		})

		r.Get("/coins", controllers.PartnerBalance(svcs.Directory, svcs.Ledger, logg))
		r.Get("/transactions", controllers.PartnerTransactions(svcs.Directory, svcs.Ledger, logg))
		r.Get("/transactions/{transactionId}/invoice", controllers.TransactionInvoice(svcs.Invoices, logg))

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", controllers.PartnerSubmitPayment(svcs.Directory, svcs.Payments, logg))
			r.Get("/", controllers.PartnerListPayments(svcs.Directory, svcs.Payments, logg))
		})
	})

	r.Route("/api/pickup/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.RolePickUp))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.PickupDelegatedOrders(svcs.Directory, svcs.Dispatch, logg))
			r.Post("/{orderId}/requote", controllers.PickupRequoteOrder(svcs.Directory, svcs.Orders, logg))
			r.Post("/{orderId}/reschedule", controllers.PickupRescheduleOrder(svcs.Directory, svcs.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.PickupCancelOrder(svcs.Directory, svcs.Orders, logg))
			r.Post("/{orderId}/complete", controllers.PickupCompleteOrder(svcs.Directory, svcs.Orders, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.RoleAdmin))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.GetOrder(svcs.Orders, logg))
			r.Get("/{orderId}/partners", controllers.AdminPartnersForOrder(svcs.Dispatch, logg))
			r.Post("/{orderId}/assign", controllers.AdminAssignOrder(svcs.Orders, svcs.Directory, logg))
			r.Post("/{orderId}/unassign", controllers.AdminUnassignOrder(svcs.Orders, logg))
			r.Post("/{orderId}/reschedule", controllers.AdminRescheduleOrder(svcs.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.AdminCancelOrder(svcs.Orders, logg))
			r.Post("/{orderId}/complete", controllers.AdminCompleteOrder(svcs.Orders, logg))
		})

		r.Route("/partners", func(r chi.Router) {
			r.Get("/", controllers.AdminListPartners(svcs.Directory, logg))
			r.Post("/", controllers.AdminCreatePartner(svcs.Directory, logg))
			r.Get("/{phone}", controllers.AdminGetPartner(svcs.Directory, logg))
			r.Put("/{phone}", controllers.AdminUpdatePartner(svcs.Directory, logg))
			r.Delete("/{phone}", controllers.AdminDeletePartner(svcs.Directory, logg))
			r.Get("/{phone}/transactions", controllers.AdminPartnerTransactions(svcs.Ledger, logg))
		})

		r.Route("/coin-bands", func(r chi.Router) {
			r.Get("/", controllers.AdminListCoinBands(svcs.CoinBands, logg))
			r.Post("/", controllers.AdminCreateCoinBand(svcs.CoinBands, logg))
			r.Put("/{bandId}", controllers.AdminUpdateCoinBand(svcs.CoinBands, logg))
			r.Delete("/{bandId}", controllers.AdminDeleteCoinBand(svcs.CoinBands, logg))
		})

		r.Route("/coins", func(r chi.Router) {
			r.Post("/credit", controllers.AdminCreditCoins(svcs.Ledger, logg))
			r.Post("/debit", controllers.AdminDebitCoins(svcs.Ledger, logg))
		})

		r.Get("/transactions/{transactionId}/invoice", controllers.TransactionInvoice(svcs.Invoices, logg))
		r.Get("/refunds", controllers.AdminListRefunds(svcs.Refunds, logg))

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", controllers.AdminListPayments(svcs.Payments, logg))
			r.Post("/{paymentId}/approve", controllers.AdminApprovePayment(svcs.Payments, logg))
			r.Post("/{paymentId}/reject", controllers.AdminRejectPayment(svcs.Payments, logg))
		})
	})

	return r
}
