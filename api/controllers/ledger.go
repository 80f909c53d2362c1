package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bechdu/buyback-backend/api/middleware"
	"github.com/bechdu/buyback-backend/api/responses"
	"github.com/bechdu/buyback-backend/api/validators"
	"github.com/bechdu/buyback-backend/internal/invoices"
	"github.com/bechdu/buyback-backend/internal/ledger"
	"github.com/bechdu/buyback-backend/internal/refunds"
	"github.com/bechdu/buyback-backend/pkg/enums"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/logger"
)

type ledgerEntryRequest struct {
	PartnerPhone string `json:"partnerPhone" validate:"required,len=10,numeric"`
	Coins        int64  `json:"coins" validate:"required,min=1"`
	Message      string `json:"message" validate:"required"`
	Image        string `json:"image"`
}

// AdminCreditCoins adds coins to a partner balance with an audit message.
func AdminCreditCoins(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ledgerEntryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Credit(r.Context(), nil, ledger.EntryInput{
			PartnerPhone: req.PartnerPhone,
			Coins:        req.Coins,
			Message:      req.Message,
			Image:        req.Image,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// AdminDebitCoins removes coins from a partner balance with an audit message.
func AdminDebitCoins(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ledgerEntryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Debit(r.Context(), nil, ledger.EntryInput{
			PartnerPhone: req.PartnerPhone,
			Coins:        req.Coins,
			Message:      req.Message,
			Image:        req.Image,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

func transactionsFilter(r *http.Request, phone string) (ledger.ListTransactionsInput, error) {
	page, err := validators.ParsePage(r)
	if err != nil {
		return ledger.ListTransactionsInput{}, err
	}

	input := ledger.ListTransactionsInput{PartnerPhone: phone, Page: page}
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		kind, err := enums.ParseTransactionType(raw)
		if err != nil {
			return ledger.ListTransactionsInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type")
		}
		input.Kind = &kind
	}
	return input, nil
}

// AdminPartnerTransactions lists any partner's ledger entries.
func AdminPartnerTransactions(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := strings.TrimSpace(chi.URLParam(r, "phone"))
		input, err := transactionsFilter(r, phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, total, err := svc.ListTransactions(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, entries, total)
	}
}

// PartnerBalance returns the calling partner's coin balance.
func PartnerBalance(auth partnerAuthorizer, svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partner, err := authorizedPartner(r, auth)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), partner.Phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"coins": balance})
	}
}

// PartnerTransactions lists the calling partner's ledger entries, optionally
// filtered to credits or debits.
func PartnerTransactions(auth partnerAuthorizer, svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partner, err := authorizedPartner(r, auth)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := transactionsFilter(r, partner.Phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, total, err := svc.ListTransactions(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, entries, total)
	}
}

// TransactionInvoice streams the PDF invoice for one ledger entry. Partners
// can only reach their own entries; admins pass through unrestricted.
func TransactionInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "transactionId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction id"))
			return
		}

		requesterPhone := ""
		if middleware.RoleFromContext(r.Context()) != string(enums.RoleAdmin) {
			requesterPhone = middleware.PhoneFromContext(r.Context())
		}

		doc, err := svc.RenderTransaction(r.Context(), id, requesterPhone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePDF(w, doc.FileName, doc.PDF)
	}
}

// AdminListRefunds lists pending manual refunds newest-first.
func AdminListRefunds(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, total, err := svc.List(r.Context(), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, entries, total)
	}
}
