package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bechdu/buyback-backend/api/responses"
	"github.com/bechdu/buyback-backend/api/validators"
	"github.com/bechdu/buyback-backend/internal/payments"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/logger"
)

type submitPaymentRequest struct {
	Coins         int64  `json:"coins" validate:"required,min=1"`
	Price         int64  `json:"price" validate:"required,min=1"`
	GSTPercentage int64  `json:"gstPercentage" validate:"min=0,max=100"`
	Image         string `json:"image" validate:"required"`
}

// PartnerSubmitPayment records a bank-transfer proof for a coin top-up. The
// credit lands only after admin approval.
func PartnerSubmitPayment(auth partnerAuthorizer, svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partner, err := authorizedPartner(r, auth)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req submitPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Submit(r.Context(), payments.SubmitInput{
			PartnerPhone:  partner.Phone,
			PartnerName:   partner.Name,
			PartnerState:  partner.State,
			Image:         req.Image,
			Coins:         req.Coins,
			Price:         req.Price,
			GSTPercentage: req.GSTPercentage,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

// PartnerListPayments lists the calling partner's top-up submissions.
func PartnerListPayments(auth partnerAuthorizer, svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partner, err := authorizedPartner(r, auth)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, total, err := svc.List(r.Context(), partner.Phone, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, list, total)
	}
}

// AdminListPayments lists all top-up submissions, newest first.
func AdminListPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, total, err := svc.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("phone")), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, list, total)
	}
}

// AdminApprovePayment credits the partner's coins for a pending submission.
// A decided payment cannot be approved again.
func AdminApprovePayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "paymentId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment id"))
			return
		}

		payment, err := svc.Approve(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

// AdminRejectPayment marks a pending submission rejected without crediting.
func AdminRejectPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "paymentId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment id"))
			return
		}

		payment, err := svc.Reject(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}
