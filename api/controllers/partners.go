package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bechdu/buyback-backend/api/responses"
	"github.com/bechdu/buyback-backend/api/validators"
	"github.com/bechdu/buyback-backend/internal/directory"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/logger"
)

// AdminCreatePartner registers a new partner.
func AdminCreatePartner(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req directory.CreatePartnerInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partner, err := svc.CreatePartner(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, partner)
	}
}

// AdminUpdatePartner changes partner details. Phone is immutable.
func AdminUpdatePartner(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := strings.TrimSpace(chi.URLParam(r, "phone"))
		var req directory.UpdatePartnerInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partner, err := svc.UpdatePartner(r.Context(), phone, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, partner)
	}
}

// AdminDeletePartner removes a partner and its pickup persons.
func AdminDeletePartner(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := strings.TrimSpace(chi.URLParam(r, "phone"))
		if phone == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "phone is required"))
			return
		}

		if err := svc.DeletePartner(r.Context(), phone); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "partner deleted"})
	}
}

// AdminGetPartner returns one partner by phone.
func AdminGetPartner(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := strings.TrimSpace(chi.URLParam(r, "phone"))
		if phone == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "phone is required"))
			return
		}

		partner, err := svc.GetPartner(r.Context(), phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, partner)
	}
}

// AdminListPartners returns the partner directory page by page.
func AdminListPartners(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if pincode := strings.TrimSpace(r.URL.Query().Get("pincode")); pincode != "" {
			partners, err := svc.PartnersForPincode(r.Context(), pincode)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WritePage(w, partners, int64(len(partners)))
			return
		}

		partners, total, err := svc.ListPartners(r.Context(), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, partners, total)
	}
}

// PartnerProfile returns the calling partner's own record.
func PartnerProfile(auth partnerAuthorizer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partner, err := authorizedPartner(r, auth)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, partner)
	}
}
