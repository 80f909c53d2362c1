package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bechdu/buyback-backend/api/responses"
	"github.com/bechdu/buyback-backend/api/validators"
	"github.com/bechdu/buyback-backend/internal/directory"
	"github.com/bechdu/buyback-backend/pkg/enums"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/logger"
)

type addPickupPersonRequest struct {
	Phone string `json:"phone" validate:"required,len=10,numeric"`
	Name  string `json:"name" validate:"required"`
}

// PartnerAddPickupPerson registers a pickup person under the calling partner.
func PartnerAddPickupPerson(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partner, err := authorizedPartner(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req addPickupPersonRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		person, err := svc.AddPickupPerson(r.Context(), directory.AddPickupPersonInput{
			PartnerPhone: partner.Phone,
			Phone:        req.Phone,
			Name:         req.Name,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, person)
	}
}

// PartnerListPickupPersons lists the calling partner's pickup persons.
func PartnerListPickupPersons(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partner, err := authorizedPartner(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		persons, err := svc.ListPickupPersons(r.Context(), partner.Phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, persons)
	}
}

type pickupStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// PartnerSetPickupStatus blocks or unblocks one of the partner's pickup
// persons. Blocking ends the person's session at the next request.
func PartnerSetPickupStatus(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partner, err := authorizedPartner(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req pickupStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParsePickupPersonStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		phone := strings.TrimSpace(chi.URLParam(r, "phone"))
		if err := svc.SetPickupStatus(r.Context(), partner.Phone, phone, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "status updated"})
	}
}

// PartnerRemovePickupPerson deletes one of the partner's pickup persons.
func PartnerRemovePickupPerson(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partner, err := authorizedPartner(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		phone := strings.TrimSpace(chi.URLParam(r, "phone"))
		if phone == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "phone is required"))
			return
		}

		if err := svc.RemovePickupPerson(r.Context(), partner.Phone, phone); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "pickup person removed"})
	}
}
