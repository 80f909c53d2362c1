package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bechdu/buyback-backend/api/responses"
	"github.com/bechdu/buyback-backend/api/validators"
	"github.com/bechdu/buyback-backend/internal/coinbands"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/logger"
)

// AdminCreateCoinBand adds a price band to the acceptance pricing table.
func AdminCreateCoinBand(svc coinbands.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req coinbands.BandInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		band, err := svc.Create(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, band)
	}
}

// AdminUpdateCoinBand replaces a band's range and reward.
func AdminUpdateCoinBand(svc coinbands.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "bandId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid band id"))
			return
		}
		var req coinbands.BandInput
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		band, err := svc.Update(r.Context(), id, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, band)
	}
}

// AdminDeleteCoinBand removes a band.
func AdminDeleteCoinBand(svc coinbands.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "bandId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid band id"))
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "coin band deleted"})
	}
}

// AdminListCoinBands returns the full pricing table.
func AdminListCoinBands(svc coinbands.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bands, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bands)
	}
}
