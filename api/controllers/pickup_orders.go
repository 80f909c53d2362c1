package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bechdu/buyback-backend/api/responses"
	"github.com/bechdu/buyback-backend/api/validators"
	internalorders "github.com/bechdu/buyback-backend/internal/orders"
	"github.com/bechdu/buyback-backend/pkg/enums"
	"github.com/bechdu/buyback-backend/pkg/logger"
)

// PickupDelegatedOrders lists the open orders delegated to the caller.
func PickupDelegatedOrders(auth pickupAuthorizer, queue orderQueueService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		person, err := authorizedPickup(r, auth)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, total, err := queue.DelegatedToPickup(r.Context(), person.Phone, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, orders, total)
	}
}

// PickupRequoteOrder changes the quote on a delegated order.
func PickupRequoteOrder(auth pickupAuthorizer, svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		person, err := authorizedPickup(r, auth)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req requoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Requote(r.Context(), internalorders.RequoteInput{
			OrderID:    strings.TrimSpace(chi.URLParam(r, "orderId")),
			NewPrice:   req.NewPrice,
			Options:    req.Options,
			ActorPhone: person.Phone,
			ActorRole:  enums.RolePickUp,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// PickupRescheduleOrder moves the pickup slot on a delegated order.
func PickupRescheduleOrder(auth pickupAuthorizer, svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		person, err := authorizedPickup(r, auth)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req rescheduleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Reschedule(r.Context(), internalorders.RescheduleInput{
			OrderID:    strings.TrimSpace(chi.URLParam(r, "orderId")),
			Date:       req.Date,
			Time:       req.Time,
			ActorPhone: person.Phone,
			ActorRole:  enums.RolePickUp,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// PickupCancelOrder cancels a delegated order with a reason.
func PickupCancelOrder(auth pickupAuthorizer, svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		person, err := authorizedPickup(r, auth)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Cancel(r.Context(), internalorders.CancelInput{
			OrderID:    strings.TrimSpace(chi.URLParam(r, "orderId")),
			Reason:     req.Reason,
			ActorPhone: person.Phone,
			ActorRole:  enums.RolePickUp,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// PickupCompleteOrder finalizes a delegated order with device evidence.
func PickupCompleteOrder(auth pickupAuthorizer, svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		person, err := authorizedPickup(r, auth)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req completeOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Complete(r.Context(), internalorders.CompleteInput{
			OrderID:      strings.TrimSpace(chi.URLParam(r, "orderId")),
			FinalPrice:   req.FinalPrice,
			IMEINumber:   req.IMEINumber,
			DeviceBill:   req.DeviceBill,
			IDCard:       req.IDCard,
			DeviceImages: req.DeviceImages,
			ActorPhone:   person.Phone,
			ActorRole:    enums.RolePickUp,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
