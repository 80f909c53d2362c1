package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bechdu/buyback-backend/api/middleware"
	"github.com/bechdu/buyback-backend/api/responses"
	"github.com/bechdu/buyback-backend/api/validators"
	internalorders "github.com/bechdu/buyback-backend/internal/orders"
	"github.com/bechdu/buyback-backend/pkg/db/models"
	"github.com/bechdu/buyback-backend/pkg/enums"
	"github.com/bechdu/buyback-backend/pkg/logger"
	"github.com/bechdu/buyback-backend/pkg/pagination"
	"github.com/bechdu/buyback-backend/pkg/types"
)

type partnerAuthorizer interface {
	AuthorizePartner(ctx context.Context, phone, device string) (*models.Partner, error)
}

type pickupAuthorizer interface {
	AuthorizePickup(ctx context.Context, phone, device string) (*models.PickupPerson, error)
}

type orderQueueService interface {
	EligibleForPartner(ctx context.Context, partnerPhone string, page pagination.Params) ([]models.Order, int64, error)
	AssignedToPartner(ctx context.Context, partnerPhone string, page pagination.Params) ([]models.Order, int64, error)
	DelegatedToPickup(ctx context.Context, pickupPhone string, page pagination.Params) ([]models.Order, int64, error)
}

// authorizedPartner resolves the calling partner and enforces the device
// binding before any partner endpoint runs.
func authorizedPartner(r *http.Request, auth partnerAuthorizer) (*models.Partner, error) {
	ctx := r.Context()
	return auth.AuthorizePartner(ctx, middleware.PhoneFromContext(ctx), middleware.DeviceFromContext(ctx))
}

func authorizedPickup(r *http.Request, auth pickupAuthorizer) (*models.PickupPerson, error) {
	ctx := r.Context()
	return auth.AuthorizePickup(ctx, middleware.PhoneFromContext(ctx), middleware.DeviceFromContext(ctx))
}

// PartnerEligibleOrders lists unassigned new orders in the partner's pincodes.
func PartnerEligibleOrders(auth partnerAuthorizer, queue orderQueueService, logg *logger.Logger) http.HandlerFunc {
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

		orders, total, err := queue.EligibleForPartner(r.Context(), partner.Phone, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, orders, total)
	}
}

// PartnerAssignedOrders lists the partner's accepted, still-open orders.
func PartnerAssignedOrders(auth partnerAuthorizer, queue orderQueueService, logg *logger.Logger) http.HandlerFunc {
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

		orders, total, err := queue.AssignedToPartner(r.Context(), partner.Phone, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, orders, total)
	}
}

// PartnerAcceptOrder claims an order for the calling partner, debiting coins.
func PartnerAcceptOrder(auth partnerAuthorizer, svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partner, err := authorizedPartner(r, auth)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Accept(r.Context(), internalorders.AcceptOrderInput{
			OrderID:      strings.TrimSpace(chi.URLParam(r, "orderId")),
			PartnerPhone: partner.Phone,
			PartnerName:  partner.Name,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type delegateRequest struct {
	PickUpPersonPhone string `json:"pickUpPersonPhone" validate:"required,len=10,numeric"`
	PickUpPersonName  string `json:"pickUpPersonName"`
}

// PartnerDelegateOrder hands an accepted order to one of the partner's
// pickup persons.
func PartnerDelegateOrder(auth partnerAuthorizer, svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partner, err := authorizedPartner(r, auth)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req delegateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Delegate(r.Context(), internalorders.DelegateInput{
			OrderID:           strings.TrimSpace(chi.URLParam(r, "orderId")),
			PartnerPhone:      partner.Phone,
			PickUpPersonName:  req.PickUpPersonName,
			PickUpPersonPhone: req.PickUpPersonPhone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// PartnerUndelegateOrder takes a delegated order back from the pickup person.
func PartnerUndelegateOrder(auth partnerAuthorizer, svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partner, err := authorizedPartner(r, auth)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Undelegate(r.Context(), strings.TrimSpace(chi.URLParam(r, "orderId")), partner.Phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type requoteRequest struct {
	NewPrice int64         `json:"newPrice" validate:"required,min=1"`
	Options  types.JSONMap `json:"options"`
}

// PartnerRequoteOrder changes the quoted price after inspecting the device.
func PartnerRequoteOrder(auth partnerAuthorizer, svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partner, err := authorizedPartner(r, auth)
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
			ActorPhone: partner.Phone,
			ActorRole:  enums.RolePartner,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// PartnerRescheduleOrder moves the pickup slot on an assigned order.
func PartnerRescheduleOrder(auth partnerAuthorizer, svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partner, err := authorizedPartner(r, auth)
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
			ActorPhone: partner.Phone,
			ActorRole:  enums.RolePartner,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// PartnerCancelOrder cancels an assigned order with a reason. The debited
// coins surface as a refund record, not an automatic credit.
func PartnerCancelOrder(auth partnerAuthorizer, svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partner, err := authorizedPartner(r, auth)
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
			ActorPhone: partner.Phone,
			ActorRole:  enums.RolePartner,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// PartnerCompleteOrder finalizes an assigned order with device evidence.
func PartnerCompleteOrder(auth partnerAuthorizer, svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partner, err := authorizedPartner(r, auth)
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
			ActorPhone:   partner.Phone,
			ActorRole:    enums.RolePartner,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
