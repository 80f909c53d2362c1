package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bechdu/buyback-backend/api/responses"
	"github.com/bechdu/buyback-backend/api/validators"
	internalorders "github.com/bechdu/buyback-backend/internal/orders"
	"github.com/bechdu/buyback-backend/pkg/db/models"
	"github.com/bechdu/buyback-backend/pkg/enums"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
	"github.com/bechdu/buyback-backend/pkg/logger"
)

type partnerFinder interface {
	GetPartner(ctx context.Context, phone string) (*models.Partner, error)
}

type partnersForOrderService interface {
	PartnersForOrder(ctx context.Context, orderID string) ([]models.Partner, *models.Order, error)
}

// AdminListOrders searches orders by status, pincode, and customer phone.
func AdminListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := internalorders.ListFilter{
			Pincode: strings.TrimSpace(r.URL.Query().Get("pincode")),
			Phone:   strings.TrimSpace(r.URL.Query().Get("phone")),
			Page:    page,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filter.Status = &status
		}

		orders, total, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, orders, total)
	}
}

type assignOrderRequest struct {
	PartnerPhone string `json:"partnerPhone" validate:"required,len=10,numeric"`
}

// AdminAssignOrder force-assigns an order to a partner, debiting the
// partner's coins exactly as a self-accept would.
func AdminAssignOrder(orders internalorders.Service, partners partnerFinder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		var req assignOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partner, err := partners.GetPartner(r.Context(), req.PartnerPhone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := orders.Accept(r.Context(), internalorders.AcceptOrderInput{
			OrderID:      orderID,
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

type unassignOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// AdminUnassignOrder removes the partner from an order and records a refund
// for the debited coins.
func AdminUnassignOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		var req unassignOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Unassign(r.Context(), orderID, req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminPartnersForOrder lists partners covering the order's pincode.
func AdminPartnersForOrder(svc partnersForOrderService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		partners, order, err := svc.PartnersForOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"order":    order,
			"partners": partners,
		})
	}
}

type rescheduleRequest struct {
	Date string `json:"date" validate:"required"`
	Time string `json:"time" validate:"required"`
}

// AdminRescheduleOrder moves the pickup slot on behalf of the customer.
func AdminRescheduleOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		var req rescheduleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Reschedule(r.Context(), internalorders.RescheduleInput{
			OrderID:   orderID,
			Date:      req.Date,
			Time:      req.Time,
			ActorRole: enums.RoleAdmin,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type cancelOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// AdminCancelOrder cancels an order, refunding the assigned partner's coins
// when there is one.
func AdminCancelOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		var req cancelOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Cancel(r.Context(), internalorders.CancelInput{
			OrderID:   orderID,
			Reason:    req.Reason,
			ActorRole: enums.RoleAdmin,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type completeOrderRequest struct {
	FinalPrice   string   `json:"finalPrice" validate:"required"`
	IMEINumber   string   `json:"imeiNumber" validate:"required"`
	DeviceBill   string   `json:"deviceBill"`
	IDCard       string   `json:"idCard"`
	DeviceImages []string `json:"deviceImages"`
}

// AdminCompleteOrder finalizes an order with the collected-device evidence.
func AdminCompleteOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		var req completeOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Complete(r.Context(), internalorders.CompleteInput{
			OrderID:      orderID,
			FinalPrice:   req.FinalPrice,
			IMEINumber:   req.IMEINumber,
			DeviceBill:   req.DeviceBill,
			IDCard:       req.IDCard,
			DeviceImages: req.DeviceImages,
			ActorRole:    enums.RoleAdmin,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

