package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bechdu/buyback-backend/pkg/config"
	"github.com/bechdu/buyback-backend/pkg/db/models"
	pkgerrors "github.com/bechdu/buyback-backend/pkg/errors"
)

type transactionSource interface {
	GetTransaction(ctx context.Context, id uuid.UUID, requesterPhone string) (*models.CoinTransaction, error)
}

type partnerSource interface {
	GetPartner(ctx context.Context, phone string) (*models.Partner, error)
}

// Document is a rendered invoice ready to stream to the client.
type Document struct {
	FileName string
	PDF      []byte
}

// Service renders tax invoices for coin purchase transactions.
type Service interface {
	// RenderTransaction renders the invoice for one ledger entry. A
	// non-empty requesterPhone restricts access to the owning partner.
	RenderTransaction(ctx context.Context, id uuid.UUID, requesterPhone string) (*Document, error)
}

type service struct {
	ledger    transactionSource
	directory partnerSource
	company   config.CompanyConfig
}

// ServiceParams groups dependencies for the invoice service.
type ServiceParams struct {
	Ledger    transactionSource
	Directory partnerSource
	Company   config.CompanyConfig
}

// NewService builds an invoice service.
func NewService(params ServiceParams) (Service, error) {
	if params.Ledger == nil {
		return nil, errors.New("ledger source is required")
	}
	if params.Directory == nil {
		return nil, errors.New("directory source is required")
	}
	return &service{
		ledger:    params.Ledger,
		directory: params.Directory,
		company:   params.Company,
	}, nil
}

func (s *service) RenderTransaction(ctx context.Context, id uuid.UUID, requesterPhone string) (*Document, error) {
	entry, err := s.ledger.GetTransaction(ctx, id, requesterPhone)
	if err != nil {
		return nil, err
	}
	if entry.Price == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction carries no billable amount")
	}

	partner, err := s.directory.GetPartner(ctx, entry.PartnerPhone)
	if err != nil {
		return nil, err
	}

	data := buildInvoiceData(s.company, partner, entry)
	pdf, err := render(data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rendering invoice")
	}
	return &Document{FileName: "invoice-" + data.Number + ".pdf", PDF: pdf}, nil
}

// invoiceData is the flattened, pre-formatted content of one invoice page.
type invoiceData struct {
	Number    string
	IssueDate string

	SellerName    string
	SellerAddress string
	SellerState   string
	SellerGSTIN   string

	BuyerName    string
	BuyerAddress string
	BuyerState   string
	BuyerPhone   string

	Description string
	Coins       int64

	TaxableValue string
	TaxRows      []taxRow
	Total        string
}

type taxRow struct {
	Label  string
	Amount string
}

func buildInvoiceData(company config.CompanyConfig, partner *models.Partner, entry *models.CoinTransaction) invoiceData {
	price := *entry.Price
	var gst int64
	if entry.GSTPrice != nil {
		gst = *entry.GSTPrice
	}
	var pct int64
	if entry.GSTPercentage != nil {
		pct = *entry.GSTPercentage
	}

	data := invoiceData{
		Number:        invoiceNumber(entry),
		IssueDate:     entry.CreatedAt.Format("02/01/2006"),
		SellerName:    company.Name,
		SellerAddress: company.Address,
		SellerState:   company.State,
		SellerGSTIN:   company.GSTIN,
		BuyerName:     partner.Name,
		BuyerAddress:  partner.Address,
		BuyerState:    partner.State,
		BuyerPhone:    partner.Phone,
		Description:   fmt.Sprintf("%d coins (%s)", entry.Coins, entry.Message),
		Coins:         entry.Coins,
		TaxableValue:  formatINR(price),
		TaxRows:       splitGST(entry.PartnerState, entry.HomeState, gst, pct),
		Total:         formatINR(price + gst),
	}
	return data
}

func invoiceNumber(entry *models.CoinTransaction) string {
	if entry.OrderID != "" {
		return entry.OrderID
	}
	return strings.ToUpper(strings.ReplaceAll(entry.ID.String(), "-", "")[:12])
}

// splitGST follows the intra/inter state rule: supplies within the home state
// levy CGST and SGST in equal halves, everything else levies IGST.
func splitGST(partnerState, homeState string, gst, pct int64) []taxRow {
	if gst <= 0 {
		return nil
	}
	if partnerState != "" && strings.EqualFold(partnerState, homeState) {
		half := gst / 2
		return []taxRow{
			{Label: fmt.Sprintf("CGST @ %s%%", halfPercent(pct)), Amount: formatINR(half)},
			{Label: fmt.Sprintf("SGST @ %s%%", halfPercent(pct)), Amount: formatINR(gst - half)},
		}
	}
	return []taxRow{
		{Label: fmt.Sprintf("IGST @ %d%%", pct), Amount: formatINR(gst)},
	}
}

func halfPercent(pct int64) string {
	if pct%2 == 0 {
		return fmt.Sprintf("%d", pct/2)
	}
	return fmt.Sprintf("%d.5", pct/2)
}

// formatINR renders rupees with Indian digit grouping, e.g. 1234567 becomes
// Rs. 12,34,567.
func formatINR(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := fmt.Sprintf("%d", amount)
	if len(digits) <= 3 {
		return "Rs. " + sign + digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return "Rs. " + sign + strings.Join(groups, ",") + "," + tail
}
