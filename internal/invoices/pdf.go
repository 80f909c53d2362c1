package invoices

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

func render(data invoiceData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, "Tax Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(14,
		col.New(6).Add(
			text.New("Invoice number: "+data.Number, props.Text{Top: 0}),
			text.New("Date of issue: "+data.IssueDate, props.Text{Top: 4}),
		),
		col.New(6),
	)

	m.AddRow(36,
		col.New(6).Add(
			text.New(data.SellerName, props.Text{Style: fontstyle.Bold}),
			text.New(data.SellerAddress, props.Text{Top: 5}),
			text.New(data.SellerState, props.Text{Top: 13}),
			text.New("GSTIN: "+data.SellerGSTIN, props.Text{Top: 17}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(data.BuyerName, props.Text{Top: 5}),
			text.New(data.BuyerAddress, props.Text{Top: 9}),
			text.New(data.BuyerState, props.Text{Top: 17}),
			text.New("Phone: "+data.BuyerPhone, props.Text{Top: 21}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(4, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	m.AddRow(12,
		text.NewCol(6, data.Description, props.Text{Size: 9}),
		text.NewCol(2, fmt.Sprintf("%d", data.Coins), props.Text{Size: 9, Align: align.Right}),
		text.NewCol(4, data.TaxableValue, props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(8,
		col.New(6),
		text.NewCol(3, "Taxable value", props.Text{Size: 9}),
		text.NewCol(3, data.TaxableValue, props.Text{Size: 9, Align: align.Right}),
	)
	for _, row := range data.TaxRows {
		m.AddRow(8,
			col.New(6),
			text.NewCol(3, row.Label, props.Text{Size: 9}),
			text.NewCol(3, row.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, data.Total, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}
