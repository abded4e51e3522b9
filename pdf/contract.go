// Package pdf renders contract documents for download from the admin
// dashboard.
package pdf

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// TrancheData is one payment milestone.
type TrancheData struct {
	Percentage float64
	Amount     float64
}

// ContractData carries everything the document needs; the caller maps
// its own model into this to keep the renderer storage-free.
type ContractData struct {
	ProjectName        string
	ProjectDescription string
	TotalPrice         float64
	Currency           string
	Duration           int
	DurationUnit       string
	Advance            TrancheData
	Mid                TrancheData
	Final              TrancheData
	Terms              string
	Status             string
	ClientName         string
	ClientEmail        string
	SignatureType      string
	SignatureData      string
	SignedAt           *time.Time
	CreatedAt          time.Time
}

// ContractPDF renders the contract as an A4 document and returns the
// raw bytes.
func ContractPDF(d ContractData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRow(12, text.NewCol(12, "SERVICE CONTRACT", props.Text{
		Size: 16, Style: fontstyle.Bold, Align: align.Center,
	}))
	m.AddRow(6, text.NewCol(12, "Status: "+strings.ToUpper(d.Status), props.Text{
		Size: 9, Align: align.Center,
	}))
	m.AddRows(line.NewRow(4))

	m.AddRow(8, text.NewCol(12, "Project", sectionTitle()))
	m.AddRow(6, labelCol("Name:"), valueCol(d.ProjectName))
	m.AddRow(6, labelCol("Timeline:"), valueCol(fmt.Sprintf("%d %s", d.Duration, d.DurationUnit)))
	m.AddRow(6, labelCol("Created:"), valueCol(d.CreatedAt.Format("2 Jan 2006")))
	if d.ProjectDescription != "" {
		for _, ln := range wrapText(d.ProjectDescription, 100) {
			m.AddRows(text.NewRow(5, ln, props.Text{Size: 9}))
		}
	}
	m.AddRows(line.NewRow(4))

	m.AddRow(8, text.NewCol(12, "Payment Schedule", sectionTitle()))
	m.AddRow(6, labelCol("Total:"), valueCol(money(d.TotalPrice, d.Currency)))
	m.AddRow(6, labelCol("Advance:"), valueCol(tranche(d.Advance, d.Currency)))
	m.AddRow(6, labelCol("Mid:"), valueCol(tranche(d.Mid, d.Currency)))
	m.AddRow(6, labelCol("Final:"), valueCol(tranche(d.Final, d.Currency)))
	m.AddRows(line.NewRow(4))

	m.AddRow(8, text.NewCol(12, "Terms and Conditions", sectionTitle()))
	for _, paragraph := range strings.Split(d.Terms, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			m.AddRows(row.New(2))
			continue
		}
		for _, ln := range wrapText(paragraph, 100) {
			m.AddRows(text.NewRow(4, ln, props.Text{Size: 8}))
		}
	}

	if d.SignedAt != nil {
		m.AddRows(line.NewRow(6))
		m.AddRow(8, text.NewCol(12, "Signature", sectionTitle()))
		m.AddRow(6, labelCol("Signed by:"), valueCol(d.ClientName))
		if d.ClientEmail != "" {
			m.AddRow(6, labelCol("Email:"), valueCol(d.ClientEmail))
		}
		m.AddRow(6, labelCol("Signed on:"), valueCol(d.SignedAt.Format("2 Jan 2006 15:04 MST")))
		m.AddRow(6, labelCol("Method:"), valueCol(d.SignatureType+" signature"))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate contract pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func sectionTitle() props.Text {
	return props.Text{Size: 11, Style: fontstyle.Bold}
}

func labelCol(label string) core.Col {
	return text.NewCol(3, label, props.Text{Size: 9, Style: fontstyle.Bold})
}

func valueCol(value string) core.Col {
	return text.NewCol(9, value, props.Text{Size: 9})
}

func money(amount float64, currency string) string {
	return strconv.FormatFloat(amount, 'f', 2, 64) + " " + currency
}

func tranche(t TrancheData, currency string) string {
	return fmt.Sprintf("%s%% (%s)", strconv.FormatFloat(t.Percentage, 'f', -1, 64), money(t.Amount, currency))
}

// wrapText splits s into chunks of at most width runes on word
// boundaries; maroto text cells do not wrap on their own at small sizes.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var out []string
	cur := words[0]
	for _, w := range words[1:] {
		if len(cur)+1+len(w) > width {
			out = append(out, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	return append(out, cur)
}
