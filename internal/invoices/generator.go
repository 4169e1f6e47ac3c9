package invoices

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/shopkart-labs/shopkart-backend/pkg/config"
	"github.com/shopkart-labs/shopkart-backend/pkg/money"
)

// Line is one billed row on an invoice.
type Line struct {
	Description string
	Quantity    int
	UnitPaise   int64
	TotalPaise  int64
}

// Invoice is the data rendered onto the PDF.
type Invoice struct {
	Number        string
	IssuedAt      time.Time
	CustomerName  string
	CustomerEmail string
	Lines         []Line
	SubtotalPaise int64
	DiscountPaise int64
	TotalPaise    int64
	CouponCode    string
}

// Generator renders payment receipts as PDF files on local disk.
type Generator struct {
	dir string
}

// NewGenerator ensures the invoice directory exists.
func NewGenerator(cfg config.InvoiceConfig) (*Generator, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		dir = "invoices"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create invoice dir: %w", err)
	}
	return &Generator{dir: dir}, nil
}

// Generate writes the invoice PDF and returns its path.
func (g *Generator) Generate(_ context.Context, invoice Invoice) (string, error) {
	if invoice.Number == "" {
		return "", fmt.Errorf("invoice number is required")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Invoice %s", invoice.Number), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Shopkart")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice: %s", invoice.Number))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", invoice.IssuedAt.Format("02 Jan 2006")))
	pdf.Ln(6)
	if invoice.CustomerName != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Billed to: %s", invoice.CustomerName))
		pdf.Ln(6)
	}
	if invoice.CustomerEmail != "" {
		pdf.Cell(0, 6, invoice.CustomerEmail)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(95, 8, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Unit (Rs.)", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Total (Rs.)", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range invoice.Lines {
		pdf.CellFormat(95, 8, line.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", line.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, money.DisplayString(line.UnitPaise), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, money.DisplayString(line.TotalPaise), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.CellFormat(150, 7, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, money.DisplayString(invoice.SubtotalPaise), "", 1, "R", false, 0, "")
	if invoice.DiscountPaise > 0 {
		label := "Discount"
		if invoice.CouponCode != "" {
			label = fmt.Sprintf("Discount (%s)", invoice.CouponCode)
		}
		pdf.CellFormat(150, 7, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, "-"+money.DisplayString(invoice.DiscountPaise), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(150, 8, "Total (Rs.)", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, money.DisplayString(invoice.TotalPaise), "", 1, "R", false, 0, "")

	path := filepath.Join(g.dir, fmt.Sprintf("invoice-%s.pdf", invoice.Number))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write invoice pdf: %w", err)
	}
	return path, nil
}
