package pdf

import (
	"bytes"
	"fmt"
	"image/png"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf"
	fpdfbarcode "github.com/jung-kurt/gofpdf/contrib/barcode"
	"github.com/shopspring/decimal"
)

// Generator renders order receipts; mocked in tests.
type Generator interface {
	GenerateReceipt(data ReceiptData) ([]byte, error)
}

type ReceiptLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

type ReceiptData struct {
	OrderID          string
	EventName        string
	EventLocation    string
	EventStartsAt    time.Time
	BuyerName        string
	BuyerDNI         string
	BuyerEmail       string
	Status           string
	CreatedAt        time.Time
	Lines            []ReceiptLine
	TotalTickets     int
	TotalAmount      decimal.Decimal
	PaymentReference string
}

// ReceiptGenerator renders receipts in memory. With an empty FontPath the core
// Helvetica font is used (cp1252, enough for Spanish names).
type ReceiptGenerator struct {
	FontPath string
	fontName string
}

func NewReceiptGenerator(fontPath string) *ReceiptGenerator {
	g := &ReceiptGenerator{FontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		g.fontName = "DejaVu"
	}
	return g
}

func (g *ReceiptGenerator) GenerateReceipt(data ReceiptData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Receipt %s", data.OrderID), true)
	pdf.SetAuthor("ticketera", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	tr := func(s string) string { return s }
	if g.FontPath != "" {
		pdf.AddUTF8Font(g.fontName, "", g.FontPath)
		pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
	} else {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.AddPage()

	// ===== Header
	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, tr("PURCHASE RECEIPT"), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Order %s  ·  %s", data.OrderID, data.CreatedAt.Format("02.01.2006 15:04"))), "", 1, "C", false, 0, "")
	g.hr(pdf)

	// ===== Event and buyer
	g.sectionTitle(pdf, tr("Event"))
	g.kvLine(pdf, tr("Name"), tr(data.EventName))
	if data.EventLocation != "" {
		g.kvLine(pdf, tr("Location"), tr(data.EventLocation))
	}
	if !data.EventStartsAt.IsZero() {
		g.kvLine(pdf, tr("Date"), data.EventStartsAt.Format("02.01.2006 15:04"))
	}
	pdf.Ln(2)
	g.sectionTitle(pdf, tr("Buyer"))
	g.kvLine(pdf, tr("Full name"), tr(data.BuyerName))
	g.kvLine(pdf, "DNI", data.BuyerDNI)
	g.kvLine(pdf, "Email", tr(data.BuyerEmail))
	g.kvLine(pdf, tr("Status"), tr(data.Status))
	g.hr(pdf)

	// ===== Items
	g.sectionTitle(pdf, tr("Tickets"))
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(80, 7, tr("Type"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, tr("Qty"), "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, tr("Price"), "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, tr("Subtotal"), "B", 1, "R", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	for _, l := range data.Lines {
		pdf.CellFormat(80, 7, tr(l.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", l.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, l.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, l.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(105, 8, tr(fmt.Sprintf("Total (%d tickets)", data.TotalTickets)), "T", 0, "L", false, 0, "")
	pdf.CellFormat(65, 8, data.TotalAmount.StringFixed(2), "T", 1, "R", false, 0, "")
	pdf.Ln(4)

	// ===== QR with the payment reference
	g.sectionTitle(pdf, tr("Payment reference"))
	key := fpdfbarcode.RegisterQR(pdf, data.PaymentReference, qr.M, qr.Unicode)
	y := pdf.GetY()
	fpdfbarcode.Barcode(pdf, key, 20, y, 45, 45, false)
	pdf.SetXY(70, y)
	pdf.SetFont(g.fontName, "", 9)
	pdf.MultiCell(0, 5, tr(data.PaymentReference), "", "L", false)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("receipt pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *ReceiptGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 13)
	pdf.CellFormat(0, 8, s, "", 1, "L", false, 0, "")
}

func (g *ReceiptGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 7, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 7, val, "", 1, "L", false, 0, "")
}

func (g *ReceiptGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 2
	pdf.Line(20, y, 190, y)
	pdf.Ln(5)
}

// QRCodePNG encodes content as a size x size PNG.
func QRCodePNG(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("qr scale: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("qr png: %w", err)
	}
	return buf.Bytes(), nil
}
