package printer

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/mercantil-app/mercantilgo/internal/models"
	"github.com/skip2/go-qrcode"
)

// GenerateInvoicePDF renders a printable A4 invoice for one order. Synced
// orders get a QR code of their marketplace id so warehouse staff can match
// the printout against the Olist panel.
func GenerateInvoicePDF(order *models.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Pedido")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	writeField(pdf, "Cliente", order.UserName)
	if order.CustomerDisplayName != "" {
		writeField(pdf, "Comprador", order.CustomerDisplayName)
	}
	if order.ShippingAddress != "" {
		writeField(pdf, "Endereco", order.ShippingAddress)
	}
	if order.Phone != "" {
		writeField(pdf, "Telefone", order.Phone)
	}
	if order.PaymentMethod != "" {
		writeField(pdf, "Pagamento", order.PaymentMethod)
	}
	writeField(pdf, "Status", string(order.Status))
	writeField(pdf, "Data", order.OrderDate.Format("02/01/2006"))
	pdf.Ln(4)

	// Item table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 7, "Produto", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qtd", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 7, "Preco", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Subtotal", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range order.Items.Data() {
		pdf.CellFormat(90, 7, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 7, fmt.Sprintf("R$ %.2f", item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, fmt.Sprintf("R$ %.2f", item.Price*float64(item.Quantity)), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(110, 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, fmt.Sprintf("%d", order.TotalQuantity), "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 7, fmt.Sprintf("R$ %.2f", order.TotalAmount), "1", 1, "R", false, 0, "")

	// QR code for marketplace orders
	if order.ExternalID != nil && *order.ExternalID != "" {
		qrPng, err := qrcode.Encode(*order.ExternalID, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("failed to encode QR: %w", err)
		}

		imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader("order_qr", imgOptions, bytes.NewReader(qrPng))
		pdf.ImageOptions("order_qr", 160, 15, 30, 30, false, imgOptions, 0, "")

		pdf.Ln(6)
		pdf.SetFont("Arial", "", 8)
		pdf.Cell(0, 5, fmt.Sprintf("Olist #%s", *order.ExternalID))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func writeField(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(28, 6, label+":")
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, value)
	pdf.Ln(6)
}
