package tiny

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mercantil-app/mercantilgo/internal/models"
	"gorm.io/datatypes"
)

// ErrEmptyOrder marks a mapped order with no valid line items; such drafts
// are skipped with a warning instead of being persisted
var ErrEmptyOrder = errors.New("order has no valid line items")

// imagePlaceholder is used when neither the remote item nor the local
// product supplies an image
const imagePlaceholder = "/images/placeholder.png"

// MapStatus translates a remote status string into the local order status.
// The table is case-insensitive and total: anything unrecognized maps to
// pending with recognized=false so operators can detect vendor vocabulary
// drift in the logs.
func MapStatus(remoteStatus string) (models.OrderStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(remoteStatus)) {
	case "em aberto", "não entregue":
		return models.OrderStatusPending, true
	case "aprovado", "preparando envio", "faturado (atendido)", "pronto para envio":
		return models.OrderStatusPaid, true
	case "enviado":
		return models.OrderStatusShipped, true
	case "entregue":
		return models.OrderStatusDelivered, true
	case "cancelado":
		return models.OrderStatusCancelled, true
	default:
		return models.OrderStatusPending, false
	}
}

// MapLineItem converts one remote item plus its resolved local product into
// an order line. Absent quantity defaults to 1, absent price to 0.
func MapLineItem(item Item, resolved *ResolvedProduct) models.OrderItem {
	quantity := int(item.Quantidade)
	if quantity < 1 {
		quantity = 1
	}

	originalPrice := float64(item.ValorUnitario)
	if originalPrice < 0 {
		originalPrice = 0
	}

	discount := float64(item.Desconto)
	if discount < 0 {
		discount = 0
	}

	price := originalPrice - discount
	if price < 0 {
		price = 0
	}

	imageURL := item.URLImagem.String()
	if imageURL == "" {
		imageURL = resolved.ImageURL
	}
	if imageURL == "" {
		imageURL = imagePlaceholder
	}

	name := item.Descricao.String()
	if name == "" {
		name = item.Codigo.String()
	}

	return models.OrderItem{
		ProductID:     resolved.ProductID,
		Name:          name,
		Quantity:      quantity,
		OriginalPrice: originalPrice,
		Discount:      discount,
		Price:         price,
		Cost:          resolved.Cost,
		ImageURL:      imageURL,
	}
}

// MapOrder assembles the local order draft for a remote detail payload.
// runDate is the sync run's logical date; it becomes the order date so
// backfilling a past range does not stamp orders with today.
func MapOrder(detail *OrderDetail, user *models.User, items []models.OrderItem, runDate time.Time) (*models.Order, bool, error) {
	if len(items) == 0 {
		return nil, false, ErrEmptyOrder
	}

	totalAmount := 0.0
	totalCost := 0.0
	totalQuantity := 0
	for _, item := range items {
		totalAmount += item.Price * float64(item.Quantity)
		totalCost += item.Cost * float64(item.Quantity)
		totalQuantity += item.Quantity
	}
	if totalQuantity < 1 {
		return nil, false, ErrEmptyOrder
	}

	accountName := detail.NomeEcommerce.String()
	if accountName == "" {
		accountName = defaultAccountName
	}

	// Legacy sentence format: downstream reports still regex these exact
	// delimiters apart. The structured fields carry the same values.
	name := fmt.Sprintf("Pedido Olist nº %s, em nome de %s,Ecommerce - %s - nº %s",
		detail.Numero, detail.Cliente.Nome, accountName, detail.NumeroEcommerce)

	status, recognized := MapStatus(detail.Situacao.String())

	externalID := detail.ID.String()
	order := &models.Order{
		ExternalID:             &externalID,
		UserID:                 user.ID,
		UserName:               user.Username,
		Name:                   name,
		MarketplaceOrderNumber: detail.Numero.String(),
		EcommerceOrderNumber:   detail.NumeroEcommerce.String(),
		CustomerDisplayName:    detail.Cliente.Nome.String(),
		ShippingAddress:        formatAddress(detail.Cliente),
		Phone:                  detail.Cliente.Fone.String(),
		PaymentMethod:          detail.FormaPagamento.String(),
		TotalCost:              totalCost,
		TotalAmount:            totalAmount,
		TotalQuantity:          totalQuantity,
		Status:                 status,
		Source:                 models.OrderSourceOlist,
		OrderDate:              runDate,
	}
	order.Items = datatypes.NewJSONType(items)

	return order, recognized, nil
}

// formatAddress flattens the remote address fields into one line, skipping
// the fields the payload left empty
func formatAddress(c Customer) string {
	var parts []string

	street := strings.TrimSpace(c.Endereco.String())
	if number := strings.TrimSpace(c.Numero.String()); number != "" {
		street = strings.TrimSpace(street + ", " + number)
	}
	if street != "" {
		parts = append(parts, street)
	}

	if complement := strings.TrimSpace(c.Complemento.String()); complement != "" {
		parts = append(parts, complement)
	}
	if neighborhood := strings.TrimSpace(c.Bairro.String()); neighborhood != "" {
		parts = append(parts, neighborhood)
	}

	city := strings.TrimSpace(c.Cidade.String())
	if uf := strings.TrimSpace(c.UF.String()); uf != "" {
		if city != "" {
			city = city + "/" + uf
		} else {
			city = uf
		}
	}
	if city != "" {
		parts = append(parts, city)
	}

	if cep := strings.TrimSpace(c.CEP.String()); cep != "" {
		parts = append(parts, cep)
	}

	return strings.TrimSpace(strings.Join(parts, " - "))
}

// ParseRunDate converts the DD/MM/YYYY search start date into the run's
// logical date in the store's business timezone
func ParseRunDate(dateFrom string) time.Time {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.FixedZone("BRT", -3*60*60)
	}
	t, err := time.ParseInLocation("02/01/2006", dateFrom, loc)
	if err != nil {
		return time.Now().In(loc)
	}
	return t
}
