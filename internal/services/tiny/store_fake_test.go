package tiny

import (
	"github.com/mercantil-app/mercantilgo/internal/models"
	"github.com/mercantil-app/mercantilgo/internal/storage"
	"gorm.io/datatypes"
)

// fakeStore is an in-memory storage.Store for tests
type fakeStore struct {
	users         map[string]*models.User    // keyed by username
	products      map[string]*models.Product // keyed by id
	productsByExt map[string]string          // external id -> id
	orders        map[string]*models.Order   // keyed by external id

	userCreates    int
	productCreates int
	orderCreates   int
	orderUpdates   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[string]*models.User),
		products:      make(map[string]*models.Product),
		productsByExt: make(map[string]string),
		orders:        make(map[string]*models.Order),
	}
}

func (f *fakeStore) FindUserByUsername(username string) (*models.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

func (f *fakeStore) CreateUser(user *models.User) error {
	f.userCreates++
	f.users[user.Username] = user
	return nil
}

func (f *fakeStore) FindProductByExternalID(externalID string) (*models.Product, error) {
	id, ok := f.productsByExt[externalID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return f.products[id], nil
}

func (f *fakeStore) GetProduct(id string) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return product, nil
}

func (f *fakeStore) CreateProduct(product *models.Product) error {
	f.productCreates++
	f.products[product.ID] = product
	if product.ExternalID != nil {
		f.productsByExt[*product.ExternalID] = product.ID
	}
	return nil
}

// addProduct seeds a catalog entry the way store staff would create one
func (f *fakeStore) addProduct(id, externalID, imageURL string, cost float64) *models.Product {
	product := &models.Product{
		ID:         id,
		ExternalID: &externalID,
		Name:       "seeded-" + externalID,
		Price:      10,
		Cost:       cost,
		Category:   "olist",
		Status:     models.ProductStatusActive,
	}
	if imageURL != "" {
		product.Images = datatypes.NewJSONType([]models.ProductImage{{URL: imageURL}})
	}
	f.products[id] = product
	f.productsByExt[externalID] = id
	return product
}

func (f *fakeStore) FindOrderByExternalID(externalID string) (*models.Order, error) {
	order, ok := f.orders[externalID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return order, nil
}

func (f *fakeStore) CreateOrder(order *models.Order) error {
	f.orderCreates++
	f.orders[*order.ExternalID] = order
	return nil
}

func (f *fakeStore) UpdateOrderByExternalID(externalID string, update storage.OrderUpdate) error {
	order, ok := f.orders[externalID]
	if !ok {
		return storage.ErrNotFound
	}
	f.orderUpdates++
	order.Name = update.Name
	order.MarketplaceOrderNumber = update.MarketplaceOrderNumber
	order.EcommerceOrderNumber = update.EcommerceOrderNumber
	order.CustomerDisplayName = update.CustomerDisplayName
	order.ShippingAddress = update.ShippingAddress
	order.Phone = update.Phone
	order.PaymentMethod = update.PaymentMethod
	order.Items = datatypes.NewJSONType(update.Items)
	order.TotalCost = update.TotalCost
	order.TotalAmount = update.TotalAmount
	order.TotalQuantity = update.TotalQuantity
	order.Status = update.Status
	order.Source = update.Source
	return nil
}

var _ storage.Store = (*fakeStore)(nil)
