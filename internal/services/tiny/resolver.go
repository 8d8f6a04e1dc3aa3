package tiny

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mercantil-app/mercantilgo/internal/models"
	"github.com/mercantil-app/mercantilgo/internal/storage"
	"github.com/mercantil-app/mercantilgo/internal/utils"
	"gorm.io/datatypes"
)

const (
	// Synthetic accounts get a deterministic email under this domain and a
	// placeholder password that can never match a bcrypt comparison, so the
	// account is not loginable.
	syntheticEmailDomain = "sync.mercantil.app"
	syntheticPassword    = "!olist-integration!"

	defaultAccountName = "Olist"

	marketplaceCategory = "olist"
)

// RunCache holds product identities resolved during a single sync run. It is
// created by the orchestrator at run start and discarded with the run, so
// catalog edits made between runs are always picked up.
type RunCache struct {
	products map[string]cachedProduct
}

type cachedProduct struct {
	id    string
	image string
}

// NewRunCache creates an empty per-run cache
func NewRunCache() *RunCache {
	return &RunCache{products: make(map[string]cachedProduct)}
}

// ResolvedProduct is the current local state of a product referenced by a
// remote line item. Image and cost are always read from storage, never from
// the cache, so manual catalog edits are honored.
type ResolvedProduct struct {
	ProductID string
	ImageURL  string
	Cost      float64
}

// Resolver finds or creates the local users and products referenced by
// remote orders
type Resolver struct {
	store storage.Store
}

// NewResolver creates a resolver over the given store
func NewResolver(store storage.Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveUser finds the local user for a marketplace account name, creating
// a synthetic account on first sight. Repeated calls for the same name
// return the same user, within and across runs.
func (r *Resolver) ResolveUser(accountName string) (*models.User, error) {
	name := strings.TrimSpace(accountName)
	if name == "" {
		name = defaultAccountName
	}

	user, err := r.store.FindUserByUsername(name)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		ID:       uuid.NewString(),
		Username: name,
		Password: syntheticPassword,
		Name:     name,
		Email:    utils.Slugify(name) + "@" + syntheticEmailDomain,
		Role:     "user",
	}
	if err := r.store.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create marketplace user %q: %w", name, err)
	}
	return user, nil
}

// ResolveProduct finds the local product for a remote line item, creating it
// on first sight. The per-run cache skips the external-id lookup on repeated
// items, but image and cost are re-read from storage every time.
func (r *Resolver) ResolveProduct(cache *RunCache, item Item, remoteOrderID string, position int) (*ResolvedProduct, error) {
	code := item.Codigo.String()
	if code == "" {
		code = syntheticProductCode(item, remoteOrderID, position)
	}

	if cached, ok := cache.products[code]; ok {
		return r.freshRead(cached.id)
	}

	product, err := r.store.FindProductByExternalID(code)
	if errors.Is(err, storage.ErrNotFound) {
		product, err = r.createProduct(code, item)
	}
	if err != nil {
		return nil, err
	}

	resolved, err := r.freshRead(product.ID)
	if err != nil {
		return nil, err
	}

	cache.products[code] = cachedProduct{id: product.ID, image: resolved.ImageURL}
	return resolved, nil
}

// freshRead loads the product's current stored image and cost
func (r *Resolver) freshRead(productID string) (*ResolvedProduct, error) {
	product, err := r.store.GetProduct(productID)
	if err != nil {
		return nil, err
	}
	return &ResolvedProduct{
		ProductID: product.ID,
		ImageURL:  product.FirstImageURL(),
		Cost:      product.Cost,
	}, nil
}

func (r *Resolver) createProduct(code string, item Item) (*models.Product, error) {
	name := item.Descricao.String()
	if name == "" {
		name = code
	}

	var images []models.ProductImage
	if item.URLImagem != "" {
		images = append(images, models.ProductImage{URL: item.URLImagem.String()})
	}

	externalID := code
	product := &models.Product{
		ID:          uuid.NewString(),
		ExternalID:  &externalID,
		Name:        name,
		Price:       float64(item.ValorUnitario),
		Description: item.Descricao.String(),
		Category:    marketplaceCategory,
		Stock:       0,
		Status:      models.ProductStatusActive,
	}
	product.Images = datatypes.NewJSONType(images)

	if err := r.store.CreateProduct(product); err != nil {
		return nil, fmt.Errorf("failed to create product %q: %w", code, err)
	}
	return product, nil
}

// syntheticProductCode builds a stable code for items that arrive without
// one, so repeated syncs of the same malformed item converge on one local
// product. The key hashes the remote order id and item position; wall-clock
// time is only a last resort when there is no order id either, and such a
// code cannot converge across reruns.
func syntheticProductCode(item Item, remoteOrderID string, position int) string {
	prefix := utils.Slugify(item.Descricao.String())
	if len(prefix) > 12 {
		prefix = prefix[:12]
	}
	if prefix == "" {
		prefix = "item"
	}

	var key string
	switch {
	case item.IDProduto != "":
		key = item.IDProduto.String()
	case remoteOrderID != "":
		sum := sha256.Sum256(fmt.Appendf(nil, "%s:%d", remoteOrderID, position))
		key = hex.EncodeToString(sum[:4])
	default:
		key = fmt.Sprintf("%d", time.Now().UnixMilli())
	}

	return fmt.Sprintf("SYNC-%s-%s", prefix, key)
}
