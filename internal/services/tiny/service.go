package tiny

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mercantil-app/mercantilgo/internal/models"
	"github.com/mercantil-app/mercantilgo/internal/storage"
)

// ErrSyncInProgress is returned when a run is requested while another run is
// still active (for example during a pacing pause)
var ErrSyncInProgress = errors.New("a sync run is already in progress")

// Config holds marketplace sync settings
type Config struct {
	APIToken     string
	APIURL       string
	SyncInterval int // in minutes
	RateLimit    int // remote calls per minute
}

// SyncReport summarizes one run so callers can tell how many of the found
// orders actually landed
type SyncReport struct {
	Found        int `json:"found"`
	Synced       int `json:"synced"`
	Skipped      int `json:"skipped"`
	Unrecognized int `json:"unrecognizedStatuses"`
}

// EventSink receives a notification per upserted order (live admin feed)
type EventSink interface {
	OrderSynced(order *models.Order)
}

// SyncService pulls orders from the Olist/Tiny marketplace and reconciles
// them into local storage. A single run is strictly serial: one search call,
// then one detail fetch per order, paced against the remote rate limit.
type SyncService struct {
	client   *Client
	store    storage.Store
	resolver *Resolver
	pacer    *Pacer
	cfg      Config
	events   EventSink
	running  atomic.Bool
	stop     chan struct{}
}

// NewSyncService creates a new marketplace synchronization service. The
// events sink may be nil.
func NewSyncService(store storage.Store, cfg Config, events EventSink) *SyncService {
	pacer := NewPacer(cfg.RateLimit)
	return &SyncService{
		client:   NewClient(cfg.APIURL, cfg.APIToken, pacer),
		store:    store,
		resolver: NewResolver(store),
		pacer:    pacer,
		cfg:      cfg,
		events:   events,
		stop:     make(chan struct{}),
	}
}

// Start begins the recurring sync loop. Each tick syncs today's orders; a
// tick that fires while a previous run is still active is skipped.
func (s *SyncService) Start() {
	if s.cfg.APIToken == "" {
		log.Println("Olist Sync disabled: OLIST_API_TOKEN not configured")
		return
	}

	interval := time.Duration(s.cfg.SyncInterval) * time.Minute
	if s.cfg.SyncInterval <= 0 {
		interval = 2 * time.Minute
	}

	go func() {
		log.Println("📡 Olist Sync Service started")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runTick()
			case <-s.stop:
				log.Println("🛑 Olist Sync Service stopped")
				return
			}
		}
	}()
}

// Stop halts the service
func (s *SyncService) Stop() {
	close(s.stop)
}

// runTick syncs the single-day range [today, today]. Errors are logged and
// swallowed so one failed tick never stops future ticks.
func (s *SyncService) runTick() {
	today := TodayStoreDate()
	report, err := s.RunSync(context.Background(), today, today, "")
	if err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			log.Println("⏭️ Olist: previous run still active, skipping tick")
			return
		}
		log.Printf("❌ Olist: sync tick failed: %v", err)
		return
	}
	if report.Found > 0 {
		log.Printf("✅ Olist: %d/%d orders synced (%d skipped)", report.Synced, report.Found, report.Skipped)
	}
}

// RunSync executes one full run for a date range (DD/MM/YYYY). A failing
// search aborts the run; every other failure skips only the affected order.
func (s *SyncService) RunSync(ctx context.Context, dateFrom, dateTo, statusFilter string) (*SyncReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	log.Printf("🔄 Olist: syncing orders from %s to %s...", dateFrom, dateTo)

	headers, err := s.client.SearchOrders(ctx, dateFrom, dateTo, statusFilter)
	if err != nil {
		return nil, fmt.Errorf("order search failed: %w", err)
	}

	// Fresh cache per run so catalog edits made since the last run are
	// re-read from storage.
	cache := NewRunCache()
	runDate := ParseRunDate(dateFrom)
	report := &SyncReport{Found: len(headers)}

	for _, header := range headers {
		if s.pacer.ShouldPause() {
			s.pacer.Pause()
		}

		detail, err := s.client.FetchOrderDetail(ctx, header.ID.String())
		if err != nil {
			log.Printf("⚠️ Olist: skipping order %s: %v", header.ID, err)
			report.Skipped++
			continue
		}

		persisted, recognized, err := s.syncOne(cache, detail, runDate)
		if err != nil {
			log.Printf("⚠️ Olist: failed to sync order %s: %v", header.ID, err)
			report.Skipped++
			continue
		}
		if !persisted {
			report.Skipped++
			continue
		}
		if !recognized {
			report.Unrecognized++
			log.Printf("⚠️ Olist: order %s has unrecognized status %q, stored as pending", header.ID, detail.Situacao)
		}
		report.Synced++
	}

	if report.Unrecognized > 0 {
		log.Printf("⚠️ Olist: %d orders carried unrecognized remote statuses this run", report.Unrecognized)
	}

	return report, nil
}

// syncOne resolves, maps and upserts a single remote order. The first
// return value reports whether the order was actually persisted.
func (s *SyncService) syncOne(cache *RunCache, detail *OrderDetail, runDate time.Time) (bool, bool, error) {
	user, err := s.resolver.ResolveUser(detail.NomeEcommerce.String())
	if err != nil {
		return false, false, fmt.Errorf("failed to resolve user: %w", err)
	}

	var items []models.OrderItem
	for i, entry := range detail.Itens {
		// Items with no code and no description carry no usable data
		if entry.Item.Codigo == "" && entry.Item.Descricao == "" {
			continue
		}

		resolved, err := s.resolver.ResolveProduct(cache, entry.Item, detail.ID.String(), i)
		if err != nil {
			return false, false, fmt.Errorf("failed to resolve product for item %d: %w", i, err)
		}
		items = append(items, MapLineItem(entry.Item, resolved))
	}

	order, recognized, err := MapOrder(detail, user, items, runDate)
	if err != nil {
		if errors.Is(err, ErrEmptyOrder) {
			log.Printf("⚠️ Olist: order %s has no valid items, not persisting", detail.ID)
			return false, true, nil
		}
		return false, false, err
	}

	if err := s.upsert(order); err != nil {
		return false, false, err
	}

	if s.events != nil {
		s.events.OrderSynced(order)
	}
	return true, recognized, nil
}

// upsert inserts the order on first sight of its external id and otherwise
// overwrites the mutable fields, preserving the original creation date
func (s *SyncService) upsert(order *models.Order) error {
	externalID := *order.ExternalID

	_, err := s.store.FindOrderByExternalID(externalID)
	if errors.Is(err, storage.ErrNotFound) {
		order.ID = uuid.NewString()
		return s.store.CreateOrder(order)
	}
	if err != nil {
		return err
	}

	return s.store.UpdateOrderByExternalID(externalID, storage.OrderUpdate{
		Name:                   order.Name,
		MarketplaceOrderNumber: order.MarketplaceOrderNumber,
		EcommerceOrderNumber:   order.EcommerceOrderNumber,
		CustomerDisplayName:    order.CustomerDisplayName,
		ShippingAddress:        order.ShippingAddress,
		Phone:                  order.Phone,
		PaymentMethod:          order.PaymentMethod,
		Items:                  order.Items.Data(),
		TotalCost:              order.TotalCost,
		TotalAmount:            order.TotalAmount,
		TotalQuantity:          order.TotalQuantity,
		Status:                 order.Status,
		Source:                 order.Source,
	})
}

// TodayStoreDate formats today's date as DD/MM/YYYY in the store's
// business timezone
func TodayStoreDate() string {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.FixedZone("BRT", -3*60*60)
	}
	return time.Now().In(loc).Format("02/01/2006")
}
