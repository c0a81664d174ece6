package procurement

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

// ErrNoLines rejects a purchase order without any items on it.
var ErrNoLines = errors.New("procurement: purchase order has no lines")

// RepositoryPort is the persistence contract the service depends on.
type RepositoryPort interface {
	ListVendors(ctx context.Context) ([]Vendor, error)
	GetVendor(ctx context.Context, id int64) (Vendor, error)
	CreateVendor(ctx context.Context, vendor Vendor) (Vendor, error)
	UpdateVendor(ctx context.Context, vendor Vendor) error
	DisableVendor(ctx context.Context, id int64) error
	ListPurchases(ctx context.Context) ([]PurchaseOrder, error)
	GetPurchase(ctx context.Context, id int64) (PurchaseOrder, error)
	CreatePurchase(ctx context.Context, order PurchaseOrder) (PurchaseOrder, error)
	UpdatePurchase(ctx context.Context, order PurchaseOrder) error
	DeletePurchase(ctx context.Context, id int64) error
	UpdatePurchaseItem(ctx context.Context, line PurchaseItem) error
	DeletePurchaseItem(ctx context.Context, id int64) error
}

// Service holds the vendor and purchase order use cases.
type Service struct {
	repo  RepositoryPort
	clock func() time.Time
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Vendors lists every vendor sorted by name.
func (s *Service) Vendors(ctx context.Context) ([]Vendor, error) {
	vendors, err := s.repo.ListVendors(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(vendors, func(i, j int) bool {
		return strings.ToLower(vendors[i].VendorName) < strings.ToLower(vendors[j].VendorName)
	})
	return vendors, nil
}

// Vendor fetches a single vendor.
func (s *Service) Vendor(ctx context.Context, id int64) (Vendor, error) {
	return s.repo.GetVendor(ctx, id)
}

// SaveVendor creates the vendor when it has no ID yet, otherwise updates it.
func (s *Service) SaveVendor(ctx context.Context, vendor Vendor) (Vendor, error) {
	vendor.VendorName = strings.TrimSpace(vendor.VendorName)
	if vendor.VendorID == 0 {
		return s.repo.CreateVendor(ctx, vendor)
	}
	return vendor, s.repo.UpdateVendor(ctx, vendor)
}

// DisableVendor retires a vendor so new purchases cannot target it.
func (s *Service) DisableVendor(ctx context.Context, id int64) error {
	return s.repo.DisableVendor(ctx, id)
}

// Purchases lists every purchase order, newest first.
func (s *Service) Purchases(ctx context.Context) ([]PurchaseOrder, error) {
	orders, err := s.repo.ListPurchases(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].Date().After(orders[j].Date())
	})
	return orders, nil
}

// Purchase fetches a single purchase order with its lines.
func (s *Service) Purchase(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.repo.GetPurchase(ctx, id)
}

// PlacePurchase stamps the order with the acting admin and the current time,
// then submits it.
func (s *Service) PlacePurchase(ctx context.Context, adminID, vendorID int64, lines []PurchaseItem) (PurchaseOrder, error) {
	if len(lines) == 0 {
		return PurchaseOrder{}, ErrNoLines
	}
	order := PurchaseOrder{
		AdminID:       adminID,
		VendorID:      vendorID,
		PurchaseDate:  FormatPurchaseDate(s.clock()),
		PurchaseItems: lines,
	}
	return s.repo.CreatePurchase(ctx, order)
}

// UpdatePurchase replaces an existing purchase order.
func (s *Service) UpdatePurchase(ctx context.Context, order PurchaseOrder) error {
	return s.repo.UpdatePurchase(ctx, order)
}

// DeletePurchase removes a purchase order.
func (s *Service) DeletePurchase(ctx context.Context, id int64) error {
	return s.repo.DeletePurchase(ctx, id)
}

// UpdateLine replaces a single purchase line.
func (s *Service) UpdateLine(ctx context.Context, line PurchaseItem) error {
	return s.repo.UpdatePurchaseItem(ctx, line)
}

// DeleteLine removes a single purchase line.
func (s *Service) DeleteLine(ctx context.Context, id int64) error {
	return s.repo.DeletePurchaseItem(ctx, id)
}
