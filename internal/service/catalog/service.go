package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/keystonepos/backend/internal/domain/models"
)

// Store is the persistence surface the catalog service needs. Inserts on
// keyed entities (product SKU, tax code) must fail with
// models.ErrDuplicateKey when the key is already taken.
type Store interface {
	InsertProduct(ctx context.Context, product models.Product) error
	ListProducts(ctx context.Context) ([]models.Product, error)
	CountProducts(ctx context.Context) (int64, error)

	InsertTaxRate(ctx context.Context, rate models.TaxRate) error
	ListTaxRates(ctx context.Context) ([]models.TaxRate, error)

	InsertCustomer(ctx context.Context, customer models.Customer) error
	ListCustomers(ctx context.Context) ([]models.Customer, error)

	InsertUser(ctx context.Context, user models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// Service covers catalog maintenance: product/tax/customer/user CRUD plus
// the seed operations. The sale engine itself never goes through here.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService wires a new catalog service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// SeedResult summarizes what the demo seed created.
type SeedResult struct {
	TaxesCreated int   `json:"taxes_created"`
	Products     int64 `json:"products"`
	Users        int64 `json:"users"`
}

// EnsureDefaultTaxRates installs the TVA tiers that are missing. It runs
// once at startup (and inside the seed endpoint) and is idempotent, so
// rate listing no longer has to check for defaults on every read.
func (s *Service) EnsureDefaultTaxRates(ctx context.Context) (int, error) {
	created := 0
	for _, rate := range models.DefaultTaxRates() {
		err := s.store.InsertTaxRate(ctx, rate)
		if errors.Is(err, models.ErrDuplicateKey) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed tax rate %s: %w", rate.Code, err)
		}
		created++
	}
	if created > 0 {
		s.logger.Info("default tax rates installed", zap.Int("created", created))
	}
	return created, nil
}

// SeedDemo installs default taxes, demo products (only when the catalog is
// empty) and an admin user (only when no users exist).
func (s *Service) SeedDemo(ctx context.Context) (*SeedResult, error) {
	taxes, err := s.EnsureDefaultTaxRates(ctx)
	if err != nil {
		return nil, err
	}

	productCount, err := s.store.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if productCount == 0 {
		for _, product := range models.DemoProducts() {
			if err := s.store.InsertProduct(ctx, product); err != nil {
				return nil, fmt.Errorf("seed product %s: %w", product.SKU, err)
			}
		}
		s.logger.Info("demo products installed")
	}

	userCount, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if userCount == 0 {
		admin := models.User{Username: "admin", DisplayName: "Admin", Role: "admin", IsActive: true}
		if err := s.store.InsertUser(ctx, admin); err != nil {
			return nil, fmt.Errorf("seed admin user: %w", err)
		}
	}

	productCount, err = s.store.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	userCount, err = s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	return &SeedResult{TaxesCreated: taxes, Products: productCount, Users: userCount}, nil
}

// CreateProduct inserts a product; the SKU must be unused.
func (s *Service) CreateProduct(ctx context.Context, product models.Product) error {
	if product.Unit == "" {
		product.Unit = "unit"
	}
	if product.Price < 0 {
		return fmt.Errorf("product %s: price must not be negative", product.SKU)
	}
	if product.Stock < 0 {
		return fmt.Errorf("product %s: stock must not be negative", product.SKU)
	}
	if err := s.store.InsertProduct(ctx, product); err != nil {
		return err
	}
	s.logger.Info("product created", zap.String("sku", product.SKU))
	return nil
}

// ListProducts returns the full catalog.
func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.ListProducts(ctx)
}

// CreateTaxRate inserts a tax rate; the code must be unused.
func (s *Service) CreateTaxRate(ctx context.Context, rate models.TaxRate) error {
	if rate.Rate < 0 || rate.Rate > 1 {
		return fmt.Errorf("tax rate %s: rate must be within [0,1]", rate.Code)
	}
	if err := s.store.InsertTaxRate(ctx, rate); err != nil {
		return err
	}
	s.logger.Info("tax rate created", zap.String("code", rate.Code))
	return nil
}

// ListTaxRates returns all known tax rates.
func (s *Service) ListTaxRates(ctx context.Context) ([]models.TaxRate, error) {
	return s.store.ListTaxRates(ctx)
}

// CreateCustomer inserts a customer record.
func (s *Service) CreateCustomer(ctx context.Context, customer models.Customer) error {
	return s.store.InsertCustomer(ctx, customer)
}

// ListCustomers returns all customers.
func (s *Service) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.store.ListCustomers(ctx)
}

// CreateUser inserts a user account.
func (s *Service) CreateUser(ctx context.Context, user models.User) error {
	if user.Role == "" {
		user.Role = "cashier"
	}
	return s.store.InsertUser(ctx, user)
}

// ListUsers returns all user accounts.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}
