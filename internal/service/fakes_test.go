package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/events"
	"github.com/spec-kit/marketplace-service/internal/repository"
)

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]*domain.Account{}}
}

func (f *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account.ID = uuid.NewString()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	stored := *account
	f.accounts[account.ID] = &stored
	return nil
}

func (f *fakeAccountRepo) Update(_ context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.accounts[account.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	existing.FirstName = account.FirstName
	existing.LastName = account.LastName
	existing.Email = account.Email
	existing.RoleID = account.RoleID
	existing.RoleStatus = account.RoleStatus
	return nil
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (f *fakeAccountRepo) find(match func(*domain.Account) bool) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if match(account) {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	return f.find(func(a *domain.Account) bool { return a.Username == username })
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	return f.find(func(a *domain.Account) bool { return strings.EqualFold(a.Email, email) })
}

func (f *fakeAccountRepo) List(_ context.Context, filter repository.AccountFilter) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Account
	for _, account := range f.accounts {
		if filter.Role != nil && account.RoleName != *filter.Role {
			continue
		}
		if filter.IsActive != nil && account.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, *account)
	}
	return out, nil
}

func (f *fakeAccountRepo) IncrementLoginCount(_ context.Context, id string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	account.LoginCount++
	return account.LoginCount, nil
}

func (f *fakeAccountRepo) SetActive(_ context.Context, id string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.IsActive = active
	return nil
}

func (f *fakeAccountRepo) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	account.PasswordHash = hash
	return nil
}

type fakeRoleRepo struct {
	mu    sync.Mutex
	roles map[string]*domain.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: map[string]*domain.Role{}}
}

func (f *fakeRoleRepo) Create(_ context.Context, role *domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	role.ID = uuid.NewString()
	stored := *role
	f.roles[role.ID] = &stored
	return nil
}

func (f *fakeRoleRepo) GetByID(_ context.Context, id string) (*domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *role
	return &copied, nil
}

func (f *fakeRoleRepo) GetByName(_ context.Context, name domain.RoleName) (*domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, role := range f.roles {
		if role.Name == name {
			copied := *role
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Role
	for _, role := range f.roles {
		out = append(out, *role)
	}
	return out, nil
}

type fakeProductRepo struct {
	mu        sync.Mutex
	products  map[string]*domain.Product
	deleteErr error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*domain.Product{}}
}

func (f *fakeProductRepo) Create(_ context.Context, product *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	product.ID = uuid.NewString()
	stored := *product
	f.products[product.ID] = &stored
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, product *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[product.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *product
	f.products[product.ID] = &stored
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return pgx.ErrNoRows
	}
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *product
	return &copied, nil
}

func (f *fakeProductRepo) ListWithFilter(_ context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Product
	for _, product := range f.products {
		if filter.SupplierID != nil && product.SupplierID != *filter.SupplierID {
			continue
		}
		if filter.Category != nil && !strings.EqualFold(product.Category, *filter.Category) {
			continue
		}
		out = append(out, *product)
	}
	return out, nil
}

func (f *fakeProductRepo) ReserveQuantity(_ context.Context, id string, qty float64) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok || product.AvailableQuantity < qty {
		return nil, pgx.ErrNoRows
	}
	product.AvailableQuantity -= qty
	copied := *product
	return &copied, nil
}

func (f *fakeProductRepo) ReleaseQuantity(_ context.Context, id string, qty float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return pgx.ErrNoRows
	}
	product.AvailableQuantity += qty
	return nil
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	createErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.Order{}}
}

func (f *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	order.ID = uuid.NewString()
	order.OrderDate = time.Now()
	stored := *order
	f.orders[order.ID] = &stored
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id string, from, to domain.OrderStatus, payment domain.PaymentStatus) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok || order.Status != from {
		return nil, pgx.ErrNoRows
	}
	order.Status = to
	order.PaymentStatus = payment
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) ListWithFilter(_ context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, order := range f.orders {
		if filter.VendorID != nil && order.VendorID != *filter.VendorID {
			continue
		}
		if filter.SupplierID != nil && order.SupplierID != *filter.SupplierID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, order.Status) {
			continue
		}
		out = append(out, *order)
	}
	return out, nil
}

func containsStatus(statuses []domain.OrderStatus, s domain.OrderStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews []domain.Review
}

func (f *fakeReviewRepo) Create(_ context.Context, review *domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	review.ID = uuid.NewString()
	review.CreatedAt = time.Now()
	f.reviews = append(f.reviews, *review)
	return nil
}

func (f *fakeReviewRepo) ListBySupplier(_ context.Context, supplierID string, _ repository.Page) ([]domain.Review, error) {
	return f.filter(func(r domain.Review) bool { return r.SupplierID == supplierID }), nil
}

func (f *fakeReviewRepo) ListByVendor(_ context.Context, vendorID string, _ repository.Page) ([]domain.Review, error) {
	return f.filter(func(r domain.Review) bool { return r.VendorID == vendorID }), nil
}

func (f *fakeReviewRepo) filter(match func(domain.Review) bool) []domain.Review {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Review
	for _, r := range f.reviews {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeReviewRepo) SupplierRating(_ context.Context, supplierID string) (*domain.SupplierRating, error) {
	reviews := f.filter(func(r domain.Review) bool { return r.SupplierID == supplierID })
	rating := &domain.SupplierRating{SupplierID: supplierID, Count: len(reviews)}
	if len(reviews) == 0 {
		return rating, nil
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	rating.Average = float64(total) / float64(len(reviews))
	return rating, nil
}

type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.published))
	for _, e := range d.published {
		out = append(out, e.Type)
	}
	return out
}

type recordingRevoker struct {
	revoked []string
}

func (r *recordingRevoker) Revoke(_ context.Context, claims *auth.Claims) error {
	r.revoked = append(r.revoked, claims.TokenID)
	return nil
}

func (r *recordingRevoker) IsRevoked(_ context.Context, claims *auth.Claims) (bool, error) {
	for _, id := range r.revoked {
		if id == claims.TokenID {
			return true, nil
		}
	}
	return false, nil
}
