package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"repaircrm_backend/internal/activity"
	"repaircrm_backend/internal/customers/repository"
	"repaircrm_backend/internal/events"
	"repaircrm_backend/platform/apperr"
	"repaircrm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeCustomerStore is an in-memory CustomerStore enforcing the same phone
// uniqueness the database index provides.
type fakeCustomerStore struct {
	mu        sync.Mutex
	customers map[uuid.UUID]repository.Customer
	// raceOnCreate simulates losing the first-conversion race: the next
	// Create fails with a unique violation after inserting a competing row.
	raceOnCreate bool
}

func newFakeCustomerStore() *fakeCustomerStore {
	return &fakeCustomerStore{customers: make(map[uuid.UUID]repository.Customer)}
}

func (f *fakeCustomerStore) GetByID(_ context.Context, id uuid.UUID) (repository.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return repository.Customer{}, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeCustomerStore) GetByLeadID(_ context.Context, leadID uuid.UUID) (repository.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.customers {
		if c.LeadID != nil && *c.LeadID == leadID {
			return c, nil
		}
	}
	return repository.Customer{}, repository.ErrNotFound
}

func (f *fakeCustomerStore) GetByPhone(_ context.Context, phone string) (repository.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byPhoneLocked(phone)
}

func (f *fakeCustomerStore) byPhoneLocked(phone string) (repository.Customer, error) {
	for _, c := range f.customers {
		if c.ContactNumber == phone {
			return c, nil
		}
	}
	return repository.Customer{}, repository.ErrNotFound
}

func (f *fakeCustomerStore) Create(_ context.Context, params repository.CreateCustomerParams) (repository.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.raceOnCreate {
		f.raceOnCreate = false
		competing := repository.Customer{
			ID:            uuid.New(),
			Name:          "Concurrent Winner",
			ContactNumber: params.ContactNumber,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		f.customers[competing.ID] = competing
		return repository.Customer{}, &pgconn.PgError{Code: "23505", ConstraintName: "uq_customers_contact_number"}
	}

	if _, err := f.byPhoneLocked(params.ContactNumber); err == nil {
		return repository.Customer{}, &pgconn.PgError{Code: "23505", ConstraintName: "uq_customers_contact_number"}
	}

	c := repository.Customer{
		ID:                 uuid.New(),
		Name:               params.Name,
		ContactNumber:      params.ContactNumber,
		Email:              params.Email,
		LeadID:             params.LeadID,
		LifetimeValueCents: params.LifetimeValueCents,
		TotalRepairs:       params.TotalRepairs,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	f.customers[c.ID] = c
	return c, nil
}

func (f *fakeCustomerStore) IncrementConversion(_ context.Context, id uuid.UUID, amountCents int64) (repository.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return repository.Customer{}, repository.ErrNotFound
	}
	c.LifetimeValueCents += amountCents
	c.TotalRepairs++
	c.UpdatedAt = time.Now()
	f.customers[id] = c
	return c, nil
}

func (f *fakeCustomerStore) LinkLead(_ context.Context, id, leadID uuid.UUID) (repository.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return repository.Customer{}, repository.ErrNotFound
	}
	if c.LeadID == nil {
		c.LeadID = &leadID
	}
	f.customers[id] = c
	return c, nil
}

func (f *fakeCustomerStore) List(_ context.Context, _ repository.ListParams) ([]repository.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Customer, 0, len(f.customers))
	for _, c := range f.customers {
		out = append(out, c)
	}
	return out, nil
}

type fakeLeadReader struct {
	leads map[uuid.UUID]LeadDetails
}

func (f fakeLeadReader) GetLead(_ context.Context, id uuid.UUID) (LeadDetails, error) {
	lead, ok := f.leads[id]
	if !ok {
		return LeadDetails{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, activity.Entry) {}

type nopBus struct{}

func (nopBus) Publish(context.Context, events.Event)           {}
func (nopBus) PublishSync(context.Context, events.Event) error { return nil }
func (nopBus) Subscribe(string, events.Handler)                {}

func amount(v int64) *int64 { return &v }

func newTestService(store CustomerStore, leads LeadReader) *Service {
	svc := New(store, nopAudit{}, nopBus{}, logger.New("development"))
	svc.SetLeadReader(leads)
	return svc
}

func TestConvertWonLeadCreatesCustomer(t *testing.T) {
	store := newFakeCustomerStore()
	leadID := uuid.New()
	svc := newTestService(store, fakeLeadReader{leads: map[uuid.UUID]LeadDetails{
		leadID: {ID: leadID, CustomerName: "Asha Rao", ContactNumber: "+919876543210", QuotedAmountCents: amount(100000)},
	}})

	if err := svc.ConvertWonLead(context.Background(), leadID); err != nil {
		t.Fatalf("ConvertWonLead: %v", err)
	}

	c, err := store.GetByLeadID(context.Background(), leadID)
	if err != nil {
		t.Fatalf("customer not created: %v", err)
	}
	if c.LifetimeValueCents != 100000 || c.TotalRepairs != 1 {
		t.Errorf("customer = %+v, want lifetime 100000 and 1 repair", c)
	}
}

// TestConvertWonLeadIdempotence: a repeat call must not create a second row.
// It does apply its increments; a retried won transition is a new repair.
func TestConvertWonLeadIdempotence(t *testing.T) {
	store := newFakeCustomerStore()
	leadID := uuid.New()
	svc := newTestService(store, fakeLeadReader{leads: map[uuid.UUID]LeadDetails{
		leadID: {ID: leadID, CustomerName: "Asha Rao", ContactNumber: "+919876543210", QuotedAmountCents: amount(100000)},
	}})
	ctx := context.Background()

	if err := svc.ConvertWonLead(ctx, leadID); err != nil {
		t.Fatalf("first conversion: %v", err)
	}
	if err := svc.ConvertWonLead(ctx, leadID); err != nil {
		t.Fatalf("second conversion: %v", err)
	}

	all, _ := store.List(ctx, repository.ListParams{})
	if len(all) != 1 {
		t.Fatalf("customer rows = %d, want exactly 1", len(all))
	}
	if all[0].LifetimeValueCents != 200000 || all[0].TotalRepairs != 2 {
		t.Errorf("customer = %+v, want two increments applied", all[0])
	}
}

// TestConvertWonLeadMergesByPhone: two distinct leads sharing one phone
// number merge into a single customer.
func TestConvertWonLeadMergesByPhone(t *testing.T) {
	store := newFakeCustomerStore()
	first, second := uuid.New(), uuid.New()
	svc := newTestService(store, fakeLeadReader{leads: map[uuid.UUID]LeadDetails{
		first:  {ID: first, CustomerName: "Asha Rao", ContactNumber: "+919876543210", QuotedAmountCents: amount(100000)},
		second: {ID: second, CustomerName: "Asha Rao", ContactNumber: "+919876543210", QuotedAmountCents: amount(200000)},
	}})
	ctx := context.Background()

	if err := svc.ConvertWonLead(ctx, first); err != nil {
		t.Fatalf("first lead: %v", err)
	}
	if err := svc.ConvertWonLead(ctx, second); err != nil {
		t.Fatalf("second lead: %v", err)
	}

	all, _ := store.List(ctx, repository.ListParams{})
	if len(all) != 1 {
		t.Fatalf("customer rows = %d, want 1 for a shared phone", len(all))
	}
	c := all[0]
	if c.LifetimeValueCents != 300000 {
		t.Errorf("lifetime value = %d, want 300000", c.LifetimeValueCents)
	}
	if c.TotalRepairs != 2 {
		t.Errorf("total repairs = %d, want 2", c.TotalRepairs)
	}
	// The first lead stays the canonical link.
	if c.LeadID == nil || *c.LeadID != first {
		t.Errorf("lead link = %v, want the first lead %s", c.LeadID, first)
	}
}

func TestConvertWonLeadNilQuotedAmount(t *testing.T) {
	store := newFakeCustomerStore()
	leadID := uuid.New()
	svc := newTestService(store, fakeLeadReader{leads: map[uuid.UUID]LeadDetails{
		leadID: {ID: leadID, CustomerName: "Asha Rao", ContactNumber: "+919876543210"},
	}})

	if err := svc.ConvertWonLead(context.Background(), leadID); err != nil {
		t.Fatalf("ConvertWonLead: %v", err)
	}
	c, _ := store.GetByLeadID(context.Background(), leadID)
	if c.LifetimeValueCents != 0 || c.TotalRepairs != 1 {
		t.Errorf("customer = %+v, want lifetime 0 and 1 repair", c)
	}
}

// TestConvertWonLeadLosesCreateRace: when a concurrent conversion inserts the
// phone's row first, the unique violation routes this call onto the merge path.
func TestConvertWonLeadLosesCreateRace(t *testing.T) {
	store := newFakeCustomerStore()
	store.raceOnCreate = true
	leadID := uuid.New()
	svc := newTestService(store, fakeLeadReader{leads: map[uuid.UUID]LeadDetails{
		leadID: {ID: leadID, CustomerName: "Asha Rao", ContactNumber: "+919876543210", QuotedAmountCents: amount(100000)},
	}})

	if err := svc.ConvertWonLead(context.Background(), leadID); err != nil {
		t.Fatalf("ConvertWonLead after lost race: %v", err)
	}

	all, _ := store.List(context.Background(), repository.ListParams{})
	if len(all) != 1 {
		t.Fatalf("customer rows = %d, want 1", len(all))
	}
	c := all[0]
	if c.LifetimeValueCents != 100000 || c.TotalRepairs != 1 {
		t.Errorf("customer = %+v, want this call's increment applied to the winner's row", c)
	}
	if c.LeadID == nil || *c.LeadID != leadID {
		t.Errorf("lead link = %v, want adopted lead %s", c.LeadID, leadID)
	}
}

func TestConvertLeadToCustomerConflictsWhenAlreadyLinked(t *testing.T) {
	store := newFakeCustomerStore()
	leadID := uuid.New()
	svc := newTestService(store, fakeLeadReader{leads: map[uuid.UUID]LeadDetails{
		leadID: {ID: leadID, CustomerName: "Asha Rao", ContactNumber: "+919876543210", QuotedAmountCents: amount(100000)},
	}})
	ctx := context.Background()

	if _, err := svc.ConvertLeadToCustomer(ctx, leadID); err != nil {
		t.Fatalf("first manual conversion: %v", err)
	}

	_, err := svc.ConvertLeadToCustomer(ctx, leadID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("repeat manual conversion err = %v, want conflict", err)
	}

	all, _ := store.List(ctx, repository.ListParams{})
	if len(all) != 1 {
		t.Errorf("customer rows = %d, want 1", len(all))
	}
}

func TestConvertWonLeadUnknownLead(t *testing.T) {
	svc := newTestService(newFakeCustomerStore(), fakeLeadReader{leads: map[uuid.UUID]LeadDetails{}})

	err := svc.ConvertWonLead(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}
