package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/campaign-service/internal/domain"
	"github.com/spec-kit/campaign-service/internal/repository"
)

// memStore backs the fake repositories with shared in-memory state.
type memStore struct {
	mu            sync.Mutex
	users         map[string]*domain.User         // by id
	verifications map[string]*domain.Verification // by lowercase email
	payments      map[string]*domain.Payment      // by reference
	campaigns     map[string]*domain.Campaign     // by id

	paymentStatusWrites  int
	campaignStatusWrites int
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[string]*domain.User),
		verifications: make(map[string]*domain.Verification),
		payments:      make(map[string]*domain.Payment),
		campaigns:     make(map[string]*domain.Campaign),
	}
}

func (m *memStore) repos() repository.Repos {
	return repository.Repos{
		Users:         &memUserRepo{store: m},
		Verifications: &memVerificationRepo{store: m},
		Payments:      &memPaymentRepo{store: m},
		Campaigns:     &memCampaignRepo{store: m},
	}
}

// memTransactor satisfies repository.Transactor without a database.
// Rollback is not simulated; the tests only assert committed outcomes.
type memTransactor struct {
	store *memStore
}

func (t *memTransactor) InTx(_ context.Context, fn func(r repository.Repos) error) error {
	return fn(t.store.repos())
}

type memUserRepo struct {
	store *memStore
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	clone := *user
	r.store.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.Version++
	clone := *user
	r.store.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memVerificationRepo struct {
	store *memStore
}

func (r *memVerificationRepo) Create(_ context.Context, v *domain.Verification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := strings.ToLower(v.Email)
	if _, ok := r.store.verifications[key]; ok {
		return repository.ErrDuplicate
	}
	v.ID = uuid.NewString()
	clone := *v
	r.store.verifications[key] = &clone
	return nil
}

func (r *memVerificationRepo) GetByEmail(_ context.Context, email string) (*domain.Verification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	v, ok := r.store.verifications[strings.ToLower(email)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *v
	return &clone, nil
}

func (r *memVerificationRepo) UpdateTries(_ context.Context, id string, tries int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, v := range r.store.verifications {
		if v.ID == id {
			v.Tries = tries
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memVerificationRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for key, v := range r.store.verifications {
		if v.ID == id {
			delete(r.store.verifications, key)
			return nil
		}
	}
	return nil
}

func (r *memVerificationRepo) DeleteByEmail(_ context.Context, email string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.verifications, strings.ToLower(email))
	return nil
}

type memPaymentRepo struct {
	store *memStore
}

func (r *memPaymentRepo) Create(_ context.Context, payment *domain.Payment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.payments[payment.Reference]; ok {
		return repository.ErrDuplicate
	}
	payment.ID = uuid.NewString()
	clone := *payment
	r.store.payments[payment.Reference] = &clone
	return nil
}

func (r *memPaymentRepo) GetByReference(_ context.Context, reference string) (*domain.Payment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	payment, ok := r.store.payments[reference]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *payment
	return &clone, nil
}

func (r *memPaymentRepo) UpdateStatus(_ context.Context, id string, status domain.PaymentStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, payment := range r.store.payments {
		if payment.ID == id {
			payment.Status = status
			r.store.paymentStatusWrites++
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memCampaignRepo struct {
	store *memStore
}

func (r *memCampaignRepo) GetByID(_ context.Context, id string) (*domain.Campaign, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	campaign, ok := r.store.campaigns[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *campaign
	return &clone, nil
}

func (r *memCampaignRepo) UpdateStatus(_ context.Context, id string, status domain.CampaignStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	campaign, ok := r.store.campaigns[id]
	if !ok {
		return pgx.ErrNoRows
	}
	campaign.Status = status
	r.store.campaignStatusWrites++
	return nil
}

// fakeMailer records dispatched messages and can simulate failures.
type fakeMailer struct {
	mu       sync.Mutex
	sent     []fakeMessage
	failWith error
}

type fakeMessage struct {
	to      string
	subject string
	body    string
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.sent = append(m.sent, fakeMessage{to: to, subject: subject, body: body})
	return nil
}

// fakeGateway counts calls so tests can assert ordering boundaries.
type fakeGateway struct {
	initCalls    int
	verifyCalls  int
	authURL      string
	verifyResult bool
	sigValid     bool
	initErr      error
}

func (g *fakeGateway) Initialize(_ context.Context, _ string, _ int64, _, _ string) (string, error) {
	g.initCalls++
	if g.initErr != nil {
		return "", g.initErr
	}
	return g.authURL, nil
}

func (g *fakeGateway) Verify(_ context.Context, _ string) (bool, error) {
	g.verifyCalls++
	return g.verifyResult, nil
}

func (g *fakeGateway) VerifySignature(_ []byte, _ string) bool {
	return g.sigValid
}
