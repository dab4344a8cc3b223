package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/models"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/repo"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/testdb"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type published struct {
	topic string
	key   string
	event any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{topic: topic, key: key, event: event})
	return f.err
}

func (f *fakePublisher) byTopic(topic string) []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []published
	for _, e := range f.events {
		if e.topic == topic {
			out = append(out, e)
		}
	}
	return out
}

type fakeIndexer struct {
	mu     sync.Mutex
	synced []models.Product
	err    error
}

func (f *fakeIndexer) SyncStock(_ context.Context, products []models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synced = append(f.synced, products...)
	return f.err
}

type fixture struct {
	db       *gorm.DB
	repo     *repo.GormRepo
	pub      *fakePublisher
	idx      *fakeIndexer
	cart     *CartService
	checkout *CheckoutService
	orders   *OrderService
	address  *AddressService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testdb.New(t)
	r := &repo.GormRepo{DB: db}
	pub := &fakePublisher{}
	idx := &fakeIndexer{}
	return &fixture{
		db:       db,
		repo:     r,
		pub:      pub,
		idx:      idx,
		cart:     &CartService{Repo: r, Events: pub},
		checkout: &CheckoutService{Repo: r, Events: pub, Indexer: idx},
		orders:   &OrderService{Repo: r, Events: pub, Indexer: idx},
		address:  &AddressService{Repo: r},
	}
}

func requireMessage(t *testing.T, err error, kind error, msg string) {
	t.Helper()

	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr), "want *service.Error, got %T", err)
	require.Equal(t, msg, svcErr.Msg)
}
