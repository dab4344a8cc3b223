// Package testdb opens throwaway in-memory databases for package tests.
package testdb

import (
	"sync/atomic"
	"testing"

	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated sqlite database. The pool is pinned to one
// connection because every connection to ":memory:" is a separate database.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func Product(t *testing.T, db *gorm.DB, name, price string, stock int, active bool) models.Product {
	t.Helper()

	p := models.Product{
		Name:         name,
		PriceTo:      decimal.RequireFromString(price),
		CurrentStock: stock,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&p).Error)
	if !active {
		// default:true on the column swallows a false zero value on insert
		require.NoError(t, db.Model(&p).Update("is_active", false).Error)
		p.IsActive = false
	}
	return p
}

func Address(t *testing.T, db *gorm.DB, userID uuid.UUID, main bool) models.Address {
	t.Helper()

	a := models.Address{
		UserID:    userID,
		Recipient: "Ana Souza",
		Street:    "Rua das Flores",
		Number:    "42",
		City:      "São Paulo",
		State:     "SP",
		ZipCode:   "01000-000",
		IsMain:    main,
	}
	require.NoError(t, db.Create(&a).Error)
	return a
}

func Stock(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()

	var p models.Product
	require.NoError(t, db.Where("id = ?", productID).Take(&p).Error)
	return p.CurrentStock
}

// Interleave runs sql once on the statement's own connection, right before
// the first create or update that targets table. It stands in for another
// session committing between a read and the write that depends on it.
// The returned func reports whether it ran.
func Interleave(t *testing.T, db *gorm.DB, table, sql string, args ...any) func() bool {
	t.Helper()

	var done atomic.Bool
	hook := func(tx *gorm.DB) {
		if tx.Statement.Table != table || !done.CompareAndSwap(false, true) {
			return
		}
		if _, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context, sql, args...); err != nil {
			_ = tx.AddError(err)
		}
	}

	name := "testdb:interleave:" + table
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register(name, hook))
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register(name, hook))
	return done.Load
}
