package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/farhansajid/visamock/internal/apperror"
	"github.com/farhansajid/visamock/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLedgerService(t *testing.T) (LedgerService, *gorm.DB) {
	db := newTestDB(t)
	return NewLedgerService(repository.NewProfileRepository(db)), db
}

func TestLedgerAdjust_CreditAndDebit(t *testing.T) {
	svc, db := newLedgerService(t)
	seedProfile(t, db, 1, 20)

	balance, err := svc.Adjust(1, 100, LedgerReasonPurchase)
	require.NoError(t, err)
	assert.Equal(t, 120, balance)

	balance, err = svc.Adjust(1, -10, LedgerReasonInterviewDebit)
	require.NoError(t, err)
	assert.Equal(t, 110, balance)
}

func TestLedgerAdjust_ClampsAtZero(t *testing.T) {
	svc, db := newLedgerService(t)
	seedProfile(t, db, 1, 5)

	// An admin claw-back racing a debit can push the target below the
	// delta; the balance floors at zero instead of going negative.
	balance, err := svc.Adjust(1, -10, LedgerReasonAdminGrant)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestLedgerAdjust_UnknownProfile(t *testing.T) {
	svc, _ := newLedgerService(t)
	_, err := svc.Adjust(42, 10, LedgerReasonPurchase)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestLedgerAdjust_ConcurrentDebits(t *testing.T) {
	svc, db := newLedgerService(t)
	seedProfile(t, db, 1, 100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Adjust(1, -10, LedgerReasonInterviewDebit)
		}()
	}
	wg.Wait()

	balance, err := svc.Balance(1)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}
