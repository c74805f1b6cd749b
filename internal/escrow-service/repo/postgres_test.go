package repo

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	lockAccountQ  = `SELECT id, balance FROM escrow_accounts WHERE user_id=$1 FOR UPDATE`
	balanceByIDQ  = `SELECT balance FROM escrow_accounts WHERE id=$1`
	debitQ        = `UPDATE escrow_accounts SET balance = balance - $1, version = version + 1 WHERE id=$2`
	creditQ       = `UPDATE escrow_accounts SET balance = balance + $1, version = version + 1 WHERE id=$2`
	ledgerDebitQ  = `INSERT INTO escrow_ledger(account_id, operation_type, amount, description) VALUES($1,'DEBIT',$2,$3)`
	ledgerCreditQ = `INSERT INTO escrow_ledger(account_id, operation_type, amount, description) VALUES($1,'CREDIT',$2,$3)`
)

func newMockRepo(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db), mock
}

func accountRow(id string, balance int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "balance"}).AddRow(id, balance)
}

// Pull e Push adquirem os locks na mesma ordem (casa antes do usuário);
// as expectativas do mock são ordenadas, então qualquer inversão falha
func TestPullLocksHouseBeforeUser(t *testing.T) {
	p, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockAccountQ).WithArgs(HouseUserID).WillReturnRows(accountRow("house-1", 0))
	mock.ExpectQuery(lockAccountQ).WithArgs("alice").WillReturnRows(accountRow("acc-1", 10000))
	mock.ExpectExec(debitQ).WithArgs(4000, "acc-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(ledgerDebitQ).WithArgs("acc-1", 4000, "pull:bet-1").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(creditQ).WithArgs(4000, "house-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(ledgerCreditQ).WithArgs("house-1", 4000, "pull:bet-1").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	newBalance, err := p.Pull(context.Background(), "alice", 4000, "bet-1")
	require.NoError(t, err)
	assert.Equal(t, int64(6000), newBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPushLocksHouseBeforeUser(t *testing.T) {
	p, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockAccountQ).WithArgs(HouseUserID).WillReturnRows(accountRow("house-1", 10000))
	mock.ExpectQuery(lockAccountQ).WithArgs("alice").WillReturnRows(accountRow("acc-1", 100))
	mock.ExpectExec(debitQ).WithArgs(3000, "house-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(ledgerDebitQ).WithArgs("house-1", 3000, "push:bet-1").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(creditQ).WithArgs(3000, "acc-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(ledgerCreditQ).WithArgs("acc-1", 3000, "push:bet-1").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectQuery(balanceByIDQ).WithArgs("acc-1").WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(3100))
	mock.ExpectCommit()

	newBalance, err := p.Push(context.Background(), "alice", 3000, "bet-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3100), newBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPullInsufficientFundsRollsBack(t *testing.T) {
	p, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockAccountQ).WithArgs(HouseUserID).WillReturnRows(accountRow("house-1", 0))
	mock.ExpectQuery(lockAccountQ).WithArgs("alice").WillReturnRows(accountRow("acc-1", 50))
	mock.ExpectRollback()

	_, err := p.Pull(context.Background(), "alice", 100, "bet-1")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.NoError(t, mock.ExpectationsWereMet())
}
