package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Postgres implementa o token de escrow em banco: contas de usuário mais a
// conta de custódia (house), que recebe todo pull e origina todo push
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// HouseUserID identifica a conta de custódia do ledger
const HouseUserID = "__house__"

// GetOrCreateAccount retorna o accountId e saldo de um usuário, criando a
// conta se não existir. Usa transação para garantir atomicidade
func (p *Postgres) GetOrCreateAccount(ctx context.Context, userID string) (accountID string, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	accountID, balance, err = getOrCreateLocked(ctx, tx, userID)
	if err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return accountID, balance, nil
}

// Deposit credita a conta do usuário e registra a operação no ledger
func (p *Postgres) Deposit(ctx context.Context, userID string, amount int64, externalRef string) (accountID string, newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	accountID, _, err = getOrCreateLocked(ctx, tx, userID)
	if err != nil {
		return "", 0, err
	}

	if err = credit(ctx, tx, accountID, amount, "deposit:"+externalRef); err != nil {
		return "", 0, err
	}

	if err = tx.QueryRowContext(ctx, `SELECT balance FROM escrow_accounts WHERE id=$1`, accountID).Scan(&newBalance); err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return accountID, newBalance, nil
}

// Pull move amount da conta do usuário para a custódia (transferFrom).
// Tudo ou nada: saldo insuficiente ou qualquer falha desfaz a transação
func (p *Postgres) Pull(ctx context.Context, userID string, amount int64, externalRef string) (newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Ordem fixa de locks em pull e push: casa primeiro, depois o usuário.
	// Ordens opostas sob concorrência geram deadlock entre as transações
	houseID, _, err := getOrCreateLocked(ctx, tx, HouseUserID)
	if err != nil {
		return 0, err
	}

	// Lock na conta do usuário; precisa existir e ter saldo
	var fromID string
	var fromBalance int64
	err = tx.QueryRowContext(ctx, `SELECT id, balance FROM escrow_accounts WHERE user_id=$1 FOR UPDATE`, userID).Scan(&fromID, &fromBalance)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	} else if err != nil {
		return 0, err
	}
	if fromBalance < amount {
		return 0, ErrInsufficientFunds
	}

	if err = debit(ctx, tx, fromID, amount, "pull:"+externalRef); err != nil {
		return 0, err
	}
	if err = credit(ctx, tx, houseID, amount, "pull:"+externalRef); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return fromBalance - amount, nil
}

// Push move amount da custódia para a conta do usuário (transfer)
func (p *Postgres) Push(ctx context.Context, userID string, amount int64, externalRef string) (newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var houseID string
	var houseBalance int64
	err = tx.QueryRowContext(ctx, `SELECT id, balance FROM escrow_accounts WHERE user_id=$1 FOR UPDATE`, HouseUserID).Scan(&houseID, &houseBalance)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	} else if err != nil {
		return 0, err
	}
	if houseBalance < amount {
		return 0, ErrInsufficientFunds
	}

	toID, _, err := getOrCreateLocked(ctx, tx, userID)
	if err != nil {
		return 0, err
	}

	if err = debit(ctx, tx, houseID, amount, "push:"+externalRef); err != nil {
		return 0, err
	}
	if err = credit(ctx, tx, toID, amount, "push:"+externalRef); err != nil {
		return 0, err
	}

	if err = tx.QueryRowContext(ctx, `SELECT balance FROM escrow_accounts WHERE id=$1`, toID).Scan(&newBalance); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// getOrCreateLocked busca a conta com lock pessimista, criando se necessário
func getOrCreateLocked(ctx context.Context, tx *sql.Tx, userID string) (accountID string, balance int64, err error) {
	err = tx.QueryRowContext(ctx, `SELECT id, balance FROM escrow_accounts WHERE user_id=$1 FOR UPDATE`, userID).Scan(&accountID, &balance)
	if err == sql.ErrNoRows {
		accountID = uuid.NewString()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO escrow_accounts(id, user_id, balance, version) VALUES($1,$2,0,1)`,
			accountID, userID); err != nil {
			return "", 0, err
		}
		return accountID, 0, nil
	}
	return accountID, balance, err
}

func credit(ctx context.Context, tx *sql.Tx, accountID string, amount int64, description string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE escrow_accounts SET balance = balance + $1, version = version + 1 WHERE id=$2`,
		amount, accountID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO escrow_ledger(account_id, operation_type, amount, description) VALUES($1,'CREDIT',$2,$3)`,
		accountID, amount, description)
	return err
}

func debit(ctx context.Context, tx *sql.Tx, accountID string, amount int64, description string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE escrow_accounts SET balance = balance - $1, version = version + 1 WHERE id=$2`,
		amount, accountID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO escrow_ledger(account_id, operation_type, amount, description) VALUES($1,'DEBIT',$2,$3)`,
		accountID, amount, description)
	return err
}
