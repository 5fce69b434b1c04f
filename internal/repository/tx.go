package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/scriberly/billing-service/pkg/logger"
)

type txKey struct{}

// SqlxTxManager реализует TxManager поверх sqlx.
type SqlxTxManager struct {
	db  *sqlx.DB
	log *logger.Logger
}

// NewSqlxTxManager создает новый менеджер транзакций.
func NewSqlxTxManager(db *sqlx.DB, log *logger.Logger) *SqlxTxManager {
	return &SqlxTxManager{db: db, log: log}
}

// WithinTx открывает транзакцию, кладет ее в контекст и выполняет fn.
// При ошибке транзакция откатывается целиком.
func (m *SqlxTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		// Уже внутри транзакции, присоединяемся к ней
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		m.log.Errorw("Failed to begin transaction", "error", err)
		return fmt.Errorf("repository: failed to begin tx: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			m.log.Errorw("Failed to rollback transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		m.log.Errorw("Failed to commit transaction", "error", err)
		return fmt.Errorf("repository: failed to commit tx: %w", err)
	}

	return nil
}

// txFromContext достает открытую транзакцию из контекста, если она есть.
func txFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx
}

// ext возвращает исполнитель запросов: транзакцию из контекста или само
// подключение к базе.
func ext(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db
}
