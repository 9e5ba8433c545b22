package db

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

// txContextKey はコンテキストにトランザクション状態を格納するためのキーです。
type txContextKey struct{}

type txState struct {
	tx          *gorm.DB
	readOnly    bool
	afterCommit []func(context.Context)
}

// TransactionManager はGORMを用いたトランザクション制御を提供します。
// トランザクションはコンテキスト経由でリポジトリに渡されます（Conn を参照）。
type TransactionManager struct {
	db *gorm.DB
	// readOnlyTx は sql.TxOptions.ReadOnly をドライバーが扱えるかどうかです。
	readOnlyTx bool
}

// NewTransactionManager は TransactionManager を生成します。db が nil の場合は nil を返し、
// nil の TransactionManager はトランザクションなしで fn を実行します。
func NewTransactionManager(db *gorm.DB) *TransactionManager {
	if db == nil {
		return nil
	}
	return &TransactionManager{
		db:         db,
		readOnlyTx: db.Dialector != nil && db.Dialector.Name() == DriverPostgres,
	}
}

// WithinReadOnly は読み取り専用トランザクションを開始し、fn を実行します。
func (m *TransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if m == nil {
		return fn(ctx)
	}
	var opts []*sql.TxOptions
	if m.readOnlyTx {
		opts = append(opts, &sql.TxOptions{ReadOnly: true})
	}
	return m.within(ctx, true, opts, fn)
}

// WithinReadWrite は読み書きトランザクションを開始し、fn を実行します。
func (m *TransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if m == nil {
		return fn(ctx)
	}
	return m.within(ctx, false, nil, fn)
}

func (m *TransactionManager) within(ctx context.Context, readOnly bool, opts []*sql.TxOptions, fn func(context.Context) error) error {
	if fn == nil {
		return errors.New("db: transaction function is required")
	}

	// 既にトランザクション内であればそれを再利用する
	if _, ok := stateFromContext(ctx); ok {
		return fn(ctx)
	}

	state := &txState{readOnly: readOnly}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state.tx = tx
		return fn(context.WithValue(ctx, txContextKey{}, state))
	}, opts...)
	if err != nil {
		return err
	}

	for _, f := range state.afterCommit {
		f(ctx)
	}
	return nil
}

func stateFromContext(ctx context.Context) (*txState, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(txContextKey{}).(*txState)
	return s, ok
}

// Conn はコンテキスト内にトランザクションが存在すればそれを返し、存在しなければ
// ctx を紐づけた fallback を返します。
func Conn(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if s, ok := stateFromContext(ctx); ok {
		return s.tx
	}
	return fallback.WithContext(ctx)
}

// InReadWriteTx は ctx が読み書きトランザクションの内側であれば true を返します。
func InReadWriteTx(ctx context.Context) bool {
	s, ok := stateFromContext(ctx)
	return ok && !s.readOnly
}

// AfterCommit は ctx のトランザクションがコミットされた後に fn を実行するよう登録します。
// ロールバックされた場合 fn は実行されません。トランザクション外では即座に実行します。
func AfterCommit(ctx context.Context, fn func(context.Context)) {
	if s, ok := stateFromContext(ctx); ok {
		s.afterCommit = append(s.afterCommit, fn)
		return
	}
	fn(ctx)
}
