package sqlstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	localCommon "github.com/0xPolygon/ethtx-gateway/common"
	"github.com/0xPolygon/ethtx-gateway/types"
	sqlite "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/russross/meddler"
)

const (
	// monitoredTxsTable is table name for persisting MonitoredTx objects
	monitoredTxsTable = "monitored_txs"
)

var _ types.StorageInterface = (*SqlStorage)(nil)

// SqlStorage encapsulates logic for MonitoredTx CRUD operations.
type SqlStorage struct {
	db *sql.DB
}

// NewStorage creates and returns a new instance of SqlStorage with the given database path.
// It first opens a connection to the SQLite database and then runs the necessary migrations.
// If any error occurs during the database connection or migration process, it returns an error.
func NewStorage(driverName, dbPath string) (*SqlStorage, error) {
	if dbPath == ":memory:" {
		dbPath = "file::memory:?cache=shared"
	}

	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		pragma journal_mode = WAL;
		PRAGMA foreign_keys = ON;
		pragma synchronous = normal;
		pragma journal_size_limit  = 6144000;
	`)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(driverName, db, migrate.Up); err != nil {
		return nil, err
	}

	initMeddler()

	return &SqlStorage{db: db}, nil
}

// Close releases the database
func (s *SqlStorage) Close() error {
	return s.db.Close()
}

// Add persist a monitored transaction into the SQL database.
func (s *SqlStorage) Add(_ context.Context, mTx types.MonitoredTx) error {
	mTx.CreatedAt = time.Now()
	mTx.UpdatedAt = mTx.CreatedAt

	err := meddler.Insert(s.db, monitoredTxsTable, &mTx)
	if err != nil {
		sqlErr, success := unwrapSQLiteErr(err)
		if !success {
			return err
		}

		if sqlErr.Code == sqlite.ErrConstraint {
			return types.ErrAlreadyExists
		}
	}

	return err
}

// Remove deletes a monitored transaction from the database by its ID.
// If the transaction does not exist, it returns an ErrNotFound error.
func (s *SqlStorage) Remove(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, buildBaseDeleteStatement(monitoredTxsTable)+" WHERE id = $1", id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	// If no rows were affected, it means that the transaction was not found.
	if rowsAffected == 0 {
		return types.ErrNotFound
	}

	return nil
}

// Get retrieves a monitored transaction from the database by its ID.
// If the transaction is not found, it returns an ErrNotFound error.
func (s *SqlStorage) Get(ctx context.Context, id string) (types.MonitoredTx, error) {
	baseQuery, err := buildBaseSelectQuery(&types.MonitoredTx{}, monitoredTxsTable)
	if err != nil {
		return types.MonitoredTx{}, err
	}

	var mTx types.MonitoredTx
	err = meddler.QueryRow(s.conn(ctx), &mTx, baseQuery+" WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return types.MonitoredTx{}, types.ErrNotFound
	} else if err != nil {
		return types.MonitoredTx{}, err
	}

	return mTx, nil
}

// GetByStatus retrieves monitored transactions from the database that match the provided statuses.
// If no statuses are provided, it returns all transactions.
// The transactions are ordered by their creation date (oldest first).
func (s *SqlStorage) GetByStatus(ctx context.Context, statuses []types.MonitoredTxStatus) ([]types.MonitoredTx, error) {
	query, err := buildBaseSelectQuery(&types.MonitoredTx{}, monitoredTxsTable)
	if err != nil {
		return nil, err
	}

	args := make([]interface{}, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args = append(args, string(status))
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}

	query += " ORDER BY created_at ASC"

	var transactions []*types.MonitoredTx
	if err := meddler.QueryAll(s.conn(ctx), &transactions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query monitored transactions by status: %w", err)
	}

	return localCommon.SlicePtrsToSlice(transactions), nil
}

// Update a persisted monitored tx
func (s *SqlStorage) Update(ctx context.Context, mTx types.MonitoredTx) error {
	mTx.UpdatedAt = time.Now()

	columns, err := meddler.Columns(&mTx, false)
	if err != nil || len(columns) == 0 {
		return fmt.Errorf("failed to build the update statement (column names resolution failed): %w", err)
	}

	placeholders, err := meddler.Placeholders(&mTx, false)
	if err != nil || len(placeholders) == 0 {
		return fmt.Errorf("failed to build the update statement (placeholders resolution failed): %w", err)
	}

	// id is the first column, created_at is never updated
	setClauses := make([]string, 0, len(columns)-1)
	args, err := meddler.Values(&mTx, false)
	if err != nil {
		return err
	}
	if len(args) != len(columns) {
		return fmt.Errorf("failed to update monitored transaction %s, %d values for %d columns", mTx.ID, len(args), len(columns))
	}

	values := make([]interface{}, 0, len(args))
	for i, column := range columns {
		if column == "id" || column == "created_at" {
			continue
		}
		values = append(values, args[i])
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(values)))
	}
	values = append(values, mTx.ID)

	query := "UPDATE " + monitoredTxsTable + " SET " + strings.Join(setClauses, ", ") +
		fmt.Sprintf(" WHERE id = $%d", len(values))

	result, err := s.db.ExecContext(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("failed to update monitored transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return types.ErrNotFound
	}

	return nil
}

// Empty clears all the records from the monitored_txs table.
func (s *SqlStorage) Empty(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, buildBaseDeleteStatement(monitoredTxsTable))
	if err != nil {
		return fmt.Errorf("failed to empty monitored_txs table: %w", err)
	}

	return nil
}

// conn returns a querier bound to ctx
func (s *SqlStorage) conn(ctx context.Context) meddler.DB {
	return ctxDB{db: s.db, ctx: ctx}
}

// ctxDB runs the meddler queries with a context
type ctxDB struct {
	db  *sql.DB
	ctx context.Context
}

func (c ctxDB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return c.db.ExecContext(c.ctx, query, args...)
}

func (c ctxDB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return c.db.QueryContext(c.ctx, query, args...)
}

func (c ctxDB) QueryRow(query string, args ...interface{}) *sql.Row {
	return c.db.QueryRowContext(c.ctx, query, args...)
}

// buildBaseSelectQuery creates SELECT query dynamically based on the provided entity and table name
func buildBaseSelectQuery(src interface{}, tableName string) (string, error) {
	cols, err := meddler.Columns(src, false)
	if err != nil {
		return "", err
	}

	return "SELECT " + strings.Join(cols, ", ") + " FROM " + tableName, nil
}

// buildBaseDeleteStatement creates DELETE statement dynamically based on the provided table name
func buildBaseDeleteStatement(tableName string) string {
	return "DELETE FROM " + tableName
}

// unwrapSQLiteErr attempts to extract a *sqlite.Error from the given error,
// either directly or from a meddler.DriverErr.
func unwrapSQLiteErr(err error) (*sqlite.Error, bool) {
	sqliteErr := &sqlite.Error{}
	if ok := errors.As(err, sqliteErr); ok {
		return sqliteErr, true
	}

	if driverErr, ok := meddler.DriverErr(err); ok {
		return sqliteErr, errors.As(driverErr, sqliteErr)
	}

	return sqliteErr, false
}
