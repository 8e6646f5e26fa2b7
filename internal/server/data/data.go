// Package data stores access tokens, content and users with gorm.
package data

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal"
	"github.com/infrahq/unpublished/internal/logging"
	"github.com/infrahq/unpublished/internal/server/models"
)

// NewDB creates a new database connection and migrates the schema.
func NewDB(connection gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(connection, &gorm.Config{
		Logger: logging.NewDatabaseLogger(time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("db conn: %w", err)
	}

	if connection.Name() == "sqlite" {
		// avoid issues with concurrent writes by telling gorm
		// not to open multiple connections in the connection pool
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("getting db driver: %w", err)
		}

		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Bundle{},
		&models.Content{},
		&models.AccessToken{},
	); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

func NewSQLiteDriver(connection string) (gorm.Dialector, error) {
	if !strings.HasPrefix(connection, "file::memory") {
		if err := os.MkdirAll(path.Dir(connection), os.ModePerm); err != nil {
			return nil, err
		}
	}

	uri, err := url.Parse(connection)
	if err != nil {
		return nil, err
	}

	query := uri.Query()
	query.Add("_journal_mode", "WAL")
	uri.RawQuery = query.Encode()

	return sqlite.Open(uri.String()), nil
}

func NewPostgresDriver(connection string) (gorm.Dialector, error) {
	return postgres.Open(connection), nil
}

func get[T models.Modelable](db *gorm.DB, selectors ...SelectorFunc) (*T, error) {
	for _, selector := range selectors {
		db = selector(db)
	}

	result := new(T)
	if err := db.Model((*T)(nil)).First(result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrNotFound
		}

		return nil, err
	}

	return result, nil
}

func list[T models.Modelable](db *gorm.DB, selectors ...SelectorFunc) ([]T, error) {
	for _, selector := range selectors {
		db = selector(db)
	}

	result := make([]T, 0)
	if err := db.Model((*T)(nil)).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func add[T models.Modelable](db *gorm.DB, model *T) error {
	return handleError(db.Create(model).Error)
}

func save[T models.Modelable](db *gorm.DB, model *T) error {
	return handleError(db.Save(model).Error)
}

func deleteAll[T models.Modelable](db *gorm.DB, selectors ...SelectorFunc) (int64, error) {
	for _, selector := range selectors {
		db = selector(db)
	}

	r := db.Delete(new(T))
	return r.RowsAffected, r.Error
}

func count[T models.Modelable](db *gorm.DB, selectors ...SelectorFunc) (int64, error) {
	for _, selector := range selectors {
		db = selector(db)
	}

	var c int64
	if err := db.Model((*T)(nil)).Count(&c).Error; err != nil {
		return 0, err
	}

	return c, nil
}

// UniqueConstraintError is returned when a write conflicts with an existing
// record.
type UniqueConstraintError struct {
	Table  string
	Column string
}

func (e UniqueConstraintError) Error() string {
	table := strings.ReplaceAll(strings.TrimSuffix(e.Table, "s"), "_", " ")
	if table == "" {
		table = "record"
	}

	if e.Column == "" {
		return fmt.Sprintf("a %v with that value already exists", table)
	}
	return fmt.Sprintf("a %v with that %v already exists", table, e.Column)
}

func (e UniqueConstraintError) Is(other error) bool {
	// nolint:errorlint // comparing with == is correct here
	return other == internal.ErrDuplicate
}

// handleError looks for well known DB errors. If the error is recognized it
// is translated into a UniqueConstraintError so that calling code can
// inspect the error.
func handleError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		// constraintFields maps the name of a unique constraint, to the
		// user facing name of that field.
		constraintFields := map[string]string{
			"idx_users_name":          "name",
			"idx_users_key_id":        "keyId",
			"idx_roles_name":          "name",
			"idx_access_tokens_value": "value",
			"bundles_pkey":            "id",
		}

		return UniqueConstraintError{Table: pgErr.TableName, Column: constraintFields[pgErr.ConstraintName]}
	}

	// sqlite reports "UNIQUE constraint failed: <table>.<column>"
	if strings.HasPrefix(err.Error(), "UNIQUE constraint failed:") {
		fields := strings.FieldsFunc(err.Error(), func(r rune) bool {
			return unicode.IsSpace(r) || r == '.'
		})

		// fields = [UNIQUE, constraint, failed:, <table>, <column>]
		if len(fields) == 5 {
			return UniqueConstraintError{Table: fields[3], Column: fields[4]}
		}

		logging.Warnf("unhandled unique constraint error format: %q", err.Error())

		return UniqueConstraintError{}
	}

	return err
}
