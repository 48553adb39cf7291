package database

import (
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "scheduler",
		Password: "secret",
		Name:     "timetable",
		SSLMode:  "disable",
	})
	assert.Equal(t, "host=db port=5432 user=scheduler password=secret dbname=timetable sslmode=disable", dsn)
}

func TestConfigurePool(t *testing.T) {
	raw, _, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	ConfigurePool(db, config.DatabaseConfig{MaxOpenConns: 7, MaxIdleConns: 3, ConnMaxLifetime: 10 * time.Minute})
	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}
