package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/plano-treino/pkg/config"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.DatabaseConfig{
		Host: "db", Port: 5432, User: "plano", Password: "p@ss word", Name: "plano_treino", SSLMode: "disable",
	})
	assert.Equal(t, "postgres://plano:p%40ss%20word@db:5432/plano_treino?sslmode=disable", dsn)

	dsn = PostgresDSN(config.DatabaseConfig{Host: "localhost", Port: 5433, User: "u", Name: "x"})
	assert.Equal(t, "postgres://u:@localhost:5433/x", dsn)
}
