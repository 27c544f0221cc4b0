package clients

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateAndGetClient(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Client{}))

	repo := NewRepository(db)
	ctx := context.Background()

	client := &Client{OrganizationID: uuid.New(), FirstName: "Ana", LastName: "Silva", Email: "ana@example.com"}
	require.NoError(t, repo.Create(ctx, client))

	got, err := repo.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", got.FullName())

	_, err = repo.GetByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, ErrClientNotFound))
}
