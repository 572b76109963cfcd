package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/storefront/internal/core/cart"
	"github.com/hay-kot/storefront/internal/core/session"
	"github.com/hay-kot/storefront/internal/store/jsonfile"
)

func token(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func newStores(t *testing.T) (*jsonfile.SessionStore, *jsonfile.CartStore) {
	t.Helper()
	dir := t.TempDir()
	return jsonfile.NewSessionStore(filepath.Join(dir, "session.json")),
		jsonfile.NewCartStore(filepath.Join(dir, "cart.json"))
}

func TestStorageCheck_Empty(t *testing.T) {
	sessions, carts := newStores(t)

	result := NewStorageCheck(sessions, carts, false).Run(context.Background())

	assert.Equal(t, "Local Storage", result.Name)
	require.Len(t, result.Items, 2)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, "not signed in", result.Items[0].Detail)
	assert.Equal(t, StatusPass, result.Items[1].Status)
	assert.Equal(t, "0 line(s), 0 unit(s)", result.Items[1].Detail)
}

func TestStorageCheck_ValidSession(t *testing.T) {
	ctx := context.Background()
	sessions, carts := newStores(t)
	require.NoError(t, sessions.Save(ctx, session.Session{ID: "u1", Email: "ada@example.com", Token: token(t, time.Now().Add(time.Hour))}))

	result := NewStorageCheck(sessions, carts, false).Run(ctx)

	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Contains(t, result.Items[0].Detail, "ada@example.com")
}

func TestStorageCheck_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	sessions, carts := newStores(t)
	require.NoError(t, sessions.Save(ctx, session.Session{ID: "u1", Token: token(t, time.Now().Add(-time.Hour))}))

	t.Run("report", func(t *testing.T) {
		result := NewStorageCheck(sessions, carts, false).Run(ctx)
		assert.Equal(t, StatusWarn, result.Items[0].Status)
		assert.True(t, result.Items[0].Fixable)

		report := Run(ctx, NewStorageCheck(sessions, carts, false))
		assert.Equal(t, 1, report.Summary.Fixable)
		assert.True(t, report.Healthy)
	})

	t.Run("fix", func(t *testing.T) {
		result := NewStorageCheck(sessions, carts, true).Run(ctx)
		assert.Equal(t, StatusFixed, result.Items[0].Status)

		_, err := sessions.Load(ctx)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})
}

func TestStorageCheck_CorruptFiles(t *testing.T) {
	ctx := context.Background()
	sessions, carts := newStores(t)
	require.NoError(t, os.WriteFile(sessions.Path(), []byte("{"), 0o600))
	require.NoError(t, os.WriteFile(carts.Path(), []byte("nope"), 0o644))

	report := Run(ctx, NewStorageCheck(sessions, carts, false))
	assert.Equal(t, 2, report.Summary.Failed)
	assert.Equal(t, 2, report.Summary.Fixable)
	assert.False(t, report.Healthy)

	report = Run(ctx, NewStorageCheck(sessions, carts, true))
	assert.Zero(t, report.Summary.Failed)
	assert.Equal(t, 2, report.Summary.Fixed)
	assert.Zero(t, report.Summary.Fixable)
	assert.True(t, report.Healthy)

	items, err := carts.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStorageCheck_DuplicateCartLines(t *testing.T) {
	ctx := context.Background()
	sessions, carts := newStores(t)
	require.NoError(t, carts.Save(ctx, []cart.LineItem{
		{ProductID: "a", UnitPrice: decimal.NewFromInt(1), Quantity: 1},
		{ProductID: "a", UnitPrice: decimal.NewFromInt(1), Quantity: 2},
	}))

	result := NewStorageCheck(sessions, carts, false).Run(ctx)

	assert.Equal(t, StatusWarn, result.Items[1].Status)
	assert.Contains(t, result.Items[1].Detail, "1 line(s), 3 unit(s)")
}
