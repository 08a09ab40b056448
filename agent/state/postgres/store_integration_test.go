//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"

	catalogx "github.com/tanpawarit/hitl-purchase-agent/agent/catalog"
	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

var (
	containerOnce sync.Once
	sharedDSN     string
	containerErr  error
)

// setupTestDB starts one PostgreSQL container for the whole run, migrates it
// and returns a fresh connection closed on cleanup.
func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	containerOnce.Do(func() {
		sharedDSN, containerErr = startPostgres()
	})
	if containerErr != nil {
		t.Fatalf("start postgres container: %v", containerErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Open(ctx, Config{DSN: sharedDSN, MaxOpenConns: 10, DialTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "testuser",
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}
	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	db, err := Open(ctx, Config{DSN: dsn})
	if err != nil {
		return "", err
	}
	defer db.Close()

	if err := Migrate(ctx, db); err != nil {
		return "", fmt.Errorf("migrate: %w", err)
	}
	return dsn, nil
}

func saveTestOrder(t *testing.T, s *Store, userID string, at time.Time) contractx.PurchaseOrder {
	t.Helper()

	saved, err := s.SaveOrder(context.Background(), contractx.PurchaseOrder{
		ID:            uuid.NewString(),
		UserID:        userID,
		ProductID:     "PRD-0001",
		Detail:        "Smart Laptop 01",
		UnitPrice:     decimal.RequireFromString("500.00"),
		Quantity:      3,
		TotalAmount:   decimal.RequireFromString("1500.00"),
		Justification: "team refresh",
		PurchaseDate:  at,
		Status:        contractx.OrderStatusExecuted,
	})
	require.NoError(t, err)
	return saved
}

func TestIntegrationDeleteOrderTwiceIsNotFound(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()

	order := saveTestOrder(t, s, "alice-"+uuid.NewString(), time.Now().UTC())

	deleted, err := s.DeleteOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, deleted.ID)
	assert.Equal(t, 3, deleted.Quantity)
	assert.True(t, deleted.TotalAmount.Equal(decimal.RequireFromString("1500.00")))

	_, err = s.DeleteOrder(ctx, order.ID)
	assert.ErrorIs(t, err, contractx.ErrNotFound)

	_, err = s.GetOrder(ctx, order.ID)
	assert.ErrorIs(t, err, contractx.ErrNotFound)
}

func TestIntegrationConcurrentDeleteHasOneWinner(t *testing.T) {
	s := NewStore(setupTestDB(t))
	order := saveTestOrder(t, s, "bob-"+uuid.NewString(), time.Now().UTC())

	const callers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		winners  int
		notFound int
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.DeleteOrder(context.Background(), order.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case errors.Is(err, contractx.ErrNotFound):
				notFound++
			default:
				t.Errorf("DeleteOrder() unexpected error = %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, callers-1, notFound)
}

func TestIntegrationExactDetailBeatsSubstringMatches(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()

	tag := uuid.NewString()[:8]
	products := []contractx.Product{
		{ProductID: "INT-" + tag + "-1", Detail: "Dock " + tag + " Pro", Price: decimal.RequireFromString("120.00")},
		{ProductID: "INT-" + tag + "-2", Detail: "  DOCK " + tag + "  ", Price: decimal.RequireFromString("99.90")},
		{ProductID: "INT-" + tag + "-3", Detail: "Dock " + tag + " Mini", Price: decimal.RequireFromString("80.00")},
	}
	for _, p := range products {
		_, err := s.SaveProduct(ctx, p)
		require.NoError(t, err)
	}

	candidates, err := s.FindProductsByDetail(ctx, "  dock "+tag+" ")
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, products[0].ProductID, candidates[0].ProductID)

	res, err := catalogx.NewResolver(s).ByDetail(ctx, "dock "+tag)
	require.NoError(t, err)
	require.True(t, res.Resolved())
	assert.Equal(t, products[1].ProductID, res.Product.ProductID)
	assert.True(t, res.Product.Price.Equal(decimal.RequireFromString("99.90")))

	ambiguous, err := catalogx.NewResolver(s).ByDetail(ctx, tag)
	require.NoError(t, err)
	assert.Equal(t, catalogx.OutcomeAmbiguous, ambiguous.Outcome)
	assert.Equal(t, 3, ambiguous.Candidates)
	assert.False(t, ambiguous.Resolved())
}

func TestIntegrationDatePrefixMatchesContractLayout(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()

	userID := "carol-" + uuid.NewString()
	at := time.Date(2025, 3, 1, 9, 30, 0, 123456000, time.UTC)
	order := saveTestOrder(t, s, userID, at)

	for _, prefix := range []string{
		"2025-03",
		"2025-03-01T09",
		at.Format(contractx.PurchaseDateLayout),
	} {
		got, err := s.ListOrders(ctx, contractx.OrderFilter{UserID: userID, DatePrefix: prefix})
		require.NoError(t, err)
		require.Len(t, got, 1, "prefix %q", prefix)
		assert.Equal(t, order.ID, got[0].ID)
	}

	got, err := s.ListOrders(ctx, contractx.OrderFilter{UserID: userID, DatePrefix: "2025-03-02"})
	require.NoError(t, err)
	assert.Empty(t, got)
}
