package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "villastay/internal/domain/booking"
	domaincatalog "villastay/internal/domain/catalog"
	domainledger "villastay/internal/domain/ledger"
	domainpricing "villastay/internal/domain/pricing"
	domainproperty "villastay/internal/domain/property"
	domainrange "villastay/internal/domain/shared/daterange"
	"villastay/internal/domain/shared/money"
)

func seedProperty(t *testing.T, repo *PropertyRepository) *domainproperty.Property {
	t.Helper()
	p := &domainproperty.Property{
		ID: "room-1", Type: domainproperty.TypeRoom, Name: "Garden Room",
		NightlyRate: money.Must("100"), Capacity: 4,
	}
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

func seedBooking(t *testing.T, repo *BookingRepository, id string) *domainbooking.Booking {
	t.Helper()
	dr, err := domainrange.New(
		time.Date(2026, time.December, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.December, 23, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID: domainbooking.BookingID(id),
		Property: &domainproperty.Property{
			ID: "room-1", Type: domainproperty.TypeRoom,
			NightlyRate: money.Must("100"), Capacity: 4,
		},
		Guest:     domainbooking.Guest{Name: "A. Guest", Email: "guest@example.com"},
		Range:     dr,
		Guests:    domainpricing.GuestCounts{Adults: 2},
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), b))
	return b
}

func TestPropertySearchFilters(t *testing.T) {
	repo := NewPropertyRepository()
	ctx := context.Background()
	seedProperty(t, repo)
	require.NoError(t, repo.Save(ctx, &domainproperty.Property{
		ID: "villa-1", Type: domainproperty.TypeVilla, Name: "Lagoon Villa",
		NightlyRate: money.Must("250"), Capacity: 8,
	}))

	all, err := repo.Search(ctx, domainproperty.SearchParams{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	villas, err := repo.Search(ctx, domainproperty.SearchParams{Type: domainproperty.TypeVilla})
	require.NoError(t, err)
	require.Len(t, villas, 1)
	assert.Equal(t, domainproperty.PropertyID("villa-1"), villas[0].ID)

	big, err := repo.Search(ctx, domainproperty.SearchParams{MinGuests: 6})
	require.NoError(t, err)
	require.Len(t, big, 1)
	assert.Equal(t, domainproperty.PropertyID("villa-1"), big[0].ID)
}

func TestBookingSaveVersionConflict(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()
	seedBooking(t, repo, "b1")

	first, err := repo.ByID(ctx, "b1")
	require.NoError(t, err)
	second, err := repo.ByID(ctx, "b1")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, first))
	assert.ErrorIs(t, repo.Save(ctx, second), ErrVersionConflict)
}

func TestBookingSaveBumpsVersion(t *testing.T) {
	repo := NewBookingRepository()
	b := seedBooking(t, repo, "b1")
	v := b.Version
	require.NoError(t, repo.Save(context.Background(), b))
	assert.Equal(t, v+1, b.Version)
}

func TestBookingByIDClonesAggregate(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()
	seedBooking(t, repo, "b1")

	loaded, err := repo.ByID(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, loaded.PendingEvents())
	loaded.Guest.Name = "mutated"

	again, err := repo.ByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "A. Guest", again.Guest.Name)
}

func TestRuleListPreservesInsertionOrder(t *testing.T) {
	repo := NewRuleRepository()
	ctx := context.Background()
	for _, id := range []string{"zulu", "alpha", "mike"} {
		require.NoError(t, repo.Save(ctx, &domaincatalog.ChargeRule{
			ID: domaincatalog.RuleID(id), Name: id,
			Category: domaincatalog.CategoryFee, Type: domaincatalog.ChargeFixed,
			Amount: decimal.NewFromInt(5), Active: true,
		}))
	}

	rules, err := repo.List(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(rules))
	for _, r := range rules {
		ids = append(ids, string(r.ID))
	}
	assert.Equal(t, []string{"zulu", "alpha", "mike"}, ids)

	// Re-saving keeps the original position.
	require.NoError(t, repo.Save(ctx, &domaincatalog.ChargeRule{
		ID: "zulu", Name: "zulu-updated",
		Category: domaincatalog.CategoryFee, Type: domaincatalog.ChargeFixed,
		Amount: decimal.NewFromInt(7), Active: true,
	}))
	rules, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "zulu-updated", rules[0].Name)
}

func TestRuleSaveRejectsInvalid(t *testing.T) {
	repo := NewRuleRepository()
	err := repo.Save(context.Background(), &domaincatalog.ChargeRule{
		ID: "bad", Category: domaincatalog.CategoryFee, Type: domaincatalog.ChargeFixed,
		Amount: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, domaincatalog.ErrNegativeAmount)
}

func TestChargeDeleteByBookingCascades(t *testing.T) {
	repo := NewChargeRepository()
	ctx := context.Background()
	now := time.Now()

	for i, booking := range []string{"b1", "b1", "b2"} {
		c, err := domainledger.New(domainledger.NewChargeParams{
			ID:        domainledger.ChargeID(string(rune('a' + i))),
			BookingID: booking,
			Name:      "Minibar",
			Type:      domaincatalog.ChargeFixed,
			Amount:    decimal.NewFromInt(10),
			CreatedAt: now,
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, c))
	}

	require.NoError(t, repo.DeleteByBooking(ctx, "b1"))

	gone, err := repo.ListByBooking(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := repo.ListByBooking(ctx, "b2")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestChargeListOrderedByCreation(t *testing.T) {
	repo := NewChargeRepository()
	ctx := context.Background()
	base := time.Date(2026, time.December, 22, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"second", "first"} {
		c, err := domainledger.New(domainledger.NewChargeParams{
			ID:        domainledger.ChargeID(id),
			BookingID: "b1",
			Name:      id,
			Type:      domaincatalog.ChargeFixed,
			Amount:    decimal.NewFromInt(10),
			CreatedAt: base.Add(time.Duration(-i) * time.Hour),
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, c))
	}

	charges, err := repo.ListByBooking(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, charges, 2)
	assert.Equal(t, domainledger.ChargeID("first"), charges[0].ID)
	assert.Equal(t, domainledger.ChargeID("second"), charges[1].ID)
}
