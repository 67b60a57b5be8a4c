package cart

import (
	"path/filepath"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/sakuraessence/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cart.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func oud(qty int) LineItem {
	return LineItem{
		ProductID: 1,
		Name:      "Oud Impérial",
		Variant:   domain.VolumeVariant(50),
		UnitPrice: 200,
		Quantity:  qty,
	}
}

func rituel(qty int) LineItem {
	return LineItem{
		ProductID: 2,
		Name:      "Coffret Rituel",
		Variant:   domain.SizeVariant("M"),
		UnitPrice: 150,
		Quantity:  qty,
	}
}

func TestAddMergesSameProductAndVariant(t *testing.T) {
	s, _ := openStore(t)

	s.Add(oud(2))
	s.Add(oud(3))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddDistinctVariantsKeepSeparateLines(t *testing.T) {
	s, _ := openStore(t)

	s.Add(oud(1))
	other := oud(1)
	other.Variant = domain.VolumeVariant(100)
	s.Add(other)

	assert.Len(t, s.Items(), 2)
}

func TestAddDefaultsQuantityToOne(t *testing.T) {
	s, _ := openStore(t)
	s.Add(oud(0))
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestUpdateQuantityFloor(t *testing.T) {
	s, _ := openStore(t)
	s.Add(oud(2))

	s.UpdateQuantity(1, domain.VolumeVariant(50), 0)
	assert.Empty(t, s.Items())

	s.Add(oud(2))
	s.UpdateQuantity(1, domain.VolumeVariant(50), -3)
	assert.Empty(t, s.Items())
}

func TestUpdateQuantitySetsNotIncrements(t *testing.T) {
	s, _ := openStore(t)
	s.Add(oud(2))

	s.UpdateQuantity(1, domain.VolumeVariant(50), 7)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestRemoveWithAndWithoutVariant(t *testing.T) {
	s, _ := openStore(t)
	s.Add(oud(1))
	hundred := oud(1)
	hundred.Variant = domain.VolumeVariant(100)
	s.Add(hundred)
	s.Add(rituel(1))

	v := domain.VolumeVariant(50)
	s.Remove(1, &v)
	assert.Len(t, s.Items(), 2)

	// nil variant clears every line of the product.
	s.Remove(1, nil)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ProductID)

	// removing a missing line is a silent no-op
	s.Remove(99, nil)
	assert.Len(t, s.Items(), 1)
}

func TestTotalsInvariant(t *testing.T) {
	s, _ := openStore(t)

	s.Add(oud(2))
	s.Add(rituel(1))
	s.Add(oud(1))
	s.UpdateQuantity(2, domain.SizeVariant("M"), 4)
	v := domain.VolumeVariant(50)
	s.Remove(1, &v)
	s.Add(rituel(2))

	var wantItems int
	var wantPrice float64
	for _, li := range s.Items() {
		wantItems += li.Quantity
		wantPrice += li.UnitPrice * float64(li.Quantity)
	}
	assert.Equal(t, wantItems, s.TotalItems())
	assert.Equal(t, wantPrice, s.TotalPrice())
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")

	s, err := Open(path, nil)
	require.NoError(t, err)
	s.Add(oud(2))
	s.Add(rituel(1))
	before := s.Items()
	require.NoError(t, s.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, before, reopened.Items())
	assert.Equal(t, 3, reopened.TotalItems())
	assert.Equal(t, 550.0, reopened.TotalPrice())
}

func TestCorruptPayloadDegradesToEmptyCart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")

	db, err := bbolt.Open(path, 0o600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte("cart"))
		if err != nil {
			return err
		}
		return b.Put([]byte(StorageKey), []byte("{not json"))
	}))
	require.NoError(t, db.Close())

	s, err := Open(path, nil)
	require.NoError(t, err)
	defer s.Close()
	assert.Empty(t, s.Items())
	assert.Zero(t, s.TotalItems())
}

func TestChangeNotification(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")
	bus := EventBus.New()

	var got []Summary
	require.NoError(t, bus.Subscribe(TopicCartChanged, func(sum Summary) {
		got = append(got, sum)
	}))

	s, err := Open(path, bus)
	require.NoError(t, err)
	defer s.Close()

	s.Add(oud(2))
	s.Clear()
	bus.WaitAsync()

	require.Len(t, got, 2)
	assert.Equal(t, Summary{TotalItems: 2, TotalPrice: 400}, got[0])
	assert.Equal(t, Summary{}, got[1])
}

func TestCheckoutSnapshotScenario(t *testing.T) {
	s, _ := openStore(t)

	s.Add(LineItem{ProductID: 10, Name: "A", Variant: domain.VolumeVariant(50), UnitPrice: 200, Quantity: 2})
	s.Add(LineItem{ProductID: 11, Name: "B", Variant: domain.SizeVariant("M"), UnitPrice: 150, Quantity: 1})

	assert.Equal(t, 3, s.TotalItems())
	assert.Equal(t, 550.0, s.TotalPrice())

	req := s.Checkout("Nadia", "n@x.com", "0600000000")
	assert.Equal(t, "Nadia", req.CustomerName)
	assert.Equal(t, "n@x.com", req.CustomerEmail)
	require.Len(t, req.Items, 2)
	require.NotNil(t, req.Total)
	assert.Equal(t, 550.0, *req.Total)

	// Checkout is a snapshot: later cart changes do not alter the payload.
	s.Clear()
	assert.Len(t, req.Items, 2)
}
