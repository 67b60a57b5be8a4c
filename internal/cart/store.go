package cart

import (
	"strconv"
	"sync"

	"github.com/asaskevich/EventBus"
	jsoniter "github.com/json-iterator/go"
	"github.com/sakuraessence/storefront/internal/domain"
	"github.com/sakuraessence/storefront/internal/order"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StorageKey is the fixed key the line-item collection persists under. The
// value carries over from the previous frontend's localStorage key so an
// export/import keeps working.
const StorageKey = "sakura_cart_v1"

// TopicCartChanged is published on every cart mutation with a Summary.
const TopicCartChanged = "cart:changed"

var bucketCart = []byte("cart")

// LineItem is one product+variant+quantity entry of the cart. Name, price and
// image are snapshots taken at add time, not live catalog references.
type LineItem struct {
	ProductID int64          `json:"productId,string"`
	Name      string         `json:"name"`
	Variant   domain.Variant `json:"variant"`
	UnitPrice float64        `json:"unitPrice"`
	Quantity  int            `json:"quantity"`
	Image     string         `json:"image,omitempty"`
	Brand     string         `json:"brand,omitempty"`
}

func (li LineItem) key() string {
	return strconv.FormatInt(li.ProductID, 10) + "|" + li.Variant.Key()
}

// Summary carries the derived totals published with change notifications.
type Summary struct {
	TotalItems int
	TotalPrice float64
}

// Store is the shopper's working selection. It keeps insertion order as the
// display order, merges duplicate (productId, variant) pairs, and writes the
// whole collection to its bbolt file on every mutation so it survives
// restarts. Missing or corrupt stored data degrades to an empty cart.
type Store struct {
	mu    sync.Mutex
	db    *bbolt.DB
	bus   EventBus.Bus
	items []LineItem
}

// Open opens (creating if needed) the durable cart store at path. The bus is
// optional; when present every mutation publishes TopicCartChanged.
func Open(path string, bus EventBus.Bus) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, bus: bus}
	s.load()
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) load() {
	var raw []byte
	_ = s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCart)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(StorageKey)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if len(raw) == 0 {
		return
	}
	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		zap.L().Warn("cart store payload unreadable, starting empty", zap.Error(err))
		return
	}
	s.items = items
}

// persist writes the full collection under StorageKey. Called with the lock
// held, before the mutation returns.
func (s *Store) persist() {
	data, err := json.Marshal(s.items)
	if err != nil {
		zap.L().Error("cart store encode failed", zap.Error(err))
		return
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketCart)
		if err != nil {
			return err
		}
		return b.Put([]byte(StorageKey), data)
	})
	if err != nil {
		zap.L().Error("cart store write failed", zap.Error(err))
	}
}

func (s *Store) notify() {
	if s.bus == nil {
		return
	}
	s.bus.Publish(TopicCartChanged, Summary{
		TotalItems: s.totalItemsLocked(),
		TotalPrice: s.totalPriceLocked(),
	})
}

// Add appends the item, or increments the quantity of the existing line with
// the same (productId, variant) pair. A non-positive quantity counts as 1.
func (s *Store) Add(item LineItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].key() == item.key() {
			s.items[i].Quantity += item.Quantity
			s.persist()
			s.notify()
			return
		}
	}
	s.items = append(s.items, item)
	s.persist()
	s.notify()
}

// Remove drops the matching line. A nil variant removes every line of the
// product. Removing a missing line is a no-op.
func (s *Store) Remove(productID int64, variant *domain.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(productID, variant)
	s.persist()
	s.notify()
}

func (s *Store) removeLocked(productID int64, variant *domain.Variant) {
	kept := s.items[:0]
	for _, li := range s.items {
		if li.ProductID == productID && (variant == nil || li.Variant.Equal(*variant)) {
			continue
		}
		kept = append(kept, li)
	}
	s.items = kept
}

// UpdateQuantity sets the line's quantity to the given value. A quantity of
// zero or below removes the line instead of keeping a zero row.
func (s *Store) UpdateQuantity(productID int64, variant domain.Variant, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantity <= 0 {
		s.removeLocked(productID, &variant)
	} else {
		for i := range s.items {
			if s.items[i].ProductID == productID && s.items[i].Variant.Equal(variant) {
				s.items[i].Quantity = quantity
			}
		}
	}
	s.persist()
	s.notify()
}

// Clear empties the collection unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persist()
	s.notify()
}

// Items returns a copy of the lines in display (insertion) order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LineItem(nil), s.items...)
}

func (s *Store) totalItemsLocked() int {
	var n int
	for _, li := range s.items {
		n += li.Quantity
	}
	return n
}

func (s *Store) totalPriceLocked() float64 {
	var sum float64
	for _, li := range s.items {
		sum += li.UnitPrice * float64(li.Quantity)
	}
	return sum
}

// TotalItems is the sum of quantities over the lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalItemsLocked()
}

// TotalPrice is the sum of unit price times quantity over the lines.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPriceLocked()
}

// Checkout snapshots the cart into an order submission payload. The cart is
// left untouched; the caller clears it after the API acknowledges the order.
func (s *Store) Checkout(name, email, phone string) order.SubmitRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.OrderItem, 0, len(s.items))
	for _, li := range s.items {
		items = append(items, domain.OrderItem{
			ProductID: li.ProductID,
			Name:      li.Name,
			Variant:   li.Variant,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			Brand:     li.Brand,
		})
	}
	total := s.totalPriceLocked()
	return order.SubmitRequest{
		Items:         items,
		CustomerName:  name,
		CustomerEmail: email,
		CustomerPhone: phone,
		Total:         &total,
	}
}
