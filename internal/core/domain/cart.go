package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// MergePolicy decides what happens to the snapshot fields of a line that
// exists in both the persisted cart and the incoming guest cart.
type MergePolicy string

const (
	// MergeTakeIncoming overwrites name/price/image with the guest values when
	// they are present.
	MergeTakeIncoming MergePolicy = "incoming"
	// MergeKeepExisting leaves the persisted snapshot untouched.
	MergeKeepExisting MergePolicy = "keep"
)

// ParseMergePolicy maps a config value to a policy, defaulting to MergeTakeIncoming.
func ParseMergePolicy(s string) MergePolicy {
	if MergePolicy(strings.ToLower(strings.TrimSpace(s))) == MergeKeepExisting {
		return MergeKeepExisting
	}
	return MergeTakeIncoming
}

// LineItem is one product in a cart. Name, Price and Image are snapshots taken
// when the product was first added.
type LineItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// CartOwner identifies whose cart an operation targets: a signed-in user or a
// guest session. UserID wins when both are set.
type CartOwner struct {
	UserID    string
	SessionID string
}

// IsUser reports whether the owner is a signed-in user.
func (o CartOwner) IsUser() bool { return o.UserID != "" }

// Kind is "user" or "guest", used as a metrics/log label.
func (o CartOwner) Kind() string {
	if o.IsUser() {
		return "user"
	}
	return "guest"
}

// Cart holds at most one line per product.
type Cart struct {
	ID        string     `json:"id,omitempty"`
	UserID    string     `json:"user,omitempty"`
	SessionID string     `json:"sessionId,omitempty"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewLineItem snapshots a catalog product into a line.
func NewLineItem(p *Product, qty int) LineItem {
	return LineItem{
		ProductID: p.StorageID,
		Name:      p.Title,
		Price:     p.FromPrice(),
		Image:     p.Image,
		Quantity:  qty,
	}
}

func (c *Cart) index(productID string) int {
	want := NormalizeRef(productID)
	for i, it := range c.Items {
		if NormalizeRef(it.ProductID) == want {
			return i
		}
	}
	return -1
}

// Add sums quantities into an existing line for the same product. The
// existing snapshot is kept; only a new line takes item's snapshot.
func (c *Cart) Add(item LineItem) {
	item.Quantity = clampQuantity(item.Quantity)
	if i := c.index(item.ProductID); i >= 0 {
		c.Items[i].Quantity = sumQuantity(c.Items[i].Quantity, item.Quantity)
		return
	}
	c.Items = append(c.Items, item)
}

// SetQuantity overwrites a line's quantity; zero deletes the line.
func (c *Cart) SetQuantity(productID string, qty int) error {
	i := c.index(productID)
	if i < 0 {
		return ErrCartItemNotFound
	}
	if qty <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return nil
	}
	c.Items[i].Quantity = clampQuantity(qty)
	return nil
}

// Remove deletes the line for productID. Absent lines are a no-op; the return
// value reports whether anything changed.
func (c *Cart) Remove(productID string) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// MergeResult counts what Merge did with the incoming lines.
type MergeResult struct {
	Merged   int
	Appended int
}

// Merge folds incoming lines into the cart: quantities of matching lines are
// summed and snapshot fields follow policy; unknown products are appended.
// Incoming lines must already be validated.
func (c *Cart) Merge(incoming []LineItem, policy MergePolicy) MergeResult {
	var res MergeResult
	for _, in := range incoming {
		in.Quantity = clampQuantity(in.Quantity)
		i := c.index(in.ProductID)
		if i < 0 {
			c.Items = append(c.Items, in)
			res.Appended++
			continue
		}
		existing := &c.Items[i]
		existing.Quantity = sumQuantity(existing.Quantity, in.Quantity)
		if policy == MergeTakeIncoming {
			if in.Price != 0 {
				existing.Price = in.Price
			}
			if in.Name != "" {
				existing.Name = in.Name
			}
			if in.Image != "" {
				existing.Image = in.Image
			}
		}
		res.Merged++
	}
	return res
}

// MaxLineQuantity caps a single line's quantity. Larger inputs and sums
// saturate at this value.
const MaxLineQuantity = 10_000

func clampQuantity(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxLineQuantity:
		return MaxLineQuantity
	}
	return n
}

func sumQuantity(a, b int) int {
	return clampQuantity(clampQuantity(a) + clampQuantity(b))
}

// CoerceQuantity turns a loosely typed JSON value into an integer no smaller
// than floor and no larger than MaxLineQuantity. Numbers are truncated and
// strings must parse as a whole number ("3abc" is not 3); anything else, or
// a value below floor, yields fallback.
func CoerceQuantity(v any, floor, fallback int) int {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return fallback
		}
		f = parsed
	default:
		return fallback
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	f = math.Trunc(f)
	if f < float64(floor) {
		return fallback
	}
	if f > MaxLineQuantity {
		return MaxLineQuantity
	}
	return int(f)
}
