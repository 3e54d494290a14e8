package cart

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAccumulatesQuantity(t *testing.T) {
	var c Cart
	key := ProductKey(uuid.New())

	c.Add(key, 2, "")
	c.Add(key, 3, "")
	c.Add(key, 1, "")

	assert.Equal(t, 6, c.Quantity(key))
	assert.Equal(t, 1, c.Len())
}

func TestAddKeepsLastNonEmptyNote(t *testing.T) {
	var c Cart
	key := OfferKey(uuid.New())

	c.Add(key, 1, "no ice")
	c.Add(key, 1, "")
	row, ok := c.Row(key)
	require.True(t, ok)
	assert.Equal(t, "no ice", row.Note, "bare re-add must preserve the prior note")

	c.Add(key, 1, "extra mint")
	row, _ = c.Row(key)
	assert.Equal(t, "extra mint", row.Note)
}

func TestAddIgnoresNonPositiveQty(t *testing.T) {
	var c Cart
	key := ProductKey(uuid.New())

	c.Add(key, 0, "")
	c.Add(key, -4, "")

	assert.True(t, c.IsEmpty())
}

func TestSetQuantityZeroRemovesRow(t *testing.T) {
	var c Cart
	key := ProductKey(uuid.New())

	c.Add(key, 3, "hot")
	c.SetQuantity(key, 0)

	assert.Equal(t, 0, c.Quantity(key))
	assert.Empty(t, c.Keys())
}

func TestSetQuantityLeavesNoteUntouched(t *testing.T) {
	var c Cart
	key := ProductKey(uuid.New())

	c.Add(key, 1, "well done")
	c.SetQuantity(key, 5)

	row, ok := c.Row(key)
	require.True(t, ok)
	assert.Equal(t, 5, row.Qty)
	assert.Equal(t, "well done", row.Note)
}

func TestRemoveIsTotalOverMissingKeys(t *testing.T) {
	var c Cart
	c.Remove(ProductKey(uuid.New()))
	assert.True(t, c.IsEmpty())
}

func TestKeysPreserveInsertionOrder(t *testing.T) {
	var c Cart
	first := ProductKey(uuid.New())
	second := OfferKey(uuid.New())
	third := ProductKey(uuid.New())

	c.Add(first, 1, "")
	c.Add(second, 1, "")
	c.Add(third, 1, "")
	c.Add(second, 2, "") // re-add must not move the row

	require.Equal(t, []Key{first, second, third}, c.Keys())

	c.Remove(second)
	assert.Equal(t, []Key{first, third}, c.Keys())
}

func TestItemCount(t *testing.T) {
	var c Cart
	c.Add(ProductKey(uuid.New()), 2, "")
	c.Add(OfferKey(uuid.New()), 3, "")
	assert.Equal(t, 5, c.ItemCount())
}

func TestQuantityClampedToMax(t *testing.T) {
	var c Cart
	key := ProductKey(uuid.New())

	c.Add(key, 30, "")
	c.Add(key, 30, "")
	assert.Equal(t, MaxQty, c.Quantity(key), "accumulation clamps at the cap")

	c.SetQuantity(key, MaxQty+10)
	assert.Equal(t, MaxQty, c.Quantity(key))
}

func TestNoteClampedToMaxLen(t *testing.T) {
	var c Cart
	key := ProductKey(uuid.New())
	c.Add(key, 1, strings.Repeat("x", MaxNoteLen+50))

	row, _ := c.Row(key)
	assert.Len(t, row.Note, MaxNoteLen)
}

func TestNoteClampKeepsRuneBoundaries(t *testing.T) {
	var c Cart
	key := ProductKey(uuid.New())
	// Arabic runes are two bytes each, so a byte-indexed cut would split one.
	c.Add(key, 1, strings.Repeat("بدون سكر ", 60))

	row, _ := c.Row(key)
	assert.LessOrEqual(t, len(row.Note), MaxNoteLen)
	assert.True(t, utf8.ValidString(row.Note), "clamp must not split a multi-byte rune")
}

func TestParseKeyRoundTrip(t *testing.T) {
	productID := uuid.New()
	offerID := uuid.New()

	pk, err := ParseKey("p:" + productID.String())
	require.NoError(t, err)
	assert.Equal(t, ProductKey(productID), pk)

	ok, err := ParseKey("o:" + offerID.String())
	require.NoError(t, err)
	assert.Equal(t, OfferKey(offerID), ok)

	for _, raw := range []string{"", "p:", "x:" + productID.String(), "p:not-a-uuid", productID.String()} {
		_, err := ParseKey(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestWireCodecPreservesOrderAndDropsJunk(t *testing.T) {
	var c Cart
	first := ProductKey(uuid.New())
	second := OfferKey(uuid.New())
	c.Add(first, 2, "spicy")
	c.Add(second, 1, "")

	payload, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded Cart
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, []Key{first, second}, decoded.Keys())
	row, _ := decoded.Row(first)
	assert.Equal(t, Row{Qty: 2, Note: "spicy"}, row)

	// Junk rows are dropped, not fatal.
	junk := []byte(`[{"key":"p:nope","qty":3},{"key":"o:` + second.ID.String() + `","qty":0},{"key":"p:` + first.ID.String() + `","qty":1}]`)
	var sparse Cart
	require.NoError(t, json.Unmarshal(junk, &sparse))
	assert.Equal(t, []Key{first}, sparse.Keys())
}
