package cart

import "encoding/json"

// wireRow is the session wire form of one cart row. The array layout (rather
// than a JSON object keyed by cart key) preserves insertion order across
// round-trips, which the display and checkout snapshot ordering depend on.
type wireRow struct {
	Key  string `json:"key"`
	Qty  int    `json:"qty"`
	Note string `json:"note,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c Cart) MarshalJSON() ([]byte, error) {
	rows := make([]wireRow, 0, len(c.keys))
	for _, key := range c.keys {
		row := c.rows[key]
		rows = append(rows, wireRow{Key: key.String(), Qty: row.Qty, Note: row.Note})
	}
	return json.Marshal(rows)
}

// UnmarshalJSON implements json.Unmarshaler. Rows with unparseable keys or
// non-positive quantities are dropped rather than failing the whole session;
// the payload is owned by this package and anything else in it is stale data.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var rows []wireRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	c.Clear()
	c.ensure()
	for _, row := range rows {
		key, err := ParseKey(row.Key)
		if err != nil || row.Qty <= 0 {
			continue
		}
		if _, ok := c.rows[key]; !ok {
			c.keys = append(c.keys, key)
		}
		c.rows[key] = Row{Qty: clampQty(row.Qty), Note: clampNote(row.Note)}
	}
	return nil
}
