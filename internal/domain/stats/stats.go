package stats

import "encoding/json"

// Counts maps a category value to a count and remembers first-seen order.
type Counts struct {
	keys   []string
	counts map[string]int
}

// NewCounts creates an empty Counts.
func NewCounts() *Counts {
	return &Counts{counts: make(map[string]int)}
}

// Add increments the count of key by n.
func (c *Counts) Add(key string, n int) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key] += n
}

// Get returns the count of key, 0 if absent.
func (c *Counts) Get(key string) int { return c.counts[key] }

// Keys returns keys in first-seen order.
func (c *Counts) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of distinct keys.
func (c *Counts) Len() int { return len(c.keys) }

// Total returns the sum of all counts.
func (c *Counts) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Map returns a copy of the counts as a plain map.
func (c *Counts) Map() map[string]int {
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Entry is one key/count pair.
type Entry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Entries returns key/count pairs in first-seen order.
func (c *Counts) Entries() []Entry {
	out := make([]Entry, len(c.keys))
	for i, k := range c.keys {
		out[i] = Entry{Key: k, Count: c.counts[k]}
	}
	return out
}

// MarshalJSON encodes the counts as an ordered list of entries.
func (c *Counts) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Entries())
}

// Bucket is one age range of a histogram. Max is -1 for the open-ended bucket.
type Bucket struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}
