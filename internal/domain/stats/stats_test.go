package stats

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestCounts_FirstSeenOrder(t *testing.T) {
	c := NewCounts()
	c.Add("b", 1)
	c.Add("a", 2)
	c.Add("b", 3)

	if !slices.Equal(c.Keys(), []string{"b", "a"}) {
		t.Errorf("Keys = %v", c.Keys())
	}
	if c.Get("b") != 4 || c.Get("a") != 2 || c.Get("z") != 0 {
		t.Errorf("unexpected counts: %v", c.Map())
	}
	if c.Total() != 6 || c.Len() != 2 {
		t.Errorf("Total/Len = %d/%d", c.Total(), c.Len())
	}
}

func TestCounts_ZeroValueUsable(t *testing.T) {
	var c Counts
	c.Add("x", 1)
	if c.Get("x") != 1 {
		t.Errorf("Get = %d", c.Get("x"))
	}
}

func TestCounts_MarshalJSON(t *testing.T) {
	c := NewCounts()
	c.Add("Disability", 2)
	c.Add("Retirement", 1)

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"key":"Disability","count":2},{"key":"Retirement","count":1}]`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}
