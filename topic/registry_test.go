package topic

import "testing"

func TestFilterMatchesWildcards(t *testing.T) {
	cases := []struct {
		filter, topicName string
		want              bool
	}{
		{"sensors/#", "sensors/temp", true},
		{"sensors/#", "sensors/temp/room1", true},
		{"sensors/#", "sensors", true},
		{"sensors/+/temp", "sensors/room1/temp", true},
		{"sensors/+/temp", "sensors/room1/room2/temp", false},
		{"a/b/c", "a/b/c", true},
		{"a/b/c", "a/b/d", false},
		{"+/+", "a/b", true},
		{"+/+", "a/b/c", false},
		{"#", "$SYS/uptime", false}, // $-prefixed topics excluded at first level
		{"+/monitor", "$SYS/monitor", false},
		{"$SYS/#", "$SYS/uptime", true}, // an explicit $SYS filter still matches
	}
	for _, c := range cases {
		if got := FilterMatches(c.filter, c.topicName); got != c.want {
			t.Errorf("FilterMatches(%q, %q) = %v, want %v", c.filter, c.topicName, got, c.want)
		}
	}
}

func TestFilterMatchesHashMustBeFinal(t *testing.T) {
	if FilterMatches("a/#/b", "a/x/b") {
		t.Errorf("a/#/b must not be a legal match shape, # has to be final")
	}
}

func TestSharedSubscriptionPrefixStripped(t *testing.T) {
	r := NewRegistry()
	var got string
	r.Add("$share/group1/sensors/temp", 1, func(name string, payload []byte, qos uint8) { got = name })
	handlers := r.Match("sensors/temp")
	if len(handlers) != 1 {
		t.Fatalf("got %d handlers, want 1", len(handlers))
	}
	handlers[0]("sensors/temp", nil, 1)
	if got != "sensors/temp" {
		t.Errorf("handler invoked with topic %q", got)
	}
}

func TestAddReplacesByExactFilterString(t *testing.T) {
	r := NewRegistry()
	if isNew := r.Add("x/#", 0, nil); !isNew {
		t.Fatalf("first Add should report new")
	}
	if isNew := r.Add("x/#", 1, nil); isNew {
		t.Fatalf("second Add with same filter should report replace, not new")
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
}

func TestRemoveExactFilterOnly(t *testing.T) {
	r := NewRegistry()
	r.Add("a/b", 0, nil)
	r.Add("a/+", 0, nil)
	r.Remove("a/b")
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	handlers := r.Match("a/b")
	if len(handlers) != 1 {
		t.Fatalf("got %d handlers, want 1 (a/+ still matches)", len(handlers))
	}
}

func TestClearRemovesEverySubscription(t *testing.T) {
	r := NewRegistry()
	r.Add("a/b", 0, nil)
	r.Add("c/d", 0, nil)
	r.Clear()
	if r.Len() != 0 {
		t.Fatalf("Len after Clear = %d, want 0", r.Len())
	}
}

func TestMatchDispatchesInInsertionOrder(t *testing.T) {
	r := NewRegistry()
	var order []string
	r.Add("a/#", 0, func(string, []byte, uint8) { order = append(order, "first") })
	r.Add("+/b", 0, func(string, []byte, uint8) { order = append(order, "second") })
	for _, h := range r.Match("a/b") {
		h("a/b", nil, 0)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("dispatch order = %v, want [first second]", order)
	}
}
