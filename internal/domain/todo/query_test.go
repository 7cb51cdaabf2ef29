package todo

import (
	"sort"
	"testing"
	"time"
)

func TestBuildListQuery_Tabs(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		tab   Tab
		check func(t *testing.T, f Filter)
	}{
		{TabUpcoming, func(t *testing.T, f Filter) {
			if f.StartAfter == nil || !f.StartAfter.Equal(now) {
				t.Fatalf("upcoming should set StartAfter=now, got %+v", f)
			}
			if f.EndBefore != nil || f.StartAtOrBefore != nil || f.Status != nil {
				t.Fatalf("upcoming should only constrain startDate, got %+v", f)
			}
		}},
		{TabOngoing, func(t *testing.T, f Filter) {
			if f.StartAtOrBefore == nil || f.EndAtOrAfter == nil {
				t.Fatalf("ongoing should bound both dates, got %+v", f)
			}
		}},
		{TabOverdue, func(t *testing.T, f Filter) {
			if f.EndBefore == nil || !f.EndBefore.Equal(now) {
				t.Fatalf("overdue should set EndBefore=now, got %+v", f)
			}
		}},
		{TabCompleted, func(t *testing.T, f Filter) {
			if f.Status == nil || !*f.Status {
				t.Fatalf("completed should require status=true, got %+v", f)
			}
		}},
		{TabAll, func(t *testing.T, f Filter) {
			if !ownerOnly(f) {
				t.Fatalf("all should only filter by owner, got %+v", f)
			}
		}},
		{Tab("whatever"), func(t *testing.T, f Filter) {
			if !ownerOnly(f) {
				t.Fatalf("unknown tab should only filter by owner, got %+v", f)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.tab), func(t *testing.T) {
			q := BuildListQuery("owner", tt.tab, nil, "", now)
			tt.check(t, q.Filter)
		})
	}
}

func ownerOnly(f Filter) bool {
	return f.Owner == "owner" && f.StartAfter == nil && f.StartAtOrBefore == nil &&
		f.EndAtOrAfter == nil && f.EndBefore == nil && f.Status == nil && len(f.Priorities) == 0
}

func TestBuildListQuery_Order(t *testing.T) {
	now := time.Now()

	tests := []struct {
		order string
		want  Sort
	}{
		{"latest", Sort{Field: SortByStartDate}},
		{"oldest", Sort{Field: SortByUpdatedAt, Desc: true}},
		{"newest", Sort{Field: SortByUpdatedAt}},
		{"", Sort{Field: SortByUpdatedAt}},
	}

	for _, tt := range tests {
		q := BuildListQuery("owner", TabAll, nil, tt.order, now)
		if q.Sort != tt.want {
			t.Fatalf("order %q: got %+v want %+v", tt.order, q.Sort, tt.want)
		}
	}
}

func TestParsePriorities(t *testing.T) {
	got, err := ParsePriorities(`["low","high"]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != PriorityLow || got[1] != PriorityHigh {
		t.Fatalf("unexpected priorities %v", got)
	}

	got, err = ParsePriorities("  ")
	if err != nil || got != nil {
		t.Fatalf("empty param should yield no filter, got %v, %v", got, err)
	}

	got, err = ParsePriorities("[]")
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("[] should yield an empty, non-nil list, got %#v, %v", got, err)
	}

	got, err = ParsePriorities("null")
	if err != nil || got != nil {
		t.Fatalf("null should yield no filter, got %v, %v", got, err)
	}

	if _, err := ParsePriorities("low,high"); err != ErrInvalidPriorityFilter {
		t.Fatalf("expected ErrInvalidPriorityFilter, got %v", err)
	}
}

func TestFilterMatches(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hour := time.Hour

	past := Todo{Owner: "a", Title: "past", Priority: PriorityLow, StartDate: now.Add(-3 * hour), EndDate: now.Add(-hour)}
	current := Todo{Owner: "a", Title: "current", Priority: PriorityHigh, StartDate: now.Add(-hour), EndDate: now.Add(hour)}
	future := Todo{Owner: "a", Title: "future", Priority: PriorityMedium, StartDate: now.Add(hour), EndDate: now.Add(2 * hour), Status: true}
	edge := Todo{Owner: "a", Title: "edge", Priority: PriorityHigh, StartDate: now, EndDate: now}
	other := Todo{Owner: "b", Title: "other", Priority: PriorityLow, StartDate: now.Add(-3 * hour), EndDate: now.Add(-hour)}

	all := []Todo{past, current, future, edge, other}

	tests := []struct {
		name       string
		tab        Tab
		priorities []Priority
		want       []string
	}{
		{"all", TabAll, nil, []string{"past", "current", "future", "edge"}},
		{"upcoming", TabUpcoming, nil, []string{"future"}},
		{"ongoing includes boundaries", TabOngoing, nil, []string{"current", "edge"}},
		{"overdue is strict", TabOverdue, nil, []string{"past"}},
		{"completed", TabCompleted, nil, []string{"future"}},
		{"priority filter", TabAll, []Priority{PriorityHigh}, []string{"current", "edge"}},
		{"priority and tab", TabOverdue, []Priority{PriorityHigh}, nil},
		{"empty priority list matches nothing", TabAll, []Priority{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := BuildListQuery("a", tt.tab, tt.priorities, "", now)

			var got []string
			for _, td := range all {
				if q.Filter.Matches(td) {
					got = append(got, td.Title)
				}
			}

			if len(got) != len(tt.want) {
				t.Fatalf("got %v want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSortLess(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	items := []Todo{
		{Title: "b", StartDate: base.Add(2 * time.Hour), UpdatedAt: base},
		{Title: "a", StartDate: base, UpdatedAt: base.Add(time.Hour)},
		{Title: "c", StartDate: base.Add(time.Hour), UpdatedAt: base.Add(2 * time.Hour)},
	}

	order := func(s Sort) string {
		cp := append([]Todo(nil), items...)
		sort.SliceStable(cp, func(i, j int) bool { return s.Less(cp[i], cp[j]) })
		out := ""
		for _, td := range cp {
			out += td.Title
		}
		return out
	}

	if got := order(BuildListQuery("", TabAll, nil, "latest", base).Sort); got != "acb" {
		t.Fatalf("latest: got %s want acb", got)
	}
	if got := order(BuildListQuery("", TabAll, nil, "oldest", base).Sort); got != "cab" {
		t.Fatalf("oldest: got %s want cab", got)
	}
	if got := order(BuildListQuery("", TabAll, nil, "", base).Sort); got != "bac" {
		t.Fatalf("default: got %s want bac", got)
	}
}
