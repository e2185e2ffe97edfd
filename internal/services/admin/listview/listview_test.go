package listview

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	ID    string
	First string
	Last  string
	Email *string
}

func ptr(s string) *string { return &s }

func firstName(p person) (string, bool) { return p.First, p.First != "" }
func lastName(p person) (string, bool)  { return p.Last, p.Last != "" }
func email(p person) (string, bool) {
	if p.Email == nil {
		return "", false
	}
	return *p.Email, true
}

func displayName(p person) string { return p.First + " " + p.Last }

func testConfig(size int) Config[person] {
	return Config[person]{
		PageSize:     size,
		SearchFields: []Field[person]{firstName, lastName, email},
		Sorters:      map[string]Compare[person]{"name": LowerCompare(displayName)},
	}
}

func people(n int) []person {
	out := make([]person, n)
	for i := range out {
		out[i] = person{ID: fmt.Sprintf("u-%02d", i), First: fmt.Sprintf("User%02d", i), Last: "Doe"}
	}
	return out
}

func ids(items []person) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestFilterEmptyTermIsIdentity(t *testing.T) {
	items := people(5)
	got := Filter(items, "", testConfig(10).SearchFields)
	assert.Equal(t, items, got)

}

func TestFilterMatchesWhitespaceLiterally(t *testing.T) {
	items := []person{
		{ID: "1", First: "Jane", Last: "Doe"},
		{ID: "2", First: "John", Last: "Smith"},
	}
	fields := testConfig(10).SearchFields

	assert.Empty(t, Filter(items, " ", fields))
	assert.Empty(t, Filter(items, "jane ", fields))
	assert.Equal(t, []string{"1"}, ids(Filter(items, "jane", fields)))
}

func TestFilterMatchesCaseInsensitiveSubstring(t *testing.T) {
	items := []person{
		{ID: "1", First: "Jane", Last: "Smith"},
		{ID: "2", First: "John", Last: "Smith"},
	}
	got := Filter(items, "jane", testConfig(10).SearchFields)
	assert.Equal(t, []string{"1"}, ids(got))

	got = Filter(items, "SMI", testConfig(10).SearchFields)
	assert.Equal(t, []string{"1", "2"}, ids(got))
}

func TestFilterAbsentFieldNeverMatches(t *testing.T) {
	items := []person{
		{ID: "1", First: "Ann", Email: nil},
		{ID: "2", First: "Bob", Email: ptr("ann@example.com")},
	}
	got := Filter(items, "example", testConfig(10).SearchFields)
	assert.Equal(t, []string{"2"}, ids(got))
}

func TestFilterResultSatisfiesPredicate(t *testing.T) {
	items := []person{
		{ID: "1", First: "Maria", Last: "Lopez"},
		{ID: "2", First: "Mario", Last: "Rossi"},
		{ID: "3", First: "Luis", Last: "Marin"},
		{ID: "4", First: "Ana", Last: "Costa"},
	}
	fields := testConfig(10).SearchFields
	term := "MAR"
	got := Filter(items, term, fields)
	kept := map[string]bool{}
	for _, item := range got {
		kept[item.ID] = true
		assert.True(t, matches(item, strings.ToLower(term), fields), "kept %s does not match", item.ID)
	}
	for _, item := range items {
		if !kept[item.ID] {
			assert.False(t, matches(item, strings.ToLower(term), fields), "dropped %s matches", item.ID)
		}
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids(got))
}

func TestSortByNameAscendingAndDescending(t *testing.T) {
	items := []person{
		{ID: "c", First: "carla", Last: "Zed"},
		{ID: "a", First: "Alice", Last: "Young"},
		{ID: "b", First: "bruno", Last: "Xu"},
	}
	sorters := testConfig(10).Sorters

	asc := Sort(items, "name", Asc, sorters)
	assert.Equal(t, []string{"a", "b", "c"}, ids(asc))

	desc := Sort(asc, "name", Desc, sorters)
	assert.Equal(t, []string{"c", "b", "a"}, ids(desc))

	assert.Equal(t, []string{"c", "a", "b"}, ids(items), "input must not be reordered")
}

func TestSortIsStableForTies(t *testing.T) {
	items := []person{
		{ID: "1", First: "Sam", Last: "Lee"},
		{ID: "2", First: "amy", Last: "Ray"},
		{ID: "3", First: "sam", Last: "lee"},
	}
	sorters := testConfig(10).Sorters

	assert.Equal(t, []string{"2", "1", "3"}, ids(Sort(items, "name", Asc, sorters)))
	assert.Equal(t, []string{"1", "3", "2"}, ids(Sort(items, "name", Desc, sorters)))
}

func TestSortUnknownFieldIsIdentity(t *testing.T) {
	items := []person{{ID: "b", First: "B"}, {ID: "a", First: "A"}}
	got := Sort(items, "createdAt", Desc, testConfig(10).Sorters)
	assert.Equal(t, ids(items), ids(got))

	got = Sort(items, "", Asc, testConfig(10).Sorters)
	assert.Equal(t, ids(items), ids(got))
}

func TestPaginateLengths(t *testing.T) {
	items := people(45)
	tests := []struct {
		page int
		want int
	}{
		{page: 1, want: 30},
		{page: 2, want: 15},
		{page: 3, want: 0},
		{page: 0, want: 0},
		{page: -1, want: 0},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("page %d", tc.page), func(t *testing.T) {
			got := Paginate(items, tc.page, 30)
			require.NotNil(t, got)
			assert.Len(t, got, tc.want)
		})
	}
}

func TestPaginateConcatenationReconstructsInput(t *testing.T) {
	for _, size := range []int{1, 4, 7, 10, 45, 50} {
		items := people(45)
		var joined []person
		for page := 1; page <= TotalPages(len(items), size); page++ {
			joined = append(joined, Paginate(items, page, size)...)
		}
		assert.Equal(t, ids(items), ids(joined), "size %d", size)
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 30))
	assert.Equal(t, 1, TotalPages(30, 30))
	assert.Equal(t, 2, TotalPages(31, 30))
	assert.Equal(t, 0, TotalPages(10, 0))
}

func TestRenderComposesPipeline(t *testing.T) {
	items := []person{
		{ID: "1", First: "Zoe", Last: "Doe"},
		{ID: "2", First: "Adam", Last: "Doe"},
		{ID: "3", First: "Mia", Last: "Poe"},
		{ID: "4", First: "Bea", Last: "Doe"},
	}
	cfg := testConfig(2)
	state := State{Search: "doe", SortField: "name", SortDir: Asc, Page: 2}

	result := cfg.Render(items, state)
	assert.Equal(t, []string{"1"}, ids(result.Items))
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.TotalPages)
	assert.True(t, result.HasPrev())
	assert.False(t, result.HasNext())

	again := cfg.Render(items, state)
	assert.Equal(t, result, again)
}

func TestRenderOutOfRangePageIsEmpty(t *testing.T) {
	result := testConfig(30).Render(people(45), State{Page: 4})
	assert.Empty(t, result.Items)
	assert.Equal(t, 45, result.Total)
	assert.True(t, result.OutOfRange())
}
