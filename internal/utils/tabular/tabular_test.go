package tabular_test

import (
	"testing"

	"github.com/Noura-Darwazeh/delivery-admin-api/internal/utils/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []tabular.Record {
	return []tabular.Record{
		{"name": "Acme", "status": "active", "total": 30.0},
		{"name": "Beta", "status": "pending", "total": 10.0},
		{"name": "acme logistics", "status": "active", "total": 20.0},
	}
}

func TestFilterByText(t *testing.T) {
	records := sampleRecords()

	t.Run("empty search returns input unchanged", func(t *testing.T) {
		assert.Equal(t, records, tabular.FilterByText(records, "", nil))
		assert.Equal(t, records, tabular.FilterByText(records, "   ", nil))
	})

	t.Run("case-insensitive substring over all values", func(t *testing.T) {
		got := tabular.FilterByText(records, "ac", nil)
		require.Len(t, got, 2)
		assert.Equal(t, "Acme", got[0]["name"])
		assert.Equal(t, "acme logistics", got[1]["name"])
	})

	t.Run("explicit keys restrict the candidate set", func(t *testing.T) {
		got := tabular.FilterByText(records, "pending", []string{"name"})
		assert.Empty(t, got)

		got = tabular.FilterByText(records, "pending", []string{"name", "status"})
		require.Len(t, got, 1)
		assert.Equal(t, "Beta", got[0]["name"])
	})

	t.Run("numeric values match by string form", func(t *testing.T) {
		got := tabular.FilterByText(records, "30", nil)
		require.Len(t, got, 1)
		assert.Equal(t, "Acme", got[0]["name"])
	})
}

func TestFilterByGroups(t *testing.T) {
	records := sampleRecords()

	t.Run("no selected groups means show all", func(t *testing.T) {
		assert.Equal(t, records, tabular.FilterByGroups(records, nil, "status"))
		assert.Equal(t, records, tabular.FilterByGroups(records, []string{}, "status"))
	})

	t.Run("keeps only members of the selected groups", func(t *testing.T) {
		got := tabular.FilterByGroups(records, []string{"pending"}, "status")
		require.Len(t, got, 1)
		assert.Equal(t, "Beta", got[0]["name"])
	})

	t.Run("unknown group key filters everything out", func(t *testing.T) {
		assert.Empty(t, tabular.FilterByGroups(records, []string{"x"}, "missing"))
	})
}

func TestSortBy(t *testing.T) {
	t.Run("empty key returns input unchanged", func(t *testing.T) {
		records := sampleRecords()
		assert.Equal(t, records, tabular.SortBy(records, "", tabular.Ascending))
	})

	t.Run("sorts strings with collation", func(t *testing.T) {
		records := sampleRecords()
		got := tabular.SortBy(records, "name", tabular.Ascending)
		require.Len(t, got, 3)
		assert.Equal(t, "Acme", got[0]["name"])
		assert.Equal(t, "acme logistics", got[1]["name"])
		assert.Equal(t, "Beta", got[2]["name"])
	})

	t.Run("sorts numbers numerically and desc reverses", func(t *testing.T) {
		got := tabular.SortBy(sampleRecords(), "total", tabular.Descending)
		assert.Equal(t, 30.0, got[0]["total"])
		assert.Equal(t, 20.0, got[1]["total"])
		assert.Equal(t, 10.0, got[2]["total"])
	})

	t.Run("never mutates its input", func(t *testing.T) {
		records := sampleRecords()
		before := sampleRecords()
		_ = tabular.SortBy(records, "total", tabular.Descending)
		assert.Equal(t, before, records)
	})
}

func TestPaginate(t *testing.T) {
	records := []tabular.Record{
		{"n": 1}, {"n": 2}, {"n": 3}, {"n": 4}, {"n": 5},
	}

	t.Run("slices the requested page", func(t *testing.T) {
		got := tabular.Paginate(records, 2, 2)
		require.Len(t, got, 2)
		assert.Equal(t, 3, got[0]["n"])
		assert.Equal(t, 4, got[1]["n"])
	})

	t.Run("short last page", func(t *testing.T) {
		got := tabular.Paginate(records, 3, 2)
		require.Len(t, got, 1)
		assert.Equal(t, 5, got[0]["n"])
	})

	t.Run("out-of-range and invalid pages are empty", func(t *testing.T) {
		assert.Empty(t, tabular.Paginate(records, 4, 2))
		assert.Empty(t, tabular.Paginate(records, 0, 2))
		assert.Empty(t, tabular.Paginate(records, 1, 0))
	})

	t.Run("pages concatenate back to the original sequence", func(t *testing.T) {
		var rebuilt []tabular.Record
		for page := 1; page <= 3; page++ {
			chunk := tabular.Paginate(records, page, 2)
			assert.LessOrEqual(t, len(chunk), 2)
			rebuilt = append(rebuilt, chunk...)
		}
		assert.Equal(t, records, rebuilt)
	})
}

func TestApply_Pipeline(t *testing.T) {
	records := []tabular.Record{
		{"name": "Acme", "status": "active", "total": 30.0},
		{"name": "Axle", "status": "active", "total": 10.0},
		{"name": "Beta", "status": "pending", "total": 20.0},
		{"name": "Apex", "status": "active", "total": 20.0},
	}

	page, total := tabular.Apply(records, tabular.Query{
		Search:   "a",
		Groups:   []string{"active"},
		GroupKey: "status",
		SortKey:  "total",
		SortDir:  tabular.Ascending,
		Page:     1,
		PageSize: 2,
	})

	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Axle", page[0]["name"])
	assert.Equal(t, 20.0, page[1]["total"])
}
