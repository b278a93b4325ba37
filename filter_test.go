package xlquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func peopleTable(t *testing.T) *Table {
	t.Helper()
	table, err := BuildTable(peopleSheet())
	require.NoError(t, err)
	return table
}

func TestBuildTable(t *testing.T) {
	table := peopleTable(t)
	assert.Equal(t, []string{"ID", "Name", "Used"}, table.Columns)
	require.Len(t, table.Records, 3)
	assert.Equal(t, Record{Offset: 1, Number: 2, Values: []string{"10", "Alice", "Yes"}}, table.Records[0])
	assert.Equal(t, RowOffset(3), table.Records[2].Offset)
}

func TestBuildTable_PadsAndTruncates(t *testing.T) {
	sheet := &Sheet{Rows: []Row{
		{Number: 1, Cells: []Cell{{"A1", Literal("a")}, {"B1", Literal("b")}}},
		{Number: 2, Cells: []Cell{{"A2", Literal("1")}}},
		{Number: 3, Cells: []Cell{{"A3", Literal("2")}, {"B3", Literal("3")}, {"C3", Literal("4")}}},
	}}
	table, err := BuildTable(sheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", ""}, table.Records[0].Values)
	assert.Equal(t, []string{"2", "3"}, table.Records[1].Values)
}

func TestBuildTable_Empty(t *testing.T) {
	table, err := BuildTable(&Sheet{})
	require.NoError(t, err)
	assert.Empty(t, table.Columns)
	assert.Empty(t, table.Records)
}

func TestFilterEngine_Evaluate(t *testing.T) {
	table := peopleTable(t)
	engine := NewFilterEngine()

	tests := []struct {
		cond  string
		names []string
	}{
		{"ID>'30' and Used='No'", []string{"Bob", "Carol"}},
		{"ID > 30", []string{"Bob", "Carol"}},
		{"ID < 9", nil},
		{"ID >= 35", []string{"Bob", "Carol"}},
		{"ID <= 35 AND ID <> 10", []string{"Carol"}},
		{"Name = 'alice'", []string{"Alice"}},
		{"Name = ' Alice '", []string{"Alice"}},
		{"Used = 'Yes' OR Name = 'Carol'", []string{"Alice", "Carol"}},
		{"NOT Used = 'No'", []string{"Alice"}},
		{"Name LIKE 'c*'", []string{"Carol"}},
		{"Name LIKE '%o%'", []string{"Bob", "Carol"}},
		{"Name LIKE '*e'", []string{"Alice"}},
		{"Name NOT LIKE 'B%'", []string{"Alice", "Carol"}},
		{"ID IN (10, 35)", []string{"Alice", "Carol"}},
		{"Name NOT IN ('bob')", []string{"Alice", "Carol"}},
		{"[Name] = Name", []string{"Alice", "Bob", "Carol"}},
		{"ID = 42.0", []string{"Bob"}},
	}
	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			recs, err := engine.Evaluate(table, tt.cond)
			require.NoError(t, err)
			var names []string
			for _, r := range recs {
				names = append(names, r.Values[1])
			}
			assert.Equal(t, tt.names, names)
		})
	}
}

func TestFilterEngine_UnknownColumn(t *testing.T) {
	_, err := NewFilterEngine().Evaluate(peopleTable(t), "Age > 3")
	assert.ErrorIs(t, err, ErrConditionParse)
}

func TestFilterEngine_Select_FirstMatchOnly(t *testing.T) {
	engine := NewFilterEngine()
	table := peopleTable(t)

	rec, values, err := engine.Select(table, "ID>'30' and Used='No'", nil, FirstMatchOnly)
	require.NoError(t, err)
	assert.Equal(t, RowNumber(3), rec.Number)
	assert.Equal(t, RowOffset(2), rec.Offset)
	assert.Equal(t, []string{"42", "Bob", "No"}, values)

	_, values, err = engine.Select(table, "Used = 'No'", []string{"Name", "ID"}, FirstMatchOnly)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "42"}, values)
}

func TestFilterEngine_Select_NoMatch(t *testing.T) {
	_, _, err := NewFilterEngine().Select(peopleTable(t), "Name = 'Zed'", nil, FirstMatchOnly)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestFilterEngine_Select_UnknownProjection(t *testing.T) {
	_, _, err := NewFilterEngine().Select(peopleTable(t), "ID = 10", []string{"Age"}, FirstMatchOnly)
	assert.ErrorIs(t, err, ErrHeadingNotFound)
}

func TestFilterEngine_Select_UnknownPolicy(t *testing.T) {
	_, _, err := NewFilterEngine().Select(peopleTable(t), "ID = 10", nil, MatchPolicy(9))
	assert.Error(t, err)
}

func TestTable_Project_TrimsSelectedValues(t *testing.T) {
	table := &Table{Columns: []string{"a", "b"}}
	rec := Record{Values: []string{" x ", "y "}}

	values, err := table.Project(rec, []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, values)

	values, err = table.Project(rec, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{" x ", "y "}, values)
}

func TestFilterEngine_CachesPrograms(t *testing.T) {
	engine := NewFilterEngine()
	table := peopleTable(t)
	for i := 0; i < 3; i++ {
		_, err := engine.Evaluate(table, "ID = 10")
		require.NoError(t, err)
	}
	n := 0
	engine.eval.cache.Range(func(_, _ any) bool { n++; return true })
	assert.Equal(t, 1, n)
}

func TestLikeMatch(t *testing.T) {
	assert.True(t, likeMatch("Alice", "alice"))
	assert.True(t, likeMatch("Alice", "A*"))
	assert.True(t, likeMatch("Alice", "%ice"))
	assert.True(t, likeMatch("Alice", "*lic*"))
	assert.False(t, likeMatch("Alice", "B*"))
	assert.True(t, likeMatch("anything", "*"))
	assert.False(t, likeMatch("Alice", "A*e"))
}

func TestCompareValues(t *testing.T) {
	assert.Equal(t, 1, compareValues("10", "9"))
	assert.Equal(t, -1, compareValues("10", "9a"))
	assert.Equal(t, 0, compareValues(" ABC", "abc"))
	assert.Equal(t, 0, compareValues("1e1", "10"))
}

func TestFilterEngine_ComparesQuotedNumbers(t *testing.T) {
	sheet := &Sheet{Rows: []Row{
		{Number: 1, Cells: []Cell{{"A1", Literal("ID")}, {"B1", Literal("Used")}}},
		{Number: 2, Cells: []Cell{{"A2", Number("1")}, {"B2", Literal("No")}}},
		{Number: 3, Cells: []Cell{{"A3", Number("31")}, {"B3", Literal("No")}}},
		{Number: 4, Cells: []Cell{{"A4", Number("40")}, {"B4", Literal("Yes")}}},
	}}
	table, err := BuildTable(sheet)
	require.NoError(t, err)

	recs, err := NewFilterEngine().Evaluate(table, "ID>'30' and Used='No'")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, RowNumber(3), recs[0].Number)
	assert.Equal(t, []string{"31", "No"}, recs[0].Values)
}
