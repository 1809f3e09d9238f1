package parse

import (
	"testing"

	"github.com/JyotinderSingh/dropexec/query"
	"github.com/JyotinderSingh/dropexec/query/functions"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	data := []byte(`
select:
  - sid
  - {fn: count, field: grade}
  - {fn: max, field: grade, distinct: true}
from: [student, enroll]
where:
  - {lhs: {field: sid}, op: "=", rhs: {field: esid}}
  - {lhs: {field: grade}, op: "!=", rhs: {string: F}}
  - {lhs: {field: sid}, op: "<", rhs: {int: 10}}
groupBy: [sid]
orderBy:
  - {field: sid, desc: true}
`)
	qd, err := ParseRequest(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"sid", "countOfgrade", "maxDistinctOfgrade"}, qd.Fields())
	assert.Equal(t, []string{"student", "enroll"}, qd.Tables())
	assert.Equal(t, []string{"sid"}, qd.GroupBy())
	assert.True(t, qd.IsAggregate())
	assert.Equal(t, []functions.Spec{
		{Kind: functions.Count, Field: "grade"},
		{Kind: functions.Max, Field: "grade", Distinct: true},
	}, qd.Aggregates())
	assert.Len(t, qd.Pred().Terms(), 3)
	assert.Equal(t, "esid", qd.Pred().EquatesWithField("sid"))

	assert.Equal(t,
		"select sid, count(grade), max(distinct grade) from student, enroll"+
			" where sid = esid and grade != 'F' and sid < 10 group by sid order by sid desc",
		qd.String())
}

func TestParseRequest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "no tables",
			data:    "select: [a]",
			wantErr: ErrEmptyRequest,
		},
		{
			name:    "no fields",
			data:    "from: [t]",
			wantErr: ErrEmptyRequest,
		},
		{
			name:    "plain field mixed with aggregate",
			data:    "select: [a, {fn: sum, field: b}]\nfrom: [t]",
			wantErr: ErrMalformedAggregate,
		},
		{
			name:    "plain field not grouped",
			data:    "select: [a, b]\nfrom: [t]\ngroupBy: [a]",
			wantErr: ErrMalformedAggregate,
		},
		{
			name:    "unknown function",
			data:    "select: [{fn: median, field: b}]\nfrom: [t]",
			wantErr: ErrMalformedAggregate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestParseRequest_BadOperand(t *testing.T) {
	_, err := ParseRequest([]byte(`
select: [a]
from: [t]
where:
  - {lhs: {field: a, int: 1}, op: "=", rhs: {int: 2}}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "where term 0")
}

func TestNewQueryData_Defaults(t *testing.T) {
	qd, err := NewQueryData([]Field{NewDefaultField("a")}, []string{"t"}, nil, nil, nil, true)
	require.NoError(t, err)

	assert.True(t, qd.Pred().IsEmpty())
	assert.True(t, qd.OrderBy().IsEmpty())
	assert.False(t, qd.IsAggregate())
	assert.Equal(t, "select distinct a from t", qd.String())
}

func TestNewQueryData_DuplicateTable(t *testing.T) {
	_, err := NewQueryData([]Field{NewDefaultField("a")}, []string{"t", "t"}, query.NewPredicate(), nil, nil, false)
	assert.Error(t, err)
}
