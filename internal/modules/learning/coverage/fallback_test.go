package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackTable_LookupOrderAndDedupe(t *testing.T) {
	table, err := ParseFallbackTable([]byte(`
- match: Machine Learning
  resources:
    - {title: ESL, url: "https://esl", kind: book}
    - {title: ISLR, url: "https://islr", kind: book}
- match: learning
  resources:
    - {title: ISLR again, url: "https://islr", kind: book}
    - {title: Course, url: "https://course", kind: course}
- match: sql
  resources:
    - {title: SQL, url: "https://sql", kind: tutorial}
`))
	require.NoError(t, err)

	got := table.Lookup("Applied MACHINE  learning")
	require.Len(t, got, 3)
	assert.Equal(t, "https://esl", got[0].URL)
	assert.Equal(t, "https://islr", got[1].URL)
	assert.Equal(t, "https://course", got[2].URL)

	assert.Empty(t, table.Lookup("stochastic calculus"))
	assert.Empty(t, table.Lookup(""))

	var nilTable *FallbackTable
	assert.Nil(t, nilTable.Lookup("sql"))
}

func TestFallbackTable_Invalid(t *testing.T) {
	_, err := ParseFallbackTable([]byte("- match: ''\n  resources: []\n"))
	assert.Error(t, err)
	_, err = ParseFallbackTable([]byte("{not: [yaml"))
	assert.Error(t, err)

	table, err := DefaultFallbackTable()
	require.NoError(t, err)
	assert.NotEmpty(t, table.Lookup("Time Series Analysis"))
}
