package ingestion

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinRow_InsertsSpacesAtGaps(t *testing.T) {
	row := pdf.TextHorizontal{
		{S: "C", X: 10, W: 5, FontSize: 10},
		{S: "a", X: 15, W: 5, FontSize: 10},
		{S: "t", X: 20, W: 5, FontSize: 10},
		{S: "s", X: 40, W: 5, FontSize: 10},
	}
	assert.Equal(t, "Cat s", joinRow(row))
}

func TestJoinRow_SortsByX(t *testing.T) {
	row := pdf.TextHorizontal{
		{S: "b", X: 6, W: 5, FontSize: 10},
		{S: "a", X: 1, W: 5, FontSize: 10},
	}
	assert.Equal(t, "ab", joinRow(row))
	assert.Equal(t, "", joinRow(nil))
}

func TestStrategies_EmptyInput(t *testing.T) {
	_, err := LayoutStrategy{}.Extract(nil)
	require.Error(t, err)
	_, err = StreamStrategy{}.Extract([]byte{})
	require.Error(t, err)
}

func TestRecoverPDF(t *testing.T) {
	run := func() (err error) {
		defer recoverPDF(&err)
		panic("index out of range")
	}
	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
}
