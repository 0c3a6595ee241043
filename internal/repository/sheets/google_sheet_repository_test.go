package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTailRange(t *testing.T) {
	cases := []struct {
		sheetRange string
		written    int
		want       string
	}{
		{"Sales!A:O", 3, "Sales!A4:O"},
		{"Sales!A:O", 0, "Sales!A1:O"},
		{"Sales!A2:O", 5, "Sales!A7:O"},
		{"'Daily Sales'!B1:P200", 10, "'Daily Sales'!B11:P"},
		{"A:O", 1, "A2:O"},
	}

	for _, tc := range cases {
		got, err := tailRange(tc.sheetRange, tc.written)
		require.NoError(t, err, tc.sheetRange)
		assert.Equal(t, tc.want, got, tc.sheetRange)
	}
}

func TestTailRange_RejectsUnboundedRanges(t *testing.T) {
	for _, sheetRange := range []string{"Sales", "Sales!A1", "Sales!1:5", "Sales!A0:O"} {
		_, err := tailRange(sheetRange, 1)
		assert.Error(t, err, sheetRange)
	}
}
