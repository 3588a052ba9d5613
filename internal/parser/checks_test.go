package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-tools/statement-extractor/internal/geometry"
)

func TestParseChecksSingleSlot(t *testing.T) {
	b := band{top: 630, bottom: 600.5}
	fs := geometry.Fragments{
		frag(50, 615, "1051 *"),
		frag(100, 615, "07-03"),
		frag(150, 615, "25.00"),
	}

	txns, err := parseChecks(fs, b, 2017)
	require.NoError(t, err)
	require.Len(t, txns, 1)

	txn := txns[0]
	assert.Equal(t, time.Date(2017, time.July, 3, 0, 0, 0, 0, time.UTC), txn.Date)
	assert.Equal(t, "Check", txn.Type)
	assert.Equal(t, []string{"Check #1051"}, txn.Description, "trailing asterisk is a footnote marker, not part of the number")
	assert.Equal(t, -25.00, txn.Amount, "checks are always debits")
}

func TestParseChecksTwoSlots(t *testing.T) {
	b := band{top: 630, bottom: 600.5}
	fs := geometry.Fragments{
		frag(50, 615, "1051"),
		frag(100, 615, "07-03"),
		frag(150, 615, "25.00"),
		frag(300, 615, "1052"),
		frag(350, 615, "07-05"),
		frag(400, 615, "40.00"),
	}

	txns, err := parseChecks(fs, b, 2017)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	// Left slot before right slot
	assert.Equal(t, []string{"Check #1051"}, txns[0].Description)
	assert.Equal(t, -25.00, txns[0].Amount)
	assert.Equal(t, []string{"Check #1052"}, txns[1].Description)
	assert.Equal(t, -40.00, txns[1].Amount)
	assert.Equal(t, time.Date(2017, time.July, 5, 0, 0, 0, 0, time.UTC), txns[1].Date)
}

func TestParseChecksDiscardsFootnoteLines(t *testing.T) {
	b := band{top: 630, bottom: 600.5}
	fs := geometry.Fragments{
		frag(50, 615, "1051 *"),
		frag(100, 615, "07-03"),
		frag(150, 615, "25.00"),
		frag(50, 605, "* check out of sequence"),
	}

	txns, err := parseChecks(fs, b, 2017)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestParseChecksMultipleLines(t *testing.T) {
	b := band{top: 630, bottom: 580}
	fs := geometry.Fragments{
		// lower line first: input order must not matter
		frag(50, 600, "1053"),
		frag(100, 600, "07-08"),
		frag(150, 600, "12.50"),
		frag(50, 615, "1051"),
		frag(100, 615, "07-03"),
		frag(150, 615, "25.00"),
		frag(300, 615, "1052"),
		frag(350, 615, "07-05"),
		frag(400, 615, "40.00"),
	}

	txns, err := parseChecks(fs, b, 2017)
	require.NoError(t, err)
	require.Len(t, txns, 3)

	// Lines top to bottom, slots left to right
	assert.Equal(t, []string{"Check #1051"}, txns[0].Description)
	assert.Equal(t, []string{"Check #1052"}, txns[1].Description)
	assert.Equal(t, []string{"Check #1053"}, txns[2].Description)
}

func TestParseChecksRejectsBadFragmentCounts(t *testing.T) {
	b := band{top: 630, bottom: 600.5}

	tests := []struct {
		name string
		fs   geometry.Fragments
	}{
		{
			"two fragments",
			geometry.Fragments{
				frag(50, 615, "1051"),
				frag(100, 615, "07-03"),
			},
		},
		{
			"four fragments",
			geometry.Fragments{
				frag(50, 615, "1051"),
				frag(100, 615, "07-03"),
				frag(150, 615, "25.00"),
				frag(300, 615, "1052"),
			},
		},
		{
			"five fragments",
			geometry.Fragments{
				frag(50, 615, "1051"),
				frag(100, 615, "07-03"),
				frag(150, 615, "25.00"),
				frag(300, 615, "1052"),
				frag(350, 615, "07-05"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseChecks(tt.fs, b, 2017)
			var structErr *StructuralError
			require.ErrorAs(t, err, &structErr)
			assert.Equal(t, "checks", structErr.Section)
		})
	}
}

func TestParseChecksEmptyBand(t *testing.T) {
	b := band{top: 630, bottom: 600.5}
	txns, err := parseChecks(nil, b, 2017)
	require.NoError(t, err)
	assert.Empty(t, txns)
}
