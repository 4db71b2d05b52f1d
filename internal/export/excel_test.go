package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/lead-service/internal/domain"
)

func TestWriteLeadsWorkbook(t *testing.T) {
	staffID := "staff-1"
	leads := []domain.Lead{
		{
			Name:       "Rita",
			Email:      "rita@example.com",
			Phone:      "555-0100",
			Status:     domain.LeadStatusQualified,
			Source:     "Website",
			Course:     "Data Engineering",
			AssignedTo: &staffID,
			CreatedAt:  time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		},
		{
			Name:   "Omar",
			Email:  "omar@example.com",
			Status: domain.LeadStatusNew,
			Source: domain.DefaultLeadSource,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLeadsWorkbook(&buf, leads, map[string]string{staffID: "Sam"}))
	require.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Leads")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, "Rita", rows[1][0])
	assert.Equal(t, "Qualified", rows[1][3])
	assert.Equal(t, "Sam", rows[1][7])
	assert.Equal(t, "Omar", rows[2][0])
	assert.Equal(t, "Unassigned", rows[2][7])
}

func TestWriteLeadsWorkbookEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLeadsWorkbook(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Leads")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header row only")
}
