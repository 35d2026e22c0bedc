package dashboard

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDelimitedTextHeaderAndRows(t *testing.T) {
	text, err := ToDelimitedText(sampleSales()[:2], Columns("name", "email", "sales", "date"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Email,Sales,Date", lines[0])
	assert.Equal(t, "Ann Lee,ann@x.com,12000,2024-01-10", lines[1])
	assert.Equal(t, "Bob Ray,bob@y.com,15000,2024-01-09", lines[2])
}

func TestToDelimitedTextRoundTrip(t *testing.T) {
	rows := []UserRecord{
		{ID: 1, Name: `Lee, "Ann"`, Email: "ann@x.com"},
		{ID: 2, Name: "Bob\nRay", Email: "bob@y.com", Phone: "555-0100"},
	}
	text, err := ToDelimitedText(rows, Columns("id", "name", "email", "phone"))
	require.NoError(t, err)
	assert.Contains(t, text, `"Lee, ""Ann"""`)

	parsed, err := ParseDelimitedText(text)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, map[string]string{"Id": "1", "Name": `Lee, "Ann"`, "Email": "ann@x.com", "Phone": ""}, parsed[0])
	assert.Equal(t, "Bob\nRay", parsed[1]["Name"])
	assert.Equal(t, "555-0100", parsed[1]["Phone"])
}

func TestToDelimitedTextCustomLabels(t *testing.T) {
	text, err := ToDelimitedText([]UserRecord{{ID: 7}}, []Column{{Key: "id", Label: "ID"}, {Key: "phone"}})
	require.NoError(t, err)
	assert.Equal(t, "ID,Phone\n7,\n", text)
}

func TestToDelimitedTextEmptyRows(t *testing.T) {
	text, err := ToDelimitedText([]SalesRecord{}, Columns("name"))
	require.NoError(t, err)
	assert.Equal(t, "Name\n", text)
}

func TestExportRequiresColumns(t *testing.T) {
	_, err := ToDelimitedText(sampleSales(), nil)
	assert.ErrorIs(t, err, ErrNoColumns)

	_, err = ToDocument(sampleSales(), nil, DocumentOptions{})
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestToDocumentProducesPDF(t *testing.T) {
	body, err := ToDocument(sampleSales(), Columns("name", "email", "sales", "date"), DocumentOptions{
		Title:       "Sales Report",
		HeaderColor: RGB{R: 41, G: 128, B: 185},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")), "expected pdf header")
}

func TestToDocumentPaginates(t *testing.T) {
	rows := make([]UserRecord, 0, 200)
	for i := 0; i < 200; i++ {
		rows = append(rows, UserRecord{ID: i, Name: "user", Email: "u@example.com"})
	}
	short, err := ToDocument(rows[:5], Columns("id", "name", "email"), DocumentOptions{Title: "Users"})
	require.NoError(t, err)
	long, err := ToDocument(rows, Columns("id", "name", "email"), DocumentOptions{Title: "Users"})
	require.NoError(t, err)

	assert.Equal(t, 1, bytes.Count(short, []byte("/Type /Page\n")))
	assert.Greater(t, bytes.Count(long, []byte("/Type /Page\n")), 1)
}

func TestColumnHeaderFallsBackToPascalKey(t *testing.T) {
	assert.Equal(t, "CreatedAt", Column{Key: "created_at"}.Header())
	assert.Equal(t, "Custom", Column{Key: "created_at", Label: "Custom"}.Header())
}
