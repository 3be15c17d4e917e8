package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	csv := strings.Join([]string{
		"Name,Phone,Email,Guest Type",
		"Amara Silva,+94711111111,amara@example.com,family",
		"Nimal Perera,,nimal@example.com,friend",
		",,,",
		",+94722222222,,guest",
	}, "\n")

	records, err := Parse(strings.NewReader(csv), "roster.csv")
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Amara Silva", records[0].Name)
	assert.Equal(t, "+94711111111", records[0].Phone)
	assert.Equal(t, "family", records[0].GuestType)

	assert.Equal(t, "Nimal Perera", records[1].Name)
	assert.Empty(t, records[1].Phone)

	// Nameless but non-blank rows survive so ingestion can report them
	assert.Empty(t, records[2].Name)
	assert.Equal(t, "+94722222222", records[2].Phone)
}

func TestParseCSVHeaderVariants(t *testing.T) {
	csv := "guest_name,mobile,e-mail,category\nAmara,+947,a@b.c,family"

	records, err := Parse(strings.NewReader(csv), "roster.CSV")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Amara", records[0].Name)
	assert.Equal(t, "+947", records[0].Phone)
	assert.Equal(t, "a@b.c", records[0].Email)
	assert.Equal(t, "family", records[0].GuestType)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]string{"Name", "Email", "Type"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]string{"Amara Silva", "amara@example.com", "family"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]string{"Nimal Perera", "nimal@example.com", "friend"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	records, err := Parse(&buf, "roster.xlsx")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Amara Silva", records[0].Name)
	assert.Equal(t, "amara@example.com", records[0].Email)
	assert.Equal(t, "family", records[0].GuestType)
	assert.Equal(t, "Nimal Perera", records[1].Name)
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse(strings.NewReader("x"), "roster.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseHeaderOnly(t *testing.T) {
	records, err := Parse(strings.NewReader("Name,Email\n"), "roster.csv")
	require.NoError(t, err)
	assert.Empty(t, records)
}
