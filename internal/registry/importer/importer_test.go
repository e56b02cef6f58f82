package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"emargement/internal/registry/models"
	dErrors "emargement/pkg/domain-errors"
)

var importTime = time.Date(2025, 6, 12, 18, 30, 0, 0, time.UTC)

func TestBuild_ResolvesHeaderAliases(t *testing.T) {
	rows := []Row{{
		"ID d'inscription":            " Q1 ",
		"Contact":                     "Alice Martin",
		"Rôle":                        "Speaker",
		"Événement":                   "Gala 2025",
		"Date de création":            "2025-05-01",
		"Responsable":                 "Claire",
		"E-mail":                      "alice@example.com",
		"Date de création du contact": "2024-12-24",
		"Allergies":                   "none",
	}}

	got := Build(rows, importTime)
	require.Len(t, got, 1)
	assert.Equal(t, models.Guest{
		RegistrationID:   "Q1",
		Contact:          "Alice Martin",
		Role:             "Speaker",
		EventName:        "Gala 2025",
		CreatedAt:        "2025-05-01",
		Manager:          "Claire",
		Email:            "alice@example.com",
		ContactCreatedAt: "2024-12-24",
	}, got[0])
}

func TestBuild_AliasVariants(t *testing.T) {
	for _, header := range []string{"ID d'inscription", "id dinscription", "ID INSCRIPTION", "Registration ID"} {
		t.Run(header, func(t *testing.T) {
			got := Build([]Row{{header: "R-7", "Contact": "Bob"}}, importTime)
			assert.Equal(t, "R-7", got[0].RegistrationID)
		})
	}
}

func TestBuild_ContactFromFirstAndLastName(t *testing.T) {
	rows := []Row{
		{"Code": "A1", "Prénom": "Hélène", "Nom": "Martin"},
		{"Code": "A2", "Nom": "Dupont"},
		{"Code": "A3", "Contact": "Jean Dupont", "Prénom": "J", "Nom": "D"},
	}
	got := Build(rows, importTime)

	require.Len(t, got, 3)
	assert.Equal(t, "Hélène Martin", got[0].Contact)
	assert.Equal(t, "Dupont", got[1].Contact)
	assert.Equal(t, "Jean Dupont", got[2].Contact, "an explicit contact column wins")
}

func TestBuild_SynthesizesMissingKeys(t *testing.T) {
	rows := []Row{
		{"Contact": "Alice"},
		{"ID d'inscription": "", "Contact": "Bob"},
		{"ID d'inscription": "Q3"},
	}

	got := Build(rows, importTime)
	require.Len(t, got, 3)
	assert.Equal(t, "QR-1749753000000-0", got[0].RegistrationID)
	assert.Equal(t, "QR-1749753000000-1", got[1].RegistrationID)
	assert.Equal(t, "Q3", got[2].RegistrationID)
	assert.Equal(t, models.UnnamedContact, got[2].Contact)
	for _, g := range got {
		assert.False(t, g.Present)
		assert.Nil(t, g.PresentAt)
	}
}

func TestBuild_MalformedRowsDegrade(t *testing.T) {
	got := Build([]Row{{}, {"": "orphan"}}, importTime)
	require.Len(t, got, 2)
	assert.Equal(t, "QR-1749753000000-0", got[0].RegistrationID)
	assert.Empty(t, got[1].Email)
}

// TestBuild_Deterministic checks that two builds over the same rows differ
// only in the timestamp part of synthesized keys.
func TestBuild_Deterministic(t *testing.T) {
	rows := []Row{
		{"ID d'inscription": "Q1", "Contact": "Alice", "email": "a@example.com", "EMAIL": "other@example.com"},
		{"Contact": "Bob"},
	}
	first := Build(rows, importTime)
	second := Build(rows, importTime.Add(5*time.Second))

	require.Len(t, second, len(first))
	assert.Equal(t, first[0], second[0])
	assert.Equal(t, "QR-1749753005000-1", second[1].RegistrationID)
	second[1].RegistrationID = first[1].RegistrationID
	assert.Equal(t, first[1], second[1])
}

func TestUnknownHeaders(t *testing.T) {
	rows := []Row{
		{"Contact": "A", "Allergies": "", "Table": "3"},
		{"Contact": "B", "allergies": "nuts"},
	}
	assert.Equal(t, []string{"allergies", "table"}, UnknownHeaders(rows))
}

func TestDecode_CSV(t *testing.T) {
	t.Run("semicolon export with BOM and blank lines", func(t *testing.T) {
		data := "\ufeffID d'inscription;Contact;Email\n\nQ1;Alice;alice@example.com\nQ2;Bob\n;;\n"
		rows, err := Decode(strings.NewReader(data), "invites.csv")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, Row{"ID d'inscription": "Q1", "Contact": "Alice", "Email": "alice@example.com"}, rows[0])
		assert.Equal(t, "", rows[1]["Email"])
	})

	t.Run("comma separated", func(t *testing.T) {
		rows, err := Decode(strings.NewReader("Contact,ID inscription\n\"Dupont, Jean\",Q9\n"), "list.CSV")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Dupont, Jean", rows[0]["Contact"])
	})

	t.Run("empty file is an import error", func(t *testing.T) {
		_, err := Decode(strings.NewReader(""), "empty.csv")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeImport))
	})
}

func TestDecode_RejectsUnreadableInput(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Decode(strings.NewReader("x"), "guests.pdf")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeImport))
	})

	t.Run("corrupt workbook", func(t *testing.T) {
		_, err := Decode(strings.NewReader("definitely not a zip archive"), "guests.xlsx")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeImport))
	})
}

func TestDecode_XLSXFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"ID d'inscription", "Contact", "Rôle"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Q1", "Alice", "Speaker"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"Q2", "Bob"}))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Other", "A1", &[]any{"ignored"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := Decode(buf, "invites.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"ID d'inscription": "Q1", "Contact": "Alice", "Rôle": "Speaker"}, rows[0])
	assert.Equal(t, Row{"ID d'inscription": "Q2", "Contact": "Bob", "Rôle": ""}, rows[1])

	guests := Build(rows, importTime)
	assert.Equal(t, "Speaker", guests[0].Role)
}
