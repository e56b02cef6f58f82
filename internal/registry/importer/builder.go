package importer

import (
	"maps"
	"slices"
	"strings"
	"time"

	"emargement/internal/registry/models"
	keys "emargement/pkg/platform/strings"
)

// Row is one decoded spreadsheet line: raw column header to cell text.
// Untyped spreadsheet data stops here; only Guest values leave this package.
type Row map[string]string

type field int

const (
	fieldRegistrationID field = iota
	fieldContact
	fieldRole
	fieldEventName
	fieldCreatedAt
	fieldManager
	fieldEmail
	fieldContactCreatedAt
	fieldFirstName
	fieldLastName
)

// headerAliases lists, per Guest field, the normalized headers accepted for
// it. The first alias present in a row wins.
var headerAliases = map[field][]string{
	fieldRegistrationID:   {"id d'inscription", "id dinscription", "id inscription", "registration id", "qr code", "code"},
	fieldContact:          {"contact", "name"},
	fieldRole:             {"role", "fonction"},
	fieldEventName:        {"evenement", "nom de l'evenement", "event"},
	fieldCreatedAt:        {"date de creation", "cree le", "created at"},
	fieldManager:          {"responsable", "gestionnaire", "manager"},
	fieldEmail:            {"email", "e-mail", "adresse e-mail", "courriel"},
	fieldContactCreatedAt: {"date de creation du contact", "contact cree le"},
	// "nom" is a surname in French exports; it only names a guest alongside
	// the first name.
	fieldFirstName: {"prenom", "first name"},
	fieldLastName:  {"nom", "last name"},
}

var knownHeaders = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, aliases := range headerAliases {
		for _, a := range aliases {
			m[a] = struct{}{}
		}
	}
	return m
}()

// Build converts decoded rows into guests. Row position (0-based) feeds the
// synthetic key of rows without a registration id, so every guest leaves with
// a non-empty key. Malformed rows degrade to guests with empty fields.
func Build(rows []Row, now time.Time) []models.Guest {
	out := make([]models.Guest, 0, len(rows))
	for i, row := range rows {
		out = append(out, buildGuest(normalizeRow(row), now, i))
	}
	return out
}

func buildGuest(row map[string]string, now time.Time, index int) models.Guest {
	g := models.Guest{
		RegistrationID:   resolve(row, fieldRegistrationID),
		Contact:          resolve(row, fieldContact),
		Role:             resolve(row, fieldRole),
		EventName:        resolve(row, fieldEventName),
		CreatedAt:        resolve(row, fieldCreatedAt),
		Manager:          resolve(row, fieldManager),
		Email:            resolve(row, fieldEmail),
		ContactCreatedAt: resolve(row, fieldContactCreatedAt),
	}
	if g.RegistrationID == "" {
		g.RegistrationID = models.ImportedKey(now, index)
	}
	if g.Contact == "" {
		g.Contact = strings.TrimSpace(resolve(row, fieldFirstName) + " " + resolve(row, fieldLastName))
	}
	if g.Contact == "" {
		g.Contact = models.UnnamedContact
	}
	return g
}

// normalizeRow keys the row by normalized header. Headers are visited in
// sorted order and, on collision, the first non-empty cell is kept.
func normalizeRow(row Row) map[string]string {
	out := make(map[string]string, len(row))
	for _, header := range slices.Sorted(maps.Keys(row)) {
		value := row[header]
		key := keys.NormalizeKey(header)
		if key == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if existing, ok := out[key]; ok && existing != "" {
			continue
		}
		out[key] = value
	}
	return out
}

func resolve(row map[string]string, f field) string {
	for _, alias := range headerAliases[f] {
		if v, ok := row[alias]; ok {
			return v
		}
	}
	return ""
}

// UnknownHeaders lists, normalized and deduplicated, the headers no alias
// recognises. Used for import diagnostics only.
func UnknownHeaders(rows []Row) []string {
	var headers []string
	for _, row := range rows {
		for _, header := range slices.Sorted(maps.Keys(row)) {
			if _, ok := knownHeaders[keys.NormalizeKey(header)]; !ok {
				headers = append(headers, header)
			}
		}
	}
	return keys.DedupeKeys(headers)
}
