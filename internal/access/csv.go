package access

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"urzis-pass/internal/api"
)

// CSV based user lists for bulk import

var ErrMissingEmailColumn = errors.New("CSV file has no email column")

// Column names of a user list, in different languages. Matching is case-insensitive.
type UserListDefinition struct {
	EmailField     string
	FirstNameField string
	LastNameField  string
	AdminField     string

	Language string // Language code, e.g. "en", "fi"
}

var UserListDefinitions = []UserListDefinition{
	{
		EmailField:     "EMAIL",
		FirstNameField: "FIRST_NAME",
		LastNameField:  "LAST_NAME",
		AdminField:     "IS_ADMIN",
		Language:       "en",
	},
	{
		EmailField:     "PRIMARY E-MAIL",
		FirstNameField: "FIRST NAME",
		LastNameField:  "LAST NAME",
		AdminField:     "ADMIN",
		Language:       "en",
	},
	{
		EmailField:     "ENSISIJAINEN SÄHKÖPOSTI",
		FirstNameField: "ETUNIMI",
		LastNameField:  "SUKUNIMI",
		AdminField:     "YLLÄPITÄJÄ",
		Language:       "fi",
	},
}

// UserRecord is one importable row. Line is the 1-based line in the file.
type UserRecord struct {
	Line int
	User api.UserInput
}

// ReadUserListFile opens path and parses it with ReadUserList.
func ReadUserListFile(path string) ([]UserRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()
	return ReadUserList(f)
}

// ReadUserList parses a user list with a header row. UTF-8 and UTF-16 input
// with a BOM are both accepted (spreadsheet exports often write UTF-16).
// The delimiter (comma, semicolon or tab) is taken from the header line.
// Rows without a valid email are skipped and logged.
func ReadUserList(r io.Reader) ([]UserRecord, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	br := bufio.NewReader(transform.NewReader(r, decoder))

	header, err := br.Peek(4096)
	if err != nil && err != io.EOF && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(string(header))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	def, idx, err := matchDefinition(headers)
	if err != nil {
		return nil, err
	}
	slog.Debug("Matched user list definition", "language", def.Language, "columns", idx)

	var records []UserRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)

		email := field(row, idx["email"])
		if err := ValidEmail(email); err != nil {
			slog.Warn("Skipping user list row", "line", line, "email", email, "error", err)
			continue
		}

		records = append(records, UserRecord{
			Line: line,
			User: api.UserInput{
				Email:     email,
				FirstName: field(row, idx["first_name"]),
				LastName:  field(row, idx["last_name"]),
				IsAdmin:   parseBool(field(row, idx["is_admin"])),
			},
		})
	}
	return records, nil
}

func detectDelimiter(header string) rune {
	if i := strings.IndexAny(header, "\r\n"); i >= 0 {
		header = header[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := strings.Count(header, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// matchDefinition picks the first definition whose email column is present.
func matchDefinition(headers []string) (UserListDefinition, map[string]int, error) {
	for _, def := range UserListDefinitions {
		idx := map[string]int{"email": -1, "first_name": -1, "last_name": -1, "is_admin": -1}
		for i, h := range headers {
			switch h = strings.TrimSpace(h); {
			case strings.EqualFold(h, def.EmailField):
				idx["email"] = i
			case strings.EqualFold(h, def.FirstNameField):
				idx["first_name"] = i
			case strings.EqualFold(h, def.LastNameField):
				idx["last_name"] = i
			case strings.EqualFold(h, def.AdminField):
				idx["is_admin"] = i
			}
		}
		if idx["email"] != -1 {
			return def, idx, nil
		}
	}
	return UserListDefinition{}, nil, ErrMissingEmailColumn
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "admin", "kyllä", "k":
		return true
	}
	return false
}
