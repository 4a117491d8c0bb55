package access

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

func TestReadUserListCommaSeparated(t *testing.T) {
	input := "email,first_name,last_name,is_admin\n" +
		"jane@acme.test,Jane,Doe,yes\n" +
		"not-an-email,Bad,Row,no\n" +
		"john@acme.test,John,Smith,\n"

	records, err := ReadUserList(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadUserList() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}
	if got := records[0].User; got.Email != "jane@acme.test" || got.FirstName != "Jane" || !got.IsAdmin {
		t.Fatalf("unexpected first record %+v", got)
	}
	if records[1].User.IsAdmin || records[1].Line != 4 {
		t.Fatalf("unexpected second record %+v", records[1])
	}
}

func TestReadUserListFinnishTabSeparatedUTF16(t *testing.T) {
	input := "ENSISIJAINEN SÄHKÖPOSTI\tETUNIMI\tSUKUNIMI\n" +
		"matti@acme.test\tMatti\tMeikäläinen\n"

	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(input))
	if err != nil {
		t.Fatalf("encode utf16: %v", err)
	}

	records, err := ReadUserList(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("ReadUserList() error: %v", err)
	}
	if len(records) != 1 || records[0].User.LastName != "Meikäläinen" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestReadUserListUTF8BOMSemicolon(t *testing.T) {
	input := "\xef\xbb\xbfEmail;First_Name;Last_Name\njane@acme.test;Jane;Doe\n"

	records, err := ReadUserList(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadUserList() error: %v", err)
	}
	if len(records) != 1 || records[0].User.FirstName != "Jane" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestReadUserListMissingEmailColumn(t *testing.T) {
	_, err := ReadUserList(strings.NewReader("name,role\nJane,admin\n"))
	if !errors.Is(err, ErrMissingEmailColumn) {
		t.Fatalf("expected ErrMissingEmailColumn, got %v", err)
	}
}

func TestReadUserListFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")
	if err := os.WriteFile(path, []byte("email\na@b.com\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	records, err := ReadUserListFile(path)
	if err != nil || len(records) != 1 {
		t.Fatalf("ReadUserListFile() = %+v, %v", records, err)
	}

	if _, err := ReadUserListFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidEmail(t *testing.T) {
	for email, want := range map[string]error{
		"":              ErrMissingEmail,
		"@acme.test":    ErrInvalidEmail,
		"jane@":         ErrInvalidEmail,
		"ja ne@acme.io": ErrInvalidEmail,
		"jane@acme.io":  nil,
	} {
		if got := ValidEmail(email); !errors.Is(got, want) {
			t.Errorf("ValidEmail(%q) = %v, want %v", email, got, want)
		}
	}
}
