package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gsheet "google.golang.org/api/sheets/v4"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCredentialsJSON(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	dir := t.TempDir()
	keyFile := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(keyFile, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("inline wins", func(t *testing.T) {
		b, err := credentialsJSON(Config{ServiceAccountJSON: ` {"inline":true} `, ServiceAccountFile: keyFile})
		if err != nil || string(b) != `{"inline":true}` {
			t.Fatalf("got %q, %v", b, err)
		}
	})
	t.Run("file", func(t *testing.T) {
		b, err := credentialsJSON(Config{ServiceAccountFile: keyFile})
		if err != nil || !strings.Contains(string(b), "service_account") {
			t.Fatalf("got %q, %v", b, err)
		}
	})
	t.Run("application default path", func(t *testing.T) {
		t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", keyFile)
		if _, err := credentialsJSON(Config{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := credentialsJSON(Config{ServiceAccountFile: filepath.Join(dir, "nope.json")})
		if err == nil || !strings.Contains(err.Error(), "read service account file") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("nothing configured", func(t *testing.T) {
		_, err := credentialsJSON(Config{})
		if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestRowIndex(t *testing.T) {
	ids := []string{"id", "a", "", "b"}
	tests := map[string]int{"a": 1, "b": 3, "id": -1, "c": -1, "": -1}
	for id, want := range tests {
		if got := rowIndex(ids, id); got != want {
			t.Errorf("rowIndex(%q) = %d, want %d", id, got, want)
		}
	}
}

func TestFindSheetID(t *testing.T) {
	sheets := []*gsheet.Sheet{
		{Properties: &gsheet.SheetProperties{Title: "Resumo", SheetId: 0}},
		{Properties: &gsheet.SheetProperties{Title: "Transacoes", SheetId: 42}},
		{},
	}
	if id, ok := findSheetID(sheets, "transacoes"); !ok || id != 42 {
		t.Errorf("findSheetID = %d, %v", id, ok)
	}
	if _, ok := findSheetID(sheets, "Outra"); ok {
		t.Error("expected no match")
	}
}
