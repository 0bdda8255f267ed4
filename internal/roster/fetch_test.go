package roster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "roster.txt")
	if err := os.WriteFile(path, []byte("# prod\n111\n222\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"111", "222"}) {
		t.Fatalf("FromFile = %v", got)
	}

	if _, err := FromFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("FromFile on missing file succeeded")
	}
}

func TestFromURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("111\n# comment\n222\n"))
	}))
	defer srv.Close()

	got, err := FromURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FromURL: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"111", "222"}) {
		t.Fatalf("FromURL = %v", got)
	}
}

func TestFromURLRejectsBadInput(t *testing.T) {
	t.Parallel()

	for _, u := range []string{"", "ftp://example.com/x", "not a url", "file:///etc/passwd"} {
		if _, err := FromURL(context.Background(), u); err == nil {
			t.Fatalf("FromURL(%q) succeeded, want error", u)
		}
	}
}

func TestFromURLRejectsNon200(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := FromURL(context.Background(), srv.URL); err == nil {
		t.Fatal("FromURL on 404 succeeded")
	}
}
