package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fustilio/glost/pkg/errors"
)

func TestLoadStaticDictURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hello": {"ipa": "/həˈloʊ/"}}`))
	}))
	defer srv.Close()

	d, err := LoadStaticDictURL(context.Background(), "remote-dict", srv.URL)
	if err != nil {
		t.Fatalf("LoadStaticDictURL error: %v", err)
	}
	if d.Name() != "remote-dict" || d.Len() != 1 {
		t.Errorf("dict = %s (%d entries)", d.Name(), d.Len())
	}
	data, found, err := d.GetData(context.Background(), "hello")
	if err != nil || !found || data["ipa"] != "/həˈloʊ/" {
		t.Errorf("GetData = %v, %v, %v", data, found, err)
	}
}

func TestLoadStaticDictURLRejectsScheme(t *testing.T) {
	for _, url := range []string{"", "ftp://dict.example/d.json", "file:///etc/passwd"} {
		_, err := LoadStaticDictURL(context.Background(), "d", url)
		if errors.GetCode(err) != errors.ErrCodeInvalidInput {
			t.Errorf("url %q: got %v", url, err)
		}
	}
}

func TestLoadStaticDictURLServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := LoadStaticDictURL(context.Background(), "d", srv.URL)
	if errors.GetCode(err) != errors.ErrCodeNetwork {
		t.Errorf("server error: got %v", err)
	}
}

func TestLoadStaticDictURLMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hello": [`))
	}))
	defer srv.Close()

	_, err := LoadStaticDictURL(context.Background(), "d", srv.URL)
	if errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("malformed body: got %v", err)
	}
}
