package utils

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeStrict(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	var b body
	if err := DecodeStrict(strings.NewReader(`{"name":"Acme"}`), &b); err != nil || b.Name != "Acme" {
		t.Fatalf("decode: %v %#v", err, b)
	}

	err := DecodeStrict(strings.NewReader(`{"nome":"Acme"}`), &b)
	if err == nil || FormatDecodeError(err) != `unknown field "nome"` {
		t.Fatalf("unknown field: %v", err)
	}

	if err := DecodeStrict(strings.NewReader(`{"name":"a"}{"name":"b"}`), &b); err == nil {
		t.Fatal("want error for trailing content")
	}

	if err := DecodeStrict(strings.NewReader(``), &b); FormatDecodeError(err) != "request body is empty" {
		t.Fatalf("empty: %v", err)
	}
}

func TestFormatDecodeError_BodyLimit(t *testing.T) {
	rr := httptest.NewRecorder()
	r := http.MaxBytesReader(rr, io.NopCloser(bytes.NewReader([]byte(`{"name":"abcdefgh"}`))), 4)
	var b struct {
		Name string `json:"name"`
	}
	err := DecodeStrict(r, &b)
	if got := FormatDecodeError(err); got != "request body exceeds 4 bytes" {
		t.Fatalf("got %q", got)
	}
}
