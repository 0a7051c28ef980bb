package edmv

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestManifestRoundTrip(t *testing.T) {
	lists := [][]string{
		{"a"},
		{"a.txt", "b.txt"},
		{"dir/with space/file", "ünïcødé", "\xff\xfe raw bytes", "trailing space "},
		{"./rel", "../up", "/abs/path"},
	}
	for _, in := range lists {
		got := DecodeManifest(EncodeManifest(in))
		if !reflect.DeepEqual(got, in) {
			t.Errorf("round trip of %q gave %q", in, got)
		}
	}
}

func TestEncodeManifest(t *testing.T) {
	got := string(EncodeManifest([]string{"x", "y"}))
	if got != "x\ny\n" {
		t.Fatalf("unexpected manifest %q", got)
	}
}

func TestDecodeManifest(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"single newline", "\n", []string{""}},
		{"no trailing newline", "a\nb", []string{"a", "b"}},
		{"trailing newline", "a\nb\n", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"only one cr stripped", "a\r\r\n", []string{"a\r"}},
		{"blank line kept", "a\n\nc\n", []string{"a", "", "c"}},
		{"spaces kept", " a \n", []string{" a "}},
		{"two trailing newlines", "a\n\n", []string{"a", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeManifest([]byte(tt.in))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("DecodeManifest(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWriteAndReadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list")
	if err := os.WriteFile(path, []byte("old content that is longer\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	in := []string{"one", "two"}
	if err := WriteManifest(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("got %q, want %q", got, in)
	}
}

func TestManifestIOErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	if err := WriteManifest(missing, []string{"a"}); !errors.Is(err, ErrScratchIO) {
		t.Fatalf("write to missing file: got %v, want ErrScratchIO", err)
	}
	if _, err := ReadManifest(missing); !errors.Is(err, ErrManifestRead) {
		t.Fatalf("read missing file: got %v, want ErrManifestRead", err)
	}
}
