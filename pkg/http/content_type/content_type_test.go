package content_type

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	testCases := []struct {
		name      string
		extension string
		expected  string
	}{
		{name: "html", extension: "html", expected: "text/html;charset=UTF-8"},
		{name: "htm", extension: "htm", expected: "text/html;charset=UTF-8"},
		{name: "uppercase extension", extension: "PNG", expected: "image/png"},
		{name: "leading dot", extension: ".zip", expected: "application/zip"},
		{name: "mpeg keeps mpg media type", extension: "mpeg", expected: "video/mpg"},
		{name: "dicom", extension: "dcm", expected: "application/dicom"},
		{name: "unknown extension", extension: "unknownext", expected: ""},
		{name: "empty extension", extension: "", expected: ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := Lookup(testCase.extension); got != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestTableLookup(t *testing.T) {
	table := DefaultTable()
	table["json"] = "application/json"

	if got := table.Lookup("json"); got != "application/json" {
		t.Fatalf("expected custom entry, got %q", got)
	}

	if got := Lookup("json"); got != "" {
		t.Fatalf("expected the built-in table to be unaffected, got %q", got)
	}

	var nilTable Table
	if got := nilTable.Lookup("txt"); got != "text/plain;charset=UTF-8" {
		t.Fatalf("expected a nil table to fall back to the built-in one, got %q", got)
	}
}

func TestExtensionFromFileName(t *testing.T) {
	testCases := []struct {
		name        string
		path        string
		expected    string
		expectedErr error
	}{
		{name: "simple", path: "index.html", expected: "html"},
		{name: "directory with dot", path: "/srv/site.d/readme", expectedErr: ErrNoExtension},
		{name: "last dot wins", path: "/tmp/archive.tar.zip", expected: "zip"},
		{name: "trailing dot", path: "file.", expected: ""},
		{name: "no dot", path: "Makefile", expectedErr: ErrNoExtension},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			extension, err := ExtensionFromFileName(testCase.path)
			if !errors.Is(err, testCase.expectedErr) {
				t.Fatalf("expected error: %v, got: %v", testCase.expectedErr, err)
			}
			if extension != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, extension)
			}
		})
	}
}
