package date

import (
	"regexp"
	"sync"
	"testing"
	"time"
)

var httpDateRegex = regexp.MustCompile(`^[A-Z][a-z]{2}, \d{2} [A-Z][a-z]{2} \d{4} \d{2}:\d{2}:\d{2} GMT$`)

func TestFormat(t *testing.T) {
	stockholm := time.FixedZone("CET", 3600)

	testCases := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{
			name:     "utc",
			input:    time.Date(2000, time.March, 16, 11, 0, 0, 0, time.UTC),
			expected: "Thu, 16 Mar 2000 11:00:00 GMT",
		},
		{
			name:     "non-utc zone is rendered in gmt",
			input:    time.Date(2000, time.March, 16, 12, 0, 0, 0, stockholm),
			expected: "Thu, 16 Mar 2000 11:00:00 GMT",
		},
		{
			name:     "day padding",
			input:    time.Date(2024, time.February, 3, 4, 5, 6, 0, time.UTC),
			expected: "Sat, 03 Feb 2024 04:05:06 GMT",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := Format(testCase.input); got != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestFormatUnixMilli(t *testing.T) {
	if got := FormatUnixMilli(0); got != "Thu, 01 Jan 1970 00:00:00 GMT" {
		t.Fatalf("unexpected epoch rendering: %q", got)
	}
}

func TestParse(t *testing.T) {
	expected := time.Date(2000, time.March, 16, 11, 0, 0, 0, time.UTC)

	got, err := Parse("Thu, 16 Mar 2000 11:00:00 GMT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}

	if _, err := Parse("16 Mar 2000"); err == nil {
		t.Fatal("expected an error for a malformed date")
	}
}

func TestFormatConcurrent(t *testing.T) {
	var waitGroup sync.WaitGroup

	for i := 0; i < 64; i++ {
		waitGroup.Add(1)
		go func(offset int) {
			defer waitGroup.Done()

			input := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Hour)
			for j := 0; j < 100; j++ {
				got := Format(input)
				if !httpDateRegex.MatchString(got) {
					t.Errorf("malformed date %q", got)
					return
				}
				parsed, err := Parse(got)
				if err != nil || !parsed.Equal(input) {
					t.Errorf("round trip of %v gave %v (%v)", input, parsed, err)
					return
				}
			}
		}(i)
	}

	waitGroup.Wait()
}
