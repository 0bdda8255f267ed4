package roster

import (
	"reflect"
	"testing"
)

func TestParseText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"blank lines only", "\n\n  \n", nil},
		{"ids with whitespace", "  123  \n456\n", []string{"123", "456"}},
		{"comments skipped", "# team A\n123\n# team B\n-456", []string{"123", "-456"}},
		{"windows line endings", "123\r\n456\r\n", []string{"123", "456"}},
		{"duplicates preserved", "1\n1\n2", []string{"1", "1", "2"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ParseText(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseText(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestValidID(t *testing.T) {
	t.Parallel()

	valid := []string{"1", "123456789", "-100123456", " 42 ", "-1"}
	for _, s := range valid {
		if !ValidID(s) {
			t.Fatalf("ValidID(%q) = false, want true", s)
		}
	}
	invalid := []string{"", " ", "-", "--1", "12a", "@channel", "1.5", "+1"}
	for _, s := range invalid {
		if ValidID(s) {
			t.Fatalf("ValidID(%q) = true, want false", s)
		}
	}
}

func TestPartition(t *testing.T) {
	t.Parallel()

	valid, invalid := Partition([]string{"1", "abc", "-200", "", "3"})
	if !reflect.DeepEqual(valid, []string{"1", "-200", "3"}) {
		t.Fatalf("valid = %v", valid)
	}
	if !reflect.DeepEqual(invalid, []string{"abc", ""}) {
		t.Fatalf("invalid = %v", invalid)
	}
}

func TestDedupe(t *testing.T) {
	t.Parallel()

	got := Dedupe([]string{"1", "2", "1", "3", "2"})
	if !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Fatalf("Dedupe = %v", got)
	}
}
