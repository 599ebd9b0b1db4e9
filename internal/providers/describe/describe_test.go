package describe

import (
	"strings"
	"testing"
)

func TestAuxiliaryInfo(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		sizes  []string
		prices []string
		want   string
	}{
		{name: "both", sizes: []string{"6", "7"}, prices: []string{"120", "150"}, want: "Available sizes: 6, 7. Prices: 120$ CAD, 150$ CAD."},
		{name: "sizes_only", sizes: []string{"6"}, want: "Available sizes: 6."},
		{name: "prices_only", prices: []string{"99"}, want: "Prices: 99$ CAD."},
		{name: "neither", want: ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := AuxiliaryInfo(tc.sizes, tc.prices); got != tc.want {
				t.Fatalf("AuxiliaryInfo = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseHashtags(t *testing.T) {
	t.Parallel()

	raw := "#gold\n\n  #ring  \n#jewellery\n"
	tags := parseHashtags(raw)
	want := []string{"#gold", "#ring", "#jewellery"}
	if len(tags) != len(want) {
		t.Fatalf("got %d tags, want %d: %v", len(tags), len(want), tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("tags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}
}

func TestParseHashtagsCapsAtFifteen(t *testing.T) {
	t.Parallel()

	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, "#tag")
	}
	tags := parseHashtags(strings.Join(lines, "\n"))
	if len(tags) != maxHashtags {
		t.Fatalf("got %d tags, want %d", len(tags), maxHashtags)
	}
}

func TestFinalize(t *testing.T) {
	t.Parallel()

	t.Run("prefix_added", func(t *testing.T) {
		t.Parallel()
		got := finalize("elegant gold ring", []string{"#gold", "#ring"})
		if !strings.HasPrefix(got, "Shop our elegant gold ring") {
			t.Fatalf("missing prefix: %q", got)
		}
		if !strings.Contains(got, storefrontLine) {
			t.Fatalf("missing storefront line: %q", got)
		}
		if !strings.HasSuffix(got, "#gold #ring") {
			t.Fatalf("missing hashtags: %q", got)
		}
	})

	t.Run("prefix_preserved", func(t *testing.T) {
		t.Parallel()
		got := finalize("Shop our finest piece", nil)
		if strings.Count(got, "Shop our") != 1 {
			t.Fatalf("prefix duplicated: %q", got)
		}
	})
}
