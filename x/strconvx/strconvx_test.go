package strconvx

import "testing"

func TestItoaAtoi(t *testing.T) {
	cases := []int{0, 1, -1, 42, -99999}
	for _, v := range cases {
		s := Itoa(v)
		got, err := Atoi(s)
		if err != nil {
			t.Fatalf("Atoi(%q) error: %v", s, err)
		}
		if got != v {
			t.Fatalf("Itoa/Atoi round trip: want %d, got %d", v, got)
		}
	}
}

func TestParseIntSignsAndLimits(t *testing.T) {
	type C struct {
		s       string
		bitSize int
		want    int64
	}
	for _, c := range []C{
		{"+10", 32, 10},
		{"-10", 32, -10},
		{"255", 16, 255},
		{"-2147483648", 32, -2147483648},
		{"2147483647", 32, 2147483647},
	} {
		got, err := ParseInt(c.s, 10, c.bitSize)
		if err != nil {
			t.Fatalf("ParseInt(%q,%d) error: %v", c.s, c.bitSize, err)
		}
		if got != c.want {
			t.Fatalf("ParseInt(%q,%d) = %d, want %d", c.s, c.bitSize, got, c.want)
		}
	}
	for _, s := range []string{"", "-", "1a", " 1", "2147483648"} {
		if _, err := ParseInt(s, 10, 32); err == nil {
			t.Fatalf("ParseInt(%q,32) expected error", s)
		}
	}
}

func TestFormatFloatFixed(t *testing.T) {
	type C struct {
		in   float64
		prec int
		want string
	}
	for _, c := range []C{
		{0, 0, "0"},
		{12.3, 1, "12.3"},
		{-1.25, 2, "-1.25"},
	} {
		if got := FormatFloat(c.in, 'f', c.prec, 64); got != c.want {
			t.Fatalf("FormatFloat(%v,'f',%d) = %q, want %q", c.in, c.prec, got, c.want)
		}
	}
}
