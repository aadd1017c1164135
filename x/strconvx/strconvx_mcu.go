//go:build rp2040 || rp2350

package strconvx

// Minimal, allocation-aware helpers with identical signatures.
// Only base 10 is supported for parsing. FormatFloat handles 'f' only.

func Itoa(i int) string { return FormatInt(int64(i), 10) }

func Atoi(s string) (int, error) {
	v, err := ParseInt(s, 10, 0)
	return int(v), err
}

func FormatInt(i int64, base int) string {
	if base < 2 || base > 36 {
		base = 10
	}
	neg := i < 0
	u := uint64(i)
	if neg {
		u = uint64(-i)
	}
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	var buf [65]byte
	n := len(buf)
	b := uint64(base)
	for {
		n--
		buf[n] = digits[u%b]
		u /= b
		if u == 0 {
			break
		}
	}
	if neg {
		n--
		buf[n] = '-'
	}
	return string(buf[n:])
}

type numError string

func (e numError) Error() string { return string(e) }

const (
	errSyntax numError = "invalid syntax"
	errRange  numError = "value out of range"
)

// ParseInt accepts an optional sign followed by decimal digits and checks
// the result against bitSize (0 means 64).
func ParseInt(s string, base, bitSize int) (int64, error) {
	if base != 0 && base != 10 {
		return 0, errSyntax
	}
	if bitSize <= 0 || bitSize > 64 {
		bitSize = 64
	}
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if len(s) == 0 {
		return 0, errSyntax
	}
	limit := uint64(1) << uint(bitSize-1)
	var u uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, errSyntax
		}
		u = u*10 + uint64(c-'0')
		if u > limit {
			return 0, errRange
		}
	}
	if neg {
		return -int64(u), nil
	}
	if u == limit {
		return 0, errRange
	}
	return int64(u), nil
}

func FormatFloat(f float64, _ byte, prec, _ int) string {
	if prec < 0 {
		prec = 2
	}
	neg := f < 0
	if neg {
		f = -f
	}
	pow := 1.0
	for i := 0; i < prec; i++ {
		pow *= 10
	}
	scaled := uint64(f*pow + 0.5)
	intp := scaled / uint64(pow)
	frac := scaled % uint64(pow)

	out := FormatInt(int64(intp), 10)
	if prec > 0 {
		fs := FormatInt(int64(frac), 10)
		for len(fs) < prec {
			fs = "0" + fs
		}
		out += "." + fs
	}
	if neg {
		return "-" + out
	}
	return out
}
