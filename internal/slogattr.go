package internal

import "log/slog"

// SlogHex32 returns a slog.Attr that prints v as a fixed width hex string.
func SlogHex32(key string, v uint32) slog.Attr {
	const hexdigits = "0123456789abcdef"
	var buf [10]byte
	buf[0], buf[1] = '0', 'x'
	for i := 9; i >= 2; i-- {
		buf[i] = hexdigits[v&0xf]
		v >>= 4
	}
	return slog.String(key, string(buf[:]))
}
