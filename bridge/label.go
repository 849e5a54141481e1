package bridge

import "unicode/utf8"

// CopyLabel copies label into dst as a NUL terminated string, truncating so
// that the result including the terminator fits. Truncation never splits a
// UTF-8 sequence. It returns the number of label bytes copied.
func CopyLabel(dst []byte, label string) int {
	if len(dst) == 0 {
		return 0
	}

	n := len(label)
	if n > len(dst)-1 {
		n = len(dst) - 1
		for n > 0 && !utf8.RuneStart(label[n]) {
			n--
		}
	}

	copy(dst, label[:n])
	dst[n] = 0
	return n
}
