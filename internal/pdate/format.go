package pdate

import (
	"strconv"
	"strings"
)

// Format renders d in canonical form: the year unpadded, then month and
// day zero-padded to two digits. The absent date formats as "".
func Format(d Date) string {
	if d.IsZero() {
		return ""
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(d.year.Value))
	if d.month.Set {
		b.WriteString(Separator)
		writePadded(&b, d.month.Value)
		if d.day.Set {
			b.WriteString(Separator)
			writePadded(&b, d.day.Value)
		}
	}
	return b.String()
}

func writePadded(b *strings.Builder, v int) {
	if v >= 0 && v < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(v))
}
