// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package micheline

import (
	"encoding/hex"
	"strings"
)

// String prints [n] in canonical single line text syntax. The output
// parses back to an equal node.
func (n Node) String() string {
	var b strings.Builder
	n.write(&b, true)
	return b.String()
}

func (n Node) write(b *strings.Builder, top bool) {
	switch n.Kind {
	case KindInt:
		b.WriteString(n.Int.String())
	case KindString:
		writeQuoted(b, n.Str)
	case KindBytes:
		b.WriteString("0x")
		b.WriteString(hex.EncodeToString(n.Bytes))
	case KindSeq:
		b.WriteString("{")
		for i, item := range n.Args {
			if i > 0 {
				b.WriteString(" ;")
			}
			b.WriteString(" ")
			item.write(b, true)
		}
		if len(n.Args) > 0 {
			b.WriteString(" ")
		}
		b.WriteString("}")
	case KindPrim:
		wrap := !top && (len(n.Args) > 0 || len(n.Annots) > 0)
		if wrap {
			b.WriteString("(")
		}
		b.WriteString(n.Prim)
		for _, a := range n.Annots {
			b.WriteString(" ")
			b.WriteString(a)
		}
		for _, arg := range n.Args {
			b.WriteString(" ")
			arg.write(b, false)
		}
		if wrap {
			b.WriteString(")")
		}
	}
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\b':
			b.WriteString(`\b`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
}
