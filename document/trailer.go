package document

import (
	"bytes"
	"encoding/hex"
)

// ScanTrailerIDs returns the strings of the last well-formed "/ID [..]" array
// in data, or nil if there is none. Both hexadecimal and literal strings are
// accepted.
func ScanTrailerIDs(data []byte) [][]byte {
	end := len(data)
	for end > 0 {
		i := bytes.LastIndex(data[:end], []byte("/ID"))
		if i < 0 {
			return nil
		}
		if ids, ok := parseIDArray(data[i+3:]); ok {
			return ids
		}
		end = i
	}
	return nil
}

func parseIDArray(b []byte) ([][]byte, bool) {
	b = skipSpace(b)
	if len(b) == 0 || b[0] != '[' {
		return nil, false
	}
	b = b[1:]

	var ids [][]byte
	for {
		b = skipSpace(b)
		if len(b) == 0 {
			return nil, false
		}
		var (
			s  []byte
			ok bool
		)
		switch b[0] {
		case ']':
			return ids, len(ids) > 0
		case '<':
			s, b, ok = parseHexString(b[1:])
		case '(':
			s, b, ok = parseLiteralString(b[1:])
		default:
			return nil, false
		}
		if !ok {
			return nil, false
		}
		ids = append(ids, s)
	}
}

func parseHexString(b []byte) ([]byte, []byte, bool) {
	end := bytes.IndexByte(b, '>')
	if end < 0 {
		return nil, nil, false
	}
	digits := make([]byte, 0, end+1)
	for _, c := range b[:end] {
		if isSpace(c) {
			continue
		}
		digits = append(digits, c)
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out, err := hex.DecodeString(string(digits))
	if err != nil {
		return nil, nil, false
	}
	return out, b[end+1:], true
}

func parseLiteralString(b []byte) ([]byte, []byte, bool) {
	var out []byte
	depth := 1
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return out, b[i+1:], true
			}
		case '\\':
			i++
			if i >= len(b) {
				return nil, nil, false
			}
			c = b[i]
			switch c {
			case 'n':
				c = '\n'
			case 'r':
				c = '\r'
			case 't':
				c = '\t'
			case 'b':
				c = '\b'
			case 'f':
				c = '\f'
			case '\r', '\n':
				continue
			default:
				if c >= '0' && c <= '7' {
					v := int(c - '0')
					for j := 0; j < 2 && i+1 < len(b) && b[i+1] >= '0' && b[i+1] <= '7'; j++ {
						i++
						v = v*8 + int(b[i]-'0')
					}
					c = byte(v)
				}
			}
		}
		out = append(out, c)
	}
	return nil, nil, false
}

func skipSpace(b []byte) []byte {
	for len(b) > 0 && isSpace(b[0]) {
		b = b[1:]
	}
	return b
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}
