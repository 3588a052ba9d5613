package extractor

import (
	"bytes"
	"compress/zlib"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/harborview-tools/statement-extractor/internal/geometry"
)

// ExtractFragmentsRaw is a fallback extractor that works directly with
// the raw PDF byte stream, without the pdf library. It scans every
// content stream for text objects (BT...ET) and replays the text
// positioning operators (Tm, Td, TD, TL, T*) to recover each shown
// string's page position. Only simple byte encodings are handled; CID
// fonts needing ToUnicode translation are out of scope for the fallback
// and surface as unreadable output upstream.
//
// The text position is threaded through the decode as an explicit
// cursor value per stream, never shared state, so concurrent documents
// cannot interfere.
func ExtractFragmentsRaw(filePath string) ([]geometry.Page, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var pages []geometry.Page
	for _, stream := range contentStreams(data) {
		frags := decodeTextFragments(tryDecompress(stream))
		if len(frags) == 0 {
			continue
		}
		pages = append(pages, geometry.Page{Number: len(pages) + 1, Fragments: frags})
	}
	return pages, nil
}

// contentStreams finds all stream...endstream blocks in the PDF.
func contentStreams(data []byte) [][]byte {
	var streams [][]byte
	streamMarker := []byte("stream")
	endMarker := []byte("endstream")

	offset := 0
	for offset < len(data) {
		idx := bytes.Index(data[offset:], streamMarker)
		if idx < 0 {
			break
		}
		start := offset + idx + len(streamMarker)
		if start < len(data) && data[start] == '\r' {
			start++
		}
		if start < len(data) && data[start] == '\n' {
			start++
		}

		endIdx := bytes.Index(data[start:], endMarker)
		if endIdx < 0 {
			break
		}
		if endIdx > 0 {
			streams = append(streams, data[start:start+endIdx])
		}
		offset = start + endIdx + len(endMarker)
	}
	return streams
}

// tryDecompress inflates FlateDecode streams, returning the input
// unchanged when it is not zlib data.
func tryDecompress(stream []byte) []byte {
	r, err := zlib.NewReader(bytes.NewReader(stream))
	if err != nil {
		return stream
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil || len(out) == 0 {
		return stream
	}
	return out
}

// textCursor is the text-object state a content stream's positioning
// operators mutate: the current show position, the start of the current
// line, and the leading used by T* and '.
type textCursor struct {
	x, y         float64
	lineX, lineY float64
	leading      float64
}

func (c *textCursor) setMatrix(e, f float64) {
	c.lineX, c.lineY = e, f
	c.x, c.y = e, f
}

func (c *textCursor) nextLine(tx, ty float64) {
	c.lineX += tx
	c.lineY += ty
	c.x, c.y = c.lineX, c.lineY
}

// decodeTextFragments replays one content stream's text operators and
// emits a fragment at the cursor position for every shown string.
func decodeTextFragments(stream []byte) geometry.Fragments {
	var frags geometry.Fragments
	var cursor textCursor
	var nums []float64
	var strs []string
	inText := false

	emit := func(s string) {
		s = strings.TrimSpace(s)
		if inText && s != "" {
			frags = append(frags, geometry.Fragment{
				Position: geometry.Point{X: cursor.x, Y: cursor.y},
				Text:     s,
			})
		}
	}
	lastNums := func(n int) []float64 {
		if len(nums) < n {
			return nil
		}
		return nums[len(nums)-n:]
	}
	reset := func() {
		nums = nums[:0]
		strs = strs[:0]
	}

	for pos := 0; pos < len(stream); {
		c := stream[pos]
		switch {
		case c == '(':
			s, next := readLiteralString(stream, pos)
			strs = append(strs, s)
			pos = next
		case c == '<' && pos+1 < len(stream) && stream[pos+1] != '<':
			s, next := readHexString(stream, pos)
			strs = append(strs, s)
			pos = next
		case c == '[' || c == ']' || c == '{' || c == '}':
			pos++
		case c == '<' || c == '>': // dict delimiters
			pos++
		case c == '/':
			_, next := readToken(stream, pos+1)
			pos = next
		case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
			tok, next := readToken(stream, pos)
			if v, err := strconv.ParseFloat(tok, 64); err == nil {
				nums = append(nums, v)
			}
			pos = next
		case isOperatorChar(c):
			op, next := readToken(stream, pos)
			pos = next
			switch op {
			case "BT":
				cursor = textCursor{}
				inText = true
			case "ET":
				inText = false
			case "TL":
				if v := lastNums(1); v != nil {
					cursor.leading = v[0]
				}
			case "Td":
				if v := lastNums(2); v != nil {
					cursor.nextLine(v[0], v[1])
				}
			case "TD":
				if v := lastNums(2); v != nil {
					cursor.leading = -v[1]
					cursor.nextLine(v[0], v[1])
				}
			case "Tm":
				if v := lastNums(6); v != nil {
					cursor.setMatrix(v[4], v[5])
				}
			case "T*":
				cursor.nextLine(0, -cursor.leading)
			case "Tj":
				if len(strs) > 0 {
					emit(strs[len(strs)-1])
				}
			case "'":
				cursor.nextLine(0, -cursor.leading)
				if len(strs) > 0 {
					emit(strs[len(strs)-1])
				}
			case "\"":
				cursor.nextLine(0, -cursor.leading)
				if len(strs) > 0 {
					emit(strs[len(strs)-1])
				}
			case "TJ":
				// Kerning numbers between the array's strings are
				// ignored; the pieces belong to one shown run.
				emit(strings.Join(strs, ""))
			}
			reset()
		default:
			pos++
		}
	}
	return frags
}

func isOperatorChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '\'' || c == '"'
}

// readToken reads a run of regular characters starting at pos. The
// quote operators (' and ") are single-character tokens; '*' is a
// regular character so T* reads as one token.
func readToken(stream []byte, pos int) (string, int) {
	if pos < len(stream) && (stream[pos] == '\'' || stream[pos] == '"') {
		return string(stream[pos]), pos + 1
	}
	start := pos
	for pos < len(stream) {
		c := stream[pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0 ||
			c == '(' || c == ')' || c == '<' || c == '>' || c == '[' || c == ']' ||
			c == '{' || c == '}' || c == '/' || c == '%' || c == '\'' || c == '"' {
			break
		}
		pos++
	}
	if pos == start {
		pos++ // never stall on a delimiter
	}
	return string(stream[start:pos]), pos
}

// readLiteralString parses a (...) string with escapes and balanced
// nested parentheses, returning the decoded text and the position after
// the closing paren.
func readLiteralString(stream []byte, pos int) (string, int) {
	var out []byte
	depth := 0
	i := pos
	for ; i < len(stream); i++ {
		c := stream[i]
		switch c {
		case '\\':
			if i+1 >= len(stream) {
				break
			}
			i++
			switch stream[i] {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b', 'f':
				// ignored
			case '(', ')', '\\':
				out = append(out, stream[i])
			default:
				if stream[i] >= '0' && stream[i] <= '7' {
					// up to three octal digits
					v := 0
					for n := 0; n < 3 && i < len(stream) && stream[i] >= '0' && stream[i] <= '7'; n++ {
						v = v*8 + int(stream[i]-'0')
						i++
					}
					i--
					out = append(out, byte(v))
				} else {
					out = append(out, stream[i])
				}
			}
		case '(':
			if depth > 0 {
				out = append(out, c)
			}
			depth++
		case ')':
			depth--
			if depth == 0 {
				return string(out), i + 1
			}
			out = append(out, c)
		default:
			if depth > 0 {
				out = append(out, c)
			}
		}
	}
	return string(out), i
}

// readHexString parses a <...> hex string.
func readHexString(stream []byte, pos int) (string, int) {
	end := bytes.IndexByte(stream[pos:], '>')
	if end < 0 {
		return "", len(stream)
	}
	hexPart := stream[pos+1 : pos+end]
	var out []byte
	var hi byte
	have := false
	for _, c := range hexPart {
		var v byte
		switch {
		case c >= '0' && c <= '9':
			v = c - '0'
		case c >= 'a' && c <= 'f':
			v = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			v = c - 'A' + 10
		default:
			continue
		}
		if !have {
			hi = v
			have = true
		} else {
			out = append(out, hi<<4|v)
			have = false
		}
	}
	if have {
		out = append(out, hi<<4)
	}
	return string(out), pos + end + 1
}
