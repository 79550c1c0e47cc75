package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/yndnr/scratchkeep/internal/core/domain"
)

// MarshalJSON encodes the record as a positional array of Arity() fields.
func (r Record) MarshalJSON() ([]byte, error) {
	return encodeValue(r.fields())
}

// UnmarshalJSON decodes a positional array, tolerating short records.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec, err := Decode(data)
	if err != nil {
		return err
	}
	*r = dec
	return nil
}

func (r Record) fields() []any {
	var cursor, mode, narrowing, markActive any
	if r.Cursor != nil {
		var mark any
		if r.Cursor.MarkSet {
			mark = r.Cursor.Mark
		}
		cursor = []any{r.Cursor.Point, mark}
	}
	if r.Mode != nil {
		mode = *r.Mode
	}
	if r.Narrowing != nil {
		narrowing = []int{r.Narrowing.Start, r.Narrowing.End}
	}
	if r.MarkActive != nil {
		markActive = *r.MarkActive
	}

	all := []any{r.Name, encodeContent(r.Content), cursor, mode, narrowing, markActive}
	if n := r.Arity(); n < len(all) {
		all = all[:n]
	}
	return all
}

func encodeContent(c domain.Content) any {
	if !c.Formatted() {
		return c.Text
	}
	out := make([]any, 0, len(c.Properties)+1)
	out = append(out, c.Text)
	for _, p := range c.Properties {
		out = append(out, []any{p.Start, p.End, p.Key, p.Value})
	}
	return out
}

// encodeValue marshals v without HTML escaping so content survives
// byte-for-byte.
func encodeValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Marshal encodes records as one save-file blob, one record per line.
func Marshal(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, r := range records {
		b, err := r.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("record: encode %q: %w", r.Name, err)
		}
		buf.Write(b)
		if i < len(records)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("]\n")
	return buf.Bytes(), nil
}

// Unmarshal decodes a save-file blob. Any malformed record fails the whole
// blob with an error matching domain.ErrDecode.
func Unmarshal(blob []byte) ([]Record, error) {
	blob = bytes.TrimSpace(blob)
	if leading(blob) != '[' {
		return nil, domain.ErrDecode.WithDetails("save file is not a record list")
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(blob, &raws); err != nil {
		return nil, domain.ErrDecode.WithDetails("save file is not valid").WithCause(err)
	}

	records := make([]Record, 0, len(raws))
	for i, raw := range raws {
		r, err := Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// Decode decodes one record.
func Decode(raw []byte) (Record, error) {
	raw = bytes.TrimSpace(raw)
	if leading(raw) != '[' {
		return Record{}, decodeErr("record is not an array")
	}

	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Record{}, domain.ErrDecode.WithCause(err)
	}
	if len(fields) < minFields {
		return Record{}, decodeErr("record has %d fields, want at least %d", len(fields), minFields)
	}

	var (
		r   = Record{arity: len(fields)}
		err error
	)
	if r.Name, err = decodeString(fields[FieldName]); err != nil {
		return Record{}, decodeErr("name: %v", err)
	}
	if r.Content, err = decodeContent(fields[FieldContent]); err != nil {
		return Record{}, decodeErr("%q content: %v", r.Name, err)
	}

	field := func(i int) (json.RawMessage, bool) {
		if i >= len(fields) || isNull(fields[i]) {
			return nil, false
		}
		return fields[i], true
	}

	if f, ok := field(FieldCursor); ok {
		c, err := decodeCursor(f)
		if err != nil {
			return Record{}, decodeErr("%q cursor: %v", r.Name, err)
		}
		r.Cursor = &c
	}
	if f, ok := field(FieldMode); ok {
		m, err := decodeString(f)
		if err != nil {
			return Record{}, decodeErr("%q mode: %v", r.Name, err)
		}
		r.Mode = &m
	}
	if f, ok := field(FieldNarrowing); ok {
		n, err := decodeRange(f)
		if err != nil {
			return Record{}, decodeErr("%q narrowing: %v", r.Name, err)
		}
		r.Narrowing = &n
	}
	if f, ok := field(FieldMarkActive); ok {
		var active bool
		if leading(f) != 't' && leading(f) != 'f' {
			return Record{}, decodeErr("%q mark_active: not a boolean", r.Name)
		}
		if err := json.Unmarshal(f, &active); err != nil {
			return Record{}, decodeErr("%q mark_active: %v", r.Name, err)
		}
		r.MarkActive = &active
	}
	return r, nil
}

func decodeContent(raw json.RawMessage) (domain.Content, error) {
	switch leading(raw) {
	case '"':
		text, err := decodeString(raw)
		return domain.PlainContent(text), err
	case '[':
	default:
		return domain.Content{}, fmt.Errorf("not a string or formatted string")
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return domain.Content{}, err
	}
	if len(parts) == 0 {
		return domain.Content{}, fmt.Errorf("formatted string has no text")
	}
	text, err := decodeString(parts[0])
	if err != nil {
		return domain.Content{}, fmt.Errorf("text: %w", err)
	}

	c := domain.Content{Text: text}
	for i, part := range parts[1:] {
		var span []json.RawMessage
		if leading(part) != '[' {
			return domain.Content{}, fmt.Errorf("property %d: not an array", i)
		}
		if err := json.Unmarshal(part, &span); err != nil || len(span) != 4 {
			return domain.Content{}, fmt.Errorf("property %d: want [start, end, key, value]", i)
		}
		var p domain.Property
		if p.Start, err = decodeOffset(span[0]); err != nil {
			return domain.Content{}, fmt.Errorf("property %d start: %w", i, err)
		}
		if p.End, err = decodeOffset(span[1]); err != nil {
			return domain.Content{}, fmt.Errorf("property %d end: %w", i, err)
		}
		if p.Key, err = decodeString(span[2]); err != nil {
			return domain.Content{}, fmt.Errorf("property %d key: %w", i, err)
		}
		if p.Value, err = decodeString(span[3]); err != nil {
			return domain.Content{}, fmt.Errorf("property %d value: %w", i, err)
		}
		c.Properties = append(c.Properties, p)
	}
	return c, c.Validate()
}

func decodeCursor(raw json.RawMessage) (domain.Cursor, error) {
	var parts []json.RawMessage
	if leading(raw) != '[' {
		return domain.Cursor{}, fmt.Errorf("not an array")
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return domain.Cursor{}, err
	}
	if len(parts) < 1 || len(parts) > 2 {
		return domain.Cursor{}, fmt.Errorf("want [point, mark]")
	}

	point, err := decodeOffset(parts[0])
	if err != nil {
		return domain.Cursor{}, fmt.Errorf("point: %w", err)
	}
	c := domain.CursorAt(point)
	if len(parts) == 2 && !isNull(parts[1]) {
		mark, err := decodeOffset(parts[1])
		if err != nil {
			return domain.Cursor{}, fmt.Errorf("mark: %w", err)
		}
		c = c.WithMark(mark)
	}
	return c, nil
}

func decodeRange(raw json.RawMessage) (domain.Range, error) {
	var parts []json.RawMessage
	if leading(raw) != '[' {
		return domain.Range{}, fmt.Errorf("not an array")
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return domain.Range{}, err
	}
	if len(parts) != 2 {
		return domain.Range{}, fmt.Errorf("want [start, end]")
	}

	var (
		r   domain.Range
		err error
	)
	if r.Start, err = decodeOffset(parts[0]); err != nil {
		return domain.Range{}, err
	}
	if r.End, err = decodeOffset(parts[1]); err != nil {
		return domain.Range{}, err
	}
	if !r.Valid() {
		return domain.Range{}, fmt.Errorf("end %d before start %d", r.End, r.Start)
	}
	return r, nil
}

func decodeString(raw json.RawMessage) (string, error) {
	if leading(raw) != '"' {
		return "", fmt.Errorf("not a string")
	}
	var s string
	err := json.Unmarshal(raw, &s)
	return s, err
}

func decodeOffset(raw json.RawMessage) (int, error) {
	var n int
	if c := leading(raw); c != '-' && (c < '0' || c > '9') {
		return 0, fmt.Errorf("not an integer offset")
	}
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("not an integer offset")
	}
	if n < 0 {
		return 0, fmt.Errorf("negative offset %d", n)
	}
	return n, nil
}

func leading(raw []byte) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeErr(format string, args ...any) error {
	return domain.ErrDecode.WithDetailsf(format, args...)
}
