package datatype

import (
	"strconv"
	"strings"

	"github.com/calyxdb/calyx/internal/cerr"
)

// Parse converts the textual form of a type back into a DataType.
// Accepted forms mirror String():
//
//	boolean, int8, int16, int32, int64, float32, float64,
//	string, binary, date, timestamp,
//	decimal(10,2), array<int32>, map<string,int64>,
//	struct<id:int64,tags:array<string>>
//
// Container nullability is not part of the textual form; parsed arrays and
// maps default to nullable contents, struct fields to nullable.
func Parse(s string) (DataType, error) {
	p := &typeParser{input: s}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return nil, cerr.New(cerr.ErrInvalidType, "trailing characters after type").
			With("type", s).
			With("offset", p.pos)
	}
	return t, nil
}

// MustParse is Parse for statically known type strings; it panics on error.
// Use only in tests and package-level declarations.
func MustParse(s string) DataType {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	input string
	pos   int
}

func (p *typeParser) errf(msg string) error {
	return cerr.New(cerr.ErrInvalidType, msg).
		With("type", p.input).
		With("offset", p.pos)
}

func (p *typeParser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

// peek returns the next byte without consuming it, or 0 at end of input.
func (p *typeParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *typeParser) expect(c byte) error {
	p.skipSpaces()
	if p.peek() != c {
		return p.errf("expected " + string(c))
	}
	p.pos++
	return nil
}

// ident consumes a run of identifier characters. Field names inside
// struct<...> may contain anything except the structural characters.
func (p *typeParser) ident() string {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '<' || c == '>' || c == ',' || c == ':' || c == '(' || c == ')' || c == ' ' {
			break
		}
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *typeParser) parseInt() (int, error) {
	p.skipSpaces()
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, p.errf("expected integer")
	}
	n, err := strconv.Atoi(p.input[start:p.pos])
	if err != nil {
		return 0, p.errf("invalid integer")
	}
	return n, nil
}

func (p *typeParser) parseType() (DataType, error) {
	p.skipSpaces()
	name := strings.ToLower(p.ident())

	switch name {
	case "boolean", "bool":
		return Boolean, nil
	case "int8", "tinyint":
		return Int8, nil
	case "int16", "smallint":
		return Int16, nil
	case "int32", "int":
		return Int32, nil
	case "int64", "bigint", "long":
		return Int64, nil
	case "float32", "float":
		return Float32, nil
	case "float64", "double":
		return Float64, nil
	case "string":
		return String, nil
	case "binary":
		return Binary, nil
	case "date":
		return Date, nil
	case "timestamp":
		return Timestamp, nil
	case "decimal":
		return p.parseDecimal()
	case "array":
		return p.parseArray()
	case "map":
		return p.parseMap()
	case "struct":
		return p.parseStruct()
	case "":
		return nil, p.errf("expected type name")
	default:
		return nil, cerr.New(cerr.ErrInvalidType, "unknown type").
			With("type", p.input).
			With("name", name)
	}
}

func (p *typeParser) parseDecimal() (DataType, error) {
	// Bare "decimal" defaults to (10,0).
	p.skipSpaces()
	if p.peek() != '(' {
		return DecimalType{Precision: 10, Scale: 0}, nil
	}
	p.pos++
	precision, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	if err := p.expect(','); err != nil {
		return nil, err
	}
	scale, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return DecimalType{Precision: precision, Scale: scale}, nil
}

func (p *typeParser) parseArray() (DataType, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect('>'); err != nil {
		return nil, err
	}
	return ArrayType{Element: elem, ContainsNull: true}, nil
}

func (p *typeParser) parseMap() (DataType, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}
	key, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(','); err != nil {
		return nil, err
	}
	value, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect('>'); err != nil {
		return nil, err
	}
	return MapType{Key: key, Value: value, ValueContainsNull: true}, nil
}

func (p *typeParser) parseStruct() (DataType, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}
	var fields []StructField
	p.skipSpaces()
	if p.peek() == '>' {
		p.pos++
		return StructType{}, nil
	}
	for {
		p.skipSpaces()
		name := p.ident()
		if name == "" {
			return nil, p.errf("expected field name")
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		ft, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, StructField{Name: name, Type: ft, Nullable: true})
		p.skipSpaces()
		switch p.peek() {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return StructType{Fields: fields}, nil
		default:
			return nil, p.errf("expected , or > in struct type")
		}
	}
}
