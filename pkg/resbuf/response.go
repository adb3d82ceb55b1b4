package resbuf

import (
	"fmt"
)

// Record is one filter decoded from a response stream.
type Record struct {
	Name        string
	Expression  string
	Layers      []string
	ParentName  string
	IsGroup     bool
	AllowDelete bool
	AllowNested bool
	NestCount   int
}

// DecodeResponse reads a stream produced by Encode back into records. A nil
// stream decodes to no records.
func DecodeResponse(atoms []Atom) ([]Record, error) {
	if len(atoms) == 0 {
		return nil, nil
	}

	values, err := Parse(atoms)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 || values[0].Kind != ValueList || len(values[0].Items) != 2 {
		return nil, fmt.Errorf("%w: response must be a two element list", ErrMalformedStream)
	}

	count, items := values[0].Items[0], values[0].Items[1]
	if count.Kind != ValueInt {
		return nil, fmt.Errorf("%w: response count is not an integer", ErrMalformedStream)
	}
	if items.Kind != ValueList {
		return nil, fmt.Errorf("%w: response items are not a list", ErrMalformedStream)
	}
	if int(count.Int) != len(items.Items) {
		return nil, fmt.Errorf("%w: count %d does not match %d item(s)", ErrMalformedStream, count.Int, len(items.Items))
	}

	records := make([]Record, 0, len(items.Items))
	for i, item := range items.Items {
		rec, err := decodeRecord(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ValidateResponse checks the structural rules of a response stream without
// keeping the decoded records.
func ValidateResponse(atoms []Atom) error {
	_, err := DecodeResponse(atoms)
	return err
}

func decodeRecord(item Value) (Record, error) {
	var rec Record
	if item.Kind != ValueList {
		return rec, fmt.Errorf("%w: filter is not a list", ErrMalformedStream)
	}

	seen := make(map[int32]bool, len(item.Items))
	for _, pair := range item.Items {
		if pair.Kind != ValueDotted || len(pair.Items) != 2 || pair.Items[0].Kind != ValueInt {
			return rec, fmt.Errorf("%w: filter field is not a (tag . value) pair", ErrMalformedStream)
		}
		tag, value := pair.Items[0].Int, pair.Items[1]
		if seen[tag] {
			return rec, fmt.Errorf("%w: tag %d repeated", ErrMalformedStream, tag)
		}
		seen[tag] = true

		var err error
		switch tag {
		case TagName:
			rec.Name, err = textOf(tag, value)
		case TagExpression:
			rec.Expression, err = textOf(tag, value)
		case TagLayers:
			var s string
			s, err = textOf(tag, value)
			rec.Layers = SplitLayers(s)
		case TagParent:
			rec.ParentName, err = textOf(tag, value)
		case TagAllowDelete:
			rec.AllowDelete, err = flagOf(tag, value)
		case TagIsGroup:
			rec.IsGroup, err = flagOf(tag, value)
		case TagAllowNested:
			rec.AllowNested, err = flagOf(tag, value)
		case TagNestCount:
			if value.Kind != ValueInt {
				err = fmt.Errorf("%w: tag %d is not an integer", ErrMalformedStream, tag)
			}
			rec.NestCount = int(value.Int)
		default:
			err = fmt.Errorf("%w: unknown tag %d", ErrMalformedStream, tag)
		}
		if err != nil {
			return rec, err
		}
	}

	for _, tag := range []int32{TagName, TagParent, TagAllowDelete, TagIsGroup, TagAllowNested, TagNestCount} {
		if !seen[tag] {
			return rec, fmt.Errorf("%w: tag %d missing", ErrMalformedStream, tag)
		}
	}
	if seen[TagExpression] == seen[TagLayers] {
		return rec, fmt.Errorf("%w: exactly one of tags %d and %d is required", ErrMalformedStream, TagExpression, TagLayers)
	}
	if seen[TagLayers] != rec.IsGroup {
		return rec, fmt.Errorf("%w: tag %d disagrees with tag %d", ErrMalformedStream, TagIsGroup, TagLayers)
	}
	return rec, nil
}

func textOf(tag int32, v Value) (string, error) {
	if v.Kind != ValueText {
		return "", fmt.Errorf("%w: tag %d is not text", ErrMalformedStream, tag)
	}
	return v.Text, nil
}

func flagOf(tag int32, v Value) (bool, error) {
	if v.Kind != ValueInt || (v.Int != 0 && v.Int != 1) {
		return false, fmt.Errorf("%w: tag %d is not a 0/1 flag", ErrMalformedStream, tag)
	}
	return v.Int == 1, nil
}
