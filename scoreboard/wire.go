package scoreboard

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Entries travel as well known protobuf types so the service needs no
// generated code.

func entryToProto(e Entry) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(map[string]any{
		"id":          e.ID,
		"name":        e.Name,
		"score":       e.Score,
		"lines":       e.Lines,
		"level":       e.Level,
		"recorded_at": e.RecordedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode entry: %w", err)
	}
	return s, nil
}

func protoToEntry(s *structpb.Struct) (Entry, error) {
	f := s.GetFields()
	e := Entry{
		ID:    f["id"].GetStringValue(),
		Name:  f["name"].GetStringValue(),
		Score: int(f["score"].GetNumberValue()),
		Lines: int(f["lines"].GetNumberValue()),
		Level: int(f["level"].GetNumberValue()),
	}
	if at := f["recorded_at"].GetStringValue(); at != "" {
		t, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return Entry{}, fmt.Errorf("%w: bad recorded_at %q", ErrInvalidEntry, at)
		}
		e.RecordedAt = t
	}
	return e, nil
}

func entriesToProto(entries []Entry) (*structpb.ListValue, error) {
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(entries))}
	for _, e := range entries {
		s, err := entryToProto(e)
		if err != nil {
			return nil, err
		}
		list.Values = append(list.Values, structpb.NewStructValue(s))
	}
	return list, nil
}

func protoToEntries(list *structpb.ListValue) ([]Entry, error) {
	entries := make([]Entry, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		e, err := protoToEntry(v.GetStructValue())
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
