package metadata

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/fairspace/mercury/codec"
)

// ProtoCodec persists documents as a protobuf ListValue of Structs.
func ProtoCodec() codec.Codec[JSONLD] {
	return codec.Convert[JSONLD, *structpb.ListValue]{
		Inner: codec.Protobuf[*structpb.ListValue]{New: func() *structpb.ListValue { return new(structpb.ListValue) }},
		To:    toListValue,
		From:  fromListValue,
	}
}

func toListValue(doc JSONLD) (*structpb.ListValue, error) {
	items := make([]any, len(doc))
	for i, n := range doc {
		items[i] = n
	}
	return structpb.NewList(items)
}

func fromListValue(lv *structpb.ListValue) (JSONLD, error) {
	items := lv.AsSlice()
	doc := make(JSONLD, 0, len(items))
	for i, it := range items {
		n, ok := it.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("metadata: node %d is %T, not an object", i, it)
		}
		doc = append(doc, n)
	}
	return doc, nil
}
