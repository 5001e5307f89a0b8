// Package bsonvalue provides BSON-backed key and value codecs for the
// index, for callers that want to store or exchange documents rather
// than plain scalars — a direct generalization of the original
// implementation's bson_t-keyed documents, where every stored value
// was itself a BSON document rather than an opaque blob.
package bsonvalue

import "go.mongodb.org/mongo-driver/bson"

// Document is a BSON document value, suitable as the V type parameter
// of a bptree.Tree.
type Document = bson.M

// EncodeDocument marshals doc to its BSON wire representation, for
// use as a ValueEncoder with the serialize package.
func EncodeDocument(doc Document) ([]byte, error) {
	return bson.Marshal(doc)
}

// DecodeDocument unmarshals raw BSON bytes back into a Document.
func DecodeDocument(raw []byte) (Document, error) {
	var doc Document
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ExtractField pulls a named field out of doc for use as a sort key,
// e.g. to derive the comparator key from a document field without
// hand-rolling a BSON type switch in application code.
func ExtractField(doc Document, field string) (any, bool) {
	v, ok := doc[field]
	return v, ok
}

// CompareFields compares the field-extracted keys of two documents
// using a caller-supplied scalar comparator, falling back to "not
// present sorts first" when either side is missing the field.
func CompareFields[T any](field string, compareScalar func(a, b T) int) func(a, b Document) int {
	return func(a, b Document) int {
		av, aok := a[field].(T)
		bv, bok := b[field].(T)
		switch {
		case aok && bok:
			return compareScalar(av, bv)
		case !aok && !bok:
			return 0
		case !aok:
			return -1
		default:
			return 1
		}
	}
}
