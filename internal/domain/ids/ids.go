// Package ids generates and validates record identifiers. Every store uses the
// 24 character hex form of a MongoDB ObjectID so that ids look the same no
// matter which backend issued them.
package ids

import "go.mongodb.org/mongo-driver/bson/primitive"

func New() string {
	return primitive.NewObjectID().Hex()
}

// Valid reports whether s is a syntactically valid record id.
func Valid(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}
