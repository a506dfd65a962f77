package repository

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
)

var validate = validator.New()

// encode converts a typed value (or a bson.M of typed values) to the document form the
// store receives.
func encode(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// decode converts a stored document into out and checks its shape.
func decode(doc bson.M, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return err
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("shape check: %w", err)
	}
	return nil
}

// Validate checks v's shape the way Add does, for callers building Update patches.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return invalidArgument("%v", err)
	}
	return nil
}
