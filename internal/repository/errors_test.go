package repository

import (
	"errors"
	"testing"
)

func TestIsDuplicateKey(t *testing.T) {
	dup := errors.New("Error 1062 (23000): Duplicate entry 'capote' for key 'users.username'")

	if !isDuplicateKey(dup, "") {
		t.Error("1062 error not recognized")
	}
	if !isDuplicateKey(dup, "username") {
		t.Error("1062 error not matched against its key")
	}
	if isDuplicateKey(dup, "uq_reviews_author_title") {
		t.Error("1062 error matched a foreign key name")
	}
	if isDuplicateKey(nil, "") {
		t.Error("nil error reported as duplicate")
	}
	if isDuplicateKey(errors.New("Error 1452: foreign key constraint fails"), "") {
		t.Error("non-duplicate error reported as duplicate")
	}
}
