package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// ThreadCollection mongo collection of chat threads
	ThreadCollection = "chat_threads"
	// MessageCollection mongo collection of chat messages
	MessageCollection = "chat_messages"
)

var (
	// ErrNotFound document does not exist
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate a unique index rejected the write
	ErrDuplicate = errors.New("duplicate document")
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(ErrDuplicate, err)
	}
	return err
}
