package store

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		log.Println("Error while creating the firestore client:", err)
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

/*
* Stream every document of the collection
* Stop on the first iterator error, the listing is all or nothing
 */
func (s *FirestoreStore) ListAll(ctx context.Context, collection string) ([]Document, error) {
	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	iter := coll.Documents(ctx)
	defer iter.Stop()

	docs := []Document{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating %s: %w", collection, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Fields: snap.Data()})
	}
	return docs, nil
}

func (s *FirestoreStore) GetByID(ctx context.Context, collection string, id string) (Document, bool, error) {
	coll, err := s.collection(collection)
	if err != nil {
		return Document{}, false, err
	}
	ref := coll.Doc(id)
	if ref == nil {
		return Document{}, false, fmt.Errorf("invalid document id %q in %s", id, collection)
	}
	snap, err := ref.Get(ctx)
	if isNotFound(err) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	if !snap.Exists() {
		return Document{}, false, nil
	}
	return Document{ID: snap.Ref.ID, Fields: snap.Data()}, true, nil
}

/*
* One firestore.Update per field so the write is a merge
* A missing document surfaces as ErrNotFound
 */
func (s *FirestoreStore) UpdateFields(ctx context.Context, collection string, id string, fields map[string]interface{}) error {
	coll, err := s.collection(collection)
	if err != nil {
		return err
	}
	ref := coll.Doc(id)
	if ref == nil {
		return fmt.Errorf("invalid document id %q in %s", id, collection)
	}
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	_, err = ref.Update(ctx, updates)
	if isNotFound(err) {
		return fmt.Errorf("update %s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

// collection is nil for paths that do not name a collection, e.g. "visits/V1".
func (s *FirestoreStore) collection(name string) (*firestore.CollectionRef, error) {
	coll := s.client.Collection(name)
	if coll == nil {
		return nil, fmt.Errorf("invalid collection name %q", name)
	}
	return coll, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func isNotFound(err error) bool {
	return err != nil && status.Code(err) == codes.NotFound
}
