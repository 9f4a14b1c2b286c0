package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"VisitsBackfill/config"
	"VisitsBackfill/store"

	"github.com/stretchr/testify/assert"
)

type stubStore struct {
	visits  []store.Document
	listErr error
	closed  bool
}

func (s *stubStore) ListAll(ctx context.Context, collection string) ([]store.Document, error) {
	return s.visits, s.listErr
}

func (s *stubStore) GetByID(ctx context.Context, collection, id string) (store.Document, bool, error) {
	return store.Document{ID: id, Fields: map[string]interface{}{"adminId": "A1"}}, true, nil
}

func (s *stubStore) UpdateFields(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	return nil
}

func (s *stubStore) Close() error {
	s.closed = true
	return nil
}

func withStore(t *testing.T, s store.Store, err error) {
	t.Helper()
	t.Setenv("STORE_BACKEND", "firestore")
	t.Setenv("MIGRATION_SCHEDULE", "")
	t.Setenv("STORE_TIMEOUT", "")
	orig := openStore
	openStore = func(ctx context.Context, cfg *config.Config) (store.Store, error) {
		return s, err
	}
	t.Cleanup(func() { openStore = orig })
}

func TestRun_Success(t *testing.T) {
	s := &stubStore{visits: []store.Document{
		{ID: "V1", Fields: map[string]interface{}{"employeeId": "E1"}},
	}}
	withStore(t, s, nil)

	assert.Equal(t, 0, run())
	assert.True(t, s.closed)
}

func TestRun_EmptyCollection(t *testing.T) {
	withStore(t, &stubStore{}, nil)

	assert.Equal(t, 0, run())
}

func TestRun_ListFailure(t *testing.T) {
	s := &stubStore{listErr: errors.New("permission denied")}
	withStore(t, s, nil)

	assert.Equal(t, 1, run())
	assert.True(t, s.closed)
}

func TestRun_StoreFailure(t *testing.T) {
	withStore(t, nil, errors.New("no credentials"))

	assert.Equal(t, 1, run())
}

func TestRun_ConfigFailure(t *testing.T) {
	withStore(t, &stubStore{}, nil)
	t.Setenv("STORE_BACKEND", "dynamo")

	assert.Equal(t, 1, run())
}

func TestRun_Scheduled(t *testing.T) {
	withStore(t, &stubStore{}, nil)
	t.Setenv("MIGRATION_SCHEDULE", "@hourly")
	waited := false
	orig := waitForSignal
	waitForSignal = func() { waited = true }
	t.Cleanup(func() { waitForSignal = orig })

	assert.Equal(t, 0, run())
	assert.True(t, waited)
}

func TestRun_BadSchedule(t *testing.T) {
	withStore(t, &stubStore{}, nil)
	t.Setenv("MIGRATION_SCHEDULE", "whenever")

	assert.Equal(t, 1, run())
}

func TestMain_Exit(t *testing.T) {
	withStore(t, &stubStore{}, nil)
	code := -1
	orig := exit
	exit = func(c int) { code = c }
	t.Cleanup(func() { exit = orig })

	main()
	assert.Equal(t, 0, code)
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	fn()
	os.Stdout = orig
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func TestRun_PrintsCompletion(t *testing.T) {
	withStore(t, &stubStore{visits: []store.Document{
		{ID: "V1", Fields: map[string]interface{}{"adminId": "A9"}},
	}}, nil)

	var code int
	out := captureStdout(t, func() { code = run() })
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Migration Summary:")
	assert.Contains(t, out, "✓ Migration complete!")
}

func TestRun_NoCompletionOnListFailure(t *testing.T) {
	withStore(t, &stubStore{listErr: errors.New("permission denied")}, nil)

	var code int
	out := captureStdout(t, func() { code = run() })
	assert.Equal(t, 1, code)
	assert.NotContains(t, out, "Migration complete!")
}
