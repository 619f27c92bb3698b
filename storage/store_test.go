package storage

import (
	"context"
	"errors"
	"sort"
	"testing"

	"gocloud.dev/blob/memblob"
)

func testStores(t *testing.T) map[string]Store {
	local, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("%v\n", err)
	}
	return map[string]Store{
		"local":  local,
		"bucket": NewBucketStore(memblob.OpenBucket(nil)),
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		if err := store.Put(ctx, "a.n5/bodies/0/0/0", []byte("block")); err != nil {
			t.Fatalf("%s: %v\n", name, err)
		}
		if err := store.Put(ctx, "a.n5/attributes.json", []byte("{}")); err != nil {
			t.Fatalf("%s: %v\n", name, err)
		}
		if err := store.Put(ctx, "a.n5x", []byte("other")); err != nil {
			t.Fatalf("%s: %v\n", name, err)
		}
		data, err := store.Get(ctx, "a.n5/bodies/0/0/0")
		if err != nil || string(data) != "block" {
			t.Errorf("%s: bad get %q: %v\n", name, data, err)
		}
		if _, err := store.Get(ctx, "a.n5/bodies/0/0/1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: expected not found, got %v\n", name, err)
		}
		exists, err := store.Exists(ctx, "a.n5x")
		if err != nil || !exists {
			t.Errorf("%s: expected a.n5x to exist: %v\n", name, err)
		}
		keys, err := existingKeys(ctx, store, "a.n5")
		if err != nil {
			t.Fatalf("%s: %v\n", name, err)
		}
		sort.Strings(keys)
		if len(keys) != 2 || keys[0] != "a.n5/attributes.json" || keys[1] != "a.n5/bodies/0/0/0" {
			t.Errorf("%s: bad keys %v\n", name, keys)
		}
		if err := store.Delete(ctx, "a.n5x"); err != nil {
			t.Errorf("%s: %v\n", name, err)
		}
		if err := store.Delete(ctx, "a.n5x"); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: expected not found on second delete, got %v\n", name, err)
		}
		if exists, _ := store.Exists(ctx, "a.n5x"); exists {
			t.Errorf("%s: deleted object still exists\n", name)
		}
		if err := store.Close(); err != nil {
			t.Errorf("%s: %v\n", name, err)
		}
	}
}

func TestSplitBucketURL(t *testing.T) {
	tests := []struct {
		dest, bucket, key string
	}{
		{"gs://flyem-bucket/exports/fib19-bodies.n5", "gs://flyem-bucket", "exports/fib19-bodies.n5"},
		{"s3://bucket/out.dvol?region=us-east-1", "s3://bucket?region=us-east-1", "out.dvol"},
		{"file:///tmp/exports/out.n5", "file:///tmp/exports", "out.n5"},
		{"mem://bucket/out.n5/", "mem://bucket", "out.n5"},
	}
	for _, tc := range tests {
		if !IsBucketURL(tc.dest) {
			t.Errorf("%q not recognized as bucket URL\n", tc.dest)
		}
		bucket, key, err := splitBucketURL(tc.dest)
		if err != nil {
			t.Errorf("%q: %v\n", tc.dest, err)
			continue
		}
		if bucket != tc.bucket || key != tc.key {
			t.Errorf("%q split into (%q, %q), expected (%q, %q)\n", tc.dest, bucket, key, tc.bucket, tc.key)
		}
	}
	for _, local := range []string{"/tmp/out.n5", "out.n5", "./a://b.n5"} {
		if IsBucketURL(local) {
			t.Errorf("%q should be a local path\n", local)
		}
	}
	if _, _, err := splitBucketURL("gs://bucket"); err == nil {
		t.Errorf("expected error for URL without object name\n")
	}
}
