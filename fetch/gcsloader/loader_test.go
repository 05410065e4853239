package gcsloader

import "testing"

func TestParseValidURI(t *testing.T) {
	bucket, object, err := parse("gs://my-bucket/path/to/object.jar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bucket != "my-bucket" {
		t.Fatalf("bucket = %q, want my-bucket", bucket)
	}
	if object != "path/to/object.jar" {
		t.Fatalf("object = %q, want path/to/object.jar", object)
	}
}

func TestParseRejectsMissingScheme(t *testing.T) {
	if _, _, err := parse("https://my-bucket/object"); err == nil {
		t.Fatal("expected an error for a non-gs:// URI")
	}
}

func TestParseRejectsMissingObject(t *testing.T) {
	if _, _, err := parse("gs://my-bucket"); err == nil {
		t.Fatal("expected an error for a bucket-only URI")
	}
}
