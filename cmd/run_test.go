package cmd

import (
	"os"
	"testing"
)

func TestApplyFlagOverrides(t *testing.T) {
	os.Unsetenv("RDL_TABLE_NAME")
	v := "orders"
	runFlags["table-name"] = &v
	defer func() {
		runFlags["table-name"] = nil
		os.Unsetenv("RDL_TABLE_NAME")
	}()
	applyFlagOverrides()
	if got := os.Getenv("RDL_TABLE_NAME"); got != "orders" {
		t.Fatalf("expected flag override in environment; got %q", got)
	}
}

func TestEmptyFlagDoesNotOverride(t *testing.T) {
	if err := os.Setenv("RDL_BUCKET_NAME", "from-env"); err != nil {
		t.Fatal(err)
	}
	defer os.Unsetenv("RDL_BUCKET_NAME")
	empty := ""
	runFlags["bucket-name"] = &empty
	applyFlagOverrides()
	if got := os.Getenv("RDL_BUCKET_NAME"); got != "from-env" {
		t.Fatalf("expected environment value to survive; got %q", got)
	}
}
