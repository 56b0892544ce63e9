package config_test

import (
	"testing"
	"time"

	"murmur/internal/platform/config"
)

func TestPrefixScoping(t *testing.T) {
	t.Setenv("MURMUR_GROUP", "pipeline-a")

	root := config.New()
	if got := root.MayString("MURMUR_GROUP", ""); got != "pipeline-a" {
		t.Fatalf("root lookup got %q", got)
	}

	scoped := root.Prefix("MURMUR_")
	if got := scoped.MayString("GROUP", ""); got != "pipeline-a" {
		t.Fatalf("scoped lookup got %q", got)
	}

	nested := root.Prefix("MURMUR_").Prefix("GRO")
	if got := nested.MayString("UP", ""); got != "pipeline-a" {
		t.Fatalf("nested prefix lookup got %q", got)
	}
}

func TestMayGettersDefaults(t *testing.T) {
	c := config.New().Prefix("MURMUR_TEST_")

	if got := c.MayString("MISSING", "fallback"); got != "fallback" {
		t.Fatalf("MayString default got %q", got)
	}
	if got := c.MayInt("MISSING", 42); got != 42 {
		t.Fatalf("MayInt default got %d", got)
	}
	if got := c.MayBool("MISSING", true); !got {
		t.Fatal("MayBool default got false")
	}
	if got := c.MayDuration("MISSING", 5*time.Second); got != 5*time.Second {
		t.Fatalf("MayDuration default got %v", got)
	}
	if got := c.MayCSV("MISSING", []string{"a"}); len(got) != 1 || got[0] != "a" {
		t.Fatalf("MayCSV default got %v", got)
	}
}

func TestMayGettersParse(t *testing.T) {
	t.Setenv("MURMUR_TEST_BATCH", "25")
	t.Setenv("MURMUR_TEST_BLOCK", "1500ms")
	t.Setenv("MURMUR_TEST_ENABLED", "true")
	t.Setenv("MURMUR_TEST_PATTERNS", "a, b ,,c")
	t.Setenv("MURMUR_TEST_BAD_INT", "not-a-number")

	c := config.New().Prefix("MURMUR_TEST_")

	if got := c.MayInt("BATCH", 0); got != 25 {
		t.Fatalf("MayInt got %d", got)
	}
	if got := c.MayDuration("BLOCK", 0); got != 1500*time.Millisecond {
		t.Fatalf("MayDuration got %v", got)
	}
	if got := c.MayBool("ENABLED", false); !got {
		t.Fatal("MayBool got false")
	}
	if got := c.MayCSV("PATTERNS", nil); len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("MayCSV got %v", got)
	}
	// invalid values fall back to the default instead of failing
	if got := c.MayInt("BAD_INT", 9); got != 9 {
		t.Fatalf("MayInt invalid got %d", got)
	}
}

func TestMustPort(t *testing.T) {
	t.Setenv("MURMUR_TEST_API_PORT", "4000")
	c := config.New().Prefix("MURMUR_TEST_")
	if got := c.MustPort("API_PORT"); got != ":4000" {
		t.Fatalf("MustPort got %q", got)
	}
}
