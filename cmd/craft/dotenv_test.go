// ABOUTME: Tests for the .env file loader that reads KEY=VALUE pairs into the process environment.

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempEnv(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDotEnvSetsVariables(t *testing.T) {
	path := writeTempEnv(t, "TEST_DOTENV_A=hello\nTEST_DOTENV_B=world\n")
	os.Unsetenv("TEST_DOTENV_A")
	os.Unsetenv("TEST_DOTENV_B")

	loadDotEnv(path)

	if got := os.Getenv("TEST_DOTENV_A"); got != "hello" {
		t.Errorf("expected TEST_DOTENV_A=hello, got %q", got)
	}
	if got := os.Getenv("TEST_DOTENV_B"); got != "world" {
		t.Errorf("expected TEST_DOTENV_B=world, got %q", got)
	}
}

func TestLoadDotEnvQuotedValues(t *testing.T) {
	path := writeTempEnv(t, "TEST_DOTENV_Q=\"quoted value\"\nTEST_DOTENV_S='single quoted'\n")
	os.Unsetenv("TEST_DOTENV_Q")
	os.Unsetenv("TEST_DOTENV_S")

	loadDotEnv(path)

	if got := os.Getenv("TEST_DOTENV_Q"); got != "quoted value" {
		t.Errorf("expected TEST_DOTENV_Q='quoted value', got %q", got)
	}
	if got := os.Getenv("TEST_DOTENV_S"); got != "single quoted" {
		t.Errorf("expected TEST_DOTENV_S='single quoted', got %q", got)
	}
}

func TestLoadDotEnvDoesNotClobberExisting(t *testing.T) {
	path := writeTempEnv(t, "TEST_DOTENV_EXISTING=fromfile\n")
	t.Setenv("TEST_DOTENV_EXISTING", "fromenv")

	loadDotEnv(path)

	if got := os.Getenv("TEST_DOTENV_EXISTING"); got != "fromenv" {
		t.Errorf("expected existing env var to survive untouched, got %q", got)
	}
}

func TestLoadDotEnvIgnoresCommentsAndBlankLines(t *testing.T) {
	path := writeTempEnv(t, "# a comment\n\nTEST_DOTENV_C=value\n")
	os.Unsetenv("TEST_DOTENV_C")

	loadDotEnv(path)

	if got := os.Getenv("TEST_DOTENV_C"); got != "value" {
		t.Errorf("expected TEST_DOTENV_C=value, got %q", got)
	}
}

func TestLoadDotEnvMissingFileIsSilentlyIgnored(t *testing.T) {
	loadDotEnv(filepath.Join(t.TempDir(), "does-not-exist.env"))
}
