package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vilaca/repo-issues/internal/config"
	"github.com/vilaca/repo-issues/internal/domain"
	"github.com/vilaca/repo-issues/internal/service"
)

func TestParseRepository(t *testing.T) {
	tests := []struct {
		input   string
		want    domain.Repository
		wantErr bool
	}{
		{input: "liz/example-repo", want: domain.Repository{Owner: "liz", Name: "example-repo", FullName: "liz/example-repo"}},
		{input: "  liz/example-repo ", want: domain.Repository{Owner: "liz", Name: "example-repo", FullName: "liz/example-repo"}},
		{input: "example-repo", wantErr: true},
		{input: "/example-repo", wantErr: true},
		{input: "liz/", wantErr: true},
		{input: "liz/a/b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseRepository(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected an error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("repository mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveKey(t *testing.T) {
	// Arrange
	store := service.NewKeyStore(filepath.Join(t.TempDir(), "key.yaml"), discardLogger{})
	if err := store.Save("saved-key"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tests := []struct {
		name    string
		flagKey string
		token   string
		want    string
	}{
		{"flag wins", "flag-key", "token", "flag-key"},
		{"token before saved key", "", "token", "token"},
		{"saved key last", "  ", "", "saved-key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got, err := resolveKey(tt.flagKey, &config.Config{GitHubToken: tt.token}, store)

			// Assert
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestMaskKey(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"abc":          "***",
		"ghp_1234abcd": "********abcd",
	}
	for key, want := range tests {
		if got := maskKey(key); got != want {
			t.Errorf("maskKey(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestReadKey_FromPipe(t *testing.T) {
	// Arrange
	in := strings.NewReader("  ghp_secret  \nignored\n")

	// Act
	key, err := readKey(in, &bytes.Buffer{})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "ghp_secret" {
		t.Errorf("expected ghp_secret, got %q", key)
	}
}

func TestReadKey_NoTrailingNewline(t *testing.T) {
	key, err := readKey(strings.NewReader("ghp_secret"), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "ghp_secret" {
		t.Errorf("expected ghp_secret, got %q", key)
	}
}

// runRoot executes the command tree with args and returns its output.
func runRoot(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestKeyCommands(t *testing.T) {
	// Arrange
	keyFile := filepath.Join(t.TempDir(), "nested", "key.yaml")
	t.Setenv("REPO_ISSUES_KEY_FILE", keyFile)

	// Act
	saved, saveErr := runRoot(t, "", "key", "save", "ghp_1234abcd")
	shown, showErr := runRoot(t, "", "key", "show")
	_, clearErr := runRoot(t, "", "key", "clear")
	afterClear, _ := runRoot(t, "", "key", "show")

	// Assert
	for _, err := range []error{saveErr, showErr, clearErr} {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if !strings.Contains(saved, "API key saved to "+keyFile) {
		t.Errorf("expected save confirmation, got %q", saved)
	}
	if !strings.Contains(shown, "********abcd") {
		t.Errorf("expected masked key, got %q", shown)
	}
	if !strings.Contains(afterClear, "no key saved") {
		t.Errorf("expected no key after clear, got %q", afterClear)
	}
}

func TestKeySave_FromStdin(t *testing.T) {
	// Arrange
	keyFile := filepath.Join(t.TempDir(), "key.yaml")
	t.Setenv("REPO_ISSUES_KEY_FILE", keyFile)

	// Act
	_, err := runRoot(t, "ghp_from_stdin\n", "key", "save")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key, err := service.NewKeyStore(keyFile, discardLogger{}).Load()
	if err != nil || key != "ghp_from_stdin" {
		t.Errorf("expected stored key ghp_from_stdin, got %q (%v)", key, err)
	}
}

func TestKeySave_Empty(t *testing.T) {
	t.Setenv("REPO_ISSUES_KEY_FILE", filepath.Join(t.TempDir(), "key.yaml"))

	_, err := runRoot(t, "\n", "key", "save")

	if err == nil || err.Error() != domain.MissingKeyMessage {
		t.Errorf("expected %q, got %v", domain.MissingKeyMessage, err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runRoot(t, "", "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "repo-issues dev\n" {
		t.Errorf("expected version line, got %q", out)
	}
}

func TestConfigFileMissing(t *testing.T) {
	_, err := runRoot(t, "", "--config", filepath.Join(t.TempDir(), "absent.yaml"), "version")
	if err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}
