package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexisync/internal/core/domain"
)

func TestEnvTokenProvider(t *testing.T) {
	t.Setenv("LEXISYNC_TEST_TOKEN", "  secret_abc \n")
	p := NewEnvTokenProvider("LEXISYNC_TEST_TOKEN")

	token, err := p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret_abc", token)
	assert.True(t, p.IsAuthenticated())
	assert.Equal(t, domain.AuthMethodToken, p.AuthMethod())
	assert.Equal(t, "LEXISYNC_TEST_TOKEN", p.EnvVar())
}

func TestEnvTokenProvider_Missing(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  *string
	}{
		{name: "unset", envVar: "LEXISYNC_TEST_UNSET"},
		{name: "blank", envVar: "LEXISYNC_TEST_BLANK", value: ptr("   ")},
		{name: "no variable configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != nil {
				t.Setenv(tt.envVar, *tt.value)
			}
			p := NewEnvTokenProvider(tt.envVar)

			_, err := p.GetToken(context.Background())
			assert.ErrorIs(t, err, domain.ErrAuthRequired)
			assert.False(t, p.IsAuthenticated())
		})
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEXISYNC_TEST_A=from-env\nLEXISYNC_TEST_B=from-env\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("LEXISYNC_TEST_B=from-local\n"), 0o600))

	// Registered so t.Setenv restores the original state afterwards.
	t.Setenv("LEXISYNC_TEST_A", "")
	t.Setenv("LEXISYNC_TEST_B", "")
	require.NoError(t, os.Unsetenv("LEXISYNC_TEST_A"))
	require.NoError(t, os.Unsetenv("LEXISYNC_TEST_B"))

	loaded := LoadEnvFiles(dir, filepath.Join(dir, "missing"))

	assert.Equal(t, []string{filepath.Join(dir, ".env.local"), filepath.Join(dir, ".env")}, loaded)
	assert.Equal(t, "from-env", os.Getenv("LEXISYNC_TEST_A"))
	assert.Equal(t, "from-local", os.Getenv("LEXISYNC_TEST_B"))
}

func TestLoadEnvFiles_KeepsExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEXISYNC_TEST_C=from-file\n"), 0o600))
	t.Setenv("LEXISYNC_TEST_C", "from-shell")

	LoadEnvFiles(dir)

	assert.Equal(t, "from-shell", os.Getenv("LEXISYNC_TEST_C"))
}

func TestCourseCredentials(t *testing.T) {
	t.Setenv(EnvCourseEmail, "learner@example.com")
	t.Setenv(EnvCoursePassword, "hunter2")

	creds := CourseCredentials()
	assert.Equal(t, "learner@example.com", creds.Email)
	assert.Equal(t, "hunter2", creds.Password)
	assert.False(t, creds.Empty())
}

func ptr(s string) *string { return &s }
