package firewall

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"United States", "United_States"},
		{"France", "France"},
		{"Korea, Republic of", "Korea_Republic_of"},
		{"Cote D'Ivoire", "Cote_DIvoire"},
		{"Iran (Islamic Republic of)", "Iran_Islamic_Republic_of"},
		{"Bosnia/Herzegovina", "BosniaHerzegovina"},
		{"Virgin Islands, U.S.", "Virgin_Islands_U.S."},
		{"", "_"},
		{"/", "_"},
		{"..", "_.."},
		{"(.)", "_."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.name))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	for _, name := range []string{"United States", "Korea, Republic of", "", "..", "a/b (c)", "_", "Foo_Bar_2"} {
		once := Sanitize(name)
		assert.Equal(t, once, Sanitize(once), "name %q", name)
		assert.NotContains(t, once, "/")
		assert.NotEqual(t, ".", once)
		assert.NotEqual(t, "..", once)
	}
}

func TestAssignTokens_NoCollision(t *testing.T) {
	got, err := AssignTokens([]string{"United States", "France", "France"}, CollisionFail)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"United States": "United_States",
		"France":        "France",
	}, got)
}

func TestAssignTokens_Fail(t *testing.T) {
	_, err := AssignTokens([]string{"Foo_Bar", "France", "Foo Bar"}, CollisionFail)

	var ce *CollisionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Foo_Bar", ce.Token)
	assert.Equal(t, []string{"Foo Bar", "Foo_Bar"}, ce.Names)
	assert.Contains(t, err.Error(), `"Foo Bar", "Foo_Bar"`)
}

func TestAssignTokens_EmptyPolicyFails(t *testing.T) {
	_, err := AssignTokens([]string{"A,B", "AB"}, "")
	var ce *CollisionError
	assert.ErrorAs(t, err, &ce)
}

func TestAssignTokens_Suffix(t *testing.T) {
	names := []string{"Foo_Bar", "Foo Bar", "Foo_Bar_2", "Foo(Bar)"}
	got, err := AssignTokens(names, CollisionSuffix)
	require.NoError(t, err)

	// Sorted: "Foo Bar" < "Foo(Bar)" < "Foo_Bar" < "Foo_Bar_2".
	assert.Equal(t, "Foo_Bar", got["Foo Bar"])
	assert.Equal(t, "FooBar", got["Foo(Bar)"])
	assert.Equal(t, "Foo_Bar_3", got["Foo_Bar"])
	assert.Equal(t, "Foo_Bar_2", got["Foo_Bar_2"])

	seen := map[string]bool{}
	for _, tok := range got {
		assert.False(t, seen[tok], "token %s reused", tok)
		seen[tok] = true
	}

	again, err := AssignTokens([]string{"Foo(Bar)", "Foo_Bar_2", "Foo Bar", "Foo_Bar"}, CollisionSuffix)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestAssignTokens_UnknownPolicy(t *testing.T) {
	_, err := AssignTokens([]string{"France"}, "rename")
	assert.Error(t, err)
}
