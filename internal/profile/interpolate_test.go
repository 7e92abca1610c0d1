package profile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolateScenario(t *testing.T) {
	doc := loadDoc(t, asaStore)
	v, err := Resolve(doc, "OtherASA")
	require.NoError(t, err)

	out, err := Interpolate(v)
	require.NoError(t, err)

	assert.Equal(t, "testpassword", out.Get("enable_password"))
	assert.Equal(t, "1.2.3.4", out.Get("address"))
	assert.Equal(t, "internal_blacklist", out.Get("blacklist"))

	// Input is untouched.
	assert.Equal(t, "%(password)s", v.Get("enable_password"))
}

func TestInterpolateForms(t *testing.T) {
	tests := []struct {
		name string
		in   Values
		key  string
		want string
	}{
		{
			name: "trailing s form",
			in:   Values{"a": "x", "b": "%(a)s"},
			key:  "b", want: "x",
		},
		{
			name: "bare form",
			in:   Values{"a": "x", "b": "%(a)"},
			key:  "b", want: "x",
		},
		{
			name: "prefix and suffix",
			in:   Values{"host": "asa1", "b": "pre-%(host)-post"},
			key:  "b", want: "pre-asa1-post",
		},
		{
			name: "multiple placeholders",
			in:   Values{"user": "admin", "host": "asa", "b": "%(user)s@%(host)s"},
			key:  "b", want: "admin@asa",
		},
		{
			name: "case-insensitive name",
			in:   Values{"password": "pw", "b": "%(PASSWORD)s"},
			key:  "b", want: "pw",
		},
		{
			name: "transitive chain",
			in:   Values{"a": "1", "b": "%(a)s2", "c": "%(b)s3"},
			key:  "c", want: "123",
		},
		{
			name: "literal percent",
			in:   Values{"b": "100% sure"},
			key:  "b", want: "100% sure",
		},
		{
			name: "empty referenced value",
			in:   Values{"password": "", "enable_password": "%(password)s"},
			key:  "enable_password", want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Interpolate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Get(tt.key))
		})
	}
}

func TestInterpolateIdempotent(t *testing.T) {
	inputs := []Values{
		{"a": "x", "b": "%(a)s-%(a)"},
		{"a": "1", "b": "%(a)s2", "c": "%(b)s3", "d": "plain"},
		{"password": "p%ss", "enable_password": "%(password)s"},
		{},
	}

	for _, in := range inputs {
		once, err := Interpolate(in)
		require.NoError(t, err)
		twice, err := Interpolate(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestInterpolateCycle(t *testing.T) {
	tests := []struct {
		name string
		in   Values
	}{
		{"self", Values{"a": "%(a)s"}},
		{"pair", Values{"a": "%(b)s", "b": "%(a)s"}},
		{"triangle", Values{"a": "x%(b)s", "b": "%(c)s", "c": "%(a)s", "d": "ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Interpolate(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInterpolationCycle)

			var cycle *CycleError
			require.True(t, errors.As(err, &cycle))
			require.GreaterOrEqual(t, len(cycle.Path), 2)
			assert.Equal(t, cycle.Path[0], cycle.Path[len(cycle.Path)-1])
		})
	}
}

func TestInterpolateCycleNamesKeys(t *testing.T) {
	_, err := Interpolate(Values{"a": "%(b)s", "b": "%(a)s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a -> b -> a")
}

func TestInterpolateUnresolvedReference(t *testing.T) {
	_, err := Interpolate(Values{"enable_password": "%(secret)s"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvedReference)

	var ref *ReferenceError
	require.True(t, errors.As(err, &ref))
	assert.Equal(t, "enable_password", ref.Key)
	assert.Equal(t, "secret", ref.Reference)
}

func TestInterpolateRejectsGeneratedPlaceholder(t *testing.T) {
	_, err := Interpolate(Values{"pct": "%", "b": "%(pct)s(pct)"})
	assert.ErrorIs(t, err, ErrUnresolvedReference)
}

func TestReferences(t *testing.T) {
	assert.Nil(t, References("plain"))
	assert.Equal(t, []string{"a", "b"}, References("%(a)s %(B) %(a)"))
}

func TestInterpolateTrailingS(t *testing.T) {
	in := Values{
		"host":    "fw1",
		"short":   "%(host)south",
		"doubled": "%(host)ssouth",
		"bare":    "%(host)-south",
	}

	out, err := Interpolate(in)
	require.NoError(t, err)
	// The first "s" after ")" always belongs to the placeholder.
	assert.Equal(t, "fw1outh", out.Get("short"))
	assert.Equal(t, "fw1south", out.Get("doubled"))
	assert.Equal(t, "fw1-south", out.Get("bare"))
}

func TestBareReference(t *testing.T) {
	tests := []struct {
		value string
		key   string
		ok    bool
	}{
		{"%(password)s", "password", true},
		{" %(Password) ", "password", true},
		{"x%(password)s", "", false},
		{"%(password)s!", "", false},
		{"%(a)s%(b)s", "", false},
		{"plain", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		key, ok := BareReference(tt.value)
		assert.Equal(t, tt.ok, ok, "value %q", tt.value)
		assert.Equal(t, tt.key, key, "value %q", tt.value)
	}
}

func TestSecretDependents(t *testing.T) {
	raw := Values{
		"address":         "1.2.3.4",
		"password":        "pw",
		"enable_password": "%(password)s",
		"login":           "admin:%(password)s",
		"banner":          "[%(login)s]",
		"enable_copy":     "%(enable_password)s",
		"blacklist":       "%(address)s-list",
	}

	assert.Equal(t, []string{"banner", "enable_copy", "login"}, SecretDependents(raw))
	assert.Empty(t, SecretDependents(Values{"address": "1.2.3.4", "password": "pw"}))
}

func TestResolutionInterpolateKeepsRaw(t *testing.T) {
	res := &Resolution{
		Target: "A",
		Values: Values{"password": "pw", "login": "admin:%(password)s"},
	}
	require.NoError(t, res.Interpolate())

	assert.Equal(t, "admin:pw", res.Values.Get("login"))
	assert.Equal(t, "admin:%(password)s", res.Raw.Get("login"))
	assert.Equal(t, map[string]bool{"login": true}, res.Sensitive())
}
