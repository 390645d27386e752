package reconcile

import (
	"net/http"
	"testing"
)

func TestDerive_Scenario(t *testing.T) {
	got := Derive(ProviderGoogle, ExternalIdentity{ProviderUserID: "abc123", DisplayName: "Jane Doe"})
	want := LocalIdentity{Email: "abc123@google.local", Username: "jane_doe", Password: "abc123"}
	if got != want {
		t.Errorf("Derive = %+v, want %+v", got, want)
	}
}

func TestDerive_IsDeterministic(t *testing.T) {
	inputs := []ExternalIdentity{
		{ProviderUserID: "abc123", DisplayName: "Jane Doe"},
		{ProviderUserID: "987654321012", Email: "Dev.Ops+ci@Example.com"},
		{ProviderUserID: "x"},
		{ProviderUserID: "id-with-unicode", DisplayName: "Zoë Ångström"},
	}
	for _, in := range inputs {
		for _, p := range []Provider{ProviderGoogle, ProviderFacebook, ProviderGitHub} {
			if a, b := Derive(p, in), Derive(p, in); a != b {
				t.Errorf("Derive(%s, %+v) not deterministic: %+v vs %+v", p, in, a, b)
			}
		}
	}
}

func TestDerive_Fallbacks(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		in       ExternalIdentity
		want     LocalIdentity
	}{
		{
			name:     "email local part",
			provider: ProviderGitHub,
			in:       ExternalIdentity{ProviderUserID: "42", Email: "Dev.Ops@example.com"},
			want:     LocalIdentity{Email: "Dev.Ops@example.com", Username: "dev_ops", Password: "42"},
		},
		{
			name:     "invalid email uses placeholder and prefix",
			provider: ProviderFacebook,
			in:       ExternalIdentity{ProviderUserID: "1234567890", Email: "not-an-email"},
			want:     LocalIdentity{Email: "1234567890@facebook.local", Username: "fb_12345678", Password: "1234567890"},
		},
		{
			name:     "short id",
			provider: ProviderGitHub,
			in:       ExternalIdentity{ProviderUserID: "77", DisplayName: "!!!"},
			want:     LocalIdentity{Email: "77@github.local", Username: "gh_77", Password: "77"},
		},
		{
			name:     "long display name truncated",
			provider: ProviderGoogle,
			in:       ExternalIdentity{ProviderUserID: "g1", DisplayName: "Alexandria Ocasio Cortez Smith"},
			want:     LocalIdentity{Email: "g1@google.local", Username: "alexandria_ocasio_co", Password: "g1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Derive(tt.provider, tt.in); got != tt.want {
				t.Errorf("Derive = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestScopes_ReturnsCopy(t *testing.T) {
	s := Scopes(ProviderGoogle)
	s[0] = "mutated"
	if Scopes(ProviderGoogle)[0] != "openid" {
		t.Error("Scopes leaked internal slice")
	}
}

func TestParseProvider(t *testing.T) {
	if p, err := ParseProvider(" GitHub "); err != nil || p != ProviderGitHub {
		t.Errorf("ParseProvider = %q, %v", p, err)
	}
	if _, err := ParseProvider("myspace"); err != ErrUnknownProvider {
		t.Errorf("err = %v", err)
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		header http.Header
		want   string
	}{
		{"accessToken key", `{"accessToken":"eyJhbGci.a.b"}`, nil, "eyJhbGci.a.b"},
		{"nested access_token", `{"data":{"user":{"id":1},"access_token":"opaque-1"}}`, nil, "opaque-1"},
		{"exact key wins over suffix", `{"refresh_token":"r1","token":"t1"}`, nil, "t1"},
		{"suffix key", `{"sessionToken":"s1"}`, nil, "s1"},
		{"signed value under other key", `{"result":{"value":"eyJxyz"}}`, nil, "eyJxyz"},
		{"array", `{"items":[{"jwt":"j1"}]}`, nil, "j1"},
		{"header fallback", `{"user":{"id":1}}`, http.Header{"Authorization": {"Bearer hdr-1"}}, "hdr-1"},
		{"non json body with header", `created`, http.Header{"Authorization": {"bearer hdr-2"}}, "hdr-2"},
		{"nothing", `{"ok":true}`, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractToken([]byte(tt.body), tt.header); got != tt.want {
				t.Errorf("ExtractToken = %q, want %q", got, tt.want)
			}
		})
	}
}
