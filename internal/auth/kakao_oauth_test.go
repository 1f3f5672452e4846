package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKakaoOAuthProvider_GetLoginURL(t *testing.T) {
	p := NewKakaoOAuthProvider(KakaoOAuthConfig{ClientID: "client-id"})

	got := p.GetLoginURL("https://app.example.com/callback", "xyz")

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "kauth.kakao.com", u.Host)
	assert.Equal(t, "/oauth/authorize", u.Path)
	assert.Equal(t, "client-id", u.Query().Get("client_id"))
	assert.Equal(t, "https://app.example.com/callback", u.Query().Get("redirect_uri"))
	assert.Equal(t, "code", u.Query().Get("response_type"))
	assert.Equal(t, "xyz", u.Query().Get("state"))
}

func TestKakaoOAuthProvider_ExchangeCodeForToken(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"kakao-access","token_type":"bearer","refresh_token":"r","expires_in":21599}`))
	}))
	defer srv.Close()

	p := NewKakaoOAuthProvider(KakaoOAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     srv.URL,
	})

	token, err := p.ExchangeCodeForToken(context.Background(), "auth-code", "https://app.example.com/callback")
	require.NoError(t, err)
	assert.Equal(t, "kakao-access", token.AccessToken)
	assert.Equal(t, 21599, token.ExpiresIn)

	assert.Equal(t, "authorization_code", form.Get("grant_type"))
	assert.Equal(t, "client-id", form.Get("client_id"))
	assert.Equal(t, "https://app.example.com/callback", form.Get("redirect_uri"))
	assert.Equal(t, "auth-code", form.Get("code"))
	assert.Equal(t, "client-secret", form.Get("client_secret"))
}

func TestKakaoOAuthProvider_ExchangeCodeForToken_OmitsEmptySecret(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		form = r.PostForm
		_, _ = w.Write([]byte(`{"access_token":"kakao-access"}`))
	}))
	defer srv.Close()

	p := NewKakaoOAuthProvider(KakaoOAuthConfig{ClientID: "client-id", TokenURL: srv.URL})

	_, err := p.ExchangeCodeForToken(context.Background(), "auth-code", "https://app.example.com/callback")
	require.NoError(t, err)
	_, ok := form["client_secret"]
	assert.False(t, ok)
}

func TestKakaoOAuthProvider_ExchangeCodeForToken_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"200以外のステータス", http.StatusBadRequest, `{"error":"invalid_grant"}`, "status 400"},
		{"JSONとして解析できない", http.StatusOK, `not json`, "failed to parse token exchange response"},
		{"アクセストークンが空", http.StatusOK, `{"token_type":"bearer"}`, "invalid token exchange response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewKakaoOAuthProvider(KakaoOAuthConfig{ClientID: "client-id", TokenURL: srv.URL})

			_, err := p.ExchangeCodeForToken(context.Background(), "code", "https://app.example.com/callback")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestKakaoOAuthProvider_FetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer kakao-access", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{
			"id": 12345,
			"kakao_account": {
				"email": "lee@kakao.com",
				"profile": {"nickname": "민수", "profile_image_url": "https://k.kakaocdn.net/img.jpg"}
			}
		}`))
	}))
	defer srv.Close()

	p := NewKakaoOAuthProvider(KakaoOAuthConfig{ClientID: "client-id", ProfileURL: srv.URL})

	profile, err := p.FetchProfile(context.Background(), "kakao-access")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), profile.ID)
	assert.Equal(t, "lee@kakao.com", profile.KakaoAccount.Email)
	assert.Equal(t, "민수", profile.KakaoAccount.Profile.Nickname)
	assert.Equal(t, "https://k.kakaocdn.net/img.jpg", profile.KakaoAccount.Profile.ProfileImageURL)
}

func TestKakaoOAuthProvider_FetchProfile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"401", http.StatusUnauthorized, `{"msg":"this access token does not exist"}`, "status 401"},
		{"メールアドレスがない", http.StatusOK, `{"id":1,"kakao_account":{}}`, "invalid profile fetch response"},
		{"IDがない", http.StatusOK, `{"kakao_account":{"email":"lee@kakao.com"}}`, "invalid profile fetch response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewKakaoOAuthProvider(KakaoOAuthConfig{ProfileURL: srv.URL})

			_, err := p.FetchProfile(context.Background(), "token")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
