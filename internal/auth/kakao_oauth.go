package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	defaultKakaoAuthURL    = "https://kauth.kakao.com/oauth/authorize"
	defaultKakaoTokenURL   = "https://kauth.kakao.com/oauth/token"
	defaultKakaoProfileURL = "https://kapi.kakao.com/v2/user/me"
)

// KakaoOAuthConfig はKakao OAuthプロバイダーの設定。
// クライアントIDとシークレットは生成時に渡し、以後変更しない。
type KakaoOAuthConfig struct {
	ClientID     string
	ClientSecret string // 空の場合はトークン交換時に送信しない

	// テスト用にオーバーライド可能なURL
	AuthURL    string
	TokenURL   string
	ProfileURL string

	HTTPClient *http.Client
}

// KakaoToken はKakaoのトークンエンドポイントのレスポンス。
type KakaoToken struct {
	AccessToken           string `json:"access_token" validate:"required"`
	TokenType             string `json:"token_type"`
	RefreshToken          string `json:"refresh_token"`
	ExpiresIn             int    `json:"expires_in"`
	RefreshTokenExpiresIn int    `json:"refresh_token_expires_in"`
	Scope                 string `json:"scope"`
}

// KakaoProfile はKakaoのユーザー情報エンドポイントのレスポンス。
type KakaoProfile struct {
	ID           int64        `json:"id" validate:"required"`
	KakaoAccount KakaoAccount `json:"kakao_account"`
}

// KakaoAccount はKakaoアカウント情報。
type KakaoAccount struct {
	Email   string              `json:"email" validate:"required,email"`
	Profile KakaoAccountProfile `json:"profile"`
}

// KakaoAccountProfile はKakaoアカウントのプロフィール。
type KakaoAccountProfile struct {
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profile_image_url"`
}

// KakaoOAuthProvider はKakao OAuth 2.0による認証を提供する。
type KakaoOAuthProvider struct {
	config   KakaoOAuthConfig
	client   *http.Client
	validate *validator.Validate
}

// NewKakaoOAuthProvider はKakaoOAuthProviderを生成する。
func NewKakaoOAuthProvider(config KakaoOAuthConfig) *KakaoOAuthProvider {
	if config.AuthURL == "" {
		config.AuthURL = defaultKakaoAuthURL
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultKakaoTokenURL
	}
	if config.ProfileURL == "" {
		config.ProfileURL = defaultKakaoProfileURL
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &KakaoOAuthProvider{
		config:   config,
		client:   client,
		validate: validator.New(),
	}
}

// GetLoginURL はKakaoの認可画面のURLを生成する。
func (p *KakaoOAuthProvider) GetLoginURL(redirectURI, state string) string {
	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
	}
	if state != "" {
		params.Set("state", state)
	}
	return p.config.AuthURL + "?" + params.Encode()
}

// ExchangeCodeForToken は認可コードをアクセストークンに交換する。
// 200以外の応答や解析できない応答はエラーを返す。再試行は行わない。
func (p *KakaoOAuthProvider) ExchangeCodeForToken(ctx context.Context, code, redirectURI string) (*KakaoToken, error) {
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"client_id":    {p.config.ClientID},
		"redirect_uri": {redirectURI},
		"code":         {code},
	}
	if p.config.ClientSecret != "" {
		data.Set("client_secret", p.config.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	var token KakaoToken
	if err := p.do(req, "token exchange", &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// FetchProfile はアクセストークンでKakaoのユーザー情報を取得する。
func (p *KakaoOAuthProvider) FetchProfile(ctx context.Context, accessToken string) (*KakaoProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.ProfileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	var profile KakaoProfile
	if err := p.do(req, "profile fetch", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// do はリクエストを送信し、200応答のJSONをoutに読み込んで検証する。
func (p *KakaoOAuthProvider) do(req *http.Request, op string, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s failed with status %d: %s", op, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", op, err)
	}
	if err := p.validate.Struct(out); err != nil {
		return fmt.Errorf("invalid %s response: %w", op, err)
	}
	return nil
}

// compile-time interface check
var _ OAuthProvider = (*KakaoOAuthProvider)(nil)
