// Package auth はKakao OAuthログインとベアラートークンの発行を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/lecturehub/internal/metrics"
	"github.com/hitoshi/lecturehub/internal/model"
	"github.com/hitoshi/lecturehub/internal/repository"
)

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL は認可画面のURLを生成する。
	GetLoginURL(redirectURI, state string) string
	// ExchangeCodeForToken は認可コードをアクセストークンに交換する。
	ExchangeCodeForToken(ctx context.Context, code, redirectURI string) (*KakaoToken, error)
	// FetchProfile はアクセストークンでユーザー情報を取得する。
	FetchProfile(ctx context.Context, accessToken string) (*KakaoProfile, error)
}

// LoginResult はログイン成功時の結果。
type LoginResult struct {
	Token string
	User  *model.User
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth    OAuthProvider
	userRepo repository.UserRepository
	tokens   *TokenIssuer
	metrics  metrics.MetricsCollector
	logger   *slog.Logger
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	userRepo repository.UserRepository,
	tokens *TokenIssuer,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		oauth:    oauth,
		userRepo: userRepo,
		tokens:   tokens,
		metrics:  collector,
		logger:   logger,
	}
}

// GetLoginURL は認可画面のURLを生成する。
func (s *Service) GetLoginURL(redirectURI, state string) string {
	return s.oauth.GetLoginURL(redirectURI, state)
}

// Login は認可コードでログインし、トークンを発行する。
// 初回ログインのユーザーはROLE_USERで自動作成する。
func (s *Service) Login(ctx context.Context, code, redirectURI string) (*LoginResult, error) {
	result, err := s.login(ctx, code, redirectURI)
	if err != nil {
		s.metrics.RecordLogin(metrics.OutcomeFailure)
		s.logger.Error("ログインに失敗しました", slog.String("error", err.Error()))
		return nil, err
	}
	s.metrics.RecordLogin(metrics.OutcomeSuccess)
	return result, nil
}

func (s *Service) login(ctx context.Context, code, redirectURI string) (*LoginResult, error) {
	token, err := s.oauth.ExchangeCodeForToken(ctx, code, redirectURI)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	profile, err := s.oauth.FetchProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	user, err := s.ResolveOrCreateUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	signed, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: signed, User: user}, nil
}

// ResolveOrCreateUser はKakaoアカウントのメールアドレスでユーザーを検索し、
// 存在しない場合はプロフィールの内容で作成する。
func (s *Service) ResolveOrCreateUser(ctx context.Context, profile *KakaoProfile) (*model.User, error) {
	email := profile.KakaoAccount.Email

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user != nil {
		s.logger.Info("existing user logged in", slog.String("user_id", user.ID))
		return user, nil
	}

	user = &model.User{
		ID:                uuid.NewString(),
		KakaoID:           profile.ID,
		KakaoEmail:        email,
		KakaoNickname:     profile.KakaoAccount.Profile.Nickname,
		KakaoProfileImage: profile.KakaoAccount.Profile.ProfileImageURL,
		Role:              model.RoleUser,
		CreatedAt:         time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 同じメールアドレスの初回ログインが並行した場合、先に作成されたユーザーを使う
		existing, findErr := s.userRepo.FindByEmail(ctx, email)
		if findErr == nil && existing != nil {
			s.logger.Info("user created concurrently, using existing",
				slog.String("user_id", existing.ID),
			)
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("new user created",
		slog.String("user_id", user.ID),
		slog.Int64("kakao_id", user.KakaoID),
	)
	return user, nil
}

// IssueToken はユーザーのベアラートークンを発行する。
func (s *Service) IssueToken(user *model.User) (string, error) {
	return s.tokens.Issue(user)
}

// CurrentUser はトークンを検証し、idクレームのユーザーを返す。
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}
