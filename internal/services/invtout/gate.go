package invtout

import (
	"context"
	"log/slog"

	"github.com/BearBump/InvtOut/internal/cache"
)

type CredentialRepository interface {
	CountCredentials(ctx context.Context, loginName, password string) (int64, error)
}

// Gate turns a credential pair or an opaque token into a company code.
type Gate struct {
	creds  CredentialRepository
	tokens cache.BytesCache
}

func NewGate(creds CredentialRepository, tokens cache.BytesCache) *Gate {
	return &Gate{creds: creds, tokens: tokens}
}

// CheckCredentials compares the pair verbatim against user_user.
func (g *Gate) CheckCredentials(ctx context.Context, companyCode, password string) AuthResult {
	n, err := g.creds.CountCredentials(ctx, companyCode, password)
	if err != nil {
		slog.Error("check credentials", "company_code", companyCode, "error", err.Error())
		return AuthResult{Status: AuthFault, Err: err}
	}
	if n <= 0 {
		slog.Warn("credentials rejected", "company_code", companyCode)
		return AuthResult{Status: AuthDenied}
	}
	return AuthResult{Status: AuthGranted, CompanyCode: companyCode}
}

// ResolveToken looks the token up in the cache; the stored value is the company code.
func (g *Gate) ResolveToken(ctx context.Context, token string) AuthResult {
	if g.tokens == nil || token == "" {
		return AuthResult{Status: AuthDenied}
	}
	b, ok, err := g.tokens.Get(ctx, token)
	if err != nil {
		slog.Error("resolve token", "error", err.Error())
		return AuthResult{Status: AuthFault, Err: err}
	}
	if !ok || len(b) == 0 {
		slog.Warn("token rejected")
		return AuthResult{Status: AuthDenied}
	}
	return AuthResult{Status: AuthGranted, CompanyCode: string(b)}
}

func (g *Gate) Authorize(ctx context.Context, mode AuthMode, id Identity) AuthResult {
	if mode == AuthByToken {
		return g.ResolveToken(ctx, id.Token)
	}
	return g.CheckCredentials(ctx, id.CompanyCode, id.Password)
}
