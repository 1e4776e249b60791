package invtout

import "github.com/BearBump/InvtOut/internal/models"

// Fixed user-facing messages. Callers match on them, keep them byte-exact.
const (
	InfoCredentialsDenied = "企业代码或者密码错误，或者联系电子口岸客服开通清关接口权限!"
	InfoTokenDenied       = "token不存在，请联系管理员，申请开通"
	InfoFound             = "获取清单信息成功!"
	InfoLogisticsNotFound = "未找到运单号对应的清单信息"
	InfoOrderNotFound     = "未找订单号对应的清单信息"
	InfoUnavailable       = "服务暂不可用，请稍后重试"
)

type AuthStatus int

const (
	AuthGranted AuthStatus = iota
	AuthDenied
	AuthFault
)

func (s AuthStatus) String() string {
	switch s {
	case AuthGranted:
		return "granted"
	case AuthDenied:
		return "denied"
	default:
		return "fault"
	}
}

// AuthResult carries the canonical company code when Status is AuthGranted.
type AuthResult struct {
	Status      AuthStatus
	CompanyCode string
	Err         error
}

type ResultKind int

const (
	ResultFound ResultKind = iota
	ResultEmpty
	ResultFault
)

func (k ResultKind) String() string {
	switch k {
	case ResultFound:
		return "found"
	case ResultEmpty:
		return "empty"
	default:
		return "fault"
	}
}

// QueryResult keeps "no rows" and "store failed" apart; Records is non-empty only for ResultFound.
type QueryResult struct {
	Kind    ResultKind
	Records []*models.Manifest
	Err     error
}

// Outcome is what a credential- or token-authenticated lookup produced.
// Result is meaningful only when Auth.Status is AuthGranted.
type Outcome struct {
	Auth   AuthResult
	Result QueryResult
}
