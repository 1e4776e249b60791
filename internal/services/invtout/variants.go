package invtout

import "github.com/BearBump/InvtOut/internal/models"

type AuthMode int

const (
	AuthByCredentials AuthMode = iota
	AuthByToken
)

// Variant describes one lookup endpoint: which column it filters on, how callers
// authenticate, which optional fields it returns and what it says when nothing matches.
type Variant struct {
	Name         string
	Field        models.LookupField
	Auth         AuthMode
	IncludeCopNo bool
	NotFoundInfo string
}

var (
	ByLogisticsNo = Variant{
		Name:         "getInvtInfo",
		Field:        models.LookupByLogisticsNo,
		Auth:         AuthByCredentials,
		IncludeCopNo: true,
		NotFoundInfo: InfoLogisticsNotFound,
	}
	ByOrderNo = Variant{
		Name:         "getInvtInfoByOrderNo",
		Field:        models.LookupByOrderNo,
		Auth:         AuthByCredentials,
		IncludeCopNo: true,
		NotFoundInfo: InfoOrderNotFound,
	}
)

// Identity is whatever the caller presented; which part is used depends on Variant.Auth.
type Identity struct {
	CompanyCode string
	Password    string
	Token       string
}
