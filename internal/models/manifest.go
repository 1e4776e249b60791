package models

// Status of a manifest that customs has approved and cleared.
const AppStatusCleared = "899"

// LookupField is the manifest column a query variant filters on.
type LookupField string

const (
	LookupByLogisticsNo LookupField = "logistics_no"
	LookupByOrderNo     LookupField = "order_no"
)

func (f LookupField) Valid() bool {
	switch f {
	case LookupByLogisticsNo, LookupByOrderNo:
		return true
	}
	return false
}

// Manifest is one ceb3_invt_head row. Timestamps arrive already formatted by the store.
type Manifest struct {
	OrderNo     *string
	LogisticsNo *string
	InvtNo      *string
	BillNo      *string
	SysDate     *string
	AppStatus   *string
	RtnStatus   *string
	RtnInfo     *string
	RtnTime     *string
	CusStatus   *string
	CusTime     *string
	CopNo       *string
}
