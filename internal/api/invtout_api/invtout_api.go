package invtout_api

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"

	"github.com/BearBump/InvtOut/internal/models"
	"github.com/BearBump/InvtOut/internal/services/invtout"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

const BasePath = "/maintain/invtOut"

type InvtOutAPI struct {
	svc *invtout.Service
	// faultsAsUnavailable answers store faults with 503 instead of the legacy
	// "not found" / "denied" bodies.
	faultsAsUnavailable bool
}

func New(svc *invtout.Service, faultsAsUnavailable bool) *InvtOutAPI {
	return &InvtOutAPI{svc: svc, faultsAsUnavailable: faultsAsUnavailable}
}

func (a *InvtOutAPI) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/getInvtInfo/{companyCode}/{password}/{logisticsNo}", a.lookup(invtout.ByLogisticsNo, "logisticsNo"))
	r.Get("/getInvtInfoByOrderNo/{companyCode}/{password}/{orderNo}", a.lookup(invtout.ByOrderNo, "orderNo"))
	r.Get("/exportSummaryList/{token}/{billNo}", a.exportSummaryList)
	return r
}

type invtInfoResponse struct {
	Success bool   `json:"success"`
	Info    string `json:"info"`
	Data    any    `json:"data,omitempty"`
}

type manifestJSON struct {
	OrderNo     *string `json:"orderNo"`
	LogisticsNo *string `json:"logisticsNo"`
	InvtNo      *string `json:"invtNo"`
	BillNo      *string `json:"billNo"`
	SysDate     *string `json:"sysDate"`
	AppStatus   *string `json:"appStatus"`
	RtnStatus   *string `json:"rtnStatus"`
	RtnInfo     *string `json:"rtnInfo"`
	RtnTime     *string `json:"rtnTime"`
	CusStatus   *string `json:"cusStatus"`
	CusTime     *string `json:"cusTime"`
}

type manifestWithCopJSON struct {
	manifestJSON
	CopNo *string `json:"copNo"`
}

func (a *InvtOutAPI) lookup(v invtout.Variant, keyParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := invtout.Identity{
			CompanyCode: pathParam(r, "companyCode"),
			Password:    pathParam(r, "password"),
		}
		out := a.svc.Query(r.Context(), v, id, pathParam(r, keyParam))

		switch out.Auth.Status {
		case invtout.AuthDenied:
			writeJSON(w, http.StatusOK, invtInfoResponse{Info: invtout.InfoCredentialsDenied})
			return
		case invtout.AuthFault:
			if a.faultsAsUnavailable {
				writeJSON(w, http.StatusServiceUnavailable, invtInfoResponse{Info: invtout.InfoUnavailable})
				return
			}
			writeJSON(w, http.StatusOK, invtInfoResponse{Info: invtout.InfoCredentialsDenied})
			return
		}

		switch out.Result.Kind {
		case invtout.ResultFound:
			writeJSON(w, http.StatusOK, invtInfoResponse{
				Success: true,
				Info:    invtout.InfoFound,
				Data:    shapeManifests(v, out.Result.Records),
			})
		case invtout.ResultFault:
			if a.faultsAsUnavailable {
				writeJSON(w, http.StatusServiceUnavailable, invtInfoResponse{Info: invtout.InfoUnavailable})
				return
			}
			fallthrough
		default:
			writeJSON(w, http.StatusOK, invtInfoResponse{Info: v.NotFoundInfo})
		}
	}
}

func shapeManifests(v invtout.Variant, ms []*models.Manifest) []any {
	out := make([]any, 0, len(ms))
	for _, m := range ms {
		base := manifestJSON{
			OrderNo:     m.OrderNo,
			LogisticsNo: m.LogisticsNo,
			InvtNo:      m.InvtNo,
			BillNo:      m.BillNo,
			SysDate:     m.SysDate,
			AppStatus:   m.AppStatus,
			RtnStatus:   m.RtnStatus,
			RtnInfo:     m.RtnInfo,
			RtnTime:     m.RtnTime,
			CusStatus:   m.CusStatus,
			CusTime:     m.CusTime,
		}
		if v.IncludeCopNo {
			out = append(out, manifestWithCopJSON{manifestJSON: base, CopNo: m.CopNo})
		} else {
			out = append(out, base)
		}
	}
	return out
}

func (a *InvtOutAPI) exportSummaryList(w http.ResponseWriter, r *http.Request) {
	exp, err := a.svc.ExportSummaryList(r.Context(), pathParam(r, "token"), pathParam(r, "billNo"))
	switch {
	case err == nil:
	case errors.Is(err, invtout.ErrInvalidBillNo):
		http.Error(w, "invalid billNo", http.StatusBadRequest)
		return
	case errors.Is(err, invtout.ErrRateLimited):
		http.Error(w, "too many exports, retry later", http.StatusTooManyRequests)
		return
	case errors.Is(err, invtout.ErrStoreUnavailable):
		http.Error(w, invtout.InfoUnavailable, http.StatusServiceUnavailable)
		return
	default:
		slog.Error("export summary list", "error", err.Error())
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	serveAttachment(w, r, exp.Path, exp.FileName)
}

func serveAttachment(w http.ResponseWriter, r *http.Request, path, name string) {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("open export file", "file", name, "error", err.Error())
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		slog.Error("stat export file", "file", name, "error", err.Error())
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, name, fi.ModTime(), f)
}

// pathParam returns the decoded value; chi routes on RawPath when it is set and then
// hands back escaped segments.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
