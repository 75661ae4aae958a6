package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kerbside-app/kerbside-backend/api/responses"
	"github.com/kerbside-app/kerbside-backend/internal/export"
	pkgerrors "github.com/kerbside-app/kerbside-backend/pkg/errors"
	"github.com/kerbside-app/kerbside-backend/pkg/logger"
)

// AdminExportWorkbook streams the inventory and ledger as an xlsx download.
func AdminExportWorkbook(svc export.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}

		workbook, err := svc.BuildWorkbook(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("kerbside-export-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		if err := workbook.Write(w); err != nil && logg != nil {
			logg.Error(r.Context(), "stream workbook", err)
		}
	}
}
