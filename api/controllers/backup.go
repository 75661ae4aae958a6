package controllers

import (
	"net/http"

	"github.com/kerbside-app/kerbside-backend/api/responses"
	"github.com/kerbside-app/kerbside-backend/api/validators"
	"github.com/kerbside-app/kerbside-backend/internal/backup"
	"github.com/kerbside-app/kerbside-backend/internal/mirror"
	pkgerrors "github.com/kerbside-app/kerbside-backend/pkg/errors"
	"github.com/kerbside-app/kerbside-backend/pkg/logger"
)

// AdminBackupExport returns a full JSON snapshot of the database.
func AdminBackupExport(svc backup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}

		snapshot, err := svc.Export(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshot)
	}
}

// AdminBackupRestore wipes the tables and reloads them from the posted snapshot.
func AdminBackupRestore(svc backup.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}

		var body backup.Snapshot
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Restore(r.Context(), &body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminMirrorSnapshot pushes the full dataset to the configured spreadsheet.
func AdminMirrorSnapshot(svc *mirror.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "spreadsheet mirror is not configured"))
			return
		}

		if err := svc.Snapshot(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mirror snapshot"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "mirrored"})
	}
}
