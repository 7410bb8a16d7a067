package echoapi

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jurnalspendapol-design/rubikon-mobile/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads the `ordering` query param, e.g. `?ordering=name,-created_at`.
// Fields not in allowed are ignored.
func (ord *Ordering) Bind(ctx echo.Context, allowed ...string) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if len(allowed) > 0 && !core.Contains(allowed, field) {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// paramID reads the `:id` path param. Malformed ids cannot match anything.
func paramID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// readUpload reads the multipart file of field, at most limit bytes plus one so oversized files can be told apart.
func readUpload(ctx echo.Context, field string, limit int64) (*multipart.FileHeader, []byte, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "File "+field+" wajib diunggah").SetInternal(err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening upload")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading upload")
	}
	return fh, data, nil
}

// uploadContentType is the declared type of an upload, sniffed from its content when missing.
func uploadContentType(fh *multipart.FileHeader, data []byte) string {
	if ct := fh.Header.Get(echo.HeaderContentType); ct != "" && ct != echo.MIMEOctetStream {
		return ct
	}
	return http.DetectContentType(data)
}
