package apiclient

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/jrsteele09/hrdash/dashboard"
	apperrors "github.com/jrsteele09/hrdash/internal/errors"
	"github.com/pkg/errors"
)

// Download describes a file streamed from an export endpoint
type Download struct {
	Filename    string // From Content-Disposition, or the last path segment
	ContentType string
	Size        int64 // Bytes written
}

// DownloadExport streams the file at target to w through the authorized pipeline. target is a
// path on the backend or an absolute URL on the backend's own host; other hosts are refused so
// the credential is never sent elsewhere.
func (c *Client) DownloadExport(ctx context.Context, target string, w io.Writer) (*Download, error) {
	u, err := c.exportURL(target)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.DownloadExport] build request")
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.DownloadExport] copy body")
	}
	return &Download{
		Filename:    attachmentName(resp.Header.Get("Content-Disposition"), u.Path),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        n,
	}, nil
}

// ExportReports downloads the backend CSV of every report matching filter
func (c *Client) ExportReports(ctx context.Context, filter dashboard.ReportsFilter, w io.Writer) (*Download, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	target := RouteReportsExport
	if q := filter.Values(false).Encode(); q != "" {
		target += "?" + q
	}
	return c.DownloadExport(ctx, target, w)
}

// ExportReport downloads the backend CSV of one report
func (c *Client) ExportReport(ctx context.Context, id int64, w io.Writer) (*Download, error) {
	return c.DownloadExport(ctx, RouteReportExport(id), w)
}

func (c *Client) exportURL(target string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(target))
	if err != nil || target == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidArgument, "[Client.DownloadExport] bad target %q", target)
	}
	if ref.IsAbs() || ref.Host != "" {
		if !strings.EqualFold(ref.Host, c.baseURL.Host) || (ref.Scheme != "" && ref.Scheme != c.baseURL.Scheme) {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidArgument, "[Client.DownloadExport] %s is not on %s", ref.Host, c.baseURL.Host)
		}
		return ref, nil
	}
	if !strings.HasPrefix(ref.Path, "/") {
		ref.Path = "/" + ref.Path
	}
	u := c.resolve(ref.Path, nil)
	u.RawQuery = ref.RawQuery
	return u, nil
}

func attachmentName(disposition, urlPath string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := path.Base(params["filename"]); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return path.Base(urlPath)
}
