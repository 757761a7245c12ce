package apiclient

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/username/tradejournal/src/models"
)

// ImportTrades streams a journal spreadsheet to the remote importer unparsed.
func (c *Client) ImportTrades(ctx context.Context, token, filename, contentType string, file io.Reader) (*models.ImportResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		if err == nil {
			_, err = io.Copy(part, file)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	var res models.ImportResult
	err := c.send(ctx, token, http.MethodPost, "/api/trades/import", pr, mw.FormDataContentType(), &res)
	// Unblock the writer if the request ended before the body was drained.
	pr.CloseWithError(io.ErrClosedPipe)
	if err != nil {
		return nil, err
	}
	if res.Issues == nil {
		res.Issues = []models.ImportIssue{}
	}
	return &res, nil
}
