package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

type askResponse struct {
	Answer string `json:"answer"`
}

// Ask forwards a question to the remote assistant, which answers from the
// caller's own journal.
func (c *Client) Ask(ctx context.Context, token, question string) (string, error) {
	var res askResponse
	path := "/api/ai/ask?question=" + url.QueryEscape(question)
	if err := c.send(ctx, token, http.MethodPost, path, nil, "", &res); err != nil {
		return "", err
	}
	return res.Answer, nil
}
