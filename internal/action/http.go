package action

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/lorikeet-run/lorikeet/internal/plan"
	lkruntime "github.com/lorikeet-run/lorikeet/internal/runtime"
)

// httpAction issues one HTTP request, shares cookies across steps hitting
// the same host, and returns the response body.
type httpAction struct{ spec *plan.HTTPSpec }

// stepOutputPattern matches raw-body template references to a predecessor's
// output, e.g. "${step_output.login}".
var stepOutputPattern = regexp.MustCompile(`\$\{step_output\.([^}]+)\}`)

// renderBody expands every ${step_output.NAME} substring in body against
// the shared output map before the request is sent.
func renderBody(body string, rt *lkruntime.Context) (string, error) {
	var renderErr error
	rendered := stepOutputPattern.ReplaceAllStringFunc(body, func(match string) string {
		name := stepOutputPattern.FindStringSubmatch(match)[1]
		out, ok := rt.Output(name)
		if !ok {
			renderErr = fmt.Errorf("step `%s` could not be found", name)
			return match
		}
		return out
	})
	if renderErr != nil {
		return "", renderErr
	}
	return rendered, nil
}

func (h httpAction) Execute(ctx context.Context, rt *lkruntime.Context) (string, error) {
	spec := h.spec

	method := spec.Method
	if method == "" {
		method = http.MethodGet
		if len(spec.Form) > 0 || len(spec.Multipart) > 0 || spec.Body != "" {
			method = http.MethodPost
		}
	}

	body, contentType, err := h.buildBody(rt)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, method, spec.URL, body)
	if err != nil {
		return "", fmt.Errorf("could not build request for `%s`: %w", spec.URL, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range spec.Headers {
		req.Header.Set(k, v)
	}
	if spec.User != "" || spec.Pass != "" {
		req.SetBasicAuth(spec.User, spec.Pass)
	}

	host := req.URL.Host
	for _, c := range rt.CookiesFor(host) {
		req.AddCookie(c)
	}

	client := h.client()
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request to `%s` failed: %w", spec.URL, err)
	}
	defer resp.Body.Close()

	if spec.SaveCookies {
		rt.MergeCookies(host, resp.Cookies())
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("could not read response body from `%s`: %w", spec.URL, err)
	}

	wantStatus := spec.Status
	if wantStatus == 0 {
		wantStatus = http.StatusOK
	}
	if resp.StatusCode != wantStatus {
		return "", fmt.Errorf("`%s` returned status %d, expected %d: %s", spec.URL, resp.StatusCode, wantStatus, strings.TrimSpace(string(respBody)))
	}

	return string(respBody), nil
}

func (h httpAction) client() *http.Client {
	transport := &http.Transport{}
	if h.spec.VerifySSL != nil && !*h.spec.VerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via plan file
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

func (h httpAction) buildBody(rt *lkruntime.Context) (io.Reader, string, error) {
	spec := h.spec

	if len(spec.Multipart) > 0 {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for field, val := range spec.Multipart {
			switch {
			case val.File != "":
				f, err := os.Open(val.File)
				if err != nil {
					return nil, "", fmt.Errorf("could not open multipart file `%s`: %w", val.File, err)
				}
				part, err := writer.CreateFormFile(field, val.File)
				if err != nil {
					f.Close()
					return nil, "", err
				}
				if _, err := io.Copy(part, f); err != nil {
					f.Close()
					return nil, "", err
				}
				f.Close()
			case val.Step != "":
				out, ok := rt.Output(val.Step)
				if !ok {
					return nil, "", fmt.Errorf("step `%s` produced no output for multipart field `%s`", val.Step, field)
				}
				if err := writer.WriteField(field, out); err != nil {
					return nil, "", err
				}
			default:
				if err := writer.WriteField(field, val.Literal); err != nil {
					return nil, "", err
				}
			}
		}
		if err := writer.Close(); err != nil {
			return nil, "", err
		}
		return &buf, writer.FormDataContentType(), nil
	}

	if len(spec.Form) > 0 {
		values := url.Values{}
		for k, v := range spec.Form {
			values.Set(k, v)
		}
		return strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", nil
	}

	if spec.Body != "" {
		rendered, err := renderBody(spec.Body, rt)
		if err != nil {
			return nil, "", err
		}
		return strings.NewReader(rendered), "application/json", nil
	}

	return nil, "", nil
}
